package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const (
	EnvConfig = "KITTIES_CONFIG"
)

func main() {
	app := &cli.App{
		Name:  "kitties",
		Usage: "Kitties ledger",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "HCL configuration file",
				EnvVars: []string{EnvConfig},
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log debug output",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				logrus.SetLevel(logrus.DebugLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			serveCommand(),
			createCommand(),
			transferCommand(),
			breedCommand(),
			listCommand(),
			purchaseCommand(),
			fundCommand(),
			balanceCommand(),
			showCommand(),
			stateCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}
