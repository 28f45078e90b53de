package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"kitties-ledger/config"
	"kitties-ledger/core/model"
	"kitties-ledger/host"
	"kitties-ledger/server"

	"github.com/dustin/go-humanize"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// withRuntime opens the runtime described by --config for the duration of fn.
func withRuntime(c *cli.Context, fn func(rt *host.Runtime) error) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	rt, err := host.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to open runtime: %w", err)
	}
	defer rt.Close()

	return fn(rt)
}

func addressFlag(name, usage string) *cli.StringFlag {
	return &cli.StringFlag{Name: name, Usage: usage, Required: true}
}

func kittyFlag(name string) *cli.Uint64Flag {
	return &cli.Uint64Flag{Name: name, Usage: "Kitty index", Required: true}
}

func parseAddress(c *cli.Context, name string) (common.Address, error) {
	value := c.String(name)
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("invalid --%s address %q", name, value)
	}
	return common.HexToAddress(value), nil
}

func parseAmount(c *cli.Context, name string) (*uint256.Int, error) {
	amount, err := uint256.FromDecimal(c.String(name))
	if err != nil {
		return nil, fmt.Errorf("invalid --%s amount: %w", name, err)
	}
	return amount, nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the ledger over HTTP",
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}
			rt, err := host.Open(cfg)
			if err != nil {
				return fmt.Errorf("failed to open runtime: %w", err)
			}
			defer rt.Close()

			ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt)
			defer cancel()

			srv := &http.Server{Addr: cfg.Listen, Handler: server.New(rt)}
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(shutdownCtx)
			}()

			logrus.Infof("listening on %s", cfg.Listen)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
}

func createCommand() *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "Create a kitty",
		Flags: []cli.Flag{addressFlag("from", "Calling account")},
		Action: func(c *cli.Context) error {
			from, err := parseAddress(c, "from")
			if err != nil {
				return err
			}
			return withRuntime(c, func(rt *host.Runtime) error {
				id, err := rt.Create(from)
				if err != nil {
					return err
				}
				fmt.Println("Kitty:", id)
				return nil
			})
		},
	}
}

func transferCommand() *cli.Command {
	return &cli.Command{
		Name:  "transfer",
		Usage: "Transfer a kitty",
		Flags: []cli.Flag{
			addressFlag("from", "Calling account"),
			addressFlag("to", "New owner"),
			kittyFlag("id"),
		},
		Action: func(c *cli.Context) error {
			from, err := parseAddress(c, "from")
			if err != nil {
				return err
			}
			to, err := parseAddress(c, "to")
			if err != nil {
				return err
			}
			return withRuntime(c, func(rt *host.Runtime) error {
				return rt.Transfer(from, to, model.KittyIndex(c.Uint64("id")))
			})
		},
	}
}

func breedCommand() *cli.Command {
	return &cli.Command{
		Name:  "breed",
		Usage: "Breed two kitties",
		Flags: []cli.Flag{
			addressFlag("from", "Calling account"),
			kittyFlag("parent1"),
			kittyFlag("parent2"),
		},
		Action: func(c *cli.Context) error {
			from, err := parseAddress(c, "from")
			if err != nil {
				return err
			}
			return withRuntime(c, func(rt *host.Runtime) error {
				id, err := rt.Breed(from, model.KittyIndex(c.Uint64("parent1")), model.KittyIndex(c.Uint64("parent2")))
				if err != nil {
					return err
				}
				fmt.Println("Kitty:", id)
				return nil
			})
		},
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List a kitty for sale; a price of 0 withdraws it",
		Flags: []cli.Flag{
			addressFlag("from", "Calling account"),
			kittyFlag("id"),
			&cli.StringFlag{Name: "price", Usage: "Sale price", Required: true},
		},
		Action: func(c *cli.Context) error {
			from, err := parseAddress(c, "from")
			if err != nil {
				return err
			}
			price, err := parseAmount(c, "price")
			if err != nil {
				return err
			}
			return withRuntime(c, func(rt *host.Runtime) error {
				return rt.List(from, model.KittyIndex(c.Uint64("id")), price)
			})
		},
	}
}

func purchaseCommand() *cli.Command {
	return &cli.Command{
		Name:  "purchase",
		Usage: "Buy a listed kitty",
		Flags: []cli.Flag{
			addressFlag("from", "Calling account"),
			kittyFlag("id"),
		},
		Action: func(c *cli.Context) error {
			from, err := parseAddress(c, "from")
			if err != nil {
				return err
			}
			return withRuntime(c, func(rt *host.Runtime) error {
				return rt.Purchase(from, model.KittyIndex(c.Uint64("id")))
			})
		},
	}
}

func fundCommand() *cli.Command {
	return &cli.Command{
		Name:  "fund",
		Usage: "Endow an account on a development ledger",
		Flags: []cli.Flag{
			addressFlag("to", "Account to fund"),
			&cli.StringFlag{Name: "amount", Usage: "Amount to endow", Required: true},
		},
		Action: func(c *cli.Context) error {
			to, err := parseAddress(c, "to")
			if err != nil {
				return err
			}
			amount, err := parseAmount(c, "amount")
			if err != nil {
				return err
			}
			return withRuntime(c, func(rt *host.Runtime) error {
				return rt.Fund(to, amount)
			})
		},
	}
}

func balanceCommand() *cli.Command {
	return &cli.Command{
		Name:  "balance",
		Usage: "Show the balances of an account",
		Flags: []cli.Flag{addressFlag("account", "Account")},
		Action: func(c *cli.Context) error {
			account, err := parseAddress(c, "account")
			if err != nil {
				return err
			}
			return withRuntime(c, func(rt *host.Runtime) error {
				acct, err := rt.Balance(account)
				if err != nil {
					return err
				}
				fmt.Println("Address:", account.Hex())
				fmt.Println("Free:", humanize.BigComma(acct.Free.ToBig()))
				fmt.Println("Reserved:", humanize.BigComma(acct.Reserved.ToBig()))
				return nil
			})
		},
	}
}

func showCommand() *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Show a kitty",
		Flags: []cli.Flag{kittyFlag("id")},
		Action: func(c *cli.Context) error {
			id := model.KittyIndex(c.Uint64("id"))
			return withRuntime(c, func(rt *host.Runtime) error {
				kitty, err := rt.Kitties().Kitty(id)
				if err != nil {
					return err
				}
				if kitty == nil {
					return model.ErrInvalidIndex
				}
				owner, _, err := rt.Kitties().Owner(id)
				if err != nil {
					return err
				}
				price, err := rt.Kitties().Price(id)
				if err != nil {
					return err
				}

				fmt.Println("Kitty:", id)
				fmt.Println("DNA:", kitty.DNA)
				fmt.Println("Owner:", owner.Hex())
				if !price.IsZero() {
					fmt.Println("Price:", humanize.BigComma(price.ToBig()))
				}
				return nil
			})
		},
	}
}

func stateCommand() *cli.Command {
	return &cli.Command{
		Name:  "state",
		Usage: "Dump all kitties",
		Action: func(c *cli.Context) error {
			return withRuntime(c, func(rt *host.Runtime) error {
				count, err := rt.Kitties().Count()
				if err != nil {
					return err
				}
				records, err := rt.Kitties().All()
				if err != nil {
					return err
				}

				fmt.Println("Count:", count)
				for _, r := range records {
					fmt.Printf("%d %s %s %s\n", r.Id, r.DNA, r.Owner.Hex(), r.Price)
				}
				return nil
			})
		},
	}
}
