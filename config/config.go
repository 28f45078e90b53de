// Package config reads the host configuration: an HCL file whose values
// can be overridden by KITTIES_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/ethereum/go-ethereum/common"
	"github.com/hashicorp/hcl"
	"github.com/holiman/uint256"
)

const EnvPrefix = "KITTIES_"

type Genesis struct {
	Account string `hcl:"account"`
	Balance int64  `hcl:"balance"`
}

type Config struct {
	DataDir            string    `hcl:"datadir" env:"DATADIR"`
	Listen             string    `hcl:"listen" env:"LISTEN"`
	Reserve            int64     `hcl:"reserve" env:"RESERVE"`
	ExistentialDeposit int64     `hcl:"existential_deposit" env:"EXISTENTIAL_DEPOSIT"`
	ChainURL           string    `hcl:"chain_url" env:"CHAIN_URL"`
	Seed               string    `hcl:"seed" env:"SEED"`
	Genesis            []Genesis `hcl:"genesis"`
}

func Default() *Config {
	return &Config{
		DataDir:            ".",
		Listen:             ":8080",
		Reserve:            1,
		ExistentialDeposit: 1,
		Seed:               "kitties",
	}
}

// Load reads the file at path on top of the defaults, then applies the
// environment. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		dat, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("unable to read the configuration: %w", err)
		}
		if err := hcl.Unmarshal(dat, cfg); err != nil {
			return nil, fmt.Errorf("unable to parse the configuration: %w", err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("unable to read the environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Reserve < 0 {
		return errors.New("reserve must be >= 0")
	}
	if c.ExistentialDeposit < 0 {
		return errors.New("existential_deposit must be >= 0")
	}
	for _, g := range c.Genesis {
		if !common.IsHexAddress(g.Account) {
			return fmt.Errorf("invalid genesis account %q", g.Account)
		}
		if g.Balance < 0 {
			return fmt.Errorf("genesis balance of %s must be >= 0", g.Account)
		}
	}
	return nil
}

func (c *Config) ReserveValue() *uint256.Int {
	return uint256.NewInt(uint64(c.Reserve))
}

func (c *Config) ExistentialDepositValue() *uint256.Int {
	return uint256.NewInt(uint64(c.ExistentialDeposit))
}
