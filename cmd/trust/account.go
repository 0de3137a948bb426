package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/trust-protocol/trust-client/fixtures"
	"github.com/trust-protocol/trust-client/internal/config"
	"github.com/trust-protocol/trust-client/internal/keys"
)

func initCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Write the default config file into the home directory",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "force", Usage: "Overwrite an existing config file"},
		},
		Action: func(c *cli.Context) error {
			home := homeDir(c)
			path := config.ConfigPath(home)
			if _, err := os.Stat(path); err == nil && !c.Bool("force") {
				return fmt.Errorf("config %s already exists, use --force to overwrite", path)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
				return err
			}
			if err := os.WriteFile(path, fixtures.ConfigTemplate, 0600); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Wrote %s\n", path)
			return nil
		},
	}
}

func accountCommands() *cli.Command {
	return &cli.Command{
		Name:  "account",
		Usage: "Manage the wallet keyfile used by the injected connector",
		Subcommands: []*cli.Command{
			{
				Name:  "new",
				Usage: "Create a new wallet keyfile",
				Action: func(c *cli.Context) error {
					cfg := configOf(c)
					path := cfg.KeyfilePath(homeDir(c))
					address, err := keys.GenerateKeyFile(path)
					if err != nil {
						return err
					}
					loggerOf(c).Info("Created wallet keyfile", zap.String("keyfile", path), zap.String("address", address.Hex()))
					fmt.Fprintln(c.App.Writer, address.Hex())
					return nil
				},
			},
			{
				Name:  "get",
				Usage: "Print the wallet address",
				Action: func(c *cli.Context) error {
					cfg := configOf(c)
					_, address, err := keys.LoadWalletKey(cfg.KeyfilePath(homeDir(c)), passphraseOf(c))
					if err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, address.Hex())
					return nil
				},
			},
		},
	}
}
