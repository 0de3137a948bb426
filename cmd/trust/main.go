package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/trust-protocol/trust-client/internal/config"
	"github.com/trust-protocol/trust-client/internal/logger"
)

const (
	metaHome       = "homeDir"
	metaConfig     = "config"
	metaLogger     = "logger"
	metaPassphrase = "passphrase"
)

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		if rootLogger, ok := app.Metadata[metaLogger].(*zap.Logger); ok {
			rootLogger.Fatal("failed to run app", zap.Error(err))
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
}

func newApp() *cli.App {
	var home string
	var passphrase string

	app := &cli.App{
		Name:  "trust",
		Usage: "Register with the Trust Protocol and create bonds from the command line",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "home",
				Value:       config.GetDefaultConfigHome(),
				Usage:       "Path to the trust home directory",
				EnvVars:     []string{"TRUST_HOME"},
				Destination: &home,
			},
			&cli.StringFlag{
				Name:        "passphrase",
				Usage:       "Passphrase of an encrypted wallet keystore",
				EnvVars:     []string{"TRUST_WALLET_PASSPHRASE"},
				Destination: &passphrase,
			},
		},
		Before: func(c *cli.Context) error {
			c.App.Metadata[metaHome] = home
			c.App.Metadata[metaPassphrase] = passphrase

			// init and help run before a config file exists
			if c.Args().First() == "init" || helpRequested(c.App, c.Args().Slice()) {
				return nil
			}

			cfg, err := config.LoadConfig(config.ConfigPath(home))
			if err != nil {
				return fmt.Errorf("failed to load config (run `trust init` first): %w", err)
			}
			zapLogger, err := logger.New(cfg.Logger.Verbosity, cfg.Logger.Encoding)
			if err != nil {
				return err
			}
			c.App.Metadata[metaConfig] = cfg
			c.App.Metadata[metaLogger] = zapLogger.Named("cli")
			return nil
		},
		Commands: []*cli.Command{
			initCommand(),
			accountCommands(),
			chainsCommand(),
			allowanceCommand(),
			resolveCommand(),
			registerCommand(),
			onboardCommand(),
			serveCommand(),
		},
	}
	return app
}

func homeDir(c *cli.Context) string {
	return c.App.Metadata[metaHome].(string)
}

func passphraseOf(c *cli.Context) string {
	return c.App.Metadata[metaPassphrase].(string)
}

func configOf(c *cli.Context) *config.Config {
	return c.App.Metadata[metaConfig].(*config.Config)
}

func loggerOf(c *cli.Context) *zap.Logger {
	return c.App.Metadata[metaLogger].(*zap.Logger)
}

// helpRequested reports whether args only ask for usage, at any command level.
func helpRequested(app *cli.App, args []string) bool {
	if len(args) == 0 || args[0] == "help" || args[0] == "h" {
		return true
	}
	for _, arg := range args {
		if arg == "--" {
			break
		}
		if arg == "--help" || arg == "-h" {
			return true
		}
	}
	// A command with subcommands prints its usage when given none, or "help".
	if cmd := app.Command(args[0]); cmd != nil && len(cmd.Subcommands) > 0 {
		return len(args) == 1 || args[1] == "help" || args[1] == "h"
	}
	return false
}
