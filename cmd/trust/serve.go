package main

import (
	"fmt"

	"github.com/common-nighthawk/go-figure"
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"

	"github.com/trust-protocol/trust-client/internal/app"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the root layout, the onboarding API and metrics over HTTP",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Usage: "Override server.listenPort"},
		},
		Action: func(c *cli.Context) error {
			cfg := configOf(c)
			if port := c.Int("port"); port != 0 {
				cfg.Server.ListenPort = port
			}

			banner := figure.NewFigure("Trust", "", true)
			fmt.Fprintln(c.App.Writer, banner.String())
			fmt.Fprintf(c.App.Writer, "Listening on %s:%d\n", cfg.Server.ListenAddress, cfg.Server.ListenPort)

			fx.New(app.Options(cfg, app.Params{
				Home:       homeDir(c),
				Passphrase: passphraseOf(c),
			}, loggerOf(c))).Run()
			return nil
		},
	}
}
