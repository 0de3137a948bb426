package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/trust-protocol/trust-client/internal/app"
	"github.com/trust-protocol/trust-client/internal/contracts"
	"github.com/trust-protocol/trust-client/internal/ens"
	"github.com/trust-protocol/trust-client/internal/miniapp"
	"github.com/trust-protocol/trust-client/internal/notify"
	"github.com/trust-protocol/trust-client/internal/onboard"
	"github.com/trust-protocol/trust-client/internal/registry"
	"github.com/trust-protocol/trust-client/internal/units"
	"github.com/trust-protocol/trust-client/internal/wallet"
)

// session is the wallet, resolver and chain set a one-shot command works with.
type session struct {
	wallet   wallet.Wallet
	resolver ens.Resolver
	chains   *registry.ChainRegistry
	close    func()
}

func openSession(ctx context.Context, c *cli.Context) (*session, error) {
	cfg := configOf(c)
	log := loggerOf(c)

	bootstrap := miniapp.NewBootstrapper(app.NewMiniAppHost(cfg, log), log)
	state := bootstrap.Init(ctx)

	w, closeWallet, err := wallet.Connect(ctx, cfg, wallet.ConnectParams{
		Home:       homeDir(c),
		Passphrase: passphraseOf(c),
		InMiniApp:  state.IsMiniApp,
	}, log)
	if err != nil {
		return nil, err
	}
	resolver, closeResolver, err := app.DialResolver(cfg, log)
	if err != nil {
		closeWallet()
		return nil, err
	}

	return &session{
		wallet:   w,
		resolver: resolver,
		chains:   registry.NewChainRegistry(cfg, log),
		close: func() {
			closeResolver()
			closeWallet()
		},
	}, nil
}

func (s *session) form(c *cli.Context) *onboard.Form {
	return onboard.NewForm(onboard.Deps{
		Wallet:   s.wallet,
		Chains:   s.chains,
		Resolver: s.resolver,
		Notifier: notify.NewConsole(c.App.Writer, loggerOf(c)),
		Decimals: configOf(c).TokenDecimals(),
		Logger:   loggerOf(c),
	})
}

func chainsCommand() *cli.Command {
	return &cli.Command{
		Name:  "chains",
		Usage: "List the supported chains and their contracts",
		Action: func(c *cli.Context) error {
			chains := registry.NewChainRegistry(configOf(c), loggerOf(c))
			tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CHAIN ID\tNAME\tTOKEN\tUSER FACTORY")
			for _, chain := range chains.All() {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", chain.ID, chain.Name, chain.DefaultAssetERC20, chain.UserFactory)
			}
			return tw.Flush()
		},
	}
}

func allowanceCommand() *cli.Command {
	return &cli.Command{
		Name:  "allowance",
		Usage: "Show the bond token allowance granted to the user factory and the wallet balance",
		Action: func(c *cli.Context) error {
			ctx := c.Context
			s, err := openSession(ctx, c)
			if err != nil {
				return err
			}
			defer s.close()

			snap := s.form(c).Open(ctx)
			if !snap.Account.Connected {
				return fmt.Errorf("wallet not connected")
			}
			if snap.Chain == nil {
				return fmt.Errorf("%s", s.chains.UnsupportedChainError(snap.ChainID))
			}
			if snap.Allowance == nil {
				return fmt.Errorf("allowance unavailable for chain %d", snap.ChainID)
			}

			cfg := configOf(c)
			decimals := cfg.TokenDecimals()
			fmt.Fprintf(c.App.Writer, "allowance: %s %s\n", units.FormatUnits(snap.Allowance, decimals), cfg.Token.Symbol)
			if snap.Balance != nil {
				fmt.Fprintf(c.App.Writer, "balance:   %s %s\n", units.FormatUnits(snap.Balance, decimals), cfg.Token.Symbol)
			}
			return nil
		},
	}
}

func resolveCommand() *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "Resolve an ENS name to an address",
		ArgsUsage: "<name>",
		Action: func(c *cli.Context) error {
			name := c.Args().First()
			if name == "" {
				return fmt.Errorf("name is required")
			}
			if contracts.IsAddress(name) {
				fmt.Fprintln(c.App.Writer, common.HexToAddress(name).Hex())
				return nil
			}

			resolver, closeFn, err := app.DialResolver(configOf(c), loggerOf(c))
			if err != nil {
				return err
			}
			defer closeFn()

			address, err := resolver.Resolve(c.Context, name)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, address.Hex())
			return nil
		},
	}
}

func registerCommand() *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "Register the connected wallet with the user factory",
		Action: func(c *cli.Context) error {
			return submit(c, onboard.ModeRegister, onboard.Input{})
		},
	}
}

func onboardCommand() *cli.Command {
	return &cli.Command{
		Name:  "onboard",
		Usage: "Register the connected wallet and lock a bond towards a counterparty",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "counterparty",
				Usage:    "Counterparty address or ENS name",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "amount",
				Usage:    "Bond amount in whole tokens, e.g. 12.5",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			return submit(c, onboard.ModeBond, onboard.Input{
				Counterparty: c.String("counterparty"),
				Amount:       c.String("amount"),
			})
		},
	}
}

func submit(c *cli.Context, mode onboard.Mode, input onboard.Input) error {
	// Submissions are not interrupted once started.
	ctx := context.WithoutCancel(c.Context)

	s, err := openSession(ctx, c)
	if err != nil {
		return err
	}
	defer s.close()

	form := s.form(c)
	form.Open(ctx)
	form.SetInput(input)
	result, err := form.Submit(ctx, mode)
	if err != nil {
		return cli.Exit("", 1)
	}

	loggerOf(c).Debug("Onboarding complete", zap.Stringer("mode", result.Mode), zap.String("hash", result.Hash.Hex()))
	return nil
}
