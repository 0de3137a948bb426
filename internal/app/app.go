// Package app assembles the long-running trust client: wallet, name
// resolution, mini-app bootstrap and the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	goethclient "github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/trust-protocol/trust-client/internal/auth"
	"github.com/trust-protocol/trust-client/internal/config"
	"github.com/trust-protocol/trust-client/internal/ens"
	"github.com/trust-protocol/trust-client/internal/miniapp"
	"github.com/trust-protocol/trust-client/internal/registry"
	"github.com/trust-protocol/trust-client/internal/server"
	"github.com/trust-protocol/trust-client/internal/wallet"
)

const shutdownTimeout = 10 * time.Second

// Params are the process inputs that do not live in the config file.
type Params struct {
	Home       string
	Passphrase string
}

var Module = fx.Module("trust",
	fx.Provide(
		registry.NewChainRegistry,
		NewResolver,
		NewMiniAppHost,
		miniapp.NewBootstrapper,
		NewWallet,
		NewGuard,
		NewServer,
		NewHTTPServer,
	),
	fx.Invoke(func(*http.Server) {}),
)

// Options returns the full application graph for cfg.
func Options(cfg *config.Config, params Params, logger *zap.Logger) fx.Option {
	return fx.Options(
		fx.Supply(cfg, params, logger),
		fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.Named("fx")}
		}),
		Module,
	)
}

func NewResolver(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (ens.Resolver, error) {
	resolver, closeFn, err := DialResolver(cfg, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			closeFn()
			return nil
		},
	})
	return resolver, nil
}

// DialResolver connects the ENS resolver to its read-only RPC. Without an RPC
// configured, names cannot be resolved and ens.Disabled is returned.
func DialResolver(cfg *config.Config, logger *zap.Logger) (ens.Resolver, func(), error) {
	if cfg.ENS.RpcProvider == "" {
		logger.Warn("No ENS rpcProvider configured, name resolution disabled")
		return ens.Disabled{}, func() {}, nil
	}
	client, err := goethclient.Dial(cfg.ENS.RpcProvider)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to dial ENS rpc %s: %w", cfg.ENS.RpcProvider, err)
	}
	resolver, err := ens.NewClient(client, common.HexToAddress(cfg.ENS.RegistryAddress), logger)
	if err != nil {
		client.Close()
		return nil, nil, err
	}
	return resolver, client.Close, nil
}

func NewMiniAppHost(cfg *config.Config, logger *zap.Logger) miniapp.Host {
	return miniapp.NewHTTPHost(cfg.MiniApp.HostURL, cfg.MiniApp.RequestTimeout, logger)
}

// NewWallet runs the mini-app bootstrap first so the miniapp connector is
// only chosen inside a host.
func NewWallet(lc fx.Lifecycle, cfg *config.Config, params Params, bootstrap *miniapp.Bootstrapper, logger *zap.Logger) (wallet.Wallet, error) {
	ctx := context.Background()
	state := bootstrap.Init(ctx)

	w, closeFn, err := wallet.Connect(ctx, cfg, wallet.ConnectParams{
		Home:       params.Home,
		Passphrase: params.Passphrase,
		InMiniApp:  state.IsMiniApp,
	}, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			closeFn()
			return nil
		},
	})
	return w, nil
}

func NewGuard(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (*auth.Guard, error) {
	guard, err := auth.NewGuard(cfg.Server.Operators, cfg.Server.AuthWindow, logger)
	if err != nil {
		return nil, err
	}
	if !guard.Enabled() {
		logger.Warn("No server operators configured, onboarding endpoint accepts unsigned requests")
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			guard.Close()
			return nil
		},
	})
	return guard, nil
}

func NewServer(cfg *config.Config, chains *registry.ChainRegistry, w wallet.Wallet, resolver ens.Resolver, bootstrap *miniapp.Bootstrapper, guard *auth.Guard, logger *zap.Logger) *server.Server {
	return server.New(server.Deps{
		Config:   cfg,
		Chains:   chains,
		Wallet:   w,
		Resolver: resolver,
		MiniApp:  bootstrap,
		Guard:    guard,
		Logger:   logger,
	})
}

func NewHTTPServer(lc fx.Lifecycle, cfg *config.Config, s *server.Server, logger *zap.Logger) *http.Server {
	log := logger.Named("http")
	addr := net.JoinHostPort(cfg.Server.ListenAddress, strconv.Itoa(cfg.Server.ListenPort))
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", addr, err)
			}
			log.Info("Starting server", zap.String("address", addr))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("Server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()
			log.Info("Stopping server")
			return srv.Shutdown(ctx)
		},
	})
	return srv
}
