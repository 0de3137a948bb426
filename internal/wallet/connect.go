package wallet

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goethclient "github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"

	"github.com/trust-protocol/trust-client/internal/config"
	"github.com/trust-protocol/trust-client/internal/keys"
)

// ProviderPath is where the mini-app host serves its EIP-1193 provider.
const ProviderPath = "/ethereum"

// ConnectParams carries what Connect needs beyond the config file.
type ConnectParams struct {
	Home       string
	Passphrase string
	// InMiniApp is the outcome of the mini-app bootstrap; the miniapp connector is
	// only tried when the process runs inside a host.
	InMiniApp bool
}

// Connect walks the configured connectors in order and returns the first one
// that can be established. When none can, it returns Disconnected so that the
// form reports "wallet not connected" instead of failing to start. The returned
// func releases the underlying transport.
func Connect(ctx context.Context, cfg *config.Config, params ConnectParams, logger *zap.Logger) (Wallet, func(), error) {
	log := logger.Named("wallet")
	opts := Options{ReceiptTimeout: cfg.Transactions.ReceiptTimeout}

	for _, name := range cfg.Wallet.Connectors {
		switch name {
		case config.ConnectorMiniApp:
			if !params.InMiniApp {
				log.Debug("Skipping miniapp connector outside of a mini-app host")
				continue
			}
			endpoint := strings.TrimRight(cfg.MiniApp.HostURL, "/") + ProviderPath
			client, err := rpc.DialContext(ctx, endpoint)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to dial mini-app provider %s: %w", endpoint, err)
			}
			log.Info("Connected wallet", zap.String("connector", name), zap.String("endpoint", endpoint))
			return NewProviderWallet(client, opts, logger), client.Close, nil

		case config.ConnectorInjected:
			keyfile := cfg.KeyfilePath(params.Home)
			if keyfile == "" {
				log.Debug("Skipping injected connector, no keyfile configured")
				continue
			}
			key, address, err := keys.LoadWalletKey(keyfile, params.Passphrase)
			if errors.Is(err, os.ErrNotExist) {
				log.Warn("Skipping injected connector, keyfile not found", zap.String("keyfile", keyfile))
				continue
			}
			if err != nil {
				return nil, nil, fmt.Errorf("failed to load wallet key: %w", err)
			}
			client, err := goethclient.DialContext(ctx, cfg.Wallet.RpcProvider)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to dial wallet transport %s: %w", cfg.Wallet.RpcProvider, err)
			}
			log.Info("Connected wallet", zap.String("connector", name), zap.String("address", address.Hex()))
			return NewKeyfileWallet(client, key, opts, logger), client.Close, nil
		}
	}

	log.Warn("No wallet connector available, continuing disconnected", zap.Strings("connectors", cfg.Wallet.Connectors))
	return Disconnected{}, func() {}, nil
}
