package wallet

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	goethclient "github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

// ProviderWallet is the mini-app connector. The host owns the key and exposes an
// EIP-1193 provider over JSON-RPC; signing happens on the host side through
// eth_sendTransaction.
type ProviderWallet struct {
	rpc    *rpc.Client
	reader *goethclient.Client
	opts   Options
	logger *zap.Logger
}

func NewProviderWallet(client *rpc.Client, opts Options, logger *zap.Logger) *ProviderWallet {
	return &ProviderWallet{
		rpc:    client,
		reader: goethclient.NewClient(client),
		opts:   opts,
		logger: logger.Named("miniapp_wallet"),
	}
}

func (w *ProviderWallet) Account(ctx context.Context) (Account, error) {
	var accounts []common.Address
	if err := w.rpc.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return Account{}, fmt.Errorf("failed to list provider accounts: %w", err)
	}
	if len(accounts) == 0 {
		return Account{}, nil
	}
	return Account{Address: accounts[0], Connected: true}, nil
}

func (w *ProviderWallet) ChainID(ctx context.Context) (uint64, error) {
	var id hexutil.Big
	if err := w.rpc.CallContext(ctx, &id, "eth_chainId"); err != nil {
		return 0, fmt.Errorf("failed to get chain id: %w", err)
	}
	return (*big.Int)(&id).Uint64(), nil
}

func (w *ProviderWallet) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return w.reader.CallContract(ctx, msg, blockNumber)
}

type sendTxArgs struct {
	From common.Address `json:"from"`
	To   common.Address `json:"to"`
	Data hexutil.Bytes  `json:"data"`
}

func (w *ProviderWallet) SendTransaction(ctx context.Context, call Call) (common.Hash, error) {
	account, err := w.Account(ctx)
	if err != nil {
		return common.Hash{}, err
	}
	if !account.Connected {
		return common.Hash{}, ErrNotConnected
	}

	var hash common.Hash
	args := sendTxArgs{From: account.Address, To: call.To, Data: call.Data}
	if err := w.rpc.CallContext(ctx, &hash, "eth_sendTransaction", args); err != nil {
		return common.Hash{}, fmt.Errorf("failed to send %s transaction: %w", call.Method, err)
	}

	w.logger.Info("Transaction sent", zap.String("method", call.Method), zap.String("hash", hash.Hex()), zap.String("to", call.To.Hex()))
	return hash, nil
}

func (w *ProviderWallet) WaitForReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	return WaitMined(ctx, w.reader, hash, w.opts, w.logger)
}
