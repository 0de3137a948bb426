package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/trust-protocol/trust-client/internal/contracts"
)

var (
	ErrNotConnected        = errors.New("wallet not connected")
	ErrTransactionReverted = errors.New("transaction reverted")
)

// Account is the wallet session state seen by the onboarding form.
type Account struct {
	Address   common.Address `json:"address"`
	Connected bool           `json:"connected"`
}

// Call is a state-changing contract call submitted through the wallet.
type Call struct {
	Method string
	To     common.Address
	Data   []byte
}

// Wallet is the boundary to whatever holds the user's key. Reads go through
// CallContract on the wallet's own transport.
type Wallet interface {
	contracts.Caller
	Account(ctx context.Context) (Account, error)
	ChainID(ctx context.Context) (uint64, error)
	SendTransaction(ctx context.Context, call Call) (common.Hash, error)
	WaitForReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// Options tune receipt waiting for every connector.
type Options struct {
	ReceiptTimeout time.Duration
}

// WaitMined waits until hash is mined, polling backend once per second. A
// receipt with failed status is returned together with ErrTransactionReverted.
// Timeout 0 waits until ctx is done.
func WaitMined(ctx context.Context, backend bind.DeployBackend, hash common.Hash, opts Options, logger *zap.Logger) (*types.Receipt, error) {
	if opts.ReceiptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.ReceiptTimeout)
		defer cancel()
	}

	receipt, err := bind.WaitMined(ctx, backend, hash)
	if err != nil {
		return nil, fmt.Errorf("stopped waiting for %s: %w", hash.Hex(), err)
	}
	if receipt.Status == types.ReceiptStatusFailed {
		logger.Warn("Transaction reverted", zap.String("hash", hash.Hex()))
		return receipt, fmt.Errorf("%w: %s", ErrTransactionReverted, hash.Hex())
	}
	logger.Debug("Transaction mined", zap.String("hash", hash.Hex()), zap.Uint64("gasUsed", receipt.GasUsed))
	return receipt, nil
}

// Disconnected is the wallet used when no connector could be established.
type Disconnected struct{}

func (Disconnected) Account(context.Context) (Account, error) {
	return Account{}, nil
}

func (Disconnected) ChainID(context.Context) (uint64, error) {
	return 0, ErrNotConnected
}

func (Disconnected) CallContract(context.Context, ethereum.CallMsg, *big.Int) ([]byte, error) {
	return nil, ErrNotConnected
}

func (Disconnected) SendTransaction(context.Context, Call) (common.Hash, error) {
	return common.Hash{}, ErrNotConnected
}

func (Disconnected) WaitForReceipt(context.Context, common.Hash) (*types.Receipt, error) {
	return nil, ErrNotConnected
}
