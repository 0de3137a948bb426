package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/trust-protocol/trust-client/pkg/ethclient"
)

// gasLimitBufferPercent is added on top of the node's gas estimate.
const gasLimitBufferPercent = 20

// KeyfileWallet is the injected connector: it signs locally with a private key
// and sends raw transactions through an RPC transport.
type KeyfileWallet struct {
	client  ethclient.EthClient
	key     *ecdsa.PrivateKey
	address common.Address
	opts    Options
	logger  *zap.Logger

	// serialises nonce allocation between concurrent submissions
	mu sync.Mutex
}

func NewKeyfileWallet(client ethclient.EthClient, key *ecdsa.PrivateKey, opts Options, logger *zap.Logger) *KeyfileWallet {
	return &KeyfileWallet{
		client:  client,
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		opts:    opts,
		logger:  logger.Named("injected_wallet"),
	}
}

func (w *KeyfileWallet) Account(context.Context) (Account, error) {
	return Account{Address: w.address, Connected: true}, nil
}

func (w *KeyfileWallet) ChainID(ctx context.Context) (uint64, error) {
	id, err := w.client.ChainID(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get chain id: %w", err)
	}
	return id.Uint64(), nil
}

func (w *KeyfileWallet) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return w.client.CallContract(ctx, msg, blockNumber)
}

func (w *KeyfileWallet) SendTransaction(ctx context.Context, call Call) (common.Hash, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	chainID, err := w.client.ChainID(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get chain id: %w", err)
	}
	nonce, err := w.client.PendingNonceAt(ctx, w.address)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get nonce: %w", err)
	}

	to := call.To
	gas, err := w.client.EstimateGas(ctx, ethereum.CallMsg{From: w.address, To: &to, Data: call.Data})
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to estimate gas for %s: %w", call.Method, err)
	}
	gas += gas * gasLimitBufferPercent / 100

	txData, err := w.feeFields(ctx, chainID, nonce, gas, to, call.Data)
	if err != nil {
		return common.Hash{}, err
	}

	signed, err := types.SignTx(types.NewTx(txData), types.LatestSignerForChainID(chainID), w.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to sign %s transaction: %w", call.Method, err)
	}
	if err := w.client.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("failed to send %s transaction: %w", call.Method, err)
	}

	w.logger.Info("Transaction sent",
		zap.String("method", call.Method),
		zap.String("hash", signed.Hash().Hex()),
		zap.String("to", to.Hex()),
		zap.Uint64("nonce", nonce),
		zap.Uint64("gas", gas))
	return signed.Hash(), nil
}

// feeFields builds an EIP-1559 transaction when the chain reports a base fee
// and falls back to a legacy gas-price transaction otherwise.
func (w *KeyfileWallet) feeFields(ctx context.Context, chainID *big.Int, nonce, gas uint64, to common.Address, data []byte) (types.TxData, error) {
	header, err := w.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest header: %w", err)
	}

	if header.BaseFee != nil {
		tip, err := w.client.SuggestGasTipCap(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to suggest gas tip cap: %w", err)
		}
		feeCap := new(big.Int).Add(tip, new(big.Int).Mul(header.BaseFee, big.NewInt(2)))
		return &types.DynamicFeeTx{
			ChainID:   chainID,
			Nonce:     nonce,
			GasTipCap: tip,
			GasFeeCap: feeCap,
			Gas:       gas,
			To:        &to,
			Data:      data,
		}, nil
	}

	gasPrice, err := w.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest gas price: %w", err)
	}
	return &types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gas,
		To:       &to,
		Data:     data,
	}, nil
}

func (w *KeyfileWallet) WaitForReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	return WaitMined(ctx, w.client, hash, w.opts, w.logger)
}
