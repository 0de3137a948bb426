package contracts

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/trust-protocol/trust-client/fixtures"
)

// ERC20 reads and encodes calls for a fungible token contract.
type ERC20 struct {
	caller      Caller
	address     common.Address
	contractABI abi.ABI
	logger      *zap.Logger
}

func NewERC20(caller Caller, address common.Address, logger *zap.Logger) (*ERC20, error) {
	parsedABI, err := ParseABI("ERC20", fixtures.ERC20ABI)
	if err != nil {
		return nil, err
	}
	return &ERC20{
		caller:      caller,
		address:     address,
		contractABI: parsedABI,
		logger:      logger.Named("erc20"),
	}, nil
}

func (t *ERC20) Address() common.Address {
	return t.address
}

// Allowance returns how much spender may still transfer on behalf of owner, in base units.
func (t *ERC20) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	var amount *big.Int
	if err := Call(ctx, t.caller, t.address, t.contractABI, t.logger, &amount, "allowance", owner, spender); err != nil {
		return nil, err
	}
	return amount, nil
}

func (t *ERC20) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	var amount *big.Int
	if err := Call(ctx, t.caller, t.address, t.contractABI, t.logger, &amount, "balanceOf", account); err != nil {
		return nil, err
	}
	return amount, nil
}

func (t *ERC20) Decimals(ctx context.Context) (uint8, error) {
	var decimals uint8
	if err := Call(ctx, t.caller, t.address, t.contractABI, t.logger, &decimals, "decimals"); err != nil {
		return 0, err
	}
	return decimals, nil
}

// PackApprove encodes approve(spender, amount).
func (t *ERC20) PackApprove(spender common.Address, amount *big.Int) ([]byte, error) {
	return t.contractABI.Pack("approve", spender, amount)
}
