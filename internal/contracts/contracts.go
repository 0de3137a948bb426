package contracts

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Caller performs read-only contract calls. *ethclient.Client and every wallet
// connector satisfy it.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// ParseABI parses an embedded JSON ABI definition.
func ParseABI(name, definition string) (abi.ABI, error) {
	parsedABI, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("failed to parse %s ABI: %w", name, err)
	}
	return parsedABI, nil
}

// Call packs methodName with args, executes it against address at the latest
// block and unpacks the single return value into out.
func Call(ctx context.Context, caller Caller, address common.Address, contractABI abi.ABI, logger *zap.Logger, out interface{}, methodName string, args ...interface{}) error {
	callData, err := contractABI.Pack(methodName, args...)
	if err != nil {
		logger.Error("Failed to pack call data", zap.String("method", methodName), zap.Error(err))
		return fmt.Errorf("failed to pack data for %s: %w", methodName, err)
	}

	msg := ethereum.CallMsg{
		To:   &address,
		Data: callData,
	}
	result, err := caller.CallContract(ctx, msg, nil)
	if err != nil {
		logger.Error("Failed to call contract", zap.String("method", methodName), zap.String("contractAddress", address.Hex()), zap.Error(err))
		return fmt.Errorf("failed to call %s: %w", methodName, err)
	}

	if err := contractABI.UnpackIntoInterface(out, methodName, result); err != nil {
		logger.Error("Failed to unpack call result", zap.String("method", methodName), zap.Error(err))
		return fmt.Errorf("failed to unpack %s result: %w", methodName, err)
	}
	return nil
}

// IsAddress reports whether s is a syntactically valid account address: 0x
// followed by 40 hex digits. All-lower and all-upper digits are accepted as
// is; mixed case must carry a valid EIP-55 checksum.
func IsAddress(s string) bool {
	if !IsWellFormedAddress(s) {
		return false
	}
	digits := s[2:]
	if digits == strings.ToLower(digits) || digits == strings.ToUpper(digits) {
		return true
	}
	mixed, err := common.NewMixedcaseAddressFromString(s)
	if err != nil {
		return false
	}
	return mixed.ValidChecksum()
}

// IsWellFormedAddress checks shape only: 0x prefix and 20 hex-encoded bytes.
// Configured contract addresses are validated with it before use.
func IsWellFormedAddress(s string) bool {
	return len(s) == 2+2*common.AddressLength && strings.HasPrefix(s, "0x") && common.IsHexAddress(s)
}
