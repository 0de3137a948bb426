package contracts

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/trust-protocol/trust-client/fixtures"
)

// UserFactory encodes calls for the contract that registers users and creates bonds.
type UserFactory struct {
	address     common.Address
	contractABI abi.ABI
}

func NewUserFactory(address common.Address) (*UserFactory, error) {
	parsedABI, err := ParseABI("UserFactory", fixtures.UserFactoryABI)
	if err != nil {
		return nil, err
	}
	return &UserFactory{address: address, contractABI: parsedABI}, nil
}

func (f *UserFactory) Address() common.Address {
	return f.address
}

// PackCreateUser encodes createUser(user).
func (f *UserFactory) PackCreateUser(user common.Address) ([]byte, error) {
	return f.contractABI.Pack("createUser", user)
}

// PackCreateBond encodes createBond(user1, user2, amount). amount is in token base units.
func (f *UserFactory) PackCreateBond(user1, user2 common.Address, amount *big.Int) ([]byte, error) {
	return f.contractABI.Pack("createBond", user1, user2, amount)
}
