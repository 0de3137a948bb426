package ens

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trust-protocol/trust-client/fixtures"
	mocks "github.com/trust-protocol/trust-client/mocks/ethclient"
)

func TestNameHash(t *testing.T) {
	assert.Equal(t, common.Hash{}, NameHash(""))
	assert.Equal(t,
		common.HexToHash("0x93cdeb708b7545dc668eb9280176169d1c33cfd8ed6f04690a0bcc88a93fc4ae"),
		NameHash("eth"))
	assert.Equal(t,
		common.HexToHash("0xde9b09fd7c5f901e23a3f19fecc54828e9c848539801e86591bd9801b019f84f"),
		NameHash("foo.eth"))
}

func TestNormalize(t *testing.T) {
	got, err := Normalize("Vitalik.ETH")
	require.NoError(t, err)
	assert.Equal(t, "vitalik.eth", got)

	got, err = Normalize("  nick.eth ")
	require.NoError(t, err)
	assert.Equal(t, "nick.eth", got)

	_, err = Normalize("   ")
	assert.Error(t, err)
}

func TestDNSEncode(t *testing.T) {
	got, err := DNSEncode("alice.base.eth")
	require.NoError(t, err)
	assert.Equal(t, []byte("\x05alice\x04base\x03eth\x00"), got)

	_, err = DNSEncode("alice..eth")
	assert.Error(t, err)
}

func TestClient_Resolve(t *testing.T) {
	logger := zap.NewNop()
	registry := common.HexToAddress("0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e")
	resolver := common.HexToAddress("0x4976fb03C32e5B8cfe2b6cCB31c09Ba78EBaBa41")
	target := common.HexToAddress("0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045")

	registryABI, err := abi.JSON(strings.NewReader(fixtures.ENSRegistryABI))
	require.NoError(t, err)
	resolverABI, err := abi.JSON(strings.NewReader(fixtures.ENSResolverABI))
	require.NoError(t, err)

	pack := func(parsed abi.ABI, method string, addr common.Address) []byte {
		out, err := parsed.Methods[method].Outputs.Pack(addr)
		require.NoError(t, err)
		return out
	}
	to := func(addr common.Address) interface{} {
		return mock.MatchedBy(func(msg ethereum.CallMsg) bool { return msg.To != nil && *msg.To == addr })
	}
	resolverOf := func(name string) interface{} {
		data, err := registryABI.Pack("resolver", [32]byte(NameHash(name)))
		require.NoError(t, err)
		return mock.MatchedBy(func(msg ethereum.CallMsg) bool {
			return msg.To != nil && *msg.To == registry && bytes.Equal(msg.Data, data)
		})
	}
	method := func(addr common.Address, name string) interface{} {
		id := resolverABI.Methods[name].ID
		return mock.MatchedBy(func(msg ethereum.CallMsg) bool {
			return msg.To != nil && *msg.To == addr && bytes.HasPrefix(msg.Data, id)
		})
	}

	t.Run("success", func(t *testing.T) {
		mockClient := mocks.NewMockEthClient(t)
		mockClient.On("CallContract", mock.Anything, to(registry), mock.Anything).Return(pack(registryABI, "resolver", resolver), nil).Once()
		mockClient.On("CallContract", mock.Anything, to(resolver), mock.Anything).Return(pack(resolverABI, "addr", target), nil).Once()

		client, err := NewClient(mockClient, registry, logger)
		require.NoError(t, err)
		addr, err := client.Resolve(context.Background(), "Vitalik.eth")
		require.NoError(t, err)
		assert.Equal(t, target, addr)
	})

	t.Run("no resolver", func(t *testing.T) {
		mockClient := mocks.NewMockEthClient(t)
		mockClient.On("CallContract", mock.Anything, resolverOf("nobody.eth"), mock.Anything).Return(pack(registryABI, "resolver", common.Address{}), nil).Once()
		mockClient.On("CallContract", mock.Anything, resolverOf("eth"), mock.Anything).Return(pack(registryABI, "resolver", common.Address{}), nil).Once()

		client, err := NewClient(mockClient, registry, logger)
		require.NoError(t, err)
		_, err = client.Resolve(context.Background(), "nobody.eth")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("wildcard through extended resolver", func(t *testing.T) {
		node := NameHash("alice.base.eth")
		addrCall, err := resolverABI.Pack("addr", [32]byte(node))
		require.NoError(t, err)
		encoded, err := DNSEncode("alice.base.eth")
		require.NoError(t, err)
		resolveOut, err := resolverABI.Methods["resolve"].Outputs.Pack(pack(resolverABI, "addr", target))
		require.NoError(t, err)
		supported, err := resolverABI.Methods["supportsInterface"].Outputs.Pack(true)
		require.NoError(t, err)

		mockClient := mocks.NewMockEthClient(t)
		mockClient.On("CallContract", mock.Anything, resolverOf("alice.base.eth"), mock.Anything).Return(pack(registryABI, "resolver", common.Address{}), nil).Once()
		mockClient.On("CallContract", mock.Anything, resolverOf("base.eth"), mock.Anything).Return(pack(registryABI, "resolver", resolver), nil).Once()
		mockClient.On("CallContract", mock.Anything, method(resolver, "supportsInterface"), mock.Anything).Return(supported, nil).Once()
		mockClient.On("CallContract", mock.Anything, mock.MatchedBy(func(msg ethereum.CallMsg) bool {
			if !bytes.HasPrefix(msg.Data, resolverABI.Methods["resolve"].ID) {
				return false
			}
			args, err := resolverABI.Methods["resolve"].Inputs.Unpack(msg.Data[4:])
			if err != nil {
				return false
			}
			return bytes.Equal(args[0].([]byte), encoded) && bytes.Equal(args[1].([]byte), addrCall)
		}), mock.Anything).Return(resolveOut, nil).Once()

		client, err := NewClient(mockClient, registry, logger)
		require.NoError(t, err)
		addr, err := client.Resolve(context.Background(), "alice.base.eth")
		require.NoError(t, err)
		assert.Equal(t, target, addr)
	})

	t.Run("parent resolver without extended support", func(t *testing.T) {
		mockClient := mocks.NewMockEthClient(t)
		mockClient.On("CallContract", mock.Anything, resolverOf("alice.base.eth"), mock.Anything).Return(pack(registryABI, "resolver", common.Address{}), nil).Once()
		mockClient.On("CallContract", mock.Anything, resolverOf("base.eth"), mock.Anything).Return(pack(registryABI, "resolver", resolver), nil).Once()
		mockClient.On("CallContract", mock.Anything, method(resolver, "supportsInterface"), mock.Anything).Return(nil, errors.New("execution reverted")).Once()
		mockClient.On("CallContract", mock.Anything, method(resolver, "addr"), mock.Anything).Return(pack(resolverABI, "addr", target), nil).Once()

		client, err := NewClient(mockClient, registry, logger)
		require.NoError(t, err)
		addr, err := client.Resolve(context.Background(), "alice.base.eth")
		require.NoError(t, err)
		assert.Equal(t, target, addr)
	})

	t.Run("no address record", func(t *testing.T) {
		mockClient := mocks.NewMockEthClient(t)
		mockClient.On("CallContract", mock.Anything, to(registry), mock.Anything).Return(pack(registryABI, "resolver", resolver), nil).Once()
		mockClient.On("CallContract", mock.Anything, to(resolver), mock.Anything).Return(pack(resolverABI, "addr", common.Address{}), nil).Once()

		client, err := NewClient(mockClient, registry, logger)
		require.NoError(t, err)
		_, err = client.Resolve(context.Background(), "empty.eth")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("rpc error", func(t *testing.T) {
		rpcErr := errors.New("connection refused")
		mockClient := mocks.NewMockEthClient(t)
		mockClient.On("CallContract", mock.Anything, mock.Anything, mock.Anything).Return(nil, rpcErr).Once()

		client, err := NewClient(mockClient, registry, logger)
		require.NoError(t, err)
		_, err = client.Resolve(context.Background(), "vitalik.eth")
		assert.ErrorIs(t, err, rpcErr)
		assert.NotErrorIs(t, err, ErrNotFound)
	})
}
