package registry

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trust-protocol/trust-client/internal/config"
)

func newTestRegistry() *ChainRegistry {
	cfg := &config.Config{}
	base := config.ChainConfig{Name: "Base", ExplorerURL: "https://basescan.org/"}
	base.Contracts.DefaultAssetERC20 = "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"
	base.Contracts.UserFactory = "0x1111111111111111111111111111111111111111"
	sepolia := config.ChainConfig{Name: "Sepolia"}
	cfg.Chains = map[uint64]config.ChainConfig{
		11155111: sepolia,
		8453:     base,
	}
	return NewChainRegistry(cfg, zap.NewNop())
}

func TestChainRegistry(t *testing.T) {
	r := newTestRegistry()

	t.Run("get supported", func(t *testing.T) {
		c, ok := r.Get(8453)
		require.True(t, ok)
		assert.Equal(t, uint64(8453), c.ID)
		assert.Equal(t, "Base", c.Name)
		assert.Equal(t, "0x1111111111111111111111111111111111111111", c.UserFactory)
	})

	t.Run("get unsupported", func(t *testing.T) {
		_, ok := r.Get(1)
		assert.False(t, ok)
	})

	t.Run("ordering", func(t *testing.T) {
		assert.Equal(t, []uint64{8453, 11155111}, r.IDs())
		all := r.All()
		require.Len(t, all, 2)
		assert.Equal(t, "Sepolia", all[1].Name)
	})

	t.Run("ids are copied", func(t *testing.T) {
		ids := r.IDs()
		ids[0] = 1
		assert.Equal(t, []uint64{8453, 11155111}, r.IDs())
	})

	t.Run("unsupported message", func(t *testing.T) {
		assert.Equal(t, "Chain ID 1 is not supported. Supported chains: 8453, 11155111", r.UnsupportedChainError(1))
	})
}

func TestChain_TxURL(t *testing.T) {
	r := newTestRegistry()
	hash := common.HexToHash("0xabc")

	base, _ := r.Get(8453)
	assert.Equal(t, "https://basescan.org/tx/"+hash.Hex(), base.TxURL(hash))

	sepolia, _ := r.Get(11155111)
	assert.Equal(t, "", sepolia.TxURL(hash))
}
