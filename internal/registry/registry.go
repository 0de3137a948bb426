package registry

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/trust-protocol/trust-client/internal/config"
)

// Chain is the static contract set for one supported chain. Addresses are kept
// as configured strings; they are validated at submission time.
type Chain struct {
	ID                uint64 `json:"chainId"`
	Name              string `json:"name"`
	ExplorerURL       string `json:"explorerUrl,omitempty"`
	DefaultAssetERC20 string `json:"defaultAssetERC20"`
	UserFactory       string `json:"userFactory"`
}

// TxURL links a transaction hash on the chain's block explorer, or returns "" when none is configured.
func (c Chain) TxURL(hash common.Hash) string {
	if c.ExplorerURL == "" {
		return ""
	}
	return strings.TrimRight(c.ExplorerURL, "/") + "/tx/" + hash.Hex()
}

// ChainRegistry maps chain id to its contract set. It is built once from
// configuration and never mutated, so it is safe for concurrent use.
type ChainRegistry struct {
	chains map[uint64]Chain
	ids    []uint64
}

func NewChainRegistry(cfg *config.Config, logger *zap.Logger) *ChainRegistry {
	r := &ChainRegistry{chains: make(map[uint64]Chain, len(cfg.Chains))}
	for id, c := range cfg.Chains {
		r.chains[id] = Chain{
			ID:                id,
			Name:              c.Name,
			ExplorerURL:       c.ExplorerURL,
			DefaultAssetERC20: c.Contracts.DefaultAssetERC20,
			UserFactory:       c.Contracts.UserFactory,
		}
		r.ids = append(r.ids, id)
	}
	sort.Slice(r.ids, func(i, j int) bool { return r.ids[i] < r.ids[j] })
	logger.Named("chain_registry").Info("Loaded chain registry", zap.Uint64s("chainIds", r.ids))
	return r
}

// Get returns the contract set for chainID.
func (r *ChainRegistry) Get(chainID uint64) (Chain, bool) {
	c, ok := r.chains[chainID]
	return c, ok
}

// IDs returns the supported chain ids in ascending order.
func (r *ChainRegistry) IDs() []uint64 {
	return append([]uint64(nil), r.ids...)
}

// All returns every chain ordered by id.
func (r *ChainRegistry) All() []Chain {
	out := make([]Chain, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, r.chains[id])
	}
	return out
}

// UnsupportedChainError describes chainID together with the list of supported chains.
func (r *ChainRegistry) UnsupportedChainError(chainID uint64) string {
	ids := make([]string, 0, len(r.ids))
	for _, id := range r.ids {
		ids = append(ids, strconv.FormatUint(id, 10))
	}
	return fmt.Sprintf("Chain ID %d is not supported. Supported chains: %s", chainID, strings.Join(ids, ", "))
}
