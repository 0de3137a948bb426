package ens

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
	"golang.org/x/net/idna"

	"github.com/trust-protocol/trust-client/fixtures"
	"github.com/trust-protocol/trust-client/internal/contracts"
)

var (
	// ErrNotFound is returned when a name has no resolver or no address record.
	ErrNotFound = errors.New("ens name not found")
	ErrDisabled = errors.New("ens resolution is not configured")
)

// extendedResolverID is the ERC-165 interface id of IExtendedResolver.
var extendedResolverID = [4]byte{0x90, 0x61, 0xb9, 0x23}

// Resolver maps a human-readable name to an account address.
type Resolver interface {
	Resolve(ctx context.Context, name string) (common.Address, error)
}

// Disabled is used when no name-resolution RPC is configured.
type Disabled struct{}

func (Disabled) Resolve(context.Context, string) (common.Address, error) {
	return common.Address{}, ErrDisabled
}

var profile = idna.New(
	idna.MapForLookup(),
	idna.Transitional(false),
	idna.StrictDomainName(false),
)

// Normalize applies UTS-46 mapping so that equivalent spellings of a name
// ("Vitalik.ETH", "vitalik.eth") hash to the same node.
func Normalize(name string) (string, error) {
	normalized, err := profile.ToUnicode(strings.TrimSpace(name))
	if err != nil {
		return "", fmt.Errorf("failed to normalize %q: %w", name, err)
	}
	if normalized == "" {
		return "", fmt.Errorf("failed to normalize %q: empty name", name)
	}
	return normalized, nil
}

// NameHash computes the EIP-137 node of an already normalized name.
func NameHash(name string) common.Hash {
	var node common.Hash
	if name == "" {
		return node
	}
	labels := strings.Split(name, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		labelHash := crypto.Keccak256([]byte(labels[i]))
		node = crypto.Keccak256Hash(node.Bytes(), labelHash)
	}
	return node
}

// Client resolves names through the ENS registry and the resolver it points to.
type Client struct {
	caller      contracts.Caller
	registry    common.Address
	registryABI abi.ABI
	resolverABI abi.ABI
	logger      *zap.Logger
}

func NewClient(caller contracts.Caller, registry common.Address, logger *zap.Logger) (*Client, error) {
	registryABI, err := contracts.ParseABI("ENSRegistry", fixtures.ENSRegistryABI)
	if err != nil {
		return nil, err
	}
	resolverABI, err := contracts.ParseABI("ENSResolver", fixtures.ENSResolverABI)
	if err != nil {
		return nil, err
	}
	return &Client{
		caller:      caller,
		registry:    registry,
		registryABI: registryABI,
		resolverABI: resolverABI,
		logger:      logger.Named("ens"),
	}, nil
}

// Resolve returns the address record of name. When name itself has no
// resolver, the closest ancestor's resolver answers for it (ENSIP-10), through
// resolve(bytes,bytes) when it implements IExtendedResolver.
func (c *Client) Resolve(ctx context.Context, name string) (common.Address, error) {
	normalized, err := Normalize(name)
	if err != nil {
		return common.Address{}, err
	}
	node := NameHash(normalized)

	resolver, owner, err := c.findResolver(ctx, normalized)
	if err != nil {
		return common.Address{}, err
	}
	if resolver == (common.Address{}) {
		c.logger.Debug("No resolver set", zap.String("name", normalized))
		return common.Address{}, fmt.Errorf("%w: %s has no resolver", ErrNotFound, normalized)
	}

	var addr common.Address
	if owner != normalized && c.supportsExtended(ctx, resolver) {
		addr, err = c.resolveExtended(ctx, resolver, normalized, node)
	} else {
		err = contracts.Call(ctx, c.caller, resolver, c.resolverABI, c.logger, &addr, "addr", [32]byte(node))
	}
	if err != nil {
		return common.Address{}, err
	}
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: %s has no address record", ErrNotFound, normalized)
	}

	c.logger.Debug("Resolved name",
		zap.String("name", normalized),
		zap.String("address", addr.Hex()),
		zap.String("resolver", resolver.Hex()),
		zap.String("resolverName", owner),
	)
	return addr, nil
}

// findResolver walks from name towards the root and returns the first resolver
// set, together with the name it is set on. The root itself is not consulted.
func (c *Client) findResolver(ctx context.Context, name string) (common.Address, string, error) {
	for current := name; current != ""; {
		var resolver common.Address
		if err := contracts.Call(ctx, c.caller, c.registry, c.registryABI, c.logger, &resolver, "resolver", [32]byte(NameHash(current))); err != nil {
			return common.Address{}, "", err
		}
		if resolver != (common.Address{}) {
			return resolver, current, nil
		}
		dot := strings.IndexByte(current, '.')
		if dot < 0 {
			break
		}
		current = current[dot+1:]
	}
	return common.Address{}, "", nil
}

// supportsExtended reports whether resolver implements IExtendedResolver. A
// reverting supportsInterface counts as no.
func (c *Client) supportsExtended(ctx context.Context, resolver common.Address) bool {
	callData, err := c.resolverABI.Pack("supportsInterface", extendedResolverID)
	if err != nil {
		return false
	}
	result, err := c.caller.CallContract(ctx, ethereum.CallMsg{To: &resolver, Data: callData}, nil)
	if err != nil || len(result) == 0 {
		c.logger.Debug("supportsInterface unavailable", zap.String("resolver", resolver.Hex()), zap.Error(err))
		return false
	}
	var ok bool
	if err := c.resolverABI.UnpackIntoInterface(&ok, "supportsInterface", result); err != nil {
		return false
	}
	return ok
}

func (c *Client) resolveExtended(ctx context.Context, resolver common.Address, name string, node common.Hash) (common.Address, error) {
	addrCall, err := c.resolverABI.Pack("addr", [32]byte(node))
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to pack data for addr: %w", err)
	}
	encoded, err := DNSEncode(name)
	if err != nil {
		return common.Address{}, err
	}
	var result []byte
	if err := contracts.Call(ctx, c.caller, resolver, c.resolverABI, c.logger, &result, "resolve", encoded, addrCall); err != nil {
		return common.Address{}, err
	}
	var addr common.Address
	if err := c.resolverABI.UnpackIntoInterface(&addr, "addr", result); err != nil {
		return common.Address{}, fmt.Errorf("failed to unpack resolve result: %w", err)
	}
	return addr, nil
}

// DNSEncode returns name in DNS wire format: length-prefixed labels ending
// with a zero byte.
func DNSEncode(name string) ([]byte, error) {
	out := make([]byte, 0, len(name)+2)
	for _, label := range strings.Split(name, ".") {
		if label == "" || len(label) > 255 {
			return nil, fmt.Errorf("invalid label in %q", name)
		}
		out = append(out, byte(len(label)))
		out = append(out, label...)
	}
	return append(out, 0), nil
}
