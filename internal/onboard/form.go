// Package onboard implements the onboarding form: registering the connected
// account with the user factory, optionally together with an ERC-20 bond
// towards a counterparty.
package onboard

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/trust-protocol/trust-client/internal/contracts"
	"github.com/trust-protocol/trust-client/internal/ens"
	"github.com/trust-protocol/trust-client/internal/metrics"
	"github.com/trust-protocol/trust-client/internal/notify"
	"github.com/trust-protocol/trust-client/internal/registry"
	"github.com/trust-protocol/trust-client/internal/units"
	"github.com/trust-protocol/trust-client/internal/wallet"
)

type Mode int

const (
	// ModeRegister registers the connected account without a bond.
	ModeRegister Mode = iota
	// ModeBond registers the connected account and locks a bond towards the counterparty.
	ModeBond
)

func (m Mode) String() string {
	if m == ModeBond {
		return "bond"
	}
	return "register"
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "register":
		*m = ModeRegister
	case "bond":
		*m = ModeBond
	default:
		return fmt.Errorf("unknown mode %q", text)
	}
	return nil
}

// Input is what the user typed into the form.
type Input struct {
	Counterparty string `json:"counterparty"`
	Amount       string `json:"amount"`
}

// Deps are the boundaries the form talks to.
type Deps struct {
	Wallet   wallet.Wallet
	Chains   *registry.ChainRegistry
	Resolver ens.Resolver
	Notifier notify.Notifier
	// Decimals of the bond token, used to convert the entered amount to base units.
	Decimals uint8
	Logger   *zap.Logger
}

// Snapshot is the state read when the form opens.
type Snapshot struct {
	Account   wallet.Account  `json:"account"`
	ChainID   uint64          `json:"chainId,omitempty"`
	Chain     *registry.Chain `json:"chain,omitempty"`
	Allowance *big.Int        `json:"allowance,omitempty"`
	Balance   *big.Int        `json:"balance,omitempty"`
	// TokenDecimals is read from the token contract; nil when the read failed.
	TokenDecimals *uint8 `json:"tokenDecimals,omitempty"`
}

// Result describes a completed submission.
type Result struct {
	Mode         Mode            `json:"mode"`
	ChainID      uint64          `json:"chainId"`
	Hash         common.Hash     `json:"hash"`
	ExplorerURL  string          `json:"explorerUrl,omitempty"`
	ApproveHash  *common.Hash    `json:"approveHash,omitempty"`
	Counterparty *common.Address `json:"counterparty,omitempty"`
	Amount       *big.Int        `json:"amount,omitempty"`
}

// Form is one instance of the onboarding form. Submissions run to completion
// sequentially; the form is closed when a submission ends, whatever the outcome.
type Form struct {
	deps   Deps
	logger *zap.Logger

	mu    sync.Mutex
	open  bool
	input Input

	loading atomic.Bool
}

func NewForm(deps Deps) *Form {
	return &Form{
		deps:   deps,
		logger: deps.Logger.Named("onboard"),
	}
}

func (f *Form) SetInput(input Input) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.input = input
}

func (f *Form) Input() Input {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.input
}

func (f *Form) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

// Close hides the form. It does not cancel a submission in flight.
func (f *Form) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = false
}

// Loading reports whether a submission is in progress.
func (f *Form) Loading() bool {
	return f.loading.Load()
}

// Open marks the form open and reads the wallet, chain and allowance state.
// Read failures are logged and leave the corresponding fields empty.
func (f *Form) Open(ctx context.Context) Snapshot {
	f.mu.Lock()
	f.open = true
	f.mu.Unlock()

	var snap Snapshot
	account, err := f.deps.Wallet.Account(ctx)
	if err != nil {
		f.logger.Warn("Failed to read wallet account", zap.Error(err))
		return snap
	}
	snap.Account = account
	if !account.Connected {
		f.logger.Debug("Form opened without a connected wallet")
		return snap
	}

	chainID, err := f.deps.Wallet.ChainID(ctx)
	if err != nil {
		f.logger.Warn("Failed to read chain id", zap.Error(err))
		return snap
	}
	snap.ChainID = chainID

	chain, ok := f.deps.Chains.Get(chainID)
	if !ok {
		f.logger.Debug("Form opened on unsupported chain", zap.Uint64("chainId", chainID))
		return snap
	}
	snap.Chain = &chain

	if contracts.IsWellFormedAddress(chain.DefaultAssetERC20) {
		f.readToken(ctx, &snap, account.Address, chain)
	}

	f.logger.Debug("Form opened",
		zap.String("address", account.Address.Hex()),
		zap.Bool("connected", account.Connected),
		zap.Uint64("chainId", chainID),
		zap.String("token", chain.DefaultAssetERC20),
		zap.String("userFactory", chain.UserFactory),
		zap.Stringer("allowance", snap.Allowance),
		zap.Stringer("balance", snap.Balance))
	return snap
}

// readToken fills the token fields of snap. Every read is best effort.
func (f *Form) readToken(ctx context.Context, snap *Snapshot, owner common.Address, chain registry.Chain) {
	token, err := contracts.NewERC20(f.deps.Wallet, common.HexToAddress(chain.DefaultAssetERC20), f.logger)
	if err != nil {
		f.logger.Warn("Failed to load token contract", zap.Error(err))
		return
	}

	if decimals, err := token.Decimals(ctx); err != nil {
		f.logger.Warn("Failed to read token decimals", zap.Error(err))
	} else {
		snap.TokenDecimals = &decimals
		if decimals != f.deps.Decimals {
			f.logger.Warn("Token decimals differ from configuration, amounts will be scaled by the configured value",
				zap.String("token", chain.DefaultAssetERC20),
				zap.Uint8("onchain", decimals),
				zap.Uint8("configured", f.deps.Decimals))
		}
	}

	if snap.Balance, err = token.BalanceOf(ctx, owner); err != nil {
		f.logger.Warn("Failed to read token balance", zap.Error(err))
	}

	if contracts.IsWellFormedAddress(chain.UserFactory) {
		if snap.Allowance, err = token.Allowance(ctx, owner, common.HexToAddress(chain.UserFactory)); err != nil {
			f.logger.Warn("Failed to read allowance", zap.Error(err))
		}
	}
}

// Submit runs the onboarding flow for mode. Exactly one notification is sent
// per call and the returned error, if any, is the one the notification
// describes. Submit is not meant to be cancelled; callers serving requests
// should detach ctx from the request lifetime.
func (f *Form) Submit(ctx context.Context, mode Mode) (*Result, error) {
	f.loading.Store(true)
	metrics.OnboardInFlight.Inc()
	start := time.Now()
	defer func() {
		metrics.OnboardDuration.WithLabelValues(mode.String()).Observe(time.Since(start).Seconds())
		metrics.OnboardInFlight.Dec()
		f.loading.Store(false)
		f.Close()
	}()

	input := f.Input()
	f.logger.Debug("Submitting onboarding form",
		zap.Stringer("mode", mode),
		zap.String("counterparty", input.Counterparty),
		zap.String("amount", input.Amount))

	result, err := f.submit(ctx, mode, input)
	if err != nil {
		var validationErr *ValidationError
		outcome := metrics.OutcomeFailed
		if errors.As(err, &validationErr) {
			outcome = metrics.OutcomeInvalid
		}
		metrics.OnboardSubmissions.WithLabelValues(mode.String(), outcome).Inc()
		f.logger.Error("Onboarding failed", zap.Stringer("mode", mode), zap.Error(err))
		f.deps.Notifier.Error(UserMessage(err))
		return nil, err
	}

	metrics.OnboardSubmissions.WithLabelValues(mode.String(), metrics.OutcomeSuccess).Inc()
	f.deps.Notifier.Success(notify.TxNotice{
		Hash:        result.Hash,
		ChainID:     result.ChainID,
		ExplorerURL: result.ExplorerURL,
	})
	return result, nil
}

func (f *Form) submit(ctx context.Context, mode Mode, input Input) (*Result, error) {
	account, err := f.deps.Wallet.Account(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read wallet account: %w", err)
	}
	if account.Address == (common.Address{}) {
		return nil, invalid(ErrNotConnected, "No address found - wallet not connected", nil)
	}
	if !account.Connected {
		return nil, invalid(ErrNotConnected, "Wallet not connected", nil)
	}

	chainID, err := f.deps.Wallet.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read chain id: %w", err)
	}
	chain, ok := f.deps.Chains.Get(chainID)
	if !ok {
		return nil, invalid(ErrUnsupportedChain, f.deps.Chains.UnsupportedChainError(chainID), nil)
	}

	if mode == ModeRegister {
		return f.register(ctx, account.Address, chain)
	}
	return f.bond(ctx, account.Address, chain, input)
}

func (f *Form) register(ctx context.Context, user common.Address, chain registry.Chain) (*Result, error) {
	if !contracts.IsWellFormedAddress(chain.UserFactory) {
		return nil, invalid(ErrInvalidContract, "Invalid USER_FACTORY address: "+chain.UserFactory, nil)
	}
	factory, err := contracts.NewUserFactory(common.HexToAddress(chain.UserFactory))
	if err != nil {
		return nil, err
	}

	data, err := factory.PackCreateUser(user)
	if err != nil {
		return nil, fmt.Errorf("failed to pack createUser: %w", err)
	}
	hash, err := f.transact(ctx, wallet.Call{Method: "createUser", To: factory.Address(), Data: data})
	if err != nil {
		return nil, err
	}

	return &Result{
		Mode:        ModeRegister,
		ChainID:     chain.ID,
		Hash:        hash,
		ExplorerURL: chain.TxURL(hash),
	}, nil
}

func (f *Form) bond(ctx context.Context, user common.Address, chain registry.Chain, input Input) (*Result, error) {
	if strings.TrimSpace(input.Counterparty) == "" {
		return nil, invalid(ErrInvalidInput, "Please enter a counterparty address", nil)
	}
	if strings.TrimSpace(input.Amount) == "" {
		return nil, invalid(ErrInvalidInput, "Please enter an amount", nil)
	}

	counterparty, err := f.resolveCounterparty(ctx, strings.TrimSpace(input.Counterparty))
	if err != nil {
		return nil, err
	}

	amount, err := units.ParseAmount(input.Amount, f.deps.Decimals)
	if err != nil {
		return nil, invalid(ErrInvalidInput, "Invalid amount. Please enter a valid number greater than 0.", err)
	}

	if !contracts.IsWellFormedAddress(chain.DefaultAssetERC20) {
		return nil, invalid(ErrInvalidContract, "Invalid DEFAULT_ASSET_ADDRESS_ERC20: "+chain.DefaultAssetERC20, nil)
	}
	if !contracts.IsWellFormedAddress(chain.UserFactory) {
		return nil, invalid(ErrInvalidContract, "Invalid USER_FACTORY address: "+chain.UserFactory, nil)
	}

	token, err := contracts.NewERC20(f.deps.Wallet, common.HexToAddress(chain.DefaultAssetERC20), f.logger)
	if err != nil {
		return nil, err
	}
	factory, err := contracts.NewUserFactory(common.HexToAddress(chain.UserFactory))
	if err != nil {
		return nil, err
	}

	result := &Result{
		Mode:         ModeBond,
		ChainID:      chain.ID,
		Counterparty: &counterparty,
		Amount:       amount,
	}

	approveHash, err := f.ensureAllowance(ctx, token, user, factory.Address(), amount)
	if err != nil {
		return nil, err
	}
	result.ApproveHash = approveHash

	data, err := factory.PackCreateBond(user, counterparty, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to pack createBond: %w", err)
	}
	f.logger.Debug("Creating bond",
		zap.String("user1", user.Hex()),
		zap.String("user2", counterparty.Hex()),
		zap.Stringer("amount", amount))
	hash, err := f.transact(ctx, wallet.Call{Method: "createBond", To: factory.Address(), Data: data})
	if err != nil {
		return nil, err
	}

	result.Hash = hash
	result.ExplorerURL = chain.TxURL(hash)
	return result, nil
}

// ensureAllowance approves spender for amount unless the current allowance
// already covers it, so that a flow resumed after a failed createBond does not
// approve twice. It returns the approval hash, or nil when approval was skipped.
func (f *Form) ensureAllowance(ctx context.Context, token *contracts.ERC20, owner, spender common.Address, amount *big.Int) (*common.Hash, error) {
	allowance, err := token.Allowance(ctx, owner, spender)
	if err != nil {
		f.logger.Warn("Failed to read allowance, approving anyway", zap.Error(err))
	} else if allowance.Cmp(amount) >= 0 {
		f.logger.Info("Allowance covers amount, skipping approval",
			zap.Stringer("allowance", allowance),
			zap.Stringer("amount", amount))
		return nil, nil
	}

	data, err := token.PackApprove(spender, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to pack approve: %w", err)
	}
	hash, err := f.transact(ctx, wallet.Call{Method: "approve", To: token.Address(), Data: data})
	if err != nil {
		return nil, err
	}
	return &hash, nil
}

func (f *Form) resolveCounterparty(ctx context.Context, value string) (common.Address, error) {
	if contracts.IsAddress(value) {
		return common.HexToAddress(value), nil
	}

	f.logger.Debug("Counterparty is not an address, resolving as ENS name", zap.String("name", value))
	addr, err := f.deps.Resolver.Resolve(ctx, value)
	switch {
	case errors.Is(err, ens.ErrNotFound):
		metrics.NameResolutions.WithLabelValues(metrics.ResolutionNotFound).Inc()
		return common.Address{}, invalid(ErrResolution, "Invalid ENS name or address", err)
	case err != nil:
		metrics.NameResolutions.WithLabelValues(metrics.ResolutionError).Inc()
		return common.Address{}, invalid(ErrResolution, "Failed to resolve ENS name", err)
	}

	metrics.NameResolutions.WithLabelValues(metrics.ResolutionResolved).Inc()
	f.logger.Debug("Resolved counterparty", zap.String("name", value), zap.String("address", addr.Hex()))
	return addr, nil
}

// transact sends call and waits for it to be mined.
func (f *Form) transact(ctx context.Context, call wallet.Call) (common.Hash, error) {
	hash, err := f.deps.Wallet.SendTransaction(ctx, call)
	if err != nil {
		metrics.Transactions.WithLabelValues(call.Method, metrics.TxStatusFailed).Inc()
		return common.Hash{}, err
	}
	metrics.Transactions.WithLabelValues(call.Method, metrics.TxStatusSent).Inc()
	f.logger.Info("Waiting for transaction", zap.String("method", call.Method), zap.String("hash", hash.Hex()))

	if _, err := f.deps.Wallet.WaitForReceipt(ctx, hash); err != nil {
		status := metrics.TxStatusFailed
		if errors.Is(err, wallet.ErrTransactionReverted) {
			status = metrics.TxStatusReverted
		}
		metrics.Transactions.WithLabelValues(call.Method, status).Inc()
		return common.Hash{}, fmt.Errorf("%s: %w", call.Method, err)
	}

	metrics.Transactions.WithLabelValues(call.Method, metrics.TxStatusMined).Inc()
	return hash, nil
}
