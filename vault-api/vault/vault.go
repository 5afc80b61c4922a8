package vault

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	chainio "github.com/mirailabs-co/partnr-defai-evm/vault-api/chainio/io"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/chainio/ledger"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/chainio/types"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/iac"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/logger"
	vaultdefault "github.com/mirailabs-co/partnr-defai-evm/vault-api/metrics/indicators/vault_default"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/shares"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/signer"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/strategy"
)

// Vault pools one asset, issues shares against it and deploys it through a strategy.
//
// Every method runs inside a transaction of the host ledger. Methods that move
// funds are guarded: a nested call into any of them on the same vault while one
// is running fails with ErrReentrantCall. The ctx handed to external contracts
// must be passed back on nested calls so the ledger can see the transaction.
type Vault struct {
	address       common.Address
	asset         common.Address
	name          string
	symbol        string
	assetDecimals uint8
	math          shares.Math
	initializer   common.Address
	strictInit    bool

	chain    *ledger.Ledger
	verifier *signer.Verifier

	// entered is the reentrancy flag. It is not part of the snapshot state.
	entered bool
	st      *state

	logger     logger.Logger
	indicators vaultdefault.Indicators
	publisher  iac.Publisher
}

var (
	_ ledger.Contract = (*Vault)(nil)
	_ ledger.Stateful = (*Vault)(nil)
)

// state is everything that follows ledger rollback.
type state struct {
	operator       common.Address
	agent          common.Address
	minDeposit     *big.Int
	maxDeposit     *big.Int
	initialized    bool
	strategy       strategy.Strategy
	params         strategy.Params
	shares         *shares.Ledger
	usedSignatures map[types.SignatureID]struct{}
	requests       map[types.RequestID]types.WithdrawalRequest
}

func (s *state) clone() *state {
	c := &state{
		operator:       s.operator,
		agent:          s.agent,
		minDeposit:     new(big.Int).Set(s.minDeposit),
		maxDeposit:     new(big.Int).Set(s.maxDeposit),
		initialized:    s.initialized,
		strategy:       s.strategy,
		shares:         s.shares.Clone(),
		usedSignatures: make(map[types.SignatureID]struct{}, len(s.usedSignatures)),
		requests:       make(map[types.RequestID]types.WithdrawalRequest, len(s.requests)),
	}
	if s.params != nil {
		c.params = s.params.Clone()
	}
	for id := range s.usedSignatures {
		c.usedSignatures[id] = struct{}{}
	}
	for id, req := range s.requests {
		c.requests[id] = req.Copy()
	}
	return c
}

// New creates a vault at cfg.Address and deploys it on chain. The asset's
// decimals are read once; assets without decimals() count as 18.
func New(ctx context.Context, chain *ledger.Ledger, cfg Config, opts ...Option) (*Vault, error) {
	if cfg.Operator == (common.Address{}) {
		return nil, ErrNilOperator
	}
	if cfg.Agent == (common.Address{}) {
		return nil, ErrNilAgent
	}
	if cfg.Address == (common.Address{}) || cfg.Asset == (common.Address{}) {
		return nil, fmt.Errorf("vault and asset addresses are required")
	}
	minDeposit := new(big.Int)
	if cfg.MinDeposit != nil {
		minDeposit.Set(cfg.MinDeposit)
	}
	maxDeposit := new(big.Int).Set(strategy.MaxUint256)
	if cfg.MaxDeposit != nil {
		maxDeposit.Set(cfg.MaxDeposit)
	}
	if minDeposit.Sign() < 0 || minDeposit.Cmp(maxDeposit) > 0 {
		return nil, fmt.Errorf("%w: min %s, max %s", ErrInvalidBounds, minDeposit, maxDeposit)
	}
	chainID := cfg.ChainID
	if chainID == nil {
		chainID = big.NewInt(1)
	}

	v := &Vault{
		address:     cfg.Address,
		asset:       cfg.Asset,
		name:        cfg.Name,
		symbol:      cfg.Symbol,
		initializer: cfg.Initializer,
		chain:       chain,
		verifier:    signer.NewVerifier(signer.NewDomain(chainID, cfg.Address), chain),
		st: &state{
			operator:       cfg.Operator,
			agent:          cfg.Agent,
			minDeposit:     minDeposit,
			maxDeposit:     maxDeposit,
			shares:         shares.NewLedger(),
			usedSignatures: make(map[types.SignatureID]struct{}),
			requests:       make(map[types.RequestID]types.WithdrawalRequest),
		},
		logger:     logger.NewNopLogger(),
		indicators: vaultdefault.NoopIndicators{},
	}
	for _, opt := range opts {
		opt(v)
	}

	v.assetDecimals = v.readAssetDecimals(ctx)
	v.math = shares.NewMath(v.assetDecimals)

	if err := chain.Deploy(v.address, v); err != nil {
		return nil, err
	}
	v.logger.Info("vault created",
		logger.WithField("vault", v.address.Hex()),
		logger.WithField("asset", v.asset.Hex()),
		logger.WithField("decimalsOffset", v.math.DecimalsOffset()),
	)
	return v, nil
}

func (v *Vault) readAssetDecimals(ctx context.Context) uint8 {
	reader := chainio.NewAssetReader(ledger.NewBackend(v.chain), 0, v.logger)
	decimals, ok, err := reader.Decimals(ctx, v.asset)
	if err != nil || !ok {
		v.logger.Warn("asset decimals unavailable, using default",
			logger.WithField("asset", v.asset.Hex()),
			logger.WithField("default", chainio.DefaultDecimals),
		)
		return chainio.DefaultDecimals
	}
	return decimals
}

func (v *Vault) Address() common.Address { return v.address }

func (v *Vault) Asset() common.Address { return v.asset }

func (v *Vault) Name() string { return v.name }

func (v *Vault) Symbol() string { return v.symbol }

// Decimals of the share token: the asset's decimals plus the offset.
func (v *Vault) Decimals() uint8 { return v.math.ShareDecimals(v.assetDecimals) }

func (v *Vault) DecimalsOffset() uint8 { return v.math.DecimalsOffset() }

// Domain is the signing domain digests of this vault are bound to.
func (v *Vault) Domain() signer.Domain { return v.verifier.Domain() }

func (v *Vault) Snapshot() any {
	return v.st.clone()
}

// Restore rewrites the state in place so pointers to it stay valid.
func (v *Vault) Restore(snapshot any) {
	*v.st = *snapshot.(*state)
}

// guarded runs fn as one atomic call frame holding the reentrancy flag.
func (v *Vault) guarded(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	err := v.chain.Atomic(ctx, func(ctx context.Context) error {
		if v.entered {
			return fmt.Errorf("%w: %s", ErrReentrantCall, op)
		}
		v.entered = true
		defer func() { v.entered = false }()
		return fn(ctx)
	})
	if errors.Is(err, ledger.ErrDetachedCall) {
		err = fmt.Errorf("%w: %s: %w", ErrReentrantCall, op, err)
	}
	if err != nil {
		v.reject(op, err)
	}
	return err
}

func (v *Vault) reject(op string, err error) {
	reason := rejectionReason(err)
	v.indicators.IncRejected(v.address.Hex(), op, reason)
	v.logger.Warn("vault call rejected",
		logger.WithField("vault", v.address.Hex()),
		logger.WithField("op", op),
		logger.WithField("reason", reason),
		logger.WithField("err", err),
	)
}

// read runs fn under the ledger lock for a consistent view of the state.
// Getters without an error result return zero values when it fails.
func (v *Vault) read(ctx context.Context, fn func(ctx context.Context) error) error {
	err := v.chain.Read(ctx, fn)
	if errors.Is(err, ledger.ErrDetachedCall) {
		v.logger.Warn("vault read rejected", logger.WithField("vault", v.address.Hex()), logger.WithField("err", err))
	}
	return err
}

// custody lets a strategy call contracts as the vault and nothing else.
type custody struct {
	v *Vault
}

func (c custody) Vault() common.Address { return c.v.address }

func (c custody) Call(ctx context.Context, target common.Address, input []byte) ([]byte, error) {
	return c.v.chain.Call(ctx, c.v.address, target, input)
}

func (v *Vault) useSignature(cred types.Credential) error {
	if _, used := v.st.usedSignatures[cred.ID()]; used {
		return fmt.Errorf("%w: %s", ErrSignatureUsed, cred.ID())
	}
	return nil
}

func (v *Vault) markSignatureUsed(cred types.Credential) {
	v.st.usedSignatures[cred.ID()] = struct{}{}
}

// authorize checks replay, deadline and signer of msg.
func (v *Vault) authorize(ctx context.Context, msg signer.Message, cred types.Credential, expected common.Address) error {
	if err := v.useSignature(cred); err != nil {
		return err
	}
	_, err := v.verifier.Verify(ctx, msg, cred, expected, v.chain.Now())
	return err
}

func (v *Vault) requireInitialized() error {
	if !v.st.initialized {
		return ErrNotInitialized
	}
	return nil
}

func (v *Vault) requireOperator(caller common.Address) error {
	if caller != v.st.operator {
		return fmt.Errorf("%w: %s", ErrNotOperator, caller.Hex())
	}
	return nil
}

func positive(x *big.Int) bool {
	return x != nil && x.Sign() > 0
}
