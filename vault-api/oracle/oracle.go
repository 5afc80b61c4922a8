package oracle

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mirailabs-co/partnr-defai-evm/vault-api/chainio/ledger"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/iac"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/logger"
	oracledefault "github.com/mirailabs-co/partnr-defai-evm/vault-api/metrics/indicators/oracle_default"
)

const bpsDenominator = 10_000

var (
	ErrUnauthorized        = errors.New("caller not authorized")
	ErrVaultNotRegistered  = errors.New("vault not registered")
	ErrValueChangeTooSmall = errors.New("value change below minimum")
	ErrStaleValue          = errors.New("vault value is stale")
	ErrNilRegistry         = errors.New("nil vault registry")
	ErrInvalidValue        = errors.New("invalid vault value")
)

const EventVaultValueUpdated = "VaultValueUpdated"

// Registry answers whether an address is a vault created by the canonical factory.
type Registry interface {
	ExistedVault(vault common.Address) bool
}

type Config struct {
	Admin              common.Address
	Provider           common.Address
	MinValueChangeBps  uint64
	StalenessThreshold uint64
}

// VaultValue is the last report for one vault.
type VaultValue struct {
	Value          *big.Int
	LastUpdateTime uint64
}

// Oracle stores off-chain reported vault values. Updates are accepted only from
// the provider; administration is a separate role.
type Oracle struct {
	mu                 sync.RWMutex
	address            common.Address
	admin              common.Address
	provider           common.Address
	minValueChangeBps  uint64
	stalenessThreshold uint64
	registry           Registry
	values             map[common.Address]VaultValue

	clock      ledger.Clock
	logger     logger.Logger
	indicators oracledefault.Indicators
	publisher  iac.Publisher
}

type Option func(*Oracle)

func WithLogger(l logger.Logger) Option {
	return func(o *Oracle) { o.logger = l }
}

func WithIndicators(i oracledefault.Indicators) Option {
	return func(o *Oracle) { o.indicators = i }
}

func WithPublisher(p iac.Publisher) Option {
	return func(o *Oracle) { o.publisher = p }
}

// WithAddress sets the emitter address used in events.
func WithAddress(addr common.Address) Option {
	return func(o *Oracle) { o.address = addr }
}

func New(cfg Config, registry Registry, clock ledger.Clock, opts ...Option) (*Oracle, error) {
	if registry == nil {
		return nil, ErrNilRegistry
	}
	if cfg.Admin == (common.Address{}) || cfg.Provider == (common.Address{}) {
		return nil, fmt.Errorf("%w: admin and provider are required", ErrUnauthorized)
	}
	if cfg.MinValueChangeBps > bpsDenominator {
		return nil, fmt.Errorf("minimum value change %d bps above %d", cfg.MinValueChangeBps, bpsDenominator)
	}
	if clock == nil {
		clock = ledger.SystemClock{}
	}
	o := &Oracle{
		admin:              cfg.Admin,
		provider:           cfg.Provider,
		minValueChangeBps:  cfg.MinValueChangeBps,
		stalenessThreshold: cfg.StalenessThreshold,
		registry:           registry,
		values:             make(map[common.Address]VaultValue),
		clock:              clock,
		logger:             logger.NewNopLogger(),
		indicators:         oracledefault.NoopIndicators{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// IsAssociatedVault delegates to the registry.
func (o *Oracle) IsAssociatedVault(vault common.Address) bool {
	o.mu.RLock()
	registry := o.registry
	o.mu.RUnlock()
	return registry.ExistedVault(vault)
}

// SetVaultValue records a new report for vault.
//
// A stale record (age >= threshold, threshold > 0) accepts any value. Otherwise,
// once a nonzero value exists, the change must be at least MinValueChangeBps of it.
func (o *Oracle) SetVaultValue(ctx context.Context, caller, vault common.Address, value *big.Int) error {
	if value == nil || value.Sign() < 0 {
		return ErrInvalidValue
	}
	o.mu.Lock()
	if caller != o.provider {
		o.mu.Unlock()
		o.reject(vault, "unauthorized")
		return fmt.Errorf("%w: %s is not the value provider", ErrUnauthorized, caller.Hex())
	}
	if !o.registry.ExistedVault(vault) {
		o.mu.Unlock()
		o.reject(vault, "not_registered")
		return fmt.Errorf("%w: %s", ErrVaultNotRegistered, vault.Hex())
	}

	now := o.clock.Now()
	prev, exists := o.values[vault]
	old := new(big.Int)
	if exists {
		old.Set(prev.Value)
	}
	stale := exists && o.stalenessThreshold > 0 && age(now, prev.LastUpdateTime) >= o.stalenessThreshold
	if !stale && old.Sign() > 0 {
		change := new(big.Int).Sub(value, old)
		change.Abs(change)
		change.Mul(change, big.NewInt(bpsDenominator))
		change.Quo(change, old)
		if change.Cmp(new(big.Int).SetUint64(o.minValueChangeBps)) < 0 {
			o.mu.Unlock()
			o.reject(vault, "change_too_small")
			return fmt.Errorf("%w: %s bps < %d bps", ErrValueChangeTooSmall, change, o.minValueChangeBps)
		}
	}
	o.values[vault] = VaultValue{Value: new(big.Int).Set(value), LastUpdateTime: now}
	emitter := o.address
	o.mu.Unlock()

	o.indicators.ObserveValue(vault.Hex(), value)
	o.logger.Info("vault value updated",
		logger.WithField("vault", vault.Hex()),
		logger.WithField("old", old),
		logger.WithField("new", value),
		logger.WithField("stale", stale),
	)
	if o.publisher != nil {
		event := iac.NewEvent(EventVaultValueUpdated, emitter, now).
			With("vault", vault).
			With("oldValue", old).
			With("newValue", value).
			With("updater", caller)
		if err := o.publisher.Publish(ctx, event); err != nil {
			o.logger.Warn("publish event failed", logger.WithField("event", event.Name), logger.WithField("err", err))
		}
	}
	return nil
}

// Value returns the reported value of vault. params is ignored.
func (o *Oracle) Value(vault common.Address, _ []byte) (*big.Int, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if !o.registry.ExistedVault(vault) {
		return nil, fmt.Errorf("%w: %s", ErrVaultNotRegistered, vault.Hex())
	}
	record, exists := o.values[vault]
	if !exists {
		return new(big.Int), nil
	}
	if o.stalenessThreshold > 0 {
		if a := age(o.clock.Now(), record.LastUpdateTime); a > o.stalenessThreshold {
			o.indicators.IncRejected(vault.Hex(), "stale")
			return nil, fmt.Errorf("%w: age %ds exceeds %ds", ErrStaleValue, a, o.stalenessThreshold)
		}
	}
	return new(big.Int).Set(record.Value), nil
}

// VaultValue returns the raw record and whether one exists.
func (o *Oracle) VaultValue(vault common.Address) (VaultValue, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	record, ok := o.values[vault]
	if !ok {
		return VaultValue{Value: new(big.Int)}, false
	}
	return VaultValue{Value: new(big.Int).Set(record.Value), LastUpdateTime: record.LastUpdateTime}, true
}

func (o *Oracle) reject(vault common.Address, reason string) {
	o.indicators.IncRejected(vault.Hex(), reason)
	o.logger.Warn("vault value rejected", logger.WithField("vault", vault.Hex()), logger.WithField("reason", reason))
}

// age of a record written at updated. A clock behind the record reads as fresh.
func age(now, updated uint64) uint64 {
	if now < updated {
		return 0
	}
	return now - updated
}
