package vault

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mirailabs-co/partnr-defai-evm/vault-api/iac"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/logger"
	vaultdefault "github.com/mirailabs-co/partnr-defai-evm/vault-api/metrics/indicators/vault_default"
)

// Config is the immutable identity and the initial roles and bounds of a vault.
type Config struct {
	Address  common.Address
	Asset    common.Address
	Name     string
	Symbol   string
	Operator common.Address
	Agent    common.Address
	// MinDeposit defaults to zero and MaxDeposit to 2^256-1 when nil.
	MinDeposit *big.Int
	MaxDeposit *big.Int
	// Initializer, when set, is the only identity allowed to initialize.
	Initializer common.Address
	// ChainID is bound into every digest. Defaults to 1.
	ChainID *big.Int
}

type Option func(*Vault)

func WithLogger(l logger.Logger) Option {
	return func(v *Vault) { v.logger = l }
}

func WithIndicators(i vaultdefault.Indicators) Option {
	return func(v *Vault) { v.indicators = i }
}

func WithPublisher(p iac.Publisher) Option {
	return func(v *Vault) { v.publisher = p }
}

// WithStrictInitialBalance makes Initialize fail unless the vault already holds the initial deposit.
func WithStrictInitialBalance() Option {
	return func(v *Vault) { v.strictInit = true }
}
