package strategy

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mirailabs-co/partnr-defai-evm/vault-api/chainio/types"
)

var (
	ErrWithdrawFailed = errors.New("strategy withdraw failed")
	ErrParamsKind     = errors.New("protocol params do not match strategy kind")
	ErrUnknownKind    = errors.New("unknown strategy kind")
	ErrValueUnderflow = errors.New("fallback valuation is negative")
	ErrInvalidReserve = errors.New("reserve must be at most 10000 bps")
)

// Chain gives strategies read-only access to other contracts.
type Chain interface {
	StaticCall(ctx context.Context, caller, target common.Address, input []byte) ([]byte, error)
}

// Custody is the only authority a strategy gets over vault funds: calls made as the vault.
type Custody interface {
	Vault() common.Address
	Call(ctx context.Context, target common.Address, input []byte) ([]byte, error)
}

// VaultState is the live vault data a strategy may fold into its params.
type VaultState struct {
	Address       common.Address
	TotalDeposit  *big.Int
	TotalWithdraw *big.Int
}

// Strategy plans side effects for one external integration. Implementations keep no
// per-vault state: the vault is always passed in.
type Strategy interface {
	Kind() Kind
	// InitializationActions runs once at vault initialization.
	InitializationActions(initialDeposit *big.Int, params Params) ([]types.Execution, error)
	// DepositActions runs on every later deposit. An empty list is valid.
	DepositActions(amount *big.Int, params Params) ([]types.Execution, error)
	// Value must not change state.
	Value(ctx context.Context, vault common.Address, params Params) (*big.Int, error)
	// Withdraw releases exactly amount of the underlying to receiver.
	Withdraw(ctx context.Context, custody Custody, receiver common.Address, amount *big.Int, params Params) error
}

// Composer is implemented by strategies that enrich static params with vault state.
type Composer interface {
	ComposeParams(ctx context.Context, state VaultState, base Params) (Params, error)
}

// Compose runs s's Composer when it has one and returns base otherwise.
func Compose(ctx context.Context, s Strategy, state VaultState, base Params) (Params, error) {
	c, ok := s.(Composer)
	if !ok {
		return base, nil
	}
	return c.ComposeParams(ctx, state, base)
}
