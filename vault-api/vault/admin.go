package vault

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

func (v *Vault) TransferOperator(ctx context.Context, caller, operator common.Address) error {
	return v.guarded(ctx, "transfer_operator", func(ctx context.Context) error {
		if err := v.requireOperator(caller); err != nil {
			return err
		}
		if operator == (common.Address{}) {
			return ErrNilOperator
		}
		previous := v.st.operator
		v.st.operator = operator
		v.emit(ctx, EventOperatorTransferred, "previous", previous, "operator", operator)
		return nil
	})
}

func (v *Vault) TransferAgent(ctx context.Context, caller, agent common.Address) error {
	return v.guarded(ctx, "transfer_agent", func(ctx context.Context) error {
		if err := v.requireOperator(caller); err != nil {
			return err
		}
		if agent == (common.Address{}) {
			return ErrNilAgent
		}
		previous := v.st.agent
		v.st.agent = agent
		v.emit(ctx, EventAgentTransferred, "previous", previous, "agent", agent)
		return nil
	})
}

// SetMinDeposit keeps min <= max.
func (v *Vault) SetMinDeposit(ctx context.Context, caller common.Address, minDeposit *big.Int) error {
	return v.guarded(ctx, "set_min_deposit", func(ctx context.Context) error {
		if err := v.requireOperator(caller); err != nil {
			return err
		}
		if minDeposit == nil || minDeposit.Sign() < 0 || minDeposit.Cmp(v.st.maxDeposit) > 0 {
			return fmt.Errorf("%w: min %v, max %s", ErrInvalidBounds, minDeposit, v.st.maxDeposit)
		}
		v.st.minDeposit = new(big.Int).Set(minDeposit)
		v.emit(ctx, EventMinDepositUpdated, "minDeposit", minDeposit)
		return nil
	})
}

// SetMaxDeposit keeps min <= max.
func (v *Vault) SetMaxDeposit(ctx context.Context, caller common.Address, maxDeposit *big.Int) error {
	return v.guarded(ctx, "set_max_deposit", func(ctx context.Context) error {
		if err := v.requireOperator(caller); err != nil {
			return err
		}
		if maxDeposit == nil || maxDeposit.Cmp(v.st.minDeposit) < 0 {
			return fmt.Errorf("%w: min %s, max %v", ErrInvalidBounds, v.st.minDeposit, maxDeposit)
		}
		v.st.maxDeposit = new(big.Int).Set(maxDeposit)
		v.emit(ctx, EventMaxDepositUpdated, "maxDeposit", maxDeposit)
		return nil
	})
}

// Mint by shares is disabled. Value only moves through Deposit and the signed paths.
func (v *Vault) Mint(_ context.Context, _ common.Address, _ *big.Int, _ common.Address) (*big.Int, error) {
	v.reject("mint", ErrNoLongerSupported)
	return nil, fmt.Errorf("mint: %w", ErrNoLongerSupported)
}

// Redeem is disabled.
func (v *Vault) Redeem(_ context.Context, _ common.Address, _ *big.Int, _, _ common.Address) (*big.Int, error) {
	v.reject("redeem", ErrNoLongerSupported)
	return nil, fmt.Errorf("redeem: %w", ErrNoLongerSupported)
}

// WithdrawUnsigned is the disabled withdraw-by-assets without an operator signature.
func (v *Vault) WithdrawUnsigned(_ context.Context, _ common.Address, _ *big.Int, _, _ common.Address) (*big.Int, error) {
	v.reject("withdraw_unsigned", ErrNoLongerSupported)
	return nil, fmt.Errorf("withdraw: %w", ErrNoLongerSupported)
}
