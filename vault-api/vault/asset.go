package vault

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	contractabi "github.com/mirailabs-co/partnr-defai-evm/vault-api/chainio/abi"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/chainio/types"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/strategy"
)

// callAsset calls the pooled asset as the vault and requires a true (or empty) result.
func (v *Vault) callAsset(ctx context.Context, method string, args ...interface{}) error {
	if !v.chain.HasCode(v.asset) {
		return fmt.Errorf("%w: no code at asset %s", ErrAssetCallFailed, v.asset.Hex())
	}
	input, err := contractabi.Pack(contractabi.ERC20, method, args...)
	if err != nil {
		return err
	}
	out, err := v.chain.Call(ctx, v.address, v.asset, input)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrAssetCallFailed, method, err)
	}
	if len(out) == 0 {
		return nil
	}
	values, err := contractabi.Unpack(contractabi.ERC20, method, out)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrAssetCallFailed, method, err)
	}
	if ok, _ := values[0].(bool); !ok {
		return fmt.Errorf("%w: %s returned false", ErrAssetCallFailed, method)
	}
	return nil
}

func (v *Vault) pullAsset(ctx context.Context, from common.Address, amount *big.Int) error {
	return v.callAsset(ctx, "transferFrom", from, v.address, amount)
}

func (v *Vault) sendAsset(ctx context.Context, to common.Address, amount *big.Int) error {
	return v.callAsset(ctx, "transfer", to, amount)
}

func (v *Vault) assetBalance(ctx context.Context, account common.Address) (*big.Int, error) {
	input, err := contractabi.Pack(contractabi.ERC20, "balanceOf", account)
	if err != nil {
		return nil, err
	}
	out, err := v.chain.StaticCall(ctx, v.address, v.asset, input)
	if err != nil {
		return nil, fmt.Errorf("%w: balanceOf: %w", ErrAssetCallFailed, err)
	}
	values, err := contractabi.Unpack(contractabi.ERC20, "balanceOf", out)
	if err != nil {
		return nil, fmt.Errorf("%w: balanceOf: %w", ErrAssetCallFailed, err)
	}
	return values[0].(*big.Int), nil
}

// composedParams folds live totals into the stored params. Strategies that
// cannot compose leave the stored params in place.
func (v *Vault) composedParams(ctx context.Context) strategy.Params {
	st := v.st
	base := st.params.Clone()
	composed, err := strategy.Compose(ctx, st.strategy, strategy.VaultState{
		Address:       v.address,
		TotalDeposit:  st.shares.TotalDeposit(),
		TotalWithdraw: st.shares.TotalWithdraw(),
	}, base)
	if err != nil || composed == nil {
		return base
	}
	return composed
}

// totalAssets prices the pool. Before initialization it is the asset balance held.
func (v *Vault) totalAssets(ctx context.Context) (*big.Int, error) {
	if !v.st.initialized {
		return v.assetBalance(ctx, v.address)
	}
	params := v.composedParams(ctx)
	s := v.st.strategy
	var value *big.Int
	err := v.chain.View(ctx, func(ctx context.Context) error {
		var err error
		value, err = s.Value(ctx, v.address, params)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValuationFailed, err)
	}
	if value == nil {
		return nil, fmt.Errorf("%w: strategy returned no value", ErrValuationFailed)
	}
	return value, nil
}

// release has the strategy free amount of the asset to receiver, acting as the vault.
func (v *Vault) release(ctx context.Context, receiver common.Address, amount *big.Int) error {
	params := v.composedParams(ctx)
	return v.st.strategy.Withdraw(ctx, custody{v}, receiver, amount, params)
}

// runActions calls each action as the vault, in order. The first failure aborts.
func (v *Vault) runActions(ctx context.Context, actions []types.Execution) ([][]byte, error) {
	results := make([][]byte, 0, len(actions))
	for i, action := range actions {
		out, err := v.chain.Call(ctx, v.address, action.Target, action.Params)
		if err != nil {
			return nil, &ExecutionError{Index: i, Target: action.Target, Err: err}
		}
		results = append(results, out)
	}
	return results, nil
}
