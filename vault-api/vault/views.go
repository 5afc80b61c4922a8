package vault

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mirailabs-co/partnr-defai-evm/vault-api/chainio/types"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/shares"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/strategy"
)

// TotalAssets is recomputed from the strategy on every call.
func (v *Vault) TotalAssets(ctx context.Context) (*big.Int, error) {
	var out *big.Int
	err := v.read(ctx, func(ctx context.Context) error {
		var err error
		out, err = v.totalAssets(ctx)
		return err
	})
	return out, err
}

// priced evaluates f against the current supply and total assets.
func (v *Vault) priced(ctx context.Context, f func(supply, total *big.Int) *big.Int) (*big.Int, error) {
	var out *big.Int
	err := v.read(ctx, func(ctx context.Context) error {
		total, err := v.totalAssets(ctx)
		if err != nil {
			return err
		}
		out = f(v.st.shares.TotalSupply(), total)
		return nil
	})
	return out, err
}

func (v *Vault) ConvertToShares(ctx context.Context, assets *big.Int) (*big.Int, error) {
	return v.priced(ctx, func(supply, total *big.Int) *big.Int {
		return v.math.ToShares(assets, supply, total, shares.Floor)
	})
}

func (v *Vault) ConvertToAssets(ctx context.Context, amount *big.Int) (*big.Int, error) {
	return v.priced(ctx, func(supply, total *big.Int) *big.Int {
		return v.math.ToAssets(amount, supply, total, shares.Floor)
	})
}

// PreviewDeposit equals the shares Deposit would mint in the same state.
func (v *Vault) PreviewDeposit(ctx context.Context, assets *big.Int) (*big.Int, error) {
	return v.priced(ctx, func(supply, total *big.Int) *big.Int {
		return v.math.PreviewDeposit(assets, supply, total)
	})
}

// PreviewWithdraw equals the shares Withdraw would burn in the same state.
func (v *Vault) PreviewWithdraw(ctx context.Context, assets *big.Int) (*big.Int, error) {
	return v.priced(ctx, func(supply, total *big.Int) *big.Int {
		return v.math.PreviewWithdraw(assets, supply, total)
	})
}

func (v *Vault) PreviewMint(ctx context.Context, amount *big.Int) (*big.Int, error) {
	return v.priced(ctx, func(supply, total *big.Int) *big.Int {
		return v.math.PreviewMint(amount, supply, total)
	})
}

func (v *Vault) PreviewRedeem(ctx context.Context, amount *big.Int) (*big.Int, error) {
	return v.priced(ctx, func(supply, total *big.Int) *big.Int {
		return v.math.PreviewRedeem(amount, supply, total)
	})
}

// PreviewInitializeVault prices the first deposit while its assets already sit in the vault.
func (v *Vault) PreviewInitializeVault(ctx context.Context, assets *big.Int) (*big.Int, error) {
	var out *big.Int
	err := v.read(ctx, func(ctx context.Context) error {
		total, err := v.totalAssets(ctx)
		if err != nil {
			return err
		}
		out, err = v.math.PreviewInitialize(assets, v.st.shares.TotalSupply(), total)
		return err
	})
	return out, err
}

// MaxDeposit is the configured upper bound, the same for every receiver.
func (v *Vault) MaxDeposit(ctx context.Context, _ common.Address) *big.Int {
	out := new(big.Int)
	_ = v.read(ctx, func(context.Context) error {
		out = new(big.Int).Set(v.st.maxDeposit)
		return nil
	})
	return out
}

func (v *Vault) MinDeposit(ctx context.Context) *big.Int {
	out := new(big.Int)
	_ = v.read(ctx, func(context.Context) error {
		out = new(big.Int).Set(v.st.minDeposit)
		return nil
	})
	return out
}

func (v *Vault) Operator(ctx context.Context) common.Address {
	var out common.Address
	_ = v.read(ctx, func(context.Context) error {
		out = v.st.operator
		return nil
	})
	return out
}

func (v *Vault) Agent(ctx context.Context) common.Address {
	var out common.Address
	_ = v.read(ctx, func(context.Context) error {
		out = v.st.agent
		return nil
	})
	return out
}

func (v *Vault) TotalDeposit(ctx context.Context) *big.Int {
	out := new(big.Int)
	_ = v.read(ctx, func(context.Context) error {
		out = v.st.shares.TotalDeposit()
		return nil
	})
	return out
}

func (v *Vault) TotalWithdraw(ctx context.Context) *big.Int {
	out := new(big.Int)
	_ = v.read(ctx, func(context.Context) error {
		out = v.st.shares.TotalWithdraw()
		return nil
	})
	return out
}

func (v *Vault) IsInitialized(ctx context.Context) bool {
	var out bool
	_ = v.read(ctx, func(context.Context) error {
		out = v.st.initialized
		return nil
	})
	return out
}

// ProtocolParams returns the stored params, or nil before initialization.
func (v *Vault) ProtocolParams(ctx context.Context) strategy.Params {
	var out strategy.Params
	_ = v.read(ctx, func(context.Context) error {
		if v.st.params != nil {
			out = v.st.params.Clone()
		}
		return nil
	})
	return out
}

func (v *Vault) IsSignatureUsed(ctx context.Context, id types.SignatureID) bool {
	var out bool
	_ = v.read(ctx, func(context.Context) error {
		_, out = v.st.usedSignatures[id]
		return nil
	})
	return out
}

func (v *Vault) WithdrawalRequest(ctx context.Context, id types.RequestID) (types.WithdrawalRequest, bool) {
	var (
		out types.WithdrawalRequest
		ok  bool
	)
	_ = v.read(ctx, func(context.Context) error {
		var req types.WithdrawalRequest
		req, ok = v.st.requests[id]
		if ok {
			out = req.Copy()
		}
		return nil
	})
	return out, ok
}
