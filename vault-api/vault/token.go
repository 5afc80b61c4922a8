package vault

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	contractabi "github.com/mirailabs-co/partnr-defai-evm/vault-api/chainio/abi"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/chainio/ledger"
)

func (v *Vault) TotalSupply(ctx context.Context) *big.Int {
	out := new(big.Int)
	_ = v.read(ctx, func(context.Context) error {
		out = v.st.shares.TotalSupply()
		return nil
	})
	return out
}

func (v *Vault) BalanceOf(ctx context.Context, owner common.Address) *big.Int {
	out := new(big.Int)
	_ = v.read(ctx, func(context.Context) error {
		out = v.st.shares.BalanceOf(owner)
		return nil
	})
	return out
}

func (v *Vault) Allowance(ctx context.Context, owner, spender common.Address) *big.Int {
	out := new(big.Int)
	_ = v.read(ctx, func(context.Context) error {
		out = v.st.shares.Allowance(owner, spender)
		return nil
	})
	return out
}

// Transfer moves shares between holders.
func (v *Vault) Transfer(ctx context.Context, caller, to common.Address, amount *big.Int) error {
	return v.chain.Atomic(ctx, func(ctx context.Context) error {
		return v.transfer(ctx, caller, to, amount)
	})
}

func (v *Vault) Approve(ctx context.Context, caller, spender common.Address, amount *big.Int) error {
	return v.chain.Atomic(ctx, func(ctx context.Context) error {
		if amount == nil || amount.Sign() < 0 {
			return ErrInvalidAmount
		}
		if err := v.st.shares.Approve(caller, spender, amount); err != nil {
			return err
		}
		v.emit(ctx, EventApproval, "owner", caller, "spender", spender, "value", amount)
		return nil
	})
}

func (v *Vault) TransferFrom(ctx context.Context, caller, from, to common.Address, amount *big.Int) error {
	return v.chain.Atomic(ctx, func(ctx context.Context) error {
		if amount == nil || amount.Sign() < 0 {
			return ErrInvalidAmount
		}
		if err := v.st.shares.SpendAllowance(from, caller, amount); err != nil {
			return err
		}
		return v.transfer(ctx, from, to, amount)
	})
}

func (v *Vault) transfer(ctx context.Context, from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if err := v.st.shares.Transfer(from, to, amount); err != nil {
		return err
	}
	v.emit(ctx, EventTransfer, "from", from, "to", to, "value", amount)
	return nil
}

// Call serves the ERC20 surface of the share token to other contracts on the ledger.
func (v *Vault) Call(ctx context.Context, caller common.Address, input []byte) ([]byte, error) {
	method, args, err := ledger.DecodeCall(contractabi.ERC20, input)
	if err != nil {
		return nil, err
	}
	switch method.Name {
	case "name":
		return method.Outputs.Pack(v.name)
	case "symbol":
		return method.Outputs.Pack(v.symbol)
	case "decimals":
		return method.Outputs.Pack(v.Decimals())
	case "totalSupply":
		return method.Outputs.Pack(v.TotalSupply(ctx))
	case "balanceOf":
		return method.Outputs.Pack(v.BalanceOf(ctx, args[0].(common.Address)))
	case "allowance":
		return method.Outputs.Pack(v.Allowance(ctx, args[0].(common.Address), args[1].(common.Address)))
	case "approve":
		if err := v.Approve(ctx, caller, args[0].(common.Address), args[1].(*big.Int)); err != nil {
			return nil, err
		}
		return method.Outputs.Pack(true)
	case "transfer":
		if err := v.Transfer(ctx, caller, args[0].(common.Address), args[1].(*big.Int)); err != nil {
			return nil, err
		}
		return method.Outputs.Pack(true)
	case "transferFrom":
		if err := v.TransferFrom(ctx, caller, args[0].(common.Address), args[1].(common.Address), args[2].(*big.Int)); err != nil {
			return nil, err
		}
		return method.Outputs.Pack(true)
	}
	return nil, fmt.Errorf("%w: %s", ledger.ErrUnknownMethod, method.Name)
}
