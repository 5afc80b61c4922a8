package vault

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mirailabs-co/partnr-defai-evm/vault-api/chainio/types"
)

// checkFees validates the waterfall over amount and returns the residual.
// Each fee must be positive, have a receiver and stay below what remains.
func checkFees(amount *big.Int, fees []types.Fee) (*big.Int, error) {
	remaining := new(big.Int).Set(amount)
	for i, fee := range fees {
		if !positive(fee.Amount) {
			return nil, &FeeError{Index: i, Err: ErrInvalidFee}
		}
		if fee.Receiver == (common.Address{}) {
			return nil, &FeeError{Index: i, Err: ErrInvalidFeeReceiver}
		}
		if fee.Amount.Cmp(remaining) >= 0 {
			return nil, &FeeError{Index: i, Err: ErrFeeExceedsRemaining}
		}
		remaining.Sub(remaining, fee.Amount)
	}
	return remaining, nil
}

// payOut runs the fee waterfall from the vault's balance and sends the residual to receiver.
func (v *Vault) payOut(ctx context.Context, amount *big.Int, fees []types.Fee, receiver common.Address) (*big.Int, error) {
	residual, err := checkFees(amount, fees)
	if err != nil {
		return nil, err
	}
	for _, fee := range fees {
		if err := v.sendAsset(ctx, fee.Receiver, fee.Amount); err != nil {
			return nil, err
		}
		v.emit(ctx, EventFeeTaken, "feeType", fee.FeeType, "receiver", fee.Receiver, "amount", fee.Amount)
	}
	if err := v.sendAsset(ctx, receiver, residual); err != nil {
		return nil, err
	}

	paid := make([]types.Fee, len(fees))
	for i, fee := range fees {
		paid[i] = types.Fee{FeeType: fee.FeeType, Amount: new(big.Int).Set(fee.Amount), Receiver: fee.Receiver}
	}
	v.chain.OnCommit(ctx, func() {
		for _, fee := range paid {
			v.indicators.AddFee(v.address.Hex(), fee.FeeType.String(), fee.Amount)
		}
	})
	return residual, nil
}
