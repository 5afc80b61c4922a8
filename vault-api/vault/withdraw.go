package vault

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mirailabs-co/partnr-defai-evm/vault-api/chainio/types"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/signer"
)

const (
	flowWithdraw = "withdraw"
	flowClaim    = "claim"
	flowTakeFee  = "take_fee"
)

// burnFor burns the shares worth assets from owner at the current price.
func (v *Vault) burnFor(ctx context.Context, owner common.Address, assets *big.Int) (*big.Int, error) {
	total, err := v.totalAssets(ctx)
	if err != nil {
		return nil, err
	}
	burned := v.math.PreviewWithdraw(assets, v.st.shares.TotalSupply(), total)
	if burned.Sign() == 0 {
		return nil, ErrZeroShares
	}
	if err := v.st.shares.Burn(owner, burned); err != nil {
		return nil, err
	}
	return burned, nil
}

// Withdraw burns caller's shares worth amount and pays amount out through the
// fee waterfall. The operator must have signed {amount, receiver, fees, deadline}.
func (v *Vault) Withdraw(ctx context.Context, caller common.Address, amount *big.Int, receiver common.Address, fees []types.Fee, cred types.Credential) (*big.Int, error) {
	var residual *big.Int
	err := v.guarded(ctx, "withdraw", func(ctx context.Context) error {
		if !positive(amount) {
			return ErrInvalidAmount
		}
		if receiver == (common.Address{}) {
			return ErrInvalidReceiver
		}
		if err := v.requireInitialized(); err != nil {
			return err
		}
		msg, err := signer.NewWithdrawMessage(amount, receiver, fees)
		if err != nil {
			return err
		}
		if err := v.authorize(ctx, msg, cred, v.st.operator); err != nil {
			return err
		}
		if _, err := checkFees(amount, fees); err != nil {
			return err
		}

		burned, err := v.burnFor(ctx, caller, amount)
		if err != nil {
			return err
		}
		if err := v.release(ctx, v.address, amount); err != nil {
			return err
		}
		residual, err = v.payOut(ctx, amount, fees, receiver)
		if err != nil {
			return err
		}

		v.markSignatureUsed(cred)
		v.st.shares.RecordWithdraw(amount)

		v.emit(ctx, EventTransfer, "from", caller, "to", common.Address{}, "value", burned)
		v.emit(ctx, EventWithdraw,
			"sender", caller,
			"receiver", receiver,
			"assets", amount,
			"net", residual,
			"shares", burned,
			"signature", cred.ID(),
		)
		gross := new(big.Int).Set(amount)
		v.chain.OnCommit(ctx, func() {
			v.indicators.AddWithdrawn(v.address.Hex(), flowWithdraw, gross, burned)
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return residual, nil
}

// RequestWithdraw burns owner's shares worth assets now and records a request
// to be settled by Claim. Only the agent submits it; owner signs {requestID, deadline}.
func (v *Vault) RequestWithdraw(ctx context.Context, caller common.Address, assets *big.Int, owner common.Address, requestID types.RequestID, cred types.Credential) error {
	return v.guarded(ctx, "request_withdraw", func(ctx context.Context) error {
		st := v.st
		if caller != st.agent {
			return fmt.Errorf("%w: %s", ErrNotAgent, caller.Hex())
		}
		if !positive(assets) {
			return ErrInvalidAmount
		}
		if owner == (common.Address{}) {
			return ErrInvalidReceiver
		}
		if err := v.requireInitialized(); err != nil {
			return err
		}
		if err := v.useSignature(cred); err != nil {
			return err
		}
		if req, ok := st.requests[requestID]; ok {
			if req.Claimed {
				return fmt.Errorf("%w: %s", ErrRequestAlreadyClaimed, requestID)
			}
			return fmt.Errorf("%w: %s", ErrRequestExists, requestID)
		}
		if err := v.authorize(ctx, signer.RequestWithdrawMessage{RequestID: requestID}, cred, owner); err != nil {
			return err
		}

		burned, err := v.burnFor(ctx, owner, assets)
		if err != nil {
			return err
		}
		v.st.requests[requestID] = types.WithdrawalRequest{
			Owner:     owner,
			Assets:    new(big.Int).Set(assets),
			CreatedAt: v.chain.Now(),
		}
		v.markSignatureUsed(cred)

		v.emit(ctx, EventTransfer, "from", owner, "to", common.Address{}, "value", burned)
		v.emit(ctx, EventWithdrawRequested,
			"requestId", requestID,
			"owner", owner,
			"assets", assets,
			"shares", burned,
		)
		pending := v.pendingRequests()
		v.chain.OnCommit(ctx, func() {
			v.indicators.SetPendingRequests(v.address.Hex(), pending)
		})
		return nil
	})
}

// Claim settles a request: the strategy releases the assets to the intermediate
// wallet, the vault pulls them back and pays them out through the fee waterfall.
func (v *Vault) Claim(ctx context.Context, caller common.Address, requestID types.RequestID, receiver, intermediateWallet common.Address, fees []types.Fee, cred types.Credential) (*big.Int, error) {
	var residual *big.Int
	err := v.guarded(ctx, "claim", func(ctx context.Context) error {
		if receiver == (common.Address{}) || intermediateWallet == (common.Address{}) {
			return ErrInvalidReceiver
		}
		if err := v.requireInitialized(); err != nil {
			return err
		}
		if err := v.useSignature(cred); err != nil {
			return err
		}
		req, ok := v.st.requests[requestID]
		if !ok {
			return fmt.Errorf("%w: %s", ErrRequestNotFound, requestID)
		}
		if req.Claimed {
			return fmt.Errorf("%w: %s", ErrRequestAlreadyClaimed, requestID)
		}
		assets := req.Assets
		msg, err := signer.NewClaimMessage(requestID, receiver, intermediateWallet, assets, fees)
		if err != nil {
			return err
		}
		if err := v.authorize(ctx, msg, cred, v.st.operator); err != nil {
			return err
		}
		if _, err := checkFees(assets, fees); err != nil {
			return err
		}

		req.Claimed = true
		v.st.requests[requestID] = req

		if err := v.release(ctx, intermediateWallet, assets); err != nil {
			return err
		}
		if intermediateWallet != v.address {
			if err := v.pullAsset(ctx, intermediateWallet, assets); err != nil {
				return err
			}
		}
		residual, err = v.payOut(ctx, assets, fees, receiver)
		if err != nil {
			return err
		}
		v.markSignatureUsed(cred)
		v.st.shares.RecordWithdraw(assets)

		v.emit(ctx, EventClaimed,
			"requestId", requestID,
			"owner", req.Owner,
			"receiver", receiver,
			"intermediateWallet", intermediateWallet,
			"assets", assets,
			"net", residual,
			"signature", cred.ID(),
		)
		gross := new(big.Int).Set(assets)
		pending := v.pendingRequests()
		v.chain.OnCommit(ctx, func() {
			v.indicators.AddWithdrawn(v.address.Hex(), flowClaim, gross, nil)
			v.indicators.SetPendingRequests(v.address.Hex(), pending)
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return residual, nil
}

// TakeFee releases amount straight to receiver. Operator only; amount may not
// exceed total assets.
func (v *Vault) TakeFee(ctx context.Context, caller common.Address, amount *big.Int, receiver common.Address) error {
	return v.guarded(ctx, "take_fee", func(ctx context.Context) error {
		if err := v.requireOperator(caller); err != nil {
			return err
		}
		if !positive(amount) {
			return ErrInvalidAmount
		}
		if receiver == (common.Address{}) {
			return ErrInvalidReceiver
		}
		if err := v.requireInitialized(); err != nil {
			return err
		}
		total, err := v.totalAssets(ctx)
		if err != nil {
			return err
		}
		if amount.Cmp(total) > 0 {
			return fmt.Errorf("%w: %s > %s", ErrFeeExceedsAssets, amount, total)
		}
		if err := v.release(ctx, receiver, amount); err != nil {
			return err
		}
		v.st.shares.RecordWithdraw(amount)

		v.emit(ctx, EventFeeTaken, "feeType", flowTakeFee, "receiver", receiver, "amount", amount)
		taken := new(big.Int).Set(amount)
		v.chain.OnCommit(ctx, func() {
			v.indicators.AddWithdrawn(v.address.Hex(), flowTakeFee, taken, nil)
		})
		return nil
	})
}

func (v *Vault) pendingRequests() int {
	n := 0
	for _, req := range v.st.requests {
		if !req.Claimed {
			n++
		}
	}
	return n
}
