package vault

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mirailabs-co/partnr-defai-evm/vault-api/strategy"
)

// Initialize binds the strategy and mints the genesis shares to the agent.
//
// The initial deposit is expected to be in the vault already; it is not pulled
// from anyone. Unless WithStrictInitialBalance is set the balance is not checked.
func (v *Vault) Initialize(ctx context.Context, caller common.Address, initialDeposit *big.Int, s strategy.Strategy, params strategy.Params) (*big.Int, error) {
	var minted *big.Int
	err := v.guarded(ctx, "initialize", func(ctx context.Context) error {
		st := v.st
		if v.initializer != (common.Address{}) && caller != v.initializer {
			return fmt.Errorf("%w: %s may not initialize", ErrUnauthorized, caller.Hex())
		}
		if st.initialized {
			return ErrAlreadyInitialized
		}
		if s == nil {
			return ErrNilStrategy
		}
		if params == nil || params.Kind() != s.Kind() {
			return fmt.Errorf("%w: strategy is %s", strategy.ErrParamsKind, s.Kind())
		}
		if !positive(initialDeposit) {
			return fmt.Errorf("%w: initial deposit", ErrInvalidAmount)
		}
		if v.strictInit {
			held, err := v.assetBalance(ctx, v.address)
			if err != nil {
				return err
			}
			if held.Cmp(initialDeposit) < 0 {
				return fmt.Errorf("%w: holds %s, initial deposit %s", ErrInsufficientInitBalance, held, initialDeposit)
			}
		}

		minted = v.math.Genesis(initialDeposit)
		if minted.Sign() == 0 {
			return ErrZeroShares
		}
		if err := st.shares.Mint(st.agent, minted); err != nil {
			return err
		}
		st.shares.RecordDeposit(initialDeposit)
		st.strategy = s
		st.params = params.Clone()
		st.initialized = true

		actions, err := s.InitializationActions(initialDeposit, params)
		if err != nil {
			return err
		}
		if _, err := v.runActions(ctx, actions); err != nil {
			return err
		}

		v.emit(ctx, EventTransfer, "from", common.Address{}, "to", st.agent, "value", minted)
		v.emit(ctx, EventInitialized,
			"strategy", s.Kind(),
			"initialDeposit", initialDeposit,
			"shares", minted,
			"agent", st.agent,
		)
		agent := st.agent
		deposit := new(big.Int).Set(initialDeposit)
		v.chain.OnCommit(ctx, func() {
			v.indicators.AddDeposited(v.address.Hex(), deposit, minted)
			v.logger.Debugf("genesis shares %s minted to %s", minted, agent.Hex())
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return minted, nil
}

// InitializeEncoded decodes an encoded params blob once and initializes with it.
func (v *Vault) InitializeEncoded(ctx context.Context, caller common.Address, initialDeposit *big.Int, s strategy.Strategy, blob []byte) (*big.Int, error) {
	params, err := strategy.DecodeParams(blob)
	if err != nil {
		v.reject("initialize", err)
		return nil, err
	}
	return v.Initialize(ctx, caller, initialDeposit, s, params)
}

// Deposit pulls amount from caller, mints shares to receiver and deploys the
// deposit through the strategy. Any failure rolls back the whole deposit.
func (v *Vault) Deposit(ctx context.Context, caller common.Address, amount *big.Int, receiver common.Address) (*big.Int, error) {
	var minted *big.Int
	err := v.guarded(ctx, "deposit", func(ctx context.Context) error {
		if amount == nil || amount.Sign() < 0 {
			return ErrInvalidAmount
		}
		if receiver == (common.Address{}) {
			return ErrInvalidReceiver
		}
		if err := v.requireInitialized(); err != nil {
			return err
		}
		if amount.Cmp(v.st.minDeposit) < 0 {
			return fmt.Errorf("%w: %s < %s", ErrDepositTooLow, amount, v.st.minDeposit)
		}
		if amount.Cmp(v.st.maxDeposit) > 0 {
			return fmt.Errorf("%w: %s > %s", ErrDepositTooHigh, amount, v.st.maxDeposit)
		}

		total, err := v.totalAssets(ctx)
		if err != nil {
			return err
		}
		minted = v.math.PreviewDeposit(amount, v.st.shares.TotalSupply(), total)
		if minted.Sign() == 0 {
			return ErrZeroShares
		}

		if err := v.pullAsset(ctx, caller, amount); err != nil {
			return err
		}
		if err := v.st.shares.Mint(receiver, minted); err != nil {
			return err
		}
		v.st.shares.RecordDeposit(amount)

		actions, err := v.st.strategy.DepositActions(amount, v.st.params)
		if err != nil {
			return err
		}
		if _, err := v.runActions(ctx, actions); err != nil {
			return err
		}

		v.emit(ctx, EventTransfer, "from", common.Address{}, "to", receiver, "value", minted)
		v.emit(ctx, EventDeposit,
			"sender", caller,
			"owner", receiver,
			"assets", amount,
			"shares", minted,
		)
		assets := new(big.Int).Set(amount)
		v.chain.OnCommit(ctx, func() {
			v.indicators.AddDeposited(v.address.Hex(), assets, minted)
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return minted, nil
}
