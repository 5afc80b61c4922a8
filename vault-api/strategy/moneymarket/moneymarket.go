package moneymarket

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	contractabi "github.com/mirailabs-co/partnr-defai-evm/vault-api/chainio/abi"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/chainio/types"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/strategy"
)

var expScale = big.NewInt(1e18)

// Strategy deploys the vault asset into a cToken style market and values the
// position at the market's stored exchange rate.
type Strategy struct {
	chain strategy.Chain
}

var _ strategy.Strategy = (*Strategy)(nil)

func New(chain strategy.Chain) *Strategy {
	return &Strategy{chain: chain}
}

func (s *Strategy) Kind() strategy.Kind { return strategy.KindMoneyMarket }

func params(p strategy.Params) (strategy.MoneyMarketParams, error) {
	mp, ok := p.(strategy.MoneyMarketParams)
	if !ok {
		return strategy.MoneyMarketParams{}, fmt.Errorf("%w: want %s", strategy.ErrParamsKind, strategy.KindMoneyMarket)
	}
	return mp, nil
}

func (s *Strategy) InitializationActions(initialDeposit *big.Int, p strategy.Params) ([]types.Execution, error) {
	mp, err := params(p)
	if err != nil {
		return nil, err
	}
	approve, err := strategy.ApproveMax(mp.Asset, mp.Market)
	if err != nil {
		return nil, err
	}
	mint, err := s.mintActions(initialDeposit, mp)
	if err != nil {
		return nil, err
	}
	return append([]types.Execution{approve}, mint...), nil
}

func (s *Strategy) DepositActions(amount *big.Int, p strategy.Params) ([]types.Execution, error) {
	mp, err := params(p)
	if err != nil {
		return nil, err
	}
	return s.mintActions(amount, mp)
}

func (s *Strategy) mintActions(amount *big.Int, mp strategy.MoneyMarketParams) ([]types.Execution, error) {
	deployed, err := strategy.DeployedAmount(amount, mp.ReserveBps)
	if err != nil {
		return nil, err
	}
	if deployed.Sign() == 0 {
		return nil, nil
	}
	mint, err := strategy.NewExecution(mp.Market, contractabi.MoneyMarket, "mint", deployed)
	if err != nil {
		return nil, err
	}
	return []types.Execution{mint}, nil
}

// Value is balanceOf(vault) * exchangeRateStored / 1e18.
func (s *Strategy) Value(ctx context.Context, vault common.Address, p strategy.Params) (*big.Int, error) {
	mp, err := params(p)
	if err != nil {
		return nil, err
	}
	balance, err := s.read(ctx, vault, mp.Market, "balanceOf", vault)
	if err != nil {
		return nil, err
	}
	rate, err := s.read(ctx, vault, mp.Market, "exchangeRateStored")
	if err != nil {
		return nil, err
	}
	value := new(big.Int).Mul(balance, rate)
	return value.Quo(value, expScale), nil
}

func (s *Strategy) read(ctx context.Context, caller, market common.Address, method string, args ...interface{}) (*big.Int, error) {
	input, err := contractabi.Pack(contractabi.MoneyMarket, method, args...)
	if err != nil {
		return nil, err
	}
	out, err := s.chain.StaticCall(ctx, caller, market, input)
	if err != nil {
		return nil, fmt.Errorf("market %s: %w", method, err)
	}
	values, err := contractabi.Unpack(contractabi.MoneyMarket, method, out)
	if err != nil {
		return nil, err
	}
	return values[0].(*big.Int), nil
}

// Withdraw redeems amount of underlying into the vault and forwards it when receiver is elsewhere.
func (s *Strategy) Withdraw(ctx context.Context, custody strategy.Custody, receiver common.Address, amount *big.Int, p strategy.Params) error {
	mp, err := params(p)
	if err != nil {
		return err
	}
	input, err := contractabi.Pack(contractabi.MoneyMarket, "redeemUnderlying", amount)
	if err != nil {
		return err
	}
	out, err := custody.Call(ctx, mp.Market, input)
	if err != nil {
		return fmt.Errorf("%w: redeemUnderlying: %w", strategy.ErrWithdrawFailed, err)
	}
	values, err := contractabi.Unpack(contractabi.MoneyMarket, "redeemUnderlying", out)
	if err != nil {
		return fmt.Errorf("%w: %w", strategy.ErrWithdrawFailed, err)
	}
	if code := values[0].(*big.Int); code.Sign() != 0 {
		return fmt.Errorf("%w: market error code %s", strategy.ErrWithdrawFailed, code)
	}
	if receiver == custody.Vault() {
		return nil
	}
	transfer, err := contractabi.Pack(contractabi.ERC20, "transfer", receiver, amount)
	if err != nil {
		return err
	}
	out, err = custody.Call(ctx, mp.Asset, transfer)
	if err != nil {
		return fmt.Errorf("%w: forward to %s: %w", strategy.ErrWithdrawFailed, receiver.Hex(), err)
	}
	// tokens that return nothing on transfer are taken at their word
	if len(out) == 0 {
		return nil
	}
	values, err = contractabi.Unpack(contractabi.ERC20, "transfer", out)
	if err != nil {
		return fmt.Errorf("%w: forward to %s: %w", strategy.ErrWithdrawFailed, receiver.Hex(), err)
	}
	if ok, _ := values[0].(bool); !ok {
		return fmt.Errorf("%w: forward to %s: transfer returned false", strategy.ErrWithdrawFailed, receiver.Hex())
	}
	return nil
}
