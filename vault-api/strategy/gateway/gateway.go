package gateway

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	contractabi "github.com/mirailabs-co/partnr-defai-evm/vault-api/chainio/abi"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/chainio/types"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/strategy"
)

// ValueSource is an off-chain valuation registry, usually the value oracle.
type ValueSource interface {
	IsAssociatedVault(vault common.Address) bool
	Value(vault common.Address, params []byte) (*big.Int, error)
}

// Strategy bridges the vault asset through a gateway that cannot report the
// position's value itself. Valuation prefers a registered ValueSource and falls
// back to vault balance plus lifetime deposits minus lifetime withdrawals.
type Strategy struct {
	chain  strategy.Chain
	source ValueSource
}

var (
	_ strategy.Strategy = (*Strategy)(nil)
	_ strategy.Composer = (*Strategy)(nil)
)

type Option func(*Strategy)

func WithValueSource(source ValueSource) Option {
	return func(s *Strategy) { s.source = source }
}

func New(chain strategy.Chain, opts ...Option) *Strategy {
	s := &Strategy{chain: chain}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Strategy) Kind() strategy.Kind { return strategy.KindGateway }

func params(p strategy.Params) (strategy.GatewayParams, error) {
	gp, ok := p.(strategy.GatewayParams)
	if !ok {
		return strategy.GatewayParams{}, fmt.Errorf("%w: want %s", strategy.ErrParamsKind, strategy.KindGateway)
	}
	return gp, nil
}

func (s *Strategy) InitializationActions(initialDeposit *big.Int, p strategy.Params) ([]types.Execution, error) {
	gp, err := params(p)
	if err != nil {
		return nil, err
	}
	approve, err := strategy.ApproveMax(gp.Asset, gp.Gateway)
	if err != nil {
		return nil, err
	}
	deposit, err := depositActions(initialDeposit, gp)
	if err != nil {
		return nil, err
	}
	return append([]types.Execution{approve}, deposit...), nil
}

func (s *Strategy) DepositActions(amount *big.Int, p strategy.Params) ([]types.Execution, error) {
	gp, err := params(p)
	if err != nil {
		return nil, err
	}
	return depositActions(amount, gp)
}

func depositActions(amount *big.Int, gp strategy.GatewayParams) ([]types.Execution, error) {
	deployed, err := strategy.DeployedAmount(amount, gp.ReserveBps)
	if err != nil {
		return nil, err
	}
	if deployed.Sign() == 0 {
		return nil, nil
	}
	deposit, err := strategy.NewExecution(gp.Gateway, contractabi.Gateway, "deposit", deployed)
	if err != nil {
		return nil, err
	}
	return []types.Execution{deposit}, nil
}

// ComposeParams copies the vault's lifetime totals into the params.
func (s *Strategy) ComposeParams(_ context.Context, state strategy.VaultState, base strategy.Params) (strategy.Params, error) {
	gp, err := params(base)
	if err != nil {
		return nil, err
	}
	gp.TotalDeposit = new(big.Int).Set(state.TotalDeposit)
	gp.TotalWithdraw = new(big.Int).Set(state.TotalWithdraw)
	return gp, nil
}

func (s *Strategy) Value(ctx context.Context, vault common.Address, p strategy.Params) (*big.Int, error) {
	gp, err := params(p)
	if err != nil {
		return nil, err
	}
	if s.source != nil && s.source.IsAssociatedVault(vault) {
		encoded, err := gp.Encode()
		if err != nil {
			return nil, err
		}
		reported, err := s.source.Value(vault, encoded)
		if err != nil {
			return nil, fmt.Errorf("reported value: %w", err)
		}
		if reported.Sign() > 0 {
			return reported, nil
		}
	}
	return s.fallbackValue(ctx, vault, gp)
}

func (s *Strategy) fallbackValue(ctx context.Context, vault common.Address, gp strategy.GatewayParams) (*big.Int, error) {
	input, err := contractabi.Pack(contractabi.ERC20, "balanceOf", vault)
	if err != nil {
		return nil, err
	}
	out, err := s.chain.StaticCall(ctx, vault, gp.Asset, input)
	if err != nil {
		return nil, fmt.Errorf("asset balanceOf: %w", err)
	}
	values, err := contractabi.Unpack(contractabi.ERC20, "balanceOf", out)
	if err != nil {
		return nil, err
	}
	value := new(big.Int).Set(values[0].(*big.Int))
	if gp.TotalDeposit != nil {
		value.Add(value, gp.TotalDeposit)
	}
	if gp.TotalWithdraw != nil {
		value.Sub(value, gp.TotalWithdraw)
	}
	if value.Sign() < 0 {
		return nil, fmt.Errorf("%w: %s", strategy.ErrValueUnderflow, value)
	}
	return value, nil
}

// Withdraw asks the gateway to release amount of the vault's deposit straight to receiver.
func (s *Strategy) Withdraw(ctx context.Context, custody strategy.Custody, receiver common.Address, amount *big.Int, p strategy.Params) error {
	gp, err := params(p)
	if err != nil {
		return err
	}
	input, err := contractabi.Pack(contractabi.Gateway, "withdraw", receiver, amount)
	if err != nil {
		return err
	}
	out, err := custody.Call(ctx, gp.Gateway, input)
	if err != nil {
		return fmt.Errorf("%w: gateway withdraw: %w", strategy.ErrWithdrawFailed, err)
	}
	values, err := contractabi.Unpack(contractabi.Gateway, "withdraw", out)
	if err != nil {
		return fmt.Errorf("%w: %w", strategy.ErrWithdrawFailed, err)
	}
	if ok := values[0].(bool); !ok {
		return fmt.Errorf("%w: gateway refused %s to %s", strategy.ErrWithdrawFailed, amount, receiver.Hex())
	}
	return nil
}
