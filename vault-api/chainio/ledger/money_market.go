package ledger

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	contractabi "github.com/mirailabs-co/partnr-defai-evm/vault-api/chainio/abi"
)

// Compound style error codes returned by mint and redeemUnderlying.
const (
	MarketNoError               = 0
	MarketPaused                = 1
	MarketInsufficientBalance   = 9
	MarketInsufficientLiquidity = 14
)

var expScale = big.NewInt(1e18)

// MoneyMarket is a cToken style market over one underlying token with a stored exchange rate.
type MoneyMarket struct {
	mu           sync.Mutex
	ledger       *Ledger
	address      common.Address
	underlying   common.Address
	exchangeRate *big.Int
	paused       bool
	balances     map[common.Address]*big.Int
}

type moneyMarketState struct {
	exchangeRate *big.Int
	paused       bool
	balances     map[common.Address]*big.Int
}

var (
	_ Contract = (*MoneyMarket)(nil)
	_ Stateful = (*MoneyMarket)(nil)
)

// NewMoneyMarket starts at an exchange rate of one underlying unit per market token.
func NewMoneyMarket(ledger *Ledger, address, underlying common.Address) *MoneyMarket {
	return &MoneyMarket{
		ledger:       ledger,
		address:      address,
		underlying:   underlying,
		exchangeRate: new(big.Int).Set(expScale),
		balances:     make(map[common.Address]*big.Int),
	}
}

// SetExchangeRate sets underlying per market token, scaled by 1e18.
func (m *MoneyMarket) SetExchangeRate(rate *big.Int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exchangeRate = new(big.Int).Set(rate)
}

func (m *MoneyMarket) SetPaused(paused bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = paused
}

func (m *MoneyMarket) BalanceOf(owner common.Address) *big.Int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return new(big.Int).Set(balanceOf(m.balances, owner))
}

func (m *MoneyMarket) ExchangeRate() *big.Int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return new(big.Int).Set(m.exchangeRate)
}

func (m *MoneyMarket) Call(ctx context.Context, caller common.Address, input []byte) ([]byte, error) {
	method, args, err := DecodeCall(contractabi.MoneyMarket, input)
	if err != nil {
		return nil, err
	}
	switch method.Name {
	case "underlying":
		return method.Outputs.Pack(m.underlying)
	case "balanceOf":
		return method.Outputs.Pack(m.BalanceOf(args[0].(common.Address)))
	case "exchangeRateStored":
		return method.Outputs.Pack(m.ExchangeRate())
	case "mint":
		code, err := m.mint(ctx, caller, args[0].(*big.Int))
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(big.NewInt(code))
	case "redeemUnderlying":
		code, err := m.redeemUnderlying(ctx, caller, args[0].(*big.Int))
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(big.NewInt(code))
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method.Name)
}

func (m *MoneyMarket) mint(ctx context.Context, minter common.Address, amount *big.Int) (int64, error) {
	m.mu.Lock()
	paused, rate := m.paused, new(big.Int).Set(m.exchangeRate)
	m.mu.Unlock()
	if paused {
		return MarketPaused, nil
	}

	input, err := contractabi.Pack(contractabi.ERC20, "transferFrom", minter, m.address, amount)
	if err != nil {
		return 0, err
	}
	if _, err := m.ledger.Call(ctx, m.address, m.underlying, input); err != nil {
		return 0, err
	}

	minted := new(big.Int).Mul(amount, expScale)
	minted.Quo(minted, rate)

	m.mu.Lock()
	m.balances[minter] = new(big.Int).Add(balanceOf(m.balances, minter), minted)
	m.mu.Unlock()
	return MarketNoError, nil
}

func (m *MoneyMarket) redeemUnderlying(ctx context.Context, redeemer common.Address, amount *big.Int) (int64, error) {
	m.mu.Lock()
	if m.paused {
		m.mu.Unlock()
		return MarketPaused, nil
	}
	// market tokens to burn, rounded up against the redeemer
	burn := new(big.Int).Mul(amount, expScale)
	burn.Add(burn, new(big.Int).Sub(m.exchangeRate, big.NewInt(1)))
	burn.Quo(burn, m.exchangeRate)
	bal := balanceOf(m.balances, redeemer)
	if bal.Cmp(burn) < 0 {
		m.mu.Unlock()
		return MarketInsufficientBalance, nil
	}
	m.balances[redeemer] = new(big.Int).Sub(bal, burn)
	m.mu.Unlock()

	input, err := contractabi.Pack(contractabi.ERC20, "transfer", redeemer, amount)
	if err != nil {
		return 0, err
	}
	if _, err := m.ledger.Call(ctx, m.address, m.underlying, input); err != nil {
		m.mu.Lock()
		m.balances[redeemer] = new(big.Int).Add(balanceOf(m.balances, redeemer), burn)
		m.mu.Unlock()
		return MarketInsufficientLiquidity, nil
	}
	return MarketNoError, nil
}

func (m *MoneyMarket) Snapshot() any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return moneyMarketState{
		exchangeRate: new(big.Int).Set(m.exchangeRate),
		paused:       m.paused,
		balances:     cloneBalances(m.balances),
	}
}

func (m *MoneyMarket) Restore(snapshot any) {
	s := snapshot.(moneyMarketState)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exchangeRate = new(big.Int).Set(s.exchangeRate)
	m.paused = s.paused
	m.balances = cloneBalances(s.balances)
}
