package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	contractabi "github.com/mirailabs-co/partnr-defai-evm/vault-api/chainio/abi"
)

var (
	ErrInsufficientBalance   = errors.New("erc20: transfer amount exceeds balance")
	ErrInsufficientAllowance = errors.New("erc20: insufficient allowance")
	ErrZeroAddress           = errors.New("erc20: zero address")
)

// Token is an ERC20 with mint for fixtures.
type Token struct {
	mu          sync.Mutex
	name        string
	symbol      string
	decimals    uint8
	hasDecimals bool
	supply      *big.Int
	balances    map[common.Address]*big.Int
	allowances  map[common.Address]map[common.Address]*big.Int
}

type tokenState struct {
	supply     *big.Int
	balances   map[common.Address]*big.Int
	allowances map[common.Address]map[common.Address]*big.Int
}

var (
	_ Contract = (*Token)(nil)
	_ Stateful = (*Token)(nil)
)

func NewToken(name, symbol string, decimals uint8) *Token {
	return &Token{
		name:        name,
		symbol:      symbol,
		decimals:    decimals,
		hasDecimals: true,
		supply:      new(big.Int),
		balances:    make(map[common.Address]*big.Int),
		allowances:  make(map[common.Address]map[common.Address]*big.Int),
	}
}

// NewTokenWithoutDecimals reverts on decimals(), as some older tokens do.
func NewTokenWithoutDecimals(name, symbol string) *Token {
	t := NewToken(name, symbol, 0)
	t.hasDecimals = false
	return t
}

func (t *Token) Decimals() (uint8, bool) {
	return t.decimals, t.hasDecimals
}

func (t *Token) BalanceOf(account common.Address) *big.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return new(big.Int).Set(balanceOf(t.balances, account))
}

func (t *Token) TotalSupply() *big.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return new(big.Int).Set(t.supply)
}

func (t *Token) Allowance(owner, spender common.Address) *big.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return new(big.Int).Set(t.allowance(owner, spender))
}

func (t *Token) Mint(to common.Address, amount *big.Int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.balances[to] = new(big.Int).Add(balanceOf(t.balances, to), amount)
	t.supply = new(big.Int).Add(t.supply, amount)
}

func (t *Token) Transfer(from, to common.Address, amount *big.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.transfer(from, to, amount)
}

func (t *Token) Approve(owner, spender common.Address, amount *big.Int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.approve(owner, spender, amount)
}

func (t *Token) TransferFrom(spender, from, to common.Address, amount *big.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	allowed := t.allowance(from, spender)
	if allowed.Cmp(MaxUint256) != 0 {
		if allowed.Cmp(amount) < 0 {
			return fmt.Errorf("%w: %s < %s", ErrInsufficientAllowance, allowed, amount)
		}
		t.approve(from, spender, new(big.Int).Sub(allowed, amount))
	}
	return t.transfer(from, to, amount)
}

func (t *Token) transfer(from, to common.Address, amount *big.Int) error {
	if to == (common.Address{}) {
		return ErrZeroAddress
	}
	bal := balanceOf(t.balances, from)
	if bal.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s < %s", ErrInsufficientBalance, bal, amount)
	}
	t.balances[from] = new(big.Int).Sub(bal, amount)
	t.balances[to] = new(big.Int).Add(balanceOf(t.balances, to), amount)
	return nil
}

func (t *Token) allowance(owner, spender common.Address) *big.Int {
	if m, ok := t.allowances[owner]; ok {
		if v, ok := m[spender]; ok {
			return v
		}
	}
	return new(big.Int)
}

func (t *Token) approve(owner, spender common.Address, amount *big.Int) {
	m, ok := t.allowances[owner]
	if !ok {
		m = make(map[common.Address]*big.Int)
		t.allowances[owner] = m
	}
	m[spender] = new(big.Int).Set(amount)
}

func (t *Token) Call(_ context.Context, caller common.Address, input []byte) ([]byte, error) {
	method, args, err := DecodeCall(contractabi.ERC20, input)
	if err != nil {
		return nil, err
	}
	switch method.Name {
	case "name":
		return method.Outputs.Pack(t.name)
	case "symbol":
		return method.Outputs.Pack(t.symbol)
	case "decimals":
		if !t.hasDecimals {
			return nil, fmt.Errorf("%w: decimals", ErrUnknownMethod)
		}
		return method.Outputs.Pack(t.decimals)
	case "totalSupply":
		return method.Outputs.Pack(t.TotalSupply())
	case "balanceOf":
		return method.Outputs.Pack(t.BalanceOf(args[0].(common.Address)))
	case "allowance":
		return method.Outputs.Pack(t.Allowance(args[0].(common.Address), args[1].(common.Address)))
	case "approve":
		t.Approve(caller, args[0].(common.Address), args[1].(*big.Int))
		return method.Outputs.Pack(true)
	case "transfer":
		if err := t.Transfer(caller, args[0].(common.Address), args[1].(*big.Int)); err != nil {
			return nil, err
		}
		return method.Outputs.Pack(true)
	case "transferFrom":
		if err := t.TransferFrom(caller, args[0].(common.Address), args[1].(common.Address), args[2].(*big.Int)); err != nil {
			return nil, err
		}
		return method.Outputs.Pack(true)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method.Name)
}

func (t *Token) Snapshot() any {
	t.mu.Lock()
	defer t.mu.Unlock()
	allowances := make(map[common.Address]map[common.Address]*big.Int, len(t.allowances))
	for owner, m := range t.allowances {
		allowances[owner] = cloneBalances(m)
	}
	return tokenState{
		supply:     new(big.Int).Set(t.supply),
		balances:   cloneBalances(t.balances),
		allowances: allowances,
	}
}

func (t *Token) Restore(snapshot any) {
	s := snapshot.(tokenState)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.supply = new(big.Int).Set(s.supply)
	t.balances = cloneBalances(s.balances)
	t.allowances = make(map[common.Address]map[common.Address]*big.Int, len(s.allowances))
	for owner, m := range s.allowances {
		t.allowances[owner] = cloneBalances(m)
	}
}
