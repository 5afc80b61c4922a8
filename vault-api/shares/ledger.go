package shares

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrInsufficientShares    = errors.New("insufficient shares")
	ErrInsufficientAllowance = errors.New("insufficient share allowance")
	ErrZeroAddress           = errors.New("zero address")
)

// Ledger holds share balances, allowances and the lifetime deposit/withdraw
// counters. It is owned by a single vault and has no locking of its own.
type Ledger struct {
	supply        *big.Int
	totalDeposit  *big.Int
	totalWithdraw *big.Int
	balances      map[common.Address]*big.Int
	allowances    map[common.Address]map[common.Address]*big.Int
}

func NewLedger() *Ledger {
	return &Ledger{
		supply:        new(big.Int),
		totalDeposit:  new(big.Int),
		totalWithdraw: new(big.Int),
		balances:      make(map[common.Address]*big.Int),
		allowances:    make(map[common.Address]map[common.Address]*big.Int),
	}
}

// TotalDeposit counts every asset unit ever deposited, never decreasing.
func (l *Ledger) TotalDeposit() *big.Int {
	return new(big.Int).Set(l.totalDeposit)
}

// TotalWithdraw counts gross assets released, fees included.
func (l *Ledger) TotalWithdraw() *big.Int {
	return new(big.Int).Set(l.totalWithdraw)
}

func (l *Ledger) RecordDeposit(assets *big.Int) {
	l.totalDeposit = new(big.Int).Add(l.totalDeposit, assets)
}

func (l *Ledger) RecordWithdraw(assets *big.Int) {
	l.totalWithdraw = new(big.Int).Add(l.totalWithdraw, assets)
}

func (l *Ledger) TotalSupply() *big.Int {
	return new(big.Int).Set(l.supply)
}

func (l *Ledger) BalanceOf(owner common.Address) *big.Int {
	if b, ok := l.balances[owner]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

func (l *Ledger) Allowance(owner, spender common.Address) *big.Int {
	if m, ok := l.allowances[owner]; ok {
		if a, ok := m[spender]; ok {
			return new(big.Int).Set(a)
		}
	}
	return new(big.Int)
}

func (l *Ledger) Mint(to common.Address, amount *big.Int) error {
	if to == (common.Address{}) {
		return fmt.Errorf("mint: %w", ErrZeroAddress)
	}
	l.balances[to] = new(big.Int).Add(l.BalanceOf(to), amount)
	l.supply = new(big.Int).Add(l.supply, amount)
	return nil
}

func (l *Ledger) Burn(from common.Address, amount *big.Int) error {
	bal := l.BalanceOf(from)
	if bal.Cmp(amount) < 0 {
		return fmt.Errorf("%w: balance %s, burn %s", ErrInsufficientShares, bal, amount)
	}
	l.balances[from] = bal.Sub(bal, amount)
	l.supply = new(big.Int).Sub(l.supply, amount)
	return nil
}

func (l *Ledger) Transfer(from, to common.Address, amount *big.Int) error {
	if from == (common.Address{}) || to == (common.Address{}) {
		return fmt.Errorf("transfer: %w", ErrZeroAddress)
	}
	bal := l.BalanceOf(from)
	if bal.Cmp(amount) < 0 {
		return fmt.Errorf("%w: balance %s, transfer %s", ErrInsufficientShares, bal, amount)
	}
	l.balances[from] = bal.Sub(bal, amount)
	l.balances[to] = new(big.Int).Add(l.BalanceOf(to), amount)
	return nil
}

func (l *Ledger) Approve(owner, spender common.Address, amount *big.Int) error {
	if owner == (common.Address{}) || spender == (common.Address{}) {
		return fmt.Errorf("approve: %w", ErrZeroAddress)
	}
	m, ok := l.allowances[owner]
	if !ok {
		m = make(map[common.Address]*big.Int)
		l.allowances[owner] = m
	}
	m[spender] = new(big.Int).Set(amount)
	return nil
}

// SpendAllowance decrements a finite allowance. 2^256-1 is treated as infinite.
func (l *Ledger) SpendAllowance(owner, spender common.Address, amount *big.Int) error {
	allowed := l.Allowance(owner, spender)
	if allowed.Cmp(maxUint256) == 0 {
		return nil
	}
	if allowed.Cmp(amount) < 0 {
		return fmt.Errorf("%w: allowance %s, spend %s", ErrInsufficientAllowance, allowed, amount)
	}
	return l.Approve(owner, spender, allowed.Sub(allowed, amount))
}

// Clone deep copies the ledger.
func (l *Ledger) Clone() *Ledger {
	c := &Ledger{
		supply:        new(big.Int).Set(l.supply),
		totalDeposit:  new(big.Int).Set(l.totalDeposit),
		totalWithdraw: new(big.Int).Set(l.totalWithdraw),
		balances:      make(map[common.Address]*big.Int, len(l.balances)),
		allowances:    make(map[common.Address]map[common.Address]*big.Int, len(l.allowances)),
	}
	for k, v := range l.balances {
		c.balances[k] = new(big.Int).Set(v)
	}
	for owner, m := range l.allowances {
		cm := make(map[common.Address]*big.Int, len(m))
		for spender, v := range m {
			cm[spender] = new(big.Int).Set(v)
		}
		c.allowances[owner] = cm
	}
	return c
}

var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
