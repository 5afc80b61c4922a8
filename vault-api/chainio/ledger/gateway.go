package ledger

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	contractabi "github.com/mirailabs-co/partnr-defai-evm/vault-api/chainio/abi"
)

// Gateway is a bridge-style custody endpoint: callers deposit the asset and later
// release it to an arbitrary receiver. Withdrawals report failure with false instead of reverting.
type Gateway struct {
	mu       sync.Mutex
	ledger   *Ledger
	address  common.Address
	asset    common.Address
	paused   bool
	deposits map[common.Address]*big.Int
}

type gatewayState struct {
	paused   bool
	deposits map[common.Address]*big.Int
}

var (
	_ Contract = (*Gateway)(nil)
	_ Stateful = (*Gateway)(nil)
)

func NewGateway(ledger *Ledger, address, asset common.Address) *Gateway {
	return &Gateway{
		ledger:   ledger,
		address:  address,
		asset:    asset,
		deposits: make(map[common.Address]*big.Int),
	}
}

func (g *Gateway) SetPaused(paused bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.paused = paused
}

func (g *Gateway) DepositOf(account common.Address) *big.Int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return new(big.Int).Set(balanceOf(g.deposits, account))
}

func (g *Gateway) Call(ctx context.Context, caller common.Address, input []byte) ([]byte, error) {
	method, args, err := DecodeCall(contractabi.Gateway, input)
	if err != nil {
		return nil, err
	}
	switch method.Name {
	case "depositOf":
		return method.Outputs.Pack(g.DepositOf(args[0].(common.Address)))
	case "deposit":
		return nil, g.deposit(ctx, caller, args[0].(*big.Int))
	case "withdraw":
		ok, err := g.withdraw(ctx, caller, args[0].(common.Address), args[1].(*big.Int))
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(ok)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method.Name)
}

func (g *Gateway) deposit(ctx context.Context, from common.Address, amount *big.Int) error {
	input, err := contractabi.Pack(contractabi.ERC20, "transferFrom", from, g.address, amount)
	if err != nil {
		return err
	}
	if _, err := g.ledger.Call(ctx, g.address, g.asset, input); err != nil {
		return err
	}
	g.mu.Lock()
	g.deposits[from] = new(big.Int).Add(balanceOf(g.deposits, from), amount)
	g.mu.Unlock()
	return nil
}

func (g *Gateway) withdraw(ctx context.Context, owner, receiver common.Address, amount *big.Int) (bool, error) {
	g.mu.Lock()
	bal := balanceOf(g.deposits, owner)
	if g.paused || bal.Cmp(amount) < 0 {
		g.mu.Unlock()
		return false, nil
	}
	g.deposits[owner] = new(big.Int).Sub(bal, amount)
	g.mu.Unlock()

	input, err := contractabi.Pack(contractabi.ERC20, "transfer", receiver, amount)
	if err != nil {
		return false, err
	}
	if _, err := g.ledger.Call(ctx, g.address, g.asset, input); err != nil {
		return false, err
	}
	return true, nil
}

func (g *Gateway) Snapshot() any {
	g.mu.Lock()
	defer g.mu.Unlock()
	return gatewayState{paused: g.paused, deposits: cloneBalances(g.deposits)}
}

func (g *Gateway) Restore(snapshot any) {
	s := snapshot.(gatewayState)
	g.mu.Lock()
	defer g.mu.Unlock()
	g.paused = s.paused
	g.deposits = cloneBalances(s.deposits)
}
