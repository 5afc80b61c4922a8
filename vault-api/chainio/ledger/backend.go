package ledger

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// Backend serves the read-only JSON-RPC calls of an ethclient from the ledger,
// so RPC readers can run against in-process contracts.
type Backend struct {
	ledger *Ledger
}

func NewBackend(l *Ledger) Backend {
	return Backend{ledger: l}
}

// CallContract ignores the block number: the ledger only has its latest state.
func (b Backend) CallContract(ctx context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if msg.To == nil {
		return nil, nil
	}
	return b.ledger.StaticCall(ctx, msg.From, *msg.To, msg.Data)
}

// CodeAt returns a one byte placeholder for deployed contracts.
func (b Backend) CodeAt(_ context.Context, account common.Address, _ *big.Int) ([]byte, error) {
	if b.ledger.HasCode(account) {
		return []byte{0x60}, nil
	}
	return nil, nil
}
