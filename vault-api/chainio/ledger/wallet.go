package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	contractabi "github.com/mirailabs-co/partnr-defai-evm/vault-api/chainio/abi"
)

var (
	ERC1271MagicValue = [4]byte{0x16, 0x26, 0xba, 0x7e}
	erc1271Rejected   = [4]byte{0xff, 0xff, 0xff, 0xff}
)

// Wallet is a contract account accepting signatures from any of its owners (ERC-1271).
type Wallet struct {
	mu     sync.RWMutex
	owners map[common.Address]struct{}
}

var _ Contract = (*Wallet)(nil)

func NewWallet(owners ...common.Address) *Wallet {
	w := &Wallet{owners: make(map[common.Address]struct{})}
	for _, owner := range owners {
		w.owners[owner] = struct{}{}
	}
	return w
}

func (w *Wallet) IsOwner(addr common.Address) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.owners[addr]
	return ok
}

func (w *Wallet) Call(_ context.Context, _ common.Address, input []byte) ([]byte, error) {
	method, args, err := DecodeCall(contractabi.ERC1271, input)
	if err != nil {
		return nil, err
	}
	if method.Name != "isValidSignature" {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method.Name)
	}
	hash := args[0].([32]byte)
	sig := args[1].([]byte)
	return method.Outputs.Pack(w.check(hash, sig))
}

func (w *Wallet) check(hash [32]byte, sig []byte) [4]byte {
	if len(sig) != 65 {
		return erc1271Rejected
	}
	recoverable := make([]byte, 65)
	copy(recoverable, sig)
	if recoverable[64] >= 27 {
		recoverable[64] -= 27
	}
	pub, err := crypto.SigToPub(hash[:], recoverable)
	if err != nil {
		return erc1271Rejected
	}
	if !w.IsOwner(crypto.PubkeyToAddress(*pub)) {
		return erc1271Rejected
	}
	return ERC1271MagicValue
}
