package vault

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/mirailabs-co/partnr-defai-evm/vault-api/chainio/ledger"
)

var (
	ErrVaultExists = errors.New("vault already registered")
	ErrNameTaken   = errors.New("vault name already taken")
)

// Registry creates vaults on a ledger and answers membership for the oracle.
type Registry struct {
	mu      sync.RWMutex
	address common.Address
	chain   *ledger.Ledger
	nonce   uint64
	vaults  map[common.Address]*Vault
	names   map[string]common.Address
	order   []common.Address
}

func NewRegistry(address common.Address, chain *ledger.Ledger) *Registry {
	return &Registry{
		address: address,
		chain:   chain,
		vaults:  make(map[common.Address]*Vault),
		names:   make(map[string]common.Address),
	}
}

// Create deploys a vault at the next address derived from the registry and its nonce.
// cfg.Address is ignored.
func (r *Registry) Create(ctx context.Context, cfg Config, opts ...Option) (*Vault, error) {
	r.mu.Lock()
	if _, taken := r.names[cfg.Name]; taken && cfg.Name != "" {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %q", ErrNameTaken, cfg.Name)
	}
	cfg.Address = crypto.CreateAddress(r.address, r.nonce)
	r.nonce++
	r.mu.Unlock()

	// New reads the asset through the ledger, so it runs without holding mu.
	v, err := New(ctx, r.chain, cfg, opts...)
	if err != nil {
		return nil, err
	}
	if err := r.Register(v); err != nil {
		return nil, err
	}
	return v, nil
}

// Register adds a vault created elsewhere.
func (r *Registry) Register(v *Vault) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.vaults[v.address]; ok {
		return fmt.Errorf("%w: %s", ErrVaultExists, v.address.Hex())
	}
	if v.name != "" {
		if _, taken := r.names[v.name]; taken {
			return fmt.Errorf("%w: %q", ErrNameTaken, v.name)
		}
	}
	r.add(v)
	return nil
}

func (r *Registry) add(v *Vault) {
	r.vaults[v.address] = v
	if v.name != "" {
		r.names[v.name] = v.address
	}
	r.order = append(r.order, v.address)
}

func (r *Registry) ExistedVault(addr common.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.vaults[addr]
	return ok
}

func (r *Registry) Get(addr common.Address) (*Vault, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.vaults[addr]
	return v, ok
}

// Vaults lists addresses in creation order.
func (r *Registry) Vaults() []common.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]common.Address(nil), r.order...)
}
