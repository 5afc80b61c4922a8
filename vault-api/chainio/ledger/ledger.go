package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mirailabs-co/partnr-defai-evm/vault-api/logger"
)

var (
	ErrAlreadyDeployed = errors.New("address already has code")
	ErrUnknownMethod   = errors.New("unknown method selector")
	ErrShortInput      = errors.New("call input shorter than a selector")
	ErrDetachedCall    = errors.New("ledger entered without the context of the running call")
)

// Contract is code living at an address. Calls run inside the ledger transaction of ctx.
// Anything a contract calls back into must receive that ctx: a fresh context
// entering the ledger while contract code runs fails with ErrDetachedCall.
type Contract interface {
	Call(ctx context.Context, caller common.Address, input []byte) ([]byte, error)
}

// ContractFunc adapts a function to Contract. The ctx it is handed carries the
// running transaction and has to be passed on to nested ledger calls.
type ContractFunc func(ctx context.Context, caller common.Address, input []byte) ([]byte, error)

func (f ContractFunc) Call(ctx context.Context, caller common.Address, input []byte) ([]byte, error) {
	return f(ctx, caller, input)
}

// Stateful state is captured before each call frame and restored when the frame fails.
type Stateful interface {
	Snapshot() any
	Restore(snapshot any)
}

type Clock interface {
	Now() uint64
}

type SystemClock struct{}

func (SystemClock) Now() uint64 { return uint64(time.Now().Unix()) }

// ManualClock is a settable clock for tests and simulations.
type ManualClock struct {
	mu  sync.Mutex
	now uint64
}

func NewManualClock(now uint64) *ManualClock {
	return &ManualClock{now: now}
}

func (c *ManualClock) Now() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Set(now uint64) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

func (c *ManualClock) Advance(seconds uint64) {
	c.mu.Lock()
	c.now += seconds
	c.mu.Unlock()
}

type txKey struct{ l *Ledger }

type txn struct {
	onCommit []func()
}

type frame struct {
	states  map[common.Address]any
	pending int
}

// Ledger is an in-process host: it owns code at addresses, runs one transaction
// at a time and reverts tracked state of any call frame that returns an error.
type Ledger struct {
	txMu sync.Mutex
	// dispatching counts contract calls in progress in the open transaction.
	dispatching atomic.Int32

	mu      sync.RWMutex
	code    map[common.Address]Contract
	tracked map[common.Address]Stateful
	order   []common.Address

	clock  Clock
	logger logger.Logger
}

type Option func(*Ledger)

func WithLogger(l logger.Logger) Option {
	return func(ledger *Ledger) { ledger.logger = l }
}

func New(clock Clock, opts ...Option) *Ledger {
	if clock == nil {
		clock = SystemClock{}
	}
	l := &Ledger{
		code:    make(map[common.Address]Contract),
		tracked: make(map[common.Address]Stateful),
		clock:   clock,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) Now() uint64 {
	return l.clock.Now()
}

// Deploy places code at addr. Stateful contracts are tracked for rollback.
func (l *Ledger) Deploy(addr common.Address, c Contract) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.code[addr]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyDeployed, addr.Hex())
	}
	l.code[addr] = c
	if s, ok := c.(Stateful); ok {
		l.track(addr, s)
	}
	return nil
}

// Track registers state that should follow transaction rollback without being callable.
func (l *Ledger) Track(addr common.Address, s Stateful) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.track(addr, s)
}

func (l *Ledger) track(addr common.Address, s Stateful) {
	if _, ok := l.tracked[addr]; !ok {
		l.order = append(l.order, addr)
	}
	l.tracked[addr] = s
}

func (l *Ledger) HasCode(addr common.Address) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.code[addr]
	return ok
}

func (l *Ledger) contract(addr common.Address) Contract {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.code[addr]
}

// InTx reports whether ctx carries a transaction of this ledger.
func (l *Ledger) InTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{l}).(*txn)
	return ok
}

// Atomic runs fn as one call frame. The outermost frame holds the ledger lock;
// a failing frame restores every tracked state to its value at frame entry.
func (l *Ledger) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx, ok := ctx.Value(txKey{l}).(*txn); ok {
		return l.runFrame(ctx, tx, fn, false)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := l.lock(); err != nil {
		return err
	}
	tx := &txn{}
	err := l.runFrame(context.WithValue(ctx, txKey{l}, tx), tx, fn, false)
	l.txMu.Unlock()

	if err != nil {
		return err
	}
	for _, hook := range tx.onCommit {
		hook()
	}
	return nil
}

// Read runs fn under the transaction lock without opening a frame.
func (l *Ledger) Read(ctx context.Context, fn func(ctx context.Context) error) error {
	if l.InTx(ctx) {
		return fn(ctx)
	}
	if err := l.lock(); err != nil {
		return err
	}
	defer l.txMu.Unlock()
	return fn(context.WithValue(ctx, txKey{l}, &txn{}))
}

// View runs fn inside a frame that is always reverted.
func (l *Ledger) View(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx, ok := ctx.Value(txKey{l}).(*txn); ok {
		return l.runFrame(ctx, tx, fn, true)
	}
	if err := l.lock(); err != nil {
		return err
	}
	defer l.txMu.Unlock()
	tx := &txn{}
	return l.runFrame(context.WithValue(ctx, txKey{l}, tx), tx, fn, true)
}

// lock takes the transaction lock. While the open transaction is running
// contract code the caller cannot be queued behind it: a contract that called
// back with a detached context would wait on itself.
func (l *Ledger) lock() error {
	if l.txMu.TryLock() {
		return nil
	}
	if l.dispatching.Load() > 0 {
		return ErrDetachedCall
	}
	l.txMu.Lock()
	return nil
}

func (l *Ledger) dispatch(ctx context.Context, c Contract, caller common.Address, input []byte) ([]byte, error) {
	l.dispatching.Add(1)
	defer l.dispatching.Add(-1)
	return c.Call(ctx, caller, input)
}

func (l *Ledger) runFrame(ctx context.Context, tx *txn, fn func(ctx context.Context) error, revert bool) error {
	f := l.snapshot(tx)
	err := fn(ctx)
	if err != nil || revert {
		l.restore(tx, f)
		if err != nil && l.logger != nil {
			l.logger.Debug("call frame reverted", logger.WithField("err", err))
		}
	}
	return err
}

// OnCommit schedules hook to run after the outermost transaction commits.
// Hooks registered inside a reverted frame are dropped.
func (l *Ledger) OnCommit(ctx context.Context, hook func()) {
	tx, ok := ctx.Value(txKey{l}).(*txn)
	if !ok {
		hook()
		return
	}
	tx.onCommit = append(tx.onCommit, hook)
}

// Call invokes the code at target. Calls to addresses without code succeed with empty output.
func (l *Ledger) Call(ctx context.Context, caller, target common.Address, input []byte) ([]byte, error) {
	c := l.contract(target)
	if c == nil {
		return nil, nil
	}
	var out []byte
	err := l.Atomic(ctx, func(ctx context.Context) error {
		var err error
		out, err = l.dispatch(ctx, c, caller, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// StaticCall invokes target and discards every state change it made.
func (l *Ledger) StaticCall(ctx context.Context, caller, target common.Address, input []byte) ([]byte, error) {
	c := l.contract(target)
	if c == nil {
		return nil, nil
	}
	var out []byte
	err := l.View(ctx, func(ctx context.Context) error {
		var err error
		out, err = l.dispatch(ctx, c, caller, input)
		return err
	})
	return out, err
}

func (l *Ledger) snapshot(tx *txn) frame {
	l.mu.RLock()
	defer l.mu.RUnlock()
	f := frame{states: make(map[common.Address]any, len(l.order)), pending: len(tx.onCommit)}
	for _, addr := range l.order {
		f.states[addr] = l.tracked[addr].Snapshot()
	}
	return f
}

func (l *Ledger) restore(tx *txn, f frame) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, addr := range l.order {
		if snap, ok := f.states[addr]; ok {
			l.tracked[addr].Restore(snap)
		}
	}
	tx.onCommit = tx.onCommit[:f.pending]
}
