package inmemoryledger

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/indelible-labs/indelibled/internal/core/ports"
)

// ReceiveHook is the code run by an account when it receives value. A
// failing hook reverts the whole settlement.
type ReceiveHook func(ctx context.Context, transfer ports.Transfer) error

type settlingKey struct{}

type Ledger struct {
	lock     *sync.RWMutex
	balances map[common.Address]*big.Int
	hooks    map[common.Address]ReceiveHook
	// settleLock serializes the writers of the ledger from the start of a
	// settlement until its hooks have returned. Nested settlements run by
	// hooks share the lock of the outermost one.
	settleLock *sync.Mutex
}

func NewLedger() *Ledger {
	return &Ledger{
		lock:       &sync.RWMutex{},
		balances:   make(map[common.Address]*big.Int),
		hooks:      make(map[common.Address]ReceiveHook),
		settleLock: &sync.Mutex{},
	}
}

// OnReceive registers the hook run whenever addr receives value through
// Settle. A nil hook removes the registered one.
func (l *Ledger) OnReceive(addr common.Address, hook ReceiveHook) {
	l.lock.Lock()
	defer l.lock.Unlock()

	if hook == nil {
		delete(l.hooks, addr)
		return
	}
	l.hooks[addr] = hook
}

func (l *Ledger) Balance(_ context.Context, addr common.Address) (*big.Int, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return new(big.Int).Set(l.balanceOf(addr)), nil
}

func (l *Ledger) Deposit(ctx context.Context, addr common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("deposit amount must be positive")
	}
	_, exit := l.enterSettlement(ctx)
	defer exit()

	l.lock.Lock()
	defer l.lock.Unlock()

	l.balances[addr] = new(big.Int).Add(l.balanceOf(addr), amount)
	return nil
}

// Settle applies the transfers and then runs the receive hooks of their
// recipients, in order. Hooks run without the ledger lock held, so they can
// read balances and settle transfers of their own. If a hook fails, every
// balance is restored to what it was before the settlement, including the
// effects of the hooks that already ran.
func (l *Ledger) Settle(ctx context.Context, transfers []ports.Transfer) error {
	for _, t := range transfers {
		if t.Amount == nil || t.Amount.Sign() < 0 {
			return fmt.Errorf("invalid transfer amount")
		}
	}

	ctx, exit := l.enterSettlement(ctx)
	defer exit()

	snapshot := l.snapshot()
	hooks, err := l.apply(transfers)
	if err != nil {
		return err
	}

	for i, t := range transfers {
		hook := hooks[i]
		if hook == nil {
			continue
		}
		if err := hook(ctx, t); err != nil {
			l.restore(snapshot)
			return fmt.Errorf("receiver %s rejected transfer: %w", t.To.Hex(), err)
		}
	}
	return nil
}

func (l *Ledger) Close() {}

func (l *Ledger) apply(transfers []ports.Transfer) ([]ReceiveHook, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	updated := make(map[common.Address]*big.Int)
	get := func(addr common.Address) *big.Int {
		if b, ok := updated[addr]; ok {
			return b
		}
		return l.balanceOf(addr)
	}

	hooks := make([]ReceiveHook, len(transfers))
	for i, t := range transfers {
		from := get(t.From)
		if from.Cmp(t.Amount) < 0 {
			return nil, fmt.Errorf(
				"%w: %s has %s, needs %s",
				ports.ErrInsufficientFunds, t.From.Hex(), from, t.Amount,
			)
		}
		updated[t.From] = new(big.Int).Sub(from, t.Amount)
		updated[t.To] = new(big.Int).Add(get(t.To), t.Amount)
		hooks[i] = l.hooks[t.To]
	}

	for addr, balance := range updated {
		l.balances[addr] = balance
	}
	return hooks, nil
}

func (l *Ledger) enterSettlement(ctx context.Context) (context.Context, func()) {
	if ctx.Value(settlingKey{}) != nil {
		return ctx, func() {}
	}
	l.settleLock.Lock()
	return context.WithValue(ctx, settlingKey{}, struct{}{}), l.settleLock.Unlock
}

func (l *Ledger) snapshot() map[common.Address]*big.Int {
	l.lock.RLock()
	defer l.lock.RUnlock()

	balances := make(map[common.Address]*big.Int, len(l.balances))
	for addr, balance := range l.balances {
		balances[addr] = balance
	}
	return balances
}

func (l *Ledger) restore(balances map[common.Address]*big.Int) {
	l.lock.Lock()
	defer l.lock.Unlock()

	l.balances = balances
}

func (l *Ledger) balanceOf(addr common.Address) *big.Int {
	if b, ok := l.balances[addr]; ok {
		return b
	}
	return big.NewInt(0)
}
