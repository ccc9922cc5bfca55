package badgerledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/ethereum/go-ethereum/common"
	"github.com/indelible-labs/indelibled/internal/core/ports"
	"github.com/timshannon/badgerhold/v4"
)

const (
	ledgerDir  = "ledger"
	maxRetries = 5
)

type account struct {
	Address string
	Balance string
}

type ledger struct {
	store *badgerhold.Store
}

// NewLedger opens the ledger in baseDir, or in memory if baseDir is empty.
// Its accounts run no code on receive.
func NewLedger(baseDir string, logger badger.Logger) (ports.Ledger, error) {
	var dir string
	if len(baseDir) > 0 {
		dir = filepath.Join(baseDir, ledgerDir)
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = logger
	if len(dir) <= 0 {
		opts.InMemory = true
	}

	store, err := badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger store: %s", err)
	}
	return &ledger{store}, nil
}

func (l *ledger) Balance(_ context.Context, addr common.Address) (*big.Int, error) {
	var balance *big.Int
	err := l.store.Badger().View(func(tx *badger.Txn) error {
		var err error
		balance, err = l.getBalance(tx, addr)
		return err
	})
	if err != nil {
		return nil, err
	}
	return balance, nil
}

func (l *ledger) Deposit(_ context.Context, addr common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("deposit amount must be positive")
	}
	return l.update(func(tx *badger.Txn) error {
		balance, err := l.getBalance(tx, addr)
		if err != nil {
			return err
		}
		return l.setBalance(tx, addr, balance.Add(balance, amount))
	})
}

func (l *ledger) Settle(_ context.Context, transfers []ports.Transfer) error {
	for _, t := range transfers {
		if t.Amount == nil || t.Amount.Sign() < 0 {
			return fmt.Errorf("invalid transfer amount")
		}
	}

	return l.update(func(tx *badger.Txn) error {
		for _, t := range transfers {
			from, err := l.getBalance(tx, t.From)
			if err != nil {
				return err
			}
			if from.Cmp(t.Amount) < 0 {
				return fmt.Errorf(
					"%w: %s has %s, needs %s",
					ports.ErrInsufficientFunds, t.From.Hex(), from, t.Amount,
				)
			}
			if err := l.setBalance(tx, t.From, from.Sub(from, t.Amount)); err != nil {
				return err
			}

			to, err := l.getBalance(tx, t.To)
			if err != nil {
				return err
			}
			if err := l.setBalance(tx, t.To, to.Add(to, t.Amount)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (l *ledger) Close() {
	// nolint:all
	l.store.Close()
}

// update runs fn in a read-write transaction, retrying on conflicts.
func (l *ledger) update(fn func(tx *badger.Txn) error) error {
	err := l.store.Badger().Update(fn)
	for attempts := 1; errors.Is(err, badger.ErrConflict) && attempts <= maxRetries; attempts++ {
		time.Sleep(100 * time.Millisecond)
		err = l.store.Badger().Update(fn)
	}
	return err
}

func (l *ledger) getBalance(tx *badger.Txn, addr common.Address) (*big.Int, error) {
	var acc account
	err := l.store.TxGet(tx, addr.Hex(), &acc)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return big.NewInt(0), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get balance of %s: %w", addr.Hex(), err)
	}
	balance, ok := new(big.Int).SetString(acc.Balance, 10)
	if !ok {
		return nil, fmt.Errorf("invalid balance stored for %s", addr.Hex())
	}
	return balance, nil
}

func (l *ledger) setBalance(tx *badger.Txn, addr common.Address, balance *big.Int) error {
	return l.store.TxUpsert(tx, addr.Hex(), &account{addr.Hex(), balance.String()})
}
