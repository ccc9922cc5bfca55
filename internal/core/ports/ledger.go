package ports

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

var ErrInsufficientFunds = errors.New("insufficient funds")

type Transfer struct {
	From   common.Address
	To     common.Address
	Amount *big.Int
}

// Ledger holds the native value balances of every account.
type Ledger interface {
	Balance(ctx context.Context, addr common.Address) (*big.Int, error)
	// Deposit credits addr with value entering from outside the ledger.
	Deposit(ctx context.Context, addr common.Address, amount *big.Int) error
	// Settle applies all transfers or none of them. Receiving accounts may
	// run code while the transfers are applied, with the given ctx.
	Settle(ctx context.Context, transfers []Transfer) error
	Close()
}
