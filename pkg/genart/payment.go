package genart

import (
	"errors"
	"math/big"
)

var (
	ErrZeroUnitPrice  = errors.New("unit price is zero")
	ErrUnderpaid      = errors.New("value does not cover a single token")
	ErrInexactPayment = errors.New("value is not a multiple of the unit price")
)

// TotalPrice is quantity*price + quantity*fee.
func TotalPrice(quantity uint64, price, fee *big.Int) *big.Int {
	return new(big.Int).Mul(new(big.Int).SetUint64(quantity), UnitPrice(price, fee))
}

func UnitPrice(price, fee *big.Int) *big.Int {
	unit := new(big.Int)
	if price != nil {
		unit.Add(unit, price)
	}
	if fee != nil {
		unit.Add(unit, fee)
	}
	return unit
}

// InferQuantity returns the number of tokens a bare transfer of value buys.
// The transfer must pay for at least one token and divide exactly.
func InferQuantity(value, price, fee *big.Int) (uint64, error) {
	unit := UnitPrice(price, fee)
	if unit.Sign() == 0 {
		return 0, ErrZeroUnitPrice
	}
	quantity, rest := new(big.Int).QuoRem(value, unit, new(big.Int))
	if quantity.Sign() <= 0 {
		return 0, ErrUnderpaid
	}
	if rest.Sign() != 0 {
		return 0, ErrInexactPayment
	}
	if !quantity.IsUint64() {
		return 0, ErrInexactPayment
	}
	return quantity.Uint64(), nil
}
