package genart

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// BpsDenominator is 100% expressed in basis points.
const BpsDenominator = 10_000

type Share struct {
	Address common.Address
	Bps     uint64
}

type Payout struct {
	Address common.Address
	Amount  *big.Int
}

// ValidateShares checks that shares plus the reserved basis points fit in 100%.
func ValidateShares(shares []Share, reservedBps uint64) error {
	total := reservedBps
	for i, s := range shares {
		if s.Bps == 0 {
			return fmt.Errorf("share %d has zero basis points", i)
		}
		if s.Address == (common.Address{}) {
			return fmt.Errorf("share %d has empty address", i)
		}
		total += s.Bps
	}
	if total > BpsDenominator {
		return fmt.Errorf("shares add up to %d bps, max %d", total, BpsDenominator)
	}
	return nil
}

// SplitRevenue pays balance*bps/10000 to each share in order and whatever is
// left to remainder. Payouts always add up to balance.
func SplitRevenue(
	balance *big.Int, shares []Share, remainder common.Address,
) ([]Payout, error) {
	if balance.Sign() < 0 {
		return nil, fmt.Errorf("negative balance %s", balance)
	}
	if err := ValidateShares(shares, 0); err != nil {
		return nil, err
	}

	payouts := make([]Payout, 0, len(shares)+1)
	left := new(big.Int).Set(balance)
	denominator := big.NewInt(BpsDenominator)
	for _, s := range shares {
		amount := new(big.Int).Mul(balance, new(big.Int).SetUint64(s.Bps))
		amount.Quo(amount, denominator)
		if amount.Sign() == 0 {
			continue
		}
		left.Sub(left, amount)
		payouts = append(payouts, Payout{s.Address, amount})
	}
	if left.Sign() > 0 {
		payouts = append(payouts, Payout{remainder, left})
	}
	return payouts, nil
}
