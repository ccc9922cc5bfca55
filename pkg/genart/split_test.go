package genart_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/indelible-labs/indelibled/pkg/genart"
	"github.com/stretchr/testify/require"
)

func sumPayouts(payouts []genart.Payout) *big.Int {
	sum := new(big.Int)
	for _, p := range payouts {
		sum.Add(sum, p.Amount)
	}
	return sum
}

func TestSplitRevenue(t *testing.T) {
	owner := randomAddress(t)
	a, b := randomAddress(t), randomAddress(t)

	t.Run("40 and 20 percent", func(t *testing.T) {
		balance, _ := new(big.Int).SetString("150000000000000000", 10)
		payouts, err := genart.SplitRevenue(balance, []genart.Share{
			{Address: a, Bps: 4000},
			{Address: b, Bps: 2000},
		}, owner)
		require.NoError(t, err)
		require.Len(t, payouts, 3)
		require.Equal(t, a, payouts[0].Address)
		require.Equal(t, "60000000000000000", payouts[0].Amount.String())
		require.Equal(t, b, payouts[1].Address)
		require.Equal(t, "30000000000000000", payouts[1].Amount.String())
		require.Equal(t, owner, payouts[2].Address)
		require.Equal(t, "60000000000000000", payouts[2].Amount.String())
		require.Zero(t, balance.Cmp(sumPayouts(payouts)))
	})

	t.Run("rounding dust goes to owner", func(t *testing.T) {
		balance := big.NewInt(10_001)
		payouts, err := genart.SplitRevenue(balance, []genart.Share{
			{Address: a, Bps: 3333},
			{Address: b, Bps: 3333},
		}, owner)
		require.NoError(t, err)
		require.Len(t, payouts, 3)
		require.Equal(t, int64(3333), payouts[0].Amount.Int64())
		require.Equal(t, int64(3333), payouts[1].Amount.Int64())
		require.Equal(t, int64(3335), payouts[2].Amount.Int64())
		require.Zero(t, balance.Cmp(sumPayouts(payouts)))
	})

	t.Run("zero balance", func(t *testing.T) {
		payouts, err := genart.SplitRevenue(big.NewInt(0), []genart.Share{
			{Address: a, Bps: 5000},
		}, owner)
		require.NoError(t, err)
		require.Empty(t, payouts)
	})

	t.Run("all to recipients", func(t *testing.T) {
		payouts, err := genart.SplitRevenue(big.NewInt(100), []genart.Share{
			{Address: a, Bps: 5000},
			{Address: b, Bps: 5000},
		}, owner)
		require.NoError(t, err)
		require.Len(t, payouts, 2)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := genart.SplitRevenue(big.NewInt(100), []genart.Share{
			{Address: a, Bps: 6000},
			{Address: b, Bps: 5000},
		}, owner)
		require.Error(t, err)

		_, err = genart.SplitRevenue(big.NewInt(-1), nil, owner)
		require.Error(t, err)
	})
}

func TestValidateShares(t *testing.T) {
	shares := []genart.Share{{Address: randomAddress(t), Bps: 9000}}
	require.NoError(t, genart.ValidateShares(shares, 1000))
	require.Error(t, genart.ValidateShares(shares, 1001))
	require.Error(t, genart.ValidateShares([]genart.Share{{Address: common.Address{}, Bps: 1}}, 0))
	require.Error(t, genart.ValidateShares([]genart.Share{{Address: randomAddress(t)}}, 0))
}
