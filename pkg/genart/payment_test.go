package genart_test

import (
	"math/big"
	"testing"

	"github.com/indelible-labs/indelibled/pkg/genart"
	"github.com/stretchr/testify/require"
)

func TestTotalPrice(t *testing.T) {
	require.Equal(t, int64(330), genart.TotalPrice(3, big.NewInt(100), big.NewInt(10)).Int64())
	require.Equal(t, int64(300), genart.TotalPrice(3, big.NewInt(100), nil).Int64())
	require.Zero(t, genart.TotalPrice(0, big.NewInt(100), big.NewInt(10)).Sign())
}

func TestInferQuantity(t *testing.T) {
	price, fee := big.NewInt(100), big.NewInt(10)

	t.Run("valid", func(t *testing.T) {
		fixtures := []struct {
			value    int64
			expected uint64
		}{
			{110, 1},
			{220, 2},
			{1100, 10},
		}
		for _, f := range fixtures {
			quantity, err := genart.InferQuantity(big.NewInt(f.value), price, fee)
			require.NoError(t, err)
			require.Equal(t, f.expected, quantity)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		fixtures := []struct {
			name     string
			value    int64
			price    *big.Int
			fee      *big.Int
			expected error
		}{
			{"zero value", 0, price, fee, genart.ErrUnderpaid},
			{"below unit price", 109, price, fee, genart.ErrUnderpaid},
			{"remainder", 111, price, fee, genart.ErrInexactPayment},
			{"price without fee", 200, price, nil, nil},
			{"free mint", 100, big.NewInt(0), big.NewInt(0), genart.ErrZeroUnitPrice},
		}
		for _, f := range fixtures {
			t.Run(f.name, func(t *testing.T) {
				_, err := genart.InferQuantity(big.NewInt(f.value), f.price, f.fee)
				if f.expected == nil {
					require.NoError(t, err)
					return
				}
				require.ErrorIs(t, err, f.expected)
			})
		}
	})
}
