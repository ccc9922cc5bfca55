package domain

import (
	"testing"

	"github.com/indelible-labs/indelibled/pkg/genart"
	"github.com/stretchr/testify/require"
)

func TestSplitMint(t *testing.T) {
	seed := genart.Seed{1}
	tests := []struct {
		startID  uint64
		quantity uint64
		expected []uint64
	}{
		{0, 1, []uint64{0}},
		{5, 20, []uint64{5}},
		{5, 21, []uint64{5, 25}},
		{0, 45, []uint64{0, 20, 40}},
	}
	for _, tt := range tests {
		batches := SplitMint(
			tt.startID, tt.quantity, seed, testOwner, testOwner, MintPathPublic, 0,
		)
		require.Len(t, batches, len(tt.expected))

		var total uint64
		for i, b := range batches {
			require.Equal(t, tt.expected[i], b.StartID)
			require.LessOrEqual(t, b.Quantity, uint64(genart.MaxBatchMint))
			require.Equal(t, seed, b.Seed)
			total += b.Quantity
		}
		require.Equal(t, tt.quantity, total)
		last := batches[len(batches)-1]
		require.True(t, last.Contains(tt.startID+tt.quantity-1))
		require.False(t, last.Contains(tt.startID+tt.quantity))
	}
}
