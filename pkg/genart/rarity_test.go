package genart_test

import (
	"testing"

	"github.com/indelible-labs/indelibled/pkg/genart"
	"github.com/stretchr/testify/require"
)

func TestAssignTrait(t *testing.T) {
	weights := []uint64{10, 30, 60}

	t.Run("valid", func(t *testing.T) {
		fixtures := []struct {
			r        uint64
			expected int
		}{
			{0, 0},
			{9, 0},
			{10, 1},
			{39, 1},
			{40, 2},
			{99, 2},
		}
		for _, f := range fixtures {
			index, err := genart.AssignTrait(f.r, weights)
			require.NoError(t, err)
			require.Equal(t, f.expected, index, "input %d", f.r)

			again, err := genart.AssignTrait(f.r, weights)
			require.NoError(t, err)
			require.Equal(t, index, again)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := genart.AssignTrait(100, weights)
		require.ErrorIs(t, err, genart.ErrWeightTableExhausted)

		_, err = genart.AssignTrait(0, nil)
		require.ErrorIs(t, err, genart.ErrWeightTableExhausted)
	})
}

func TestValidateWeights(t *testing.T) {
	require.NoError(t, genart.ValidateWeights([]uint64{50, 50}, 100))

	fixtures := []struct {
		name    string
		weights []uint64
	}{
		{"empty", nil},
		{"sum too low", []uint64{50, 49}},
		{"sum too high", []uint64{50, 51}},
		{"zero weight", []uint64{100, 0}},
		{"too many traits", make([]uint64, genart.MaxTraitsPerLayer+1)},
	}
	for _, f := range fixtures {
		t.Run(f.name, func(t *testing.T) {
			require.Error(t, genart.ValidateWeights(f.weights, 100))
		})
	}
}
