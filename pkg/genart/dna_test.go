package genart_test

import (
	"crypto/rand"
	"testing"

	"github.com/indelible-labs/indelibled/pkg/genart"
	"github.com/stretchr/testify/require"
)

func randomSeed(t *testing.T) genart.Seed {
	var seed genart.Seed
	_, err := rand.Read(seed[:])
	require.NoError(t, err)
	return seed
}

func TestDeriveHash(t *testing.T) {
	layers := []genart.LayerWeights{
		{Weights: []uint64{50, 50}},
		{Weights: []uint64{50, 50}},
	}

	t.Run("two layers of two traits", func(t *testing.T) {
		batchSeed, revealSeed := randomSeed(t), randomSeed(t)
		for tokenID := uint64(0); tokenID < 100; tokenID++ {
			hash, err := genart.DeriveHash(genart.DeriveParams{
				BatchSeed:  batchSeed,
				RevealSeed: revealSeed,
				TokenID:    tokenID,
				Layers:     layers,
				MaxSupply:  100,
			})
			require.NoError(t, err)
			require.Len(t, hash, 4)
			require.Contains(t, []string{"00", "01"}, hash[:2])
			require.Contains(t, []string{"00", "01"}, hash[2:])
		}
	})

	t.Run("length and determinism", func(t *testing.T) {
		many := make([]genart.LayerWeights, 0, 12)
		for i := 0; i < 12; i++ {
			weights := make([]uint64, genart.MaxTraitsPerLayer)
			for j := range weights {
				weights[j] = 1
			}
			weights[0] += 1000 - genart.MaxTraitsPerLayer
			many = append(many, genart.LayerWeights{Salt: uint64(i * 7919), Weights: weights})
		}

		for i := 0; i < 20; i++ {
			params := genart.DeriveParams{
				BatchSeed:    randomSeed(t),
				RevealSeed:   randomSeed(t),
				TokenID:      uint64(i * 37),
				StartTokenID: uint64(i * 37),
				Layers:       many,
				MaxSupply:    1000,
			}
			hash, err := genart.DeriveHash(params)
			require.NoError(t, err)
			require.Len(t, hash, len(many)*genart.DigitWidth)

			again, err := genart.DeriveHash(params)
			require.NoError(t, err)
			require.Equal(t, hash, again)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		fixtures := []struct {
			name     string
			params   genart.DeriveParams
			expected error
		}{
			{
				name: "unrevealed",
				params: genart.DeriveParams{
					BatchSeed: randomSeed(t), Layers: layers, MaxSupply: 100,
				},
				expected: genart.ErrUnrevealed,
			},
			{
				name: "missing batch seed",
				params: genart.DeriveParams{
					RevealSeed: randomSeed(t), Layers: layers, MaxSupply: 100,
				},
				expected: genart.ErrMissingSeed,
			},
			{
				name: "weights not covering max supply",
				params: genart.DeriveParams{
					BatchSeed:  randomSeed(t),
					RevealSeed: randomSeed(t),
					Layers:     []genart.LayerWeights{{Weights: []uint64{0}}},
					MaxSupply:  100,
				},
				expected: genart.ErrWeightTableExhausted,
			},
		}
		for _, f := range fixtures {
			t.Run(f.name, func(t *testing.T) {
				_, err := genart.DeriveHash(f.params)
				require.ErrorIs(t, err, f.expected)
			})
		}
	})
}

func TestTraitIndexes(t *testing.T) {
	indexes, err := genart.TraitIndexes("001798")
	require.NoError(t, err)
	require.Equal(t, []int{0, 17, 98}, indexes)

	index, err := genart.TraitIndexAt("001798", 1)
	require.NoError(t, err)
	require.Equal(t, 17, index)

	hash, err := genart.SetTraitIndex("001798", 2, 5)
	require.NoError(t, err)
	require.Equal(t, "001705", hash)

	_, err = genart.TraitIndexAt("001798", 3)
	require.ErrorIs(t, err, genart.ErrInvalidHash)
	_, err = genart.TraitIndexes("00179")
	require.ErrorIs(t, err, genart.ErrInvalidHash)
	_, err = genart.TraitIndexes("00ab")
	require.ErrorIs(t, err, genart.ErrInvalidHash)
	_, err = genart.SetTraitIndex("0017", 0, 100)
	require.ErrorIs(t, err, genart.ErrInvalidHash)
}
