package seed_test

import (
	"context"
	"testing"

	"github.com/indelible-labs/indelibled/internal/infrastructure/seed"
	"github.com/indelible-labs/indelibled/pkg/genart"
	"github.com/stretchr/testify/require"
)

func TestRandomSource(t *testing.T) {
	source := seed.NewRandomSource()
	seen := make(map[genart.Seed]struct{})
	for range 16 {
		s, err := source.NewSeed(context.Background())
		require.NoError(t, err)
		require.False(t, s.IsZero())
		require.NotContains(t, seen, s)
		seen[s] = struct{}{}
	}
}
