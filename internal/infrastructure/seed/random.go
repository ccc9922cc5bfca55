package seed

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/indelible-labs/indelibled/internal/core/ports"
	"github.com/indelible-labs/indelibled/pkg/genart"
)

type randomSource struct{}

// NewRandomSource returns a seed source backed by the OS CSPRNG.
func NewRandomSource() ports.SeedSource {
	return randomSource{}
}

func (randomSource) NewSeed(_ context.Context) (genart.Seed, error) {
	var seed genart.Seed
	if _, err := rand.Read(seed[:]); err != nil {
		return genart.Seed{}, fmt.Errorf("failed to draw seed: %w", err)
	}
	return seed, nil
}
