package ports

import (
	"context"

	"github.com/indelible-labs/indelibled/pkg/genart"
)

// SeedSource draws the unpredictable seeds of mint batches and reveals.
type SeedSource interface {
	NewSeed(ctx context.Context) (genart.Seed, error)
}
