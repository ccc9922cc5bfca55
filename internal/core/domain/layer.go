package domain

import (
	"fmt"

	"github.com/indelible-labs/indelibled/pkg/genart"
)

// MaxChunkSize is the max size in bytes of a single asset chunk.
const MaxChunkSize = 24_575

type Trait struct {
	Name              string
	Mimetype          string
	Weight            uint64
	Hide              bool
	UseExistingData   bool
	ExistingDataIndex int
}

type Layer struct {
	Index        int
	Name         string
	PrimeNumber  uint64
	VariantCount uint64
	Traits       []Trait
}

func (l Layer) Weights() []uint64 {
	weights := make([]uint64, 0, len(l.Traits))
	for _, t := range l.Traits {
		weights = append(weights, t.Weight)
	}
	return weights
}

// DataTraitIndex resolves the trait whose chunks hold the data of traitIndex.
func (l Layer) DataTraitIndex(traitIndex int) (int, error) {
	if traitIndex < 0 || traitIndex >= len(l.Traits) {
		return -1, fmt.Errorf("trait %d not found in layer %d", traitIndex, l.Index)
	}
	trait := l.Traits[traitIndex]
	if !trait.UseExistingData {
		return traitIndex, nil
	}
	return trait.ExistingDataIndex, nil
}

func (l Layer) Validate(maxSupply uint64) error {
	if l.Name == "" {
		return fmt.Errorf("missing name of layer %d", l.Index)
	}
	if err := genart.ValidateWeights(l.Weights(), maxSupply); err != nil {
		return err
	}
	for i, t := range l.Traits {
		if t.Name == "" {
			return fmt.Errorf("missing name of trait %d", i)
		}
		if !t.UseExistingData {
			continue
		}
		if t.ExistingDataIndex < 0 || t.ExistingDataIndex >= i {
			return fmt.Errorf(
				"trait %d reuses data of trait %d, which must precede it",
				i, t.ExistingDataIndex,
			)
		}
		if l.Traits[t.ExistingDataIndex].UseExistingData {
			return fmt.Errorf(
				"trait %d reuses data of trait %d, which holds no data of its own",
				i, t.ExistingDataIndex,
			)
		}
	}
	return nil
}

type Chunk struct {
	Layer int
	Trait int
	Index int
	Data  []byte
}

func (c Chunk) Validate() error {
	if c.Layer < 0 || c.Trait < 0 || c.Index < 0 {
		return fmt.Errorf("negative chunk coordinates")
	}
	if len(c.Data) == 0 {
		return fmt.Errorf("empty chunk")
	}
	if len(c.Data) > MaxChunkSize {
		return fmt.Errorf("chunk too big: got %d bytes, max %d", len(c.Data), MaxChunkSize)
	}
	return nil
}
