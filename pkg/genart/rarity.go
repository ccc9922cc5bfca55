package genart

import (
	"errors"
	"fmt"
)

var ErrWeightTableExhausted = errors.New("random input outside of weight table")

// AssignTrait returns the index i of the bucket such that
// sum(weights[:i]) <= r < sum(weights[:i+1]).
func AssignTrait(r uint64, weights []uint64) (int, error) {
	var lowerBound uint64
	for i, weight := range weights {
		if r >= lowerBound && r < lowerBound+weight {
			return i, nil
		}
		lowerBound += weight
	}
	return -1, fmt.Errorf(
		"%w: input %d, accumulated range %d", ErrWeightTableExhausted, r, lowerBound,
	)
}

// ValidateWeights checks that a layer's weights partition [0, maxSupply).
func ValidateWeights(weights []uint64, maxSupply uint64) error {
	if len(weights) == 0 {
		return fmt.Errorf("missing trait weights")
	}
	if len(weights) > MaxTraitsPerLayer {
		return fmt.Errorf(
			"too many traits: got %d, max %d", len(weights), MaxTraitsPerLayer,
		)
	}
	var sum uint64
	for i, w := range weights {
		if w == 0 {
			return fmt.Errorf("trait %d has zero weight", i)
		}
		sum += w
	}
	if sum != maxSupply {
		return fmt.Errorf("weights sum to %d, expected max supply %d", sum, maxSupply)
	}
	return nil
}
