package genart

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	// DigitWidth is the number of decimal digits encoding one trait index.
	DigitWidth = 2
	// MaxTraitsPerLayer keeps every trait index within DigitWidth digits.
	MaxTraitsPerLayer = 99
	// MaxBatchMint is the max number of tokens sharing a single batch seed.
	MaxBatchMint = 20
)

var (
	ErrUnrevealed   = errors.New("collection not revealed")
	ErrMissingSeed  = errors.New("missing batch seed")
	ErrInvalidHash  = errors.New("invalid token hash")
	ErrNoMaxSupply  = errors.New("max supply must be greater than zero")
	ErrNoLayerInput = errors.New("missing layers")
)

type Seed [32]byte

func (s Seed) IsZero() bool {
	return s == Seed{}
}

func (s Seed) String() string {
	return fmt.Sprintf("%x", s[:])
}

// LayerWeights is the weight table of a layer plus the salt mixed into its
// pseudo-random draw. A zero salt means tokenId + layer index.
type LayerWeights struct {
	Salt    uint64
	Weights []uint64
}

type DeriveParams struct {
	BatchSeed    Seed
	RevealSeed   Seed
	TokenID      uint64
	StartTokenID uint64
	Layers       []LayerWeights
	MaxSupply    uint64
}

// DeriveHash computes the DNA of a token: one DigitWidth-wide trait index per
// layer, in layer order.
func DeriveHash(p DeriveParams) (string, error) {
	if p.RevealSeed.IsZero() {
		return "", ErrUnrevealed
	}
	if p.BatchSeed.IsZero() {
		return "", ErrMissingSeed
	}
	if p.MaxSupply == 0 {
		return "", ErrNoMaxSupply
	}
	if len(p.Layers) == 0 {
		return "", ErrNoLayerInput
	}

	seed := crypto.Keccak256(p.BatchSeed[:], p.RevealSeed[:])
	tokenID := uint256(p.TokenID)
	startTokenID := uint256(p.StartTokenID)
	maxSupply := new(big.Int).SetUint64(p.MaxSupply)

	var sb strings.Builder
	sb.Grow(len(p.Layers) * DigitWidth)
	for i, layer := range p.Layers {
		if len(layer.Weights) > MaxTraitsPerLayer {
			return "", fmt.Errorf(
				"layer %d has %d traits, max %d", i, len(layer.Weights), MaxTraitsPerLayer,
			)
		}
		salt := layer.Salt
		if salt == 0 {
			salt = p.TokenID + uint64(i)
		}
		digest := crypto.Keccak256(seed, tokenID, startTokenID, uint256(salt))
		r := new(big.Int).Mod(new(big.Int).SetBytes(digest), maxSupply)

		index, err := AssignTrait(r.Uint64(), layer.Weights)
		if err != nil {
			return "", fmt.Errorf("layer %d: %w", i, err)
		}
		sb.WriteString(EncodeIndex(index))
	}
	return sb.String(), nil
}

// EncodeIndex zero-pads a trait index to DigitWidth digits.
func EncodeIndex(index int) string {
	return fmt.Sprintf("%0*d", DigitWidth, index)
}

// TraitIndexAt decodes the trait index of the given layer.
func TraitIndexAt(hash string, layer int) (int, error) {
	if err := checkHash(hash, layer); err != nil {
		return -1, err
	}
	start := layer * DigitWidth
	index, err := strconv.Atoi(hash[start : start+DigitWidth])
	if err != nil {
		return -1, fmt.Errorf("%w: %s", ErrInvalidHash, err)
	}
	return index, nil
}

// TraitIndexes decodes every layer of the hash.
func TraitIndexes(hash string) ([]int, error) {
	if len(hash) == 0 || len(hash)%DigitWidth != 0 {
		return nil, fmt.Errorf("%w: length %d", ErrInvalidHash, len(hash))
	}
	indexes := make([]int, 0, len(hash)/DigitWidth)
	for layer := 0; layer < len(hash)/DigitWidth; layer++ {
		index, err := TraitIndexAt(hash, layer)
		if err != nil {
			return nil, err
		}
		indexes = append(indexes, index)
	}
	return indexes, nil
}

// SetTraitIndex returns a copy of hash with the given layer set to index.
func SetTraitIndex(hash string, layer, index int) (string, error) {
	if err := checkHash(hash, layer); err != nil {
		return "", err
	}
	if index < 0 || index > MaxTraitsPerLayer {
		return "", fmt.Errorf("%w: trait index %d out of range", ErrInvalidHash, index)
	}
	start := layer * DigitWidth
	return hash[:start] + EncodeIndex(index) + hash[start+DigitWidth:], nil
}

func checkHash(hash string, layer int) error {
	if len(hash)%DigitWidth != 0 {
		return fmt.Errorf("%w: length %d", ErrInvalidHash, len(hash))
	}
	if layer < 0 || (layer+1)*DigitWidth > len(hash) {
		return fmt.Errorf("%w: layer %d out of range", ErrInvalidHash, layer)
	}
	return nil
}

func uint256(v uint64) []byte {
	return math.U256Bytes(new(big.Int).SetUint64(v))
}
