package genart

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// AllowlistLeaf is keccak256(abi.encodePacked(address)).
func AllowlistLeaf(addr common.Address) common.Hash {
	return crypto.Keccak256Hash(addr.Bytes())
}

// QuotaLeaf is keccak256(abi.encodePacked(address, uint256 quota)).
func QuotaLeaf(addr common.Address, quota uint64) common.Hash {
	return crypto.Keccak256Hash(addr.Bytes(), uint256(quota))
}

// VerifyProof checks a proof built with sorted pairs against root.
func VerifyProof(proof []common.Hash, root, leaf common.Hash) bool {
	computed := leaf
	for _, sibling := range proof {
		computed = hashPair(computed, sibling)
	}
	return computed == root
}

func hashPair(a, b common.Hash) common.Hash {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return crypto.Keccak256Hash(a[:], b[:])
}

// MerkleTree is an allowlist tree with sorted leaves and sorted pairs. An odd
// node at the end of a level is promoted unchanged.
type MerkleTree struct {
	levels [][]common.Hash
}

func NewMerkleTree(leaves []common.Hash) (*MerkleTree, error) {
	if len(leaves) == 0 {
		return nil, fmt.Errorf("missing leaves")
	}
	sorted := make([]common.Hash, len(leaves))
	copy(sorted, leaves)
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i][:], sorted[j][:]) < 0
	})

	levels := [][]common.Hash{sorted}
	current := sorted
	for len(current) > 1 {
		next := make([]common.Hash, 0, (len(current)+1)/2)
		for i := 0; i+1 < len(current); i += 2 {
			next = append(next, hashPair(current[i], current[i+1]))
		}
		if len(current)%2 == 1 {
			next = append(next, current[len(current)-1])
		}
		levels = append(levels, next)
		current = next
	}
	return &MerkleTree{levels}, nil
}

func (t *MerkleTree) Root() common.Hash {
	return t.levels[len(t.levels)-1][0]
}

// Proof returns the sibling path of leaf, bottom-up.
func (t *MerkleTree) Proof(leaf common.Hash) ([]common.Hash, error) {
	index := -1
	for i, l := range t.levels[0] {
		if l == leaf {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, fmt.Errorf("leaf %s not in tree", leaf.Hex())
	}

	proof := make([]common.Hash, 0, len(t.levels))
	for _, level := range t.levels[:len(t.levels)-1] {
		sibling := index ^ 1
		if sibling < len(level) {
			proof = append(proof, level[sibling])
		}
		index /= 2
	}
	return proof, nil
}
