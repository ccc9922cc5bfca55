package domain

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/indelible-labs/indelibled/pkg/genart"
)

type MintPath string

const (
	MintPathPublic    MintPath = "public"
	MintPathAllowlist MintPath = "allowlist"
	MintPathSignature MintPath = "signature"
	MintPathAirdrop   MintPath = "airdrop"
	MintPathReceive   MintPath = "receive"
)

// MintBatch is a run of contiguous tokens sharing the same seed, recorded at
// its first token id.
type MintBatch struct {
	StartID   uint64
	Quantity  uint64
	Seed      genart.Seed
	Owner     common.Address
	Minter    common.Address
	Path      MintPath
	CreatedAt int64
}

func (b MintBatch) Contains(tokenID uint64) bool {
	return tokenID >= b.StartID && tokenID < b.StartID+b.Quantity
}

// SplitMint splits the mint of quantity tokens starting at startID into
// batches of at most genart.MaxBatchMint tokens.
func SplitMint(
	startID, quantity uint64, seed genart.Seed,
	owner, minter common.Address, path MintPath, createdAt int64,
) []MintBatch {
	batches := make([]MintBatch, 0, (quantity+genart.MaxBatchMint-1)/genart.MaxBatchMint)
	for minted := uint64(0); minted < quantity; minted += genart.MaxBatchMint {
		size := min(quantity-minted, genart.MaxBatchMint)
		batches = append(batches, MintBatch{
			StartID:   startID + minted,
			Quantity:  size,
			Seed:      seed,
			Owner:     owner,
			Minter:    minter,
			Path:      path,
			CreatedAt: createdAt,
		})
	}
	return batches
}
