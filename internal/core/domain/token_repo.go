package domain

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

type TokenRepository interface {
	AddBatch(ctx context.Context, batch MintBatch) error
	// GetBatch returns nil if no batch starts at startID.
	GetBatch(ctx context.Context, startID uint64) (*MintBatch, error)
	DeleteBatch(ctx context.Context, startID uint64) error
	// CountMinted sums the quantities of the batches minted by minter through
	// any of the given paths, or through every path if none is given.
	CountMinted(ctx context.Context, minter common.Address, paths ...MintPath) (uint64, error)
	SetRenderOffChain(ctx context.Context, tokenID uint64, offChain bool) error
	IsRenderedOffChain(ctx context.Context, tokenID uint64) (bool, error)
	Close()
}
