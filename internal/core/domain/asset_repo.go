package domain

import (
	"context"
)

type AssetRepository interface {
	UpsertLayer(ctx context.Context, layer Layer) error
	// GetLayer returns nil if the layer has not been added yet.
	GetLayer(ctx context.Context, index int) (*Layer, error)
	// GetLayers returns the added layers sorted by index.
	GetLayers(ctx context.Context) ([]Layer, error)
	DeleteLayer(ctx context.Context, index int) error
	UpsertChunk(ctx context.Context, chunk Chunk) error
	// GetChunk returns nil if the chunk does not exist.
	GetChunk(ctx context.Context, layer, trait, index int) (*Chunk, error)
	// GetChunks returns the chunks of a trait sorted by index.
	GetChunks(ctx context.Context, layer, trait int) ([]Chunk, error)
	DeleteChunk(ctx context.Context, layer, trait, index int) error
	Close()
}
