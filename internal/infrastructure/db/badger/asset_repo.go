package badgerdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/indelible-labs/indelibled/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const assetStoreDir = "assets"

type chunk struct {
	Layer int
	Trait int
	Index int
	Data  []byte
}

type assetRepository struct {
	store *badgerhold.Store
}

func NewAssetRepository(config ...interface{}) (domain.AssetRepository, error) {
	store, err := openStore(assetStoreDir, config...)
	if err != nil {
		return nil, fmt.Errorf("failed to open asset store: %s", err)
	}
	return &assetRepository{store}, nil
}

func (r *assetRepository) UpsertLayer(ctx context.Context, layer domain.Layer) error {
	return withRetry(func() error {
		return r.store.Upsert(layer.Index, &layer)
	})
}

func (r *assetRepository) GetLayer(ctx context.Context, index int) (*domain.Layer, error) {
	var layer domain.Layer
	err := r.store.Get(index, &layer)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get layer %d: %w", index, err)
	}
	return &layer, nil
}

func (r *assetRepository) GetLayers(ctx context.Context) ([]domain.Layer, error) {
	var layers []domain.Layer
	if err := r.store.Find(&layers, (&badgerhold.Query{}).SortBy("Index")); err != nil {
		return nil, fmt.Errorf("failed to get layers: %w", err)
	}
	return layers, nil
}

func (r *assetRepository) DeleteLayer(ctx context.Context, index int) error {
	err := withRetry(func() error {
		return r.store.Delete(index, &domain.Layer{})
	})
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil
	}
	return err
}

func (r *assetRepository) UpsertChunk(ctx context.Context, c domain.Chunk) error {
	record := chunk(c)
	return withRetry(func() error {
		return r.store.Upsert(chunkKey(c.Layer, c.Trait, c.Index), &record)
	})
}

func (r *assetRepository) GetChunk(
	ctx context.Context, layer, trait, index int,
) (*domain.Chunk, error) {
	var record chunk
	err := r.store.Get(chunkKey(layer, trait, index), &record)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chunk: %w", err)
	}
	c := domain.Chunk(record)
	return &c, nil
}

func (r *assetRepository) GetChunks(
	ctx context.Context, layer, trait int,
) ([]domain.Chunk, error) {
	var records []chunk
	query := badgerhold.Where("Layer").Eq(layer).And("Trait").Eq(trait).SortBy("Index")
	if err := r.store.Find(&records, query); err != nil {
		return nil, fmt.Errorf("failed to get chunks: %w", err)
	}
	chunks := make([]domain.Chunk, 0, len(records))
	for _, record := range records {
		chunks = append(chunks, domain.Chunk(record))
	}
	return chunks, nil
}

func (r *assetRepository) DeleteChunk(ctx context.Context, layer, trait, index int) error {
	err := withRetry(func() error {
		return r.store.Delete(chunkKey(layer, trait, index), &chunk{})
	})
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil
	}
	return err
}

func (r *assetRepository) Close() {
	// nolint:all
	r.store.Close()
}

func chunkKey(layer, trait, index int) string {
	return fmt.Sprintf("%03d:%03d:%06d", layer, trait, index)
}
