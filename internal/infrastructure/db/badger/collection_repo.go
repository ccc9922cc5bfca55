package badgerdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/indelible-labs/indelibled/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const (
	collectionStoreDir = "collection"
	collectionKey      = "collection"
)

type collectionRepository struct {
	store *badgerhold.Store
}

func NewCollectionRepository(config ...interface{}) (domain.CollectionRepository, error) {
	store, err := openStore(collectionStoreDir, config...)
	if err != nil {
		return nil, fmt.Errorf("failed to open collection store: %s", err)
	}
	return &collectionRepository{store}, nil
}

func (r *collectionRepository) Get(ctx context.Context) (*domain.Collection, error) {
	var collection domain.Collection
	err := r.store.Get(collectionKey, &collection)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}
	return &collection, nil
}

func (r *collectionRepository) Upsert(ctx context.Context, collection domain.Collection) error {
	return withRetry(func() error {
		return r.store.Upsert(collectionKey, &collection)
	})
}

func (r *collectionRepository) Close() {
	// nolint:all
	r.store.Close()
}
