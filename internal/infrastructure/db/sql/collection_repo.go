package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/indelible-labs/indelibled/internal/core/domain"
)

type collectionRepository struct {
	*querier
}

func NewCollectionRepository(config ...interface{}) (domain.CollectionRepository, error) {
	q, err := newQuerier("collection", config...)
	if err != nil {
		return nil, err
	}
	return &collectionRepository{q}, nil
}

func (r *collectionRepository) Get(ctx context.Context) (*domain.Collection, error) {
	var data string
	err := r.queryRow(ctx, "SELECT data FROM collection WHERE id = 1").Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}

	var collection domain.Collection
	if err := json.Unmarshal([]byte(data), &collection); err != nil {
		return nil, fmt.Errorf("failed to decode collection: %w", err)
	}
	return &collection, nil
}

func (r *collectionRepository) Upsert(ctx context.Context, collection domain.Collection) error {
	data, err := json.Marshal(collection)
	if err != nil {
		return fmt.Errorf("failed to encode collection: %w", err)
	}
	_, err = r.exec(
		ctx,
		`INSERT INTO collection (id, data, updated_at) VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		string(data), collection.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert collection: %w", err)
	}
	return nil
}

func (r *collectionRepository) Close() {
	// nolint:all
	r.db.Close()
}
