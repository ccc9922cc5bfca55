package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/indelible-labs/indelibled/internal/core/domain"
)

type assetRepository struct {
	*querier
}

func NewAssetRepository(config ...interface{}) (domain.AssetRepository, error) {
	q, err := newQuerier("asset", config...)
	if err != nil {
		return nil, err
	}
	return &assetRepository{q}, nil
}

func (r *assetRepository) UpsertLayer(ctx context.Context, layer domain.Layer) error {
	data, err := json.Marshal(layer)
	if err != nil {
		return fmt.Errorf("failed to encode layer: %w", err)
	}
	_, err = r.exec(
		ctx,
		`INSERT INTO layer (layer_index, data) VALUES (?, ?)
		ON CONFLICT (layer_index) DO UPDATE SET data = excluded.data`,
		layer.Index, string(data),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert layer %d: %w", layer.Index, err)
	}
	return nil
}

func (r *assetRepository) GetLayer(ctx context.Context, index int) (*domain.Layer, error) {
	var data string
	err := r.queryRow(ctx, "SELECT data FROM layer WHERE layer_index = ?", index).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get layer %d: %w", index, err)
	}
	var layer domain.Layer
	if err := json.Unmarshal([]byte(data), &layer); err != nil {
		return nil, fmt.Errorf("failed to decode layer %d: %w", index, err)
	}
	return &layer, nil
}

func (r *assetRepository) GetLayers(ctx context.Context) ([]domain.Layer, error) {
	rows, err := r.query(ctx, "SELECT data FROM layer ORDER BY layer_index")
	if err != nil {
		return nil, fmt.Errorf("failed to get layers: %w", err)
	}
	// nolint:all
	defer rows.Close()

	layers := make([]domain.Layer, 0)
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan layer: %w", err)
		}
		var layer domain.Layer
		if err := json.Unmarshal([]byte(data), &layer); err != nil {
			return nil, fmt.Errorf("failed to decode layer: %w", err)
		}
		layers = append(layers, layer)
	}
	return layers, rows.Err()
}

func (r *assetRepository) DeleteLayer(ctx context.Context, index int) error {
	if _, err := r.exec(ctx, "DELETE FROM layer WHERE layer_index = ?", index); err != nil {
		return fmt.Errorf("failed to delete layer %d: %w", index, err)
	}
	return nil
}

func (r *assetRepository) UpsertChunk(ctx context.Context, chunk domain.Chunk) error {
	_, err := r.exec(
		ctx,
		`INSERT INTO chunk (layer_index, trait_index, chunk_index, data) VALUES (?, ?, ?, ?)
		ON CONFLICT (layer_index, trait_index, chunk_index) DO UPDATE SET data = excluded.data`,
		chunk.Layer, chunk.Trait, chunk.Index, chunk.Data,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert chunk: %w", err)
	}
	return nil
}

func (r *assetRepository) GetChunk(
	ctx context.Context, layer, trait, index int,
) (*domain.Chunk, error) {
	var data []byte
	err := r.queryRow(
		ctx,
		"SELECT data FROM chunk WHERE layer_index = ? AND trait_index = ? AND chunk_index = ?",
		layer, trait, index,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chunk: %w", err)
	}
	return &domain.Chunk{Layer: layer, Trait: trait, Index: index, Data: data}, nil
}

func (r *assetRepository) GetChunks(
	ctx context.Context, layer, trait int,
) ([]domain.Chunk, error) {
	rows, err := r.query(
		ctx,
		`SELECT chunk_index, data FROM chunk WHERE layer_index = ? AND trait_index = ?
		ORDER BY chunk_index`,
		layer, trait,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get chunks: %w", err)
	}
	// nolint:all
	defer rows.Close()

	chunks := make([]domain.Chunk, 0)
	for rows.Next() {
		chunk := domain.Chunk{Layer: layer, Trait: trait}
		if err := rows.Scan(&chunk.Index, &chunk.Data); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

func (r *assetRepository) DeleteChunk(ctx context.Context, layer, trait, index int) error {
	_, err := r.exec(
		ctx,
		"DELETE FROM chunk WHERE layer_index = ? AND trait_index = ? AND chunk_index = ?",
		layer, trait, index,
	)
	if err != nil {
		return fmt.Errorf("failed to delete chunk: %w", err)
	}
	return nil
}

func (r *assetRepository) Close() {
	// nolint:all
	r.db.Close()
}
