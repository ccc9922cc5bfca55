package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/indelible-labs/indelibled/internal/core/domain"
)

type tokenRepository struct {
	*querier
}

func NewTokenRepository(config ...interface{}) (domain.TokenRepository, error) {
	q, err := newQuerier("token", config...)
	if err != nil {
		return nil, err
	}
	return &tokenRepository{q}, nil
}

func (r *tokenRepository) AddBatch(ctx context.Context, batch domain.MintBatch) error {
	_, err := r.exec(
		ctx,
		`INSERT INTO mint_batch (start_id, quantity, seed, owner, minter, path, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		int64(batch.StartID), int64(batch.Quantity), batch.Seed[:],
		batch.Owner.Hex(), batch.Minter.Hex(), string(batch.Path), batch.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add batch %d: %w", batch.StartID, err)
	}
	return nil
}

func (r *tokenRepository) GetBatch(
	ctx context.Context, startID uint64,
) (*domain.MintBatch, error) {
	var (
		quantity            int64
		seed                []byte
		owner, minter, path string
		createdAt           int64
	)
	err := r.queryRow(
		ctx,
		`SELECT quantity, seed, owner, minter, path, created_at FROM mint_batch
		WHERE start_id = ?`,
		int64(startID),
	).Scan(&quantity, &seed, &owner, &minter, &path, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get batch %d: %w", startID, err)
	}

	batch := &domain.MintBatch{
		StartID:   startID,
		Quantity:  uint64(quantity),
		Owner:     common.HexToAddress(owner),
		Minter:    common.HexToAddress(minter),
		Path:      domain.MintPath(path),
		CreatedAt: createdAt,
	}
	copy(batch.Seed[:], seed)
	return batch, nil
}

func (r *tokenRepository) DeleteBatch(ctx context.Context, startID uint64) error {
	if _, err := r.exec(ctx, "DELETE FROM mint_batch WHERE start_id = ?", int64(startID)); err != nil {
		return fmt.Errorf("failed to delete batch %d: %w", startID, err)
	}
	return nil
}

func (r *tokenRepository) CountMinted(
	ctx context.Context, minter common.Address, paths ...domain.MintPath,
) (uint64, error) {
	query := "SELECT COALESCE(SUM(quantity), 0) FROM mint_batch WHERE minter = ?"
	args := []any{minter.Hex()}
	if len(paths) > 0 {
		query += " AND path IN (?" + strings.Repeat(", ?", len(paths)-1) + ")"
		for _, p := range paths {
			args = append(args, string(p))
		}
	}

	var count int64
	if err := r.queryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count minted tokens: %w", err)
	}
	return uint64(count), nil
}

func (r *tokenRepository) SetRenderOffChain(
	ctx context.Context, tokenID uint64, offChain bool,
) error {
	_, err := r.exec(
		ctx,
		`INSERT INTO render_preference (token_id, off_chain) VALUES (?, ?)
		ON CONFLICT (token_id) DO UPDATE SET off_chain = excluded.off_chain`,
		int64(tokenID), offChain,
	)
	if err != nil {
		return fmt.Errorf("failed to set render preference: %w", err)
	}
	return nil
}

func (r *tokenRepository) IsRenderedOffChain(ctx context.Context, tokenID uint64) (bool, error) {
	var offChain bool
	err := r.queryRow(
		ctx, "SELECT off_chain FROM render_preference WHERE token_id = ?", int64(tokenID),
	).Scan(&offChain)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get render preference: %w", err)
	}
	return offChain, nil
}

func (r *tokenRepository) Close() {
	// nolint:all
	r.db.Close()
}
