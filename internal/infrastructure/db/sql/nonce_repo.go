package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/indelible-labs/indelibled/internal/core/domain"
)

type nonceRepository struct {
	*querier
}

func NewNonceRepository(config ...interface{}) (domain.NonceRepository, error) {
	q, err := newQuerier("nonce", config...)
	if err != nil {
		return nil, err
	}
	return &nonceRepository{q}, nil
}

func (r *nonceRepository) Consume(ctx context.Context, nonce string) (bool, error) {
	res, err := r.exec(
		ctx, "INSERT INTO used_nonce (nonce) VALUES (?) ON CONFLICT (nonce) DO NOTHING", nonce,
	)
	if err != nil {
		return false, fmt.Errorf("failed to consume nonce: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to consume nonce: %w", err)
	}
	return count == 1, nil
}

func (r *nonceRepository) IsConsumed(ctx context.Context, nonce string) (bool, error) {
	var found string
	err := r.queryRow(ctx, "SELECT nonce FROM used_nonce WHERE nonce = ?", nonce).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get nonce: %w", err)
	}
	return true, nil
}

func (r *nonceRepository) Release(ctx context.Context, nonce string) error {
	if _, err := r.exec(ctx, "DELETE FROM used_nonce WHERE nonce = ?", nonce); err != nil {
		return fmt.Errorf("failed to release nonce: %w", err)
	}
	return nil
}

func (r *nonceRepository) Close() {
	// nolint:all
	r.db.Close()
}
