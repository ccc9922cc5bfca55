package badgerdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/indelible-labs/indelibled/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const nonceStoreDir = "nonces"

type usedNonce struct {
	Nonce string
}

type nonceRepository struct {
	store *badgerhold.Store
}

func NewNonceRepository(config ...interface{}) (domain.NonceRepository, error) {
	store, err := openStore(nonceStoreDir, config...)
	if err != nil {
		return nil, fmt.Errorf("failed to open nonce store: %s", err)
	}
	return &nonceRepository{store}, nil
}

func (r *nonceRepository) Consume(ctx context.Context, nonce string) (bool, error) {
	err := withRetry(func() error {
		return r.store.Insert(nonce, &usedNonce{nonce})
	})
	if errors.Is(err, badgerhold.ErrKeyExists) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to consume nonce: %w", err)
	}
	return true, nil
}

func (r *nonceRepository) IsConsumed(ctx context.Context, nonce string) (bool, error) {
	var record usedNonce
	err := r.store.Get(nonce, &record)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get nonce: %w", err)
	}
	return true, nil
}

func (r *nonceRepository) Release(ctx context.Context, nonce string) error {
	err := withRetry(func() error {
		return r.store.Delete(nonce, &usedNonce{})
	})
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil
	}
	return err
}

func (r *nonceRepository) Close() {
	// nolint:all
	r.store.Close()
}
