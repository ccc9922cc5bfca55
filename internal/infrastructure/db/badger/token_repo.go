package badgerdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/indelible-labs/indelibled/internal/core/domain"
	"github.com/indelible-labs/indelibled/pkg/genart"
	"github.com/timshannon/badgerhold/v4"
)

const tokenStoreDir = "tokens"

type mintBatch struct {
	StartID   uint64
	Quantity  uint64
	Seed      []byte
	Owner     string
	Minter    string
	Path      string
	CreatedAt int64
}

type renderPreference struct {
	TokenID  uint64
	OffChain bool
}

type tokenRepository struct {
	store *badgerhold.Store
}

func NewTokenRepository(config ...interface{}) (domain.TokenRepository, error) {
	store, err := openStore(tokenStoreDir, config...)
	if err != nil {
		return nil, fmt.Errorf("failed to open token store: %s", err)
	}
	return &tokenRepository{store}, nil
}

func (r *tokenRepository) AddBatch(ctx context.Context, batch domain.MintBatch) error {
	record := mintBatch{
		StartID:   batch.StartID,
		Quantity:  batch.Quantity,
		Seed:      batch.Seed[:],
		Owner:     batch.Owner.Hex(),
		Minter:    batch.Minter.Hex(),
		Path:      string(batch.Path),
		CreatedAt: batch.CreatedAt,
	}
	err := withRetry(func() error {
		return r.store.Insert(batch.StartID, &record)
	})
	if errors.Is(err, badgerhold.ErrKeyExists) {
		return fmt.Errorf("batch %d already exists", batch.StartID)
	}
	return err
}

func (r *tokenRepository) GetBatch(
	ctx context.Context, startID uint64,
) (*domain.MintBatch, error) {
	var record mintBatch
	err := r.store.Get(startID, &record)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get batch %d: %w", startID, err)
	}
	var seed genart.Seed
	copy(seed[:], record.Seed)
	return &domain.MintBatch{
		StartID:   record.StartID,
		Quantity:  record.Quantity,
		Seed:      seed,
		Owner:     common.HexToAddress(record.Owner),
		Minter:    common.HexToAddress(record.Minter),
		Path:      domain.MintPath(record.Path),
		CreatedAt: record.CreatedAt,
	}, nil
}

func (r *tokenRepository) DeleteBatch(ctx context.Context, startID uint64) error {
	err := withRetry(func() error {
		return r.store.Delete(startID, &mintBatch{})
	})
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil
	}
	return err
}

func (r *tokenRepository) CountMinted(
	ctx context.Context, minter common.Address, paths ...domain.MintPath,
) (uint64, error) {
	query := badgerhold.Where("Minter").Eq(minter.Hex())
	if len(paths) > 0 {
		values := make([]interface{}, 0, len(paths))
		for _, p := range paths {
			values = append(values, string(p))
		}
		query = query.And("Path").In(values...)
	}

	var records []mintBatch
	if err := r.store.Find(&records, query); err != nil {
		return 0, fmt.Errorf("failed to count minted tokens: %w", err)
	}
	var count uint64
	for _, record := range records {
		count += record.Quantity
	}
	return count, nil
}

func (r *tokenRepository) SetRenderOffChain(
	ctx context.Context, tokenID uint64, offChain bool,
) error {
	record := renderPreference{tokenID, offChain}
	return withRetry(func() error {
		return r.store.Upsert(tokenID, &record)
	})
}

func (r *tokenRepository) IsRenderedOffChain(ctx context.Context, tokenID uint64) (bool, error) {
	var record renderPreference
	err := r.store.Get(tokenID, &record)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get render preference: %w", err)
	}
	return record.OffChain, nil
}

func (r *tokenRepository) Close() {
	// nolint:all
	r.store.Close()
}
