package redisdb

import (
	"context"
	"fmt"
	"time"

	"github.com/indelible-labs/indelibled/internal/core/domain"
	"github.com/redis/go-redis/v9"
)

const (
	nonceKeyPrefix      = "indelibled:nonce"
	defaultNumOfRetries = 3
)

type nonceRepository struct {
	rdb          *redis.Client
	namespace    string
	numOfRetries int
	retryDelay   time.Duration
}

// NewNonceRepository expects a *redis.Client and, optionally, a namespace to
// keep apart the nonces of collections sharing the same redis instance.
func NewNonceRepository(config ...interface{}) (domain.NonceRepository, error) {
	if len(config) < 1 || len(config) > 2 {
		return nil, fmt.Errorf("invalid config: expected 1 or 2 arguments, got %d", len(config))
	}
	rdb, ok := config[0].(*redis.Client)
	if !ok {
		return nil, fmt.Errorf(
			"cannot open nonce repository: expected *redis.Client but got %T", config[0],
		)
	}
	var namespace string
	if len(config) == 2 {
		namespace, ok = config[1].(string)
		if !ok {
			return nil, fmt.Errorf("invalid namespace: expected string but got %T", config[1])
		}
	}
	return &nonceRepository{
		rdb:          rdb,
		namespace:    namespace,
		numOfRetries: defaultNumOfRetries,
		retryDelay:   10 * time.Millisecond,
	}, nil
}

func (r *nonceRepository) Consume(ctx context.Context, nonce string) (bool, error) {
	var (
		ok  bool
		err error
	)
	for range r.numOfRetries {
		if ok, err = r.rdb.SetNX(ctx, r.key(nonce), 1, 0).Result(); err == nil {
			return ok, nil
		}
		time.Sleep(r.retryDelay)
	}
	return false, fmt.Errorf("failed to consume nonce after max number of retries: %v", err)
}

func (r *nonceRepository) IsConsumed(ctx context.Context, nonce string) (bool, error) {
	count, err := r.rdb.Exists(ctx, r.key(nonce)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to get nonce: %w", err)
	}
	return count > 0, nil
}

func (r *nonceRepository) Release(ctx context.Context, nonce string) error {
	if err := r.rdb.Del(ctx, r.key(nonce)).Err(); err != nil {
		return fmt.Errorf("failed to release nonce: %w", err)
	}
	return nil
}

func (r *nonceRepository) Close() {
	// nolint:all
	r.rdb.Close()
}

func (r *nonceRepository) key(nonce string) string {
	if r.namespace == "" {
		return fmt.Sprintf("%s:%s", nonceKeyPrefix, nonce)
	}
	return fmt.Sprintf("%s:%s:%s", nonceKeyPrefix, r.namespace, nonce)
}
