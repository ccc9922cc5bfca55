package domain

import "context"

// NonceRepository records the nonces of consumed mint authorizations.
type NonceRepository interface {
	// Consume marks nonce as used and returns false if it already was.
	Consume(ctx context.Context, nonce string) (bool, error)
	IsConsumed(ctx context.Context, nonce string) (bool, error)
	// Release reverts a Consume of the same call.
	Release(ctx context.Context, nonce string) error
	Close()
}
