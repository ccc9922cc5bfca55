package domain

import "context"

type CollectionRepository interface {
	// Get returns nil if the collection has not been initialized yet.
	Get(ctx context.Context) (*Collection, error)
	Upsert(ctx context.Context, collection Collection) error
	Close()
}
