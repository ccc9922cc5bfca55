package ports

import (
	"context"

	"github.com/indelible-labs/indelibled/internal/core/domain"
)

// EventBus broadcasts the events of completed calls.
type EventBus interface {
	Publish(ctx context.Context, events ...domain.Event) error
	// Subscribe returns a channel of the events published from now on, closed
	// once ctx is done.
	Subscribe(ctx context.Context, topic string) (<-chan domain.Event, error)
	Close()
}
