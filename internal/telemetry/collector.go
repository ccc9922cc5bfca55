package telemetry

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/indelible-labs/indelibled/internal/core/domain"
	"github.com/indelible-labs/indelibled/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

// WatchEvents keeps the collection metrics up to date with the events
// published on bus until ctx is done.
func WatchEvents(ctx context.Context, bus ports.EventBus) error {
	events, err := bus.Subscribe(ctx, domain.CollectionTopic)
	if err != nil {
		return fmt.Errorf("failed to watch collection events: %w", err)
	}
	go func() {
		for event := range events {
			Observe(event)
		}
		log.Debug("stopped watching collection events")
	}()
	return nil
}

func Observe(event domain.Event) {
	switch e := event.(type) {
	case domain.TokensMinted:
		TokensMinted.WithLabelValues(string(e.Path)).Add(float64(e.Quantity))
	case domain.FundsWithdrawn:
		Withdrawals.Inc()
	case domain.CollectionRevealed:
		CollectionState.WithLabelValues("revealed").Set(1)
	case domain.CollectionSealed:
		CollectionState.WithLabelValues("sealed").Set(1)
	}
}

func SetVersion(version string) {
	Version.WithLabelValues(
		version, runtime.Version(), time.Now().UTC().Format(time.RFC3339),
	).Set(1)
}
