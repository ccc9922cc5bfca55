package watermillbus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/indelible-labs/indelibled/internal/core/domain"
	"github.com/indelible-labs/indelibled/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

const outputBufferSize = 64

type eventBus struct {
	pubsub *gochannel.GoChannel
}

// NewEventBus returns an in-process event bus. Slow subscribers get events
// dropped rather than blocking the publisher once their buffer is full.
func NewEventBus() ports.EventBus {
	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer:            outputBufferSize,
		BlockPublishUntilSubscriberAck: false,
	}, newLogger())
	return &eventBus{pubsub}
}

func (b *eventBus) Publish(_ context.Context, events ...domain.Event) error {
	messages := make(map[string][]*message.Message)
	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to encode %s event: %w", event.GetType(), err)
		}
		msg := message.NewMessage(watermill.NewUUID(), payload)
		msg.Metadata.Set("type", event.GetType().String())
		messages[event.GetTopic()] = append(messages[event.GetTopic()], msg)
	}
	for topic, msgs := range messages {
		if err := b.pubsub.Publish(topic, msgs...); err != nil {
			return fmt.Errorf("failed to publish events on %s: %w", topic, err)
		}
	}
	return nil
}

func (b *eventBus) Subscribe(ctx context.Context, topic string) (<-chan domain.Event, error) {
	messages, err := b.pubsub.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	events := make(chan domain.Event, outputBufferSize)
	go func() {
		defer close(events)
		for msg := range messages {
			event, err := deserializeEvent(msg.Payload)
			msg.Ack()
			if err != nil {
				log.WithError(err).Warnf("failed to deserialize event: %s", string(msg.Payload))
				continue
			}
			select {
			case events <- event:
			default:
				log.Warnf("subscriber of %s too slow, dropping %s event", topic, event.GetType())
			}
		}
	}()
	return events, nil
}

func (b *eventBus) Close() {
	//nolint:errcheck
	b.pubsub.Close()
}

func deserializeEvent(buf []byte) (domain.Event, error) {
	var eventType struct {
		Type domain.EventType
	}

	if err := json.Unmarshal(buf, &eventType); err != nil {
		return nil, err
	}

	switch eventType.Type {
	case domain.EventTypeTokensMinted:
		var event = domain.TokensMinted{}
		if err := json.Unmarshal(buf, &event); err == nil {
			return event, nil
		}
	case domain.EventTypeFundsWithdrawn:
		var event = domain.FundsWithdrawn{}
		if err := json.Unmarshal(buf, &event); err == nil {
			return event, nil
		}
	case domain.EventTypeCollectionRevealed:
		var event = domain.CollectionRevealed{}
		if err := json.Unmarshal(buf, &event); err == nil {
			return event, nil
		}
	case domain.EventTypeCollectionSealed:
		var event = domain.CollectionSealed{}
		if err := json.Unmarshal(buf, &event); err == nil {
			return event, nil
		}
	}

	return nil, fmt.Errorf("unknown event")
}
