package handlers

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/indelible-labs/indelibled/internal/core/domain"
	"github.com/indelible-labs/indelibled/internal/core/ports"
	"github.com/indelible-labs/indelibled/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type EventsHandler struct {
	bus               ports.EventBus
	heartbeatInterval time.Duration
}

const defaultHeartbeatInterval = 30 * time.Second

func NewEventsHandler(bus ports.EventBus, heartbeatInterval time.Duration) *EventsHandler {
	if heartbeatInterval <= 0 {
		heartbeatInterval = defaultHeartbeatInterval
	}
	return &EventsHandler{bus, heartbeatInterval}
}

// GetEventStream streams the collection events as server-sent events until the
// client goes away.
func (h *EventsHandler) GetEventStream(c *gin.Context) {
	ctx := c.Request.Context()
	events, err := h.bus.Subscribe(ctx, domain.CollectionTopic)
	if err != nil {
		WriteError(c, errors.INTERNAL_ERROR.Wrap(err))
		return
	}

	heartbeat := time.NewTicker(h.heartbeatInterval)
	defer heartbeat.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("ready", gin.H{"topic": domain.CollectionTopic})
	c.Writer.Flush()

	log.Debug("added new events stream")
	c.Stream(func(_ io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case event, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(event.GetType().String(), event)
			return true
		case <-heartbeat.C:
			c.SSEvent("heartbeat", gin.H{"timestamp": time.Now().Unix()})
			return true
		}
	})
	log.Debug("closed events stream")
}
