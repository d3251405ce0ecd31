package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/homelink/pkg/device"
)

const heartbeatInterval = 30 * time.Second

// EventsHandler streams device state changes
type EventsHandler struct {
	subscriber device.EventSubscriber
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(subscriber device.EventSubscriber) *EventsHandler {
	return &EventsHandler{subscriber: subscriber}
}

// Events handles GET /events (SSE stream)
// @Summary      Subscribe to state events
// @Description  Server-Sent Events stream with one "state" event per applied command
// @Tags         events
// @Produce      text/event-stream
// @Success      200  {string}  string  "SSE event stream"
// @Router       /events [get]
func (h *EventsHandler) Events(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	eventChan := h.subscriber.Subscribe()
	defer h.subscriber.Unsubscribe(eventChan)

	if err := writeEvent(c.Writer, "connected", map[string]any{
		"timestamp": time.Now(),
		"message":   "Connected to state event stream",
	}); err != nil {
		log.Debug().Err(err).Msg("Event stream closed before connect")
		return
	}

	clientGone := c.Request.Context().Done()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		var err error
		select {
		case <-clientGone:
			return

		case event, ok := <-eventChan:
			if !ok {
				return
			}
			err = writeEvent(c.Writer, "state", event)

		case <-ticker.C:
			err = writeEvent(c.Writer, "heartbeat", map[string]any{
				"timestamp": time.Now(),
			})
		}
		if err != nil {
			log.Debug().Err(err).Msg("Event stream closed")
			return
		}
	}
}

// writeEvent writes one SSE event and flushes it to the client. It fails when
// data cannot be encoded or the connection is gone.
func writeEvent(w gin.ResponseWriter, eventType string, data any) error {
	if err := sendSSEEvent(w, eventType, data); err != nil {
		return err
	}
	w.Flush()
	return nil
}

// sendSSEEvent writes an SSE event to w.
func sendSSEEvent(w io.Writer, eventType string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", eventType, err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, jsonData)
	return err
}
