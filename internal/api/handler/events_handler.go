package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/civicreporter/civic-reporter-api/internal/core/domain"
	"github.com/civicreporter/civic-reporter-api/internal/infrastructure/realtime"
)

const heartbeatInterval = 25 * time.Second

// EventStream is the subscription surface the handler needs from the hub.
type EventStream interface {
	Subscribe(topics ...string) *realtime.Subscription
	Unsubscribe(sub *realtime.Subscription)
}

// EventsHandler streams report mutation events to clients over SSE.
type EventsHandler struct {
	stream EventStream
}

func NewEventsHandler(stream EventStream) *EventsHandler {
	return &EventsHandler{stream: stream}
}

// Subscribe handles GET /api/v1/events. The connection stays open until the
// client disconnects; events published before the subscription began are not
// replayed.
//
// @Summary      Subscribe to report events (SSE)
// @Tags         events
// @Produce      text/event-stream
// @Param        topics  query  string  false  "Comma-separated topic list (default: reports)"
// @Success      200  "event stream"
// @Router       /api/v1/events [get]
func (h *EventsHandler) Subscribe(c echo.Context) error {
	topics := parseTopics(c.QueryParam("topics"))

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	sub := h.stream.Subscribe(topics...)
	defer h.stream.Unsubscribe(sub)

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-heartbeat.C:
			if _, err := fmt.Fprint(res, ": ping\n\n"); err != nil {
				return nil
			}
			res.Flush()
		case event, ok := <-sub.C:
			if !ok {
				return nil
			}
			payload, err := json.Marshal(event)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(res, "event: %s\ndata: %s\n\n", event.Type, payload); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}

func parseTopics(raw string) []string {
	var topics []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			topics = append(topics, t)
		}
	}
	if len(topics) == 0 {
		topics = []string{domain.TopicReports}
	}
	return topics
}
