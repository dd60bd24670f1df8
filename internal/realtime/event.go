// Package realtime fans announcements out to connected websocket clients,
// either in-process or through Postgres LISTEN/NOTIFY.
package realtime

import (
	"context"
	"encoding/json"
)

const EventAnnouncementCreated = "announcement.created"

type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func NewEvent(eventType string, data interface{}) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, err
	}
	return Event{Type: eventType, Data: raw}, nil
}

// Notifier delivers an event to every listening client.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}
