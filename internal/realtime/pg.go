package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Postgres rejects NOTIFY payloads of 8000 bytes or more.
const maxNotifyPayload = 7999

var ErrPayloadTooLarge = errors.New("notify payload too large")

// PGNotifier publishes events with pg_notify so every instance running a
// PGListener on the same channel receives them.
type PGNotifier struct {
	db      *gorm.DB
	channel string
}

func NewPGNotifier(db *gorm.DB, channel string) *PGNotifier {
	return &PGNotifier{db: db, channel: channel}
}

func (n *PGNotifier) Notify(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if len(payload) > maxNotifyPayload {
		return fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(payload))
	}
	return n.db.WithContext(ctx).Exec("SELECT pg_notify(?, ?)", n.channel, string(payload)).Error
}

// PGListener relays notifications from a Postgres channel into a Hub.
type PGListener struct {
	dsn     string
	channel string
	hub     *Hub
}

func NewPGListener(dsn, channel string, hub *Hub) *PGListener {
	return &PGListener{dsn: dsn, channel: channel, hub: hub}
}

// Run blocks until ctx is cancelled.
func (l *PGListener) Run(ctx context.Context) error {
	listener := pq.NewListener(l.dsn, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logrus.WithError(err).WithField("event", ev).Warn("pg listener connection event")
		}
	})
	defer listener.Close()

	if err := listener.Listen(l.channel); err != nil {
		return fmt.Errorf("listen on %s: %w", l.channel, err)
	}
	logrus.WithField("channel", l.channel).Info("Listening for announcement notifications")

	ping := time.NewTicker(90 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-listener.Notify:
			// nil after a reconnect; notifications sent meanwhile are lost.
			if n == nil {
				continue
			}
			var ev Event
			if err := json.Unmarshal([]byte(n.Extra), &ev); err != nil {
				logrus.WithError(err).Warn("pg listener: bad notification payload")
				continue
			}
			if err := l.hub.Notify(ctx, ev); err != nil {
				logrus.WithError(err).Warn("pg listener: relay failed")
			}
		case <-ping.C:
			go func() {
				if err := listener.Ping(); err != nil {
					logrus.WithError(err).Debug("pg listener ping failed")
				}
			}()
		}
	}
}
