// Package realtime turns row-level database notifications into change events and pushes
// them to websocket viewers.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Dosada05/chess-tournament/models"
	"github.com/lib/pq"
)

// ChangesChannel is the NOTIFY channel used by the notify_table_change() trigger.
const ChangesChannel = "table_changes"

const (
	minReconnectInterval = 2 * time.Second
	maxReconnectInterval = time.Minute
	pingInterval         = 90 * time.Second
)

// ChangeHandler is called for every row change, in notification order.
type ChangeHandler interface {
	HandleChange(ctx context.Context, event models.ChangeEvent)
}

type ChangeHandlerFunc func(ctx context.Context, event models.ChangeEvent)

func (f ChangeHandlerFunc) HandleChange(ctx context.Context, event models.ChangeEvent) {
	f(ctx, event)
}

// notificationSource is the part of *pq.Listener the Listener depends on.
type notificationSource interface {
	Listen(channel string) error
	NotificationChannel() <-chan *pq.Notification
	Ping() error
	Close() error
}

type Listener struct {
	source   notificationSource
	logger   *slog.Logger
	mu       sync.RWMutex
	handlers []ChangeHandler
}

// NewListener opens a dedicated notification connection to dsn.
func NewListener(dsn string, logger *slog.Logger) *Listener {
	pl := pq.NewListener(dsn, minReconnectInterval, maxReconnectInterval, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnected:
			logger.Info("change listener connected")
		case pq.ListenerEventDisconnected:
			logger.Warn("change listener disconnected", slog.Any("error", err))
		case pq.ListenerEventReconnected:
			logger.Info("change listener reconnected")
		case pq.ListenerEventConnectionAttemptFailed:
			logger.Error("change listener connection attempt failed", slog.Any("error", err))
		}
	})
	return newListener(pl, logger)
}

func newListener(source notificationSource, logger *slog.Logger) *Listener {
	return &Listener{source: source, logger: logger}
}

func (l *Listener) Subscribe(h ChangeHandler) {
	l.mu.Lock()
	l.handlers = append(l.handlers, h)
	l.mu.Unlock()
}

// Run listens until ctx is cancelled. A nil notification from pq means the connection was
// re-established; subscribers then get a RESYNC event because changes may have been missed.
func (l *Listener) Run(ctx context.Context) error {
	if err := l.source.Listen(ChangesChannel); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", ChangesChannel, err)
	}
	defer l.source.Close()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	notifications := l.source.NotificationChannel()
	for {
		select {
		case <-ctx.Done():
			return nil

		case n, ok := <-notifications:
			if !ok {
				return nil
			}
			if n == nil {
				l.dispatch(ctx, models.ChangeEvent{Type: models.ChangeResync})
				continue
			}
			event, err := DecodeNotification(n.Extra)
			if err != nil {
				l.logger.Warn("dropping undecodable change notification", slog.Any("error", err))
				continue
			}
			l.dispatch(ctx, event)

		case <-ticker.C:
			go func() {
				if err := l.source.Ping(); err != nil {
					l.logger.Warn("change listener ping failed", slog.Any("error", err))
				}
			}()
		}
	}
}

func (l *Listener) dispatch(ctx context.Context, event models.ChangeEvent) {
	l.mu.RLock()
	handlers := append([]ChangeHandler(nil), l.handlers...)
	l.mu.RUnlock()

	l.logger.Debug("change received", slog.String("table", event.Table), slog.String("type", string(event.Type)))
	for _, h := range handlers {
		h.HandleChange(ctx, event)
	}
}

// DecodeNotification parses a notify_table_change() payload.
func DecodeNotification(payload string) (models.ChangeEvent, error) {
	var event models.ChangeEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return models.ChangeEvent{}, fmt.Errorf("invalid change payload: %w", err)
	}
	switch event.Type {
	case models.ChangeInsert, models.ChangeUpdate, models.ChangeDelete:
	default:
		return models.ChangeEvent{}, fmt.Errorf("invalid change payload: unknown type %q", event.Type)
	}
	if event.Table == "" {
		return models.ChangeEvent{}, fmt.Errorf("invalid change payload: missing table")
	}
	return event, nil
}
