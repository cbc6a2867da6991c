// Package webhook receives Telegram updates over HTTP, authenticates them
// with a path-embedded shared secret and routes each one to a handler.
package webhook

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"funnel-bot/internal/domain"
)

// Handler consumes classified events. Implemented by bot.Handlers.
type Handler interface {
	Handle(ctx context.Context, ev domain.Event) error
}

// dedupTTL bounds how long a processed update_id is remembered. Telegram
// redelivers on timeout within well under this window.
const dedupTTL = 5 * time.Minute

// Dispatcher classifies updates and runs the matching handler exactly
// once per received update, under a bounded timeout. Handler failures
// are logged, never propagated: the HTTP layer always acknowledges, so
// redelivery is not used as a retry mechanism (see DESIGN.md).
type Dispatcher struct {
	handler Handler
	timeout time.Duration
	log     *slog.Logger

	mu   sync.Mutex
	seen map[int]time.Time
}

func NewDispatcher(handler Handler, timeout time.Duration, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		handler: handler,
		timeout: timeout,
		log:     log,
		seen:    map[int]time.Time{},
	}
}

// Dispatch handles one update. Safe for concurrent use; updates for
// different users do not block each other beyond per-user store locks.
func (d *Dispatcher) Dispatch(ctx context.Context, update tgbotapi.Update) {
	if d.duplicate(update.UpdateID) {
		d.log.Debug("duplicate update skipped", "update_id", update.UpdateID)
		return
	}
	ev, ok := Classify(&update)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	if err := d.handler.Handle(ctx, ev); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			d.log.Error("handler timed out", "kind", ev.Kind, "user", int64(ev.User))
			return
		}
		d.log.Error("handler failed", "kind", ev.Kind, "user", int64(ev.User), "err", err)
	}
}

// duplicate records the update id and reports whether it was already
// seen inside the retention window.
func (d *Dispatcher) duplicate(updateID int) bool {
	now := time.Now()
	d.mu.Lock()
	defer d.mu.Unlock()
	for id, at := range d.seen {
		if now.Sub(at) > dedupTTL {
			delete(d.seen, id)
		}
	}
	if _, ok := d.seen[updateID]; ok {
		return true
	}
	d.seen[updateID] = now
	return false
}
