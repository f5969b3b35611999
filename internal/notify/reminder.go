package notify

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"
)

// DefaultRate is the reminder send rate per second.
const DefaultRate = 5

// Summary counts the outcome of a reminder run.
type Summary struct {
	Recipients int
	Sent       int
	Failed     int
}

// Dispatcher fans a message out to many handles at a bounded rate.
type Dispatcher struct {
	notifier Notifier
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// NewDispatcher returns a Dispatcher sending at most perSecond messages a
// second. perSecond <= 0 uses DefaultRate.
func NewDispatcher(n Notifier, perSecond float64, logger *slog.Logger) *Dispatcher {
	if perSecond <= 0 {
		perSecond = DefaultRate
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		notifier: n,
		limiter:  rate.NewLimiter(rate.Limit(perSecond), 1),
		logger:   logger,
	}
}

// UniqueHandles returns the non-blank handles in first-seen order.
func UniqueHandles(handles []string) []string {
	seen := make(map[string]bool, len(handles))
	var out []string
	for _, h := range handles {
		h = strings.TrimSpace(h)
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	return out
}

// Send delivers message once to each unique handle. Delivery failures are
// logged and counted; they never stop the run. Only context cancellation
// ends it early.
func (d *Dispatcher) Send(ctx context.Context, handles []string, message string) Summary {
	recipients := UniqueHandles(handles)
	s := Summary{Recipients: len(recipients)}
	for _, h := range recipients {
		if err := d.limiter.Wait(ctx); err != nil {
			d.logger.Warn("reminder run stopped", "component", "notify", "sent", s.Sent, "error", err)
			break
		}
		if err := d.notifier.Notify(ctx, h, message); err != nil {
			s.Failed++
			d.logger.Warn("reminder failed", "component", "notify", "handle", h, "error", err)
			continue
		}
		s.Sent++
	}
	d.logger.Info("reminders dispatched", "component", "notify", "recipients", s.Recipients, "sent", s.Sent, "failed", s.Failed)
	return s
}
