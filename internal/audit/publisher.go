// Package audit records authorization decisions without storing raw CPFs.
package audit

import (
	"context"
	"log/slog"
	"time"
)

// Publisher accepts audit events. Emit must not block on slow sinks.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// prepare fills defaults shared by all publishers.
func prepare(event Event) Event {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.Category == "" {
		event.Category = event.Action.Category()
	}
	return event
}

// LogPublisher writes events to a structured logger.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Emit(ctx context.Context, event Event) error {
	event = prepare(event)
	p.logger.InfoContext(ctx, "audit event",
		"category", string(event.Category),
		"action", string(event.Action),
		"timestamp", event.Timestamp,
		"strategy", event.Strategy,
		"state", event.State,
		"decision", event.Decision,
		"reason", event.Reason,
		"customer", event.Customer,
		"subject_id_hash", event.SubjectIDHash,
		"request_id", event.RequestID,
		"client_ip", event.ClientIP,
		"device_name", event.DeviceName,
	)
	return nil
}

// NopPublisher discards events.
type NopPublisher struct{}

func (NopPublisher) Emit(context.Context, Event) error { return nil }
