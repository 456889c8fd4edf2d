// Package journal records notable scanner events for later inspection.
package journal

import (
	"context"
	"time"
)

// Event types used across the scanner.
const (
	TypeSignal = "signal"
	TypeOrder  = "order"
	TypeAlert  = "alert"
	TypeError  = "error"
)

// Event represents a journaled event.
type Event struct {
	Time        time.Time
	Type        string
	Description string
	Data        map[string]any
}

// Journaler persists events for later inspection.
type Journaler interface {
	LogEvent(ctx context.Context, event Event) error
	Events(ctx context.Context, eventType string, start, end time.Time) ([]Event, error)
}
