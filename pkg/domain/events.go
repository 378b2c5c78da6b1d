package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventCellStart   EventType = "cell_start"
	EventCellFinish  EventType = "cell_finish"
	EventCellCleared EventType = "cell_cleared"
)

// CellEvent describes a single step of a run or clear cascade.
type CellEvent struct {
	Timestamp  time.Time     `json:"timestamp"`
	Type       EventType     `json:"type"`
	NotebookID string        `json:"notebook_id"`
	CellID     string        `json:"cell_id"`
	OutputName string        `json:"output_name,omitempty"`
	Language   Language      `json:"language,omitempty"`
	Status     CellStatus    `json:"status"`
	Duration   time.Duration `json:"duration,omitempty"`
	Err        error         `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
// Any hook may be nil.
type LifecycleHooks struct {
	OnCellStart   func(context.Context, *CellEvent)
	OnCellFinish  func(context.Context, *CellEvent)
	OnCellCleared func(context.Context, *CellEvent)
}

// Merge combines hooks so that both receivers are notified, h first.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnCellStart:   chain(h.OnCellStart, other.OnCellStart),
		OnCellFinish:  chain(h.OnCellFinish, other.OnCellFinish),
		OnCellCleared: chain(h.OnCellCleared, other.OnCellCleared),
	}
}

func chain(a, b func(context.Context, *CellEvent)) func(context.Context, *CellEvent) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *CellEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
