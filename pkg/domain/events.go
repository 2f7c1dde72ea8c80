package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventAction          EventType = "action"
	EventFieldDiffed     EventType = "field_diffed"
	EventTransformFailed EventType = "transform_failed"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// ActionEvent is emitted after a selection action was reduced.
type ActionEvent struct {
	EventBase
	SessionID string           `json:"session_id"`
	Action    ActionType       `json:"action"`
	Selection CompareSelection `json:"selection"`
}

// FieldEvent is emitted for every leaf turned into a diff.
type FieldEvent struct {
	EventBase
	Field  string `json:"field"`
	Custom bool   `json:"custom,omitempty"` // rendered by the field's own differ
	Placed bool   `json:"placed,omitempty"` // protected field replaced by a placeholder
}

// TransformEvent is emitted when a transform aborts.
type TransformEvent struct {
	EventBase
	Field string `json:"field,omitempty"`
	Err   error  `json:"-"`
}

// LifecycleHooks defines callbacks for observability.
type LifecycleHooks struct {
	OnAction          func(context.Context, *ActionEvent)
	OnFieldDiffed     func(context.Context, *FieldEvent)
	OnTransformFailed func(context.Context, *TransformEvent)
}

// Merge returns hooks that call both h and other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnAction:          chain(h.OnAction, other.OnAction),
		OnFieldDiffed:     chain(h.OnFieldDiffed, other.OnFieldDiffed),
		OnTransformFailed: chain(h.OnTransformFailed, other.OnTransformFailed),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
