package domain

import (
	"context"
	"time"
)

// HookType defines the category of a lifecycle notification.
type HookType string

const (
	HookNodeEnter HookType = "node_enter"
	HookNodeLeave HookType = "node_leave"
	HookDispatch  HookType = "dispatch"
)

// HookBase contains common fields for all lifecycle notifications.
type HookBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      HookType  `json:"type"`
	EventID   string    `json:"event_id"`
}

// NodeHook represents entry to or exit from a runtime node.
type NodeHook struct {
	HookBase
	NodeID string `json:"node_id"`
	Kind   Kind   `json:"kind"`
	Depth  int    `json:"depth"`
}

// DispatchHook is emitted once a dispatch completes, successfully or not.
type DispatchHook struct {
	HookBase
	EventKind string        `json:"event_kind"`
	Matched   int           `json:"matched"`
	Effects   int           `json:"effects"`
	Duration  time.Duration `json:"duration"`
	Err       error         `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnNodeEnter func(context.Context, *NodeHook)
	OnNodeLeave func(context.Context, *NodeHook)
	OnDispatch  func(context.Context, *DispatchHook)
}
