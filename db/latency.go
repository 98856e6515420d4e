// ABOUTME: Simulated I/O latency for store operations
// ABOUTME: Injected so tests run with no delay and runtime keeps the original pacing
package db

import (
	"context"
	"time"
)

// Op names a store operation for latency purposes.
type Op string

const (
	OpList        Op = "list"
	OpGet         Op = "get"
	OpQuery       Op = "query"
	OpSearch      Op = "search"
	OpRecent      Op = "recent"
	OpCreate      Op = "create"
	OpUpdate      Op = "update"
	OpUpdateStage Op = "update_stage"
	OpDelete      Op = "delete"
	OpMetrics     Op = "metrics"
	OpReorder     Op = "reorder"
	OpByStage     Op = "by_stage"

	// Stage definitions are lighter than the other collections and have
	// their own timings.
	OpStageList   Op = "stage_list"
	OpStageGet    Op = "stage_get"
	OpStageCreate Op = "stage_create"
	OpStageUpdate Op = "stage_update"
	OpStageDelete Op = "stage_delete"
)

// Latency suspends the caller before an operation runs.
type Latency interface {
	Wait(ctx context.Context, op Op) error
}

type noLatency struct{}

func (noLatency) Wait(ctx context.Context, _ Op) error {
	return ctx.Err()
}

// NoLatency completes every wait immediately.
var NoLatency Latency = noLatency{}

// FixedLatency sleeps a constant duration per operation. Operations missing
// from the map do not wait.
type FixedLatency map[Op]time.Duration

// OriginalLatency returns the delays the hosted CRM used for each operation.
func OriginalLatency() FixedLatency {
	return FixedLatency{
		OpList:        300 * time.Millisecond,
		OpGet:         200 * time.Millisecond,
		OpQuery:       250 * time.Millisecond,
		OpSearch:      200 * time.Millisecond,
		OpRecent:      200 * time.Millisecond,
		OpCreate:      400 * time.Millisecond,
		OpUpdate:      350 * time.Millisecond,
		OpUpdateStage: 250 * time.Millisecond,
		OpDelete:      250 * time.Millisecond,
		OpMetrics:     300 * time.Millisecond,
		OpReorder:     300 * time.Millisecond,
		OpByStage:     200 * time.Millisecond,
		OpStageList:   200 * time.Millisecond,
		OpStageGet:    150 * time.Millisecond,
		OpStageCreate: 300 * time.Millisecond,
		OpStageUpdate: 250 * time.Millisecond,
		OpStageDelete: 200 * time.Millisecond,
	}
}

// Scaled returns a copy with every delay multiplied by factor.
func (f FixedLatency) Scaled(factor float64) FixedLatency {
	out := make(FixedLatency, len(f))
	for op, d := range f {
		out[op] = time.Duration(float64(d) * factor)
	}
	return out
}

func (f FixedLatency) Wait(ctx context.Context, op Op) error {
	d := f[op]
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
