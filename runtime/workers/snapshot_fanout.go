package workers

import (
	"context"
	"log/slog"
)

// ChangeSource is the store-side surface the fanout worker drains: a
// coalescing change signal plus a full-state re-delivery to every live query.
type ChangeSource interface {
	Changes() <-chan struct{}
	Broadcast()
}

// SnapshotFanout drains the store's change notifications and re-delivers
// the full ordered result set to every live subscription.
//
// All deliveries run on this single goroutine, so subscribers observe
// snapshots strictly in store order: each change is processed to completion
// before the next one is picked up. SnapshotFanout is not a message broker;
// it gives no durability or retry guarantees beyond what the store holds.
type SnapshotFanout struct {
	Log    *slog.Logger
	source ChangeSource
}

func NewSnapshotFanout(log *slog.Logger, source ChangeSource) *SnapshotFanout {
	return &SnapshotFanout{Log: log, source: source}
}

func (w *SnapshotFanout) Run(ctx context.Context) error {
	for {
		select {
		case <-w.source.Changes():
			w.source.Broadcast()
		case <-ctx.Done():
			w.Log.Debug("Context done, stopping snapshot fanout")
			return nil
		}
	}
}
