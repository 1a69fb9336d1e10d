package driver

import (
	"context"
	"log/slog"
	"time"
)

const (
	DefaultTickLength = time.Second * 30
)

type Manager interface {
	Tick(context.Context) error
}

// SyncDriver ticks its managers on a fixed interval. A failed tick is
// logged and retried on the next interval rather than taking the
// worker down; autosave hiccups should not stop the world.
type SyncDriver struct {
	tickLength time.Duration
	managers   []Manager
}

func NewSyncDriver(managers []Manager, opts ...SyncDriverOpt) *SyncDriver {
	d := &SyncDriver{
		tickLength: DefaultTickLength,
		managers:   managers,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *SyncDriver) Start(ctx context.Context) error {
	ticker := time.NewTicker(d.tickLength)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			d.Tick(ctx)
		}
	}
}

func (d *SyncDriver) Tick(ctx context.Context) {
	for _, m := range d.managers {
		if err := m.Tick(ctx); err != nil {
			slog.WarnContext(ctx, "tick failed", "error", err)
		}
	}
}
