package replication

import (
	"time"

	"github.com/pixil98/go-worldsync/internal/metrics"
)

type ManagerOpt func(*Manager)

// WithInitSyncDelay sets how long loaded entities wait before
// broadcasting their full synced state.
func WithInitSyncDelay(d time.Duration) ManagerOpt {
	return func(m *Manager) {
		m.delay = d
	}
}

// WithRecorder sets the metrics recorder for all replication traffic.
func WithRecorder(rec metrics.Recorder) ManagerOpt {
	return func(m *Manager) {
		m.rec = rec
	}
}
