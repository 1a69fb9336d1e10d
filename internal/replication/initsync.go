package replication

import (
	"log/slog"
	"time"

	"github.com/pixil98/go-worldsync/internal/metrics"
)

// DefaultInitSyncDelay is how long a freshly loaded authoritative
// entity waits before broadcasting its full synced state. The delay
// gives late-attaching replicas a window to come up before the
// snapshot goes out.
const DefaultInitSyncDelay = 100 * time.Millisecond

// Scheduler fires the one-shot deferred snapshot broadcast after a
// load. Arm is called at most once per load by the persistence
// adapter.
type Scheduler struct {
	desc  *Descriptor
	pub   Publisher
	rec   metrics.Recorder
	delay time.Duration
}

func NewScheduler(desc *Descriptor, pub Publisher, rec metrics.Recorder, delay time.Duration) *Scheduler {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	if delay <= 0 {
		delay = DefaultInitSyncDelay
	}
	return &Scheduler{
		desc:  desc,
		pub:   pub,
		rec:   rec,
		delay: delay,
	}
}

// Arm schedules one snapshot broadcast of the entity's synced fields,
// taken at fire time, to every replica. The timer is not cancelled if
// the entity is destroyed first; a stale id is absorbed by the
// receiving listener's drop path.
func (s *Scheduler) Arm(id uint32, st *State) {
	go func() {
		time.Sleep(s.delay)

		m := &Message{
			EntityId: id,
			Target:   ToAllReplicas,
			Fields:   st.Snapshot(s.desc.Synced),
		}

		data, err := m.Marshal()
		if err != nil {
			slog.Warn("marshalling init-sync snapshot", "type", s.desc.Name, "error", err)
			return
		}

		if err := s.pub.Publish(s.desc.Topic(RoleInitSync), data); err != nil {
			slog.Warn("publishing init-sync snapshot", "type", s.desc.Name, "error", err)
			return
		}

		s.rec.InitSyncFired(s.desc.Name)
		s.rec.MessagePublished(s.desc.Name, string(RoleInitSync))
	}()
}
