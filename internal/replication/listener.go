package replication

import (
	"context"
	"log/slog"

	"github.com/pixil98/go-worldsync/internal/metrics"
)

// listenerBuffer bounds the per-listener inbound queue. When it fills,
// the bus callback blocks, which is the backpressure the producers are
// expected to tolerate.
const listenerBuffer = 64

// Listener is one long-running subscription loop: it binds to a single
// topic role of a single type and merges every inbound message into
// the named entity's state. Merges take the Apply path, so a listener
// never triggers an outbound broadcast of its own.
type Listener struct {
	desc *Descriptor
	role Role
	reg  Registry
	sub  Subscriber
	rec  metrics.Recorder
}

func NewListener(desc *Descriptor, role Role, reg Registry, sub Subscriber, rec metrics.Recorder) *Listener {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Listener{
		desc: desc,
		role: role,
		reg:  reg,
		sub:  sub,
		rec:  rec,
	}
}

// Run subscribes to the listener's topic and processes messages until
// ctx is cancelled.
func (l *Listener) Run(ctx context.Context) error {
	msgs := make(chan []byte, listenerBuffer)
	unsub, err := l.sub.Subscribe(l.desc.Topic(l.role), func(data []byte) {
		msgs <- data
	})
	if err != nil {
		return err
	}
	defer unsub()

	for {
		select {
		case <-ctx.Done():
			return nil
		case data := <-msgs:
			l.handle(ctx, data)
		}
	}
}

func (l *Listener) handle(ctx context.Context, data []byte) {
	m, err := UnmarshalMessage(data)
	if err != nil {
		slog.WarnContext(ctx, "unmarshalling replication message",
			"type", l.desc.Name, "role", l.role, "error", err)
		return
	}

	// A message for an entity that is gone, or not yet registered, is
	// dropped. No retry; the next change or init-sync covers it.
	st, ok := l.reg.Lookup(m.EntityId)
	if !ok {
		slog.DebugContext(ctx, "dropping replication message for unknown entity",
			"type", l.desc.Name, "role", l.role, "entity_id", m.EntityId)
		l.rec.MessageDropped(l.desc.Name, string(l.role))
		return
	}

	fields := m.Payload()
	if l.role == RoleInitSync {
		// Stale or oversized snapshots only ever land on synced keys.
		fields = l.desc.FilterSynced(fields)
	}

	st.Apply(fields)
	l.rec.MessageMerged(l.desc.Name, string(l.role))
}
