package replication

import (
	"log/slog"

	"github.com/pixil98/go-worldsync/internal/metrics"
)

// Broadcaster turns local mutations of synced keys into outbound
// replication messages. It is the default change hook for any type
// that declares synced keys.
type Broadcaster struct {
	desc *Descriptor
	loc  Locality
	pub  Publisher
	rec  metrics.Recorder
}

func NewBroadcaster(desc *Descriptor, loc Locality, pub Publisher, rec metrics.Recorder) *Broadcaster {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Broadcaster{
		desc: desc,
		loc:  loc,
		pub:  pub,
		rec:  rec,
	}
}

// Changed publishes one message for the mutation of key on entity id.
// Keys not declared synced are ignored. The publish is a blocking
// enqueue; under backpressure the mutating caller waits.
//
// Changed runs inside the state's critical section, so the routing
// decision is atomic with the write that triggered it.
func (b *Broadcaster) Changed(id uint32, key string, value any) {
	if !b.desc.IsSynced(key) {
		return
	}

	m := &Message{
		EntityId: id,
		Key:      key,
		Value:    value,
	}

	role := RoleServerUpdate
	m.Target = ToAuthority
	if b.loc.Authoritative() {
		role = RoleClientUpdate
		m.Target = ToAllReplicas
	}

	data, err := m.Marshal()
	if err != nil {
		slog.Warn("marshalling replication message",
			"type", b.desc.Name, "key", key, "error", err)
		return
	}

	if err := b.pub.Publish(b.desc.Topic(role), data); err != nil {
		slog.Warn("publishing replication message",
			"type", b.desc.Name, "key", key, "error", err)
		return
	}

	b.rec.MessagePublished(b.desc.Name, string(role))
}

// Hook binds Changed to a single entity, in the shape the state's
// change hook expects.
func (b *Broadcaster) Hook(id uint32) func(key string, value any) {
	return func(key string, value any) {
		b.Changed(id, key, value)
	}
}
