package replication

import (
	"fmt"

	"github.com/pixil98/go-worldsync/internal/storage"
)

// Adapter moves one type's state through the tagged-data codec,
// keeping dont-save keys out of the serialized form while never losing
// them from the live store.
type Adapter struct {
	desc  *Descriptor
	loc   Locality
	sched *Scheduler
}

func NewAdapter(desc *Descriptor, loc Locality, sched *Scheduler) *Adapter {
	return &Adapter{
		desc:  desc,
		loc:   loc,
		sched: sched,
	}
}

// OnLoad merges persisted fields into st. Dont-save keys are shielded:
// whatever the store holds for them before the load survives the load,
// and decoded values never overwrite them. After the on-load hook, an
// authoritative instance with synced keys arms the deferred init-sync
// broadcast.
//
// Codec errors propagate; the state is left with its shielded keys
// restored.
func (a *Adapter) OnLoad(id uint32, st *State, data storage.TagData) error {
	shielded := st.Snapshot(a.desc.DontSave)
	st.Remove(a.desc.DontSave...)

	fields, err := data.Decode()
	if err != nil {
		st.Apply(shielded)
		return fmt.Errorf("decoding %s fields: %w", a.desc.Name, err)
	}
	st.Apply(fields)

	// Restore before the hook so it sees the fully-populated instance.
	st.Apply(shielded)

	if a.desc.OnLoad != nil {
		if err := a.desc.OnLoad(st); err != nil {
			return fmt.Errorf("on-load hook for %s: %w", a.desc.Name, err)
		}
	}

	if len(a.desc.Synced) > 0 && a.loc.Authoritative() && a.sched != nil {
		a.sched.Arm(id, st)
	}

	return nil
}

// OnSave encodes st into tagged data, leaving dont-save keys out of
// the result but present in the store afterwards.
func (a *Adapter) OnSave(st *State) (storage.TagData, error) {
	if a.desc.OnSave != nil {
		if err := a.desc.OnSave(st); err != nil {
			return nil, fmt.Errorf("on-save hook for %s: %w", a.desc.Name, err)
		}
	}

	shielded := st.Snapshot(a.desc.DontSave)
	st.Remove(a.desc.DontSave...)
	defer st.Apply(shielded)

	data, err := storage.EncodeTagData(st.All())
	if err != nil {
		return nil, fmt.Errorf("encoding %s fields: %w", a.desc.Name, err)
	}

	return data, nil
}
