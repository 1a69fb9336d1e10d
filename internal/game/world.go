package game

import (
	"fmt"
	"sync"

	"github.com/pixil98/go-worldsync/internal/replication"
)

// WorldState is the live-object registry for one side of the
// replication relationship: the single authoritative world, or one of
// its observing replicas. All access goes through its methods to
// ensure thread-safety.
//
// Session ids are assigned at spawn and are stable for the life of the
// process; they are never persisted.
type WorldState struct {
	mu            sync.RWMutex
	authoritative bool
	nextId        uint32
	entities      map[uint32]*Entity
}

func NewWorldState(authoritative bool) *WorldState {
	return &WorldState{
		authoritative: authoritative,
		entities:      make(map[uint32]*Entity),
	}
}

// Authoritative reports whether this world is the source of truth for
// its entities.
func (w *WorldState) Authoritative() bool {
	return w.authoritative
}

// Lookup resolves a session id to the entity's state. Satisfies
// replication.Registry.
func (w *WorldState) Lookup(id uint32) (*replication.State, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	e, ok := w.entities[id]
	if !ok {
		return nil, false
	}
	return e.State, true
}

// Get returns the live entity. Returns nil if not registered.
func (w *WorldState) Get(id uint32) *Entity {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.entities[id]
}

// Spawn creates, registers, and wires a new entity of the named type.
// recordId is the stable persistence key; it may be empty for entities
// that are never saved.
func (w *WorldState) Spawn(rep *replication.Manager, typeName, recordId string) (*Entity, error) {
	desc := rep.Descriptor(typeName)
	if desc == nil {
		return nil, fmt.Errorf("type %q not registered", typeName)
	}

	w.mu.Lock()
	w.nextId++
	id := w.nextId
	w.mu.Unlock()

	st, err := rep.NewState(typeName, id)
	if err != nil {
		return nil, err
	}

	e := &Entity{
		Id:       id,
		RecordId: recordId,
		Type:     desc,
		State:    st,
		world:    w,
	}

	// Transient back-references; dont-save keeps them out of the codec.
	st.Apply(map[string]any{
		replication.KeyWorld:  w,
		replication.KeyEntity: e,
	})

	w.mu.Lock()
	w.entities[id] = e
	w.mu.Unlock()

	return e, nil
}

// Remove drops an entity from the registry. Messages addressed to its
// id afterwards are dropped by the listeners.
func (w *WorldState) Remove(id uint32) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.entities[id]; !ok {
		return ErrEntityNotFound
	}

	delete(w.entities, id)
	return nil
}

// ForEach calls fn for each registered entity.
func (w *WorldState) ForEach(fn func(*Entity)) {
	w.mu.RLock()
	entities := make([]*Entity, 0, len(w.entities))
	for _, e := range w.entities {
		entities = append(entities, e)
	}
	w.mu.RUnlock()

	for _, e := range entities {
		fn(e)
	}
}

// Len returns the number of registered entities.
func (w *WorldState) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return len(w.entities)
}
