package game

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pixil98/go-worldsync/internal/replication"
)

// Mobile is the creature-flavored entity: a replicated entity plus a
// numeric attribute table seeded from its type descriptor at spawn.
type Mobile struct {
	*Entity

	// InstanceId distinguishes spawned instances of the same type.
	InstanceId string

	mu    sync.RWMutex
	attrs map[string]float64
}

// SpawnMobile creates a creature-flavored entity and applies the
// type's initial attribute values.
func (w *WorldState) SpawnMobile(rep *replication.Manager, typeName, recordId string) (*Mobile, error) {
	e, err := w.Spawn(rep, typeName, recordId)
	if err != nil {
		return nil, err
	}

	m := &Mobile{
		Entity:     e,
		InstanceId: uuid.New().String(),
		attrs:      make(map[string]float64, len(e.Type.Attributes)),
	}

	for name, v := range e.Type.Attributes {
		m.attrs[AttributeId(name)] = v
	}

	return m, nil
}

// Attribute returns the current value of a named attribute. The name
// goes through the same permissive lookup as the initial table.
func (m *Mobile) Attribute(name string) (float64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.attrs[AttributeId(name)]
	return v, ok
}

// SetAttribute updates a named attribute.
func (m *Mobile) SetAttribute(name string, v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.attrs[AttributeId(name)] = v
}
