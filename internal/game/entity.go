package game

import (
	"github.com/pixil98/go-worldsync/internal/replication"
)

// Entity is one live replicated object: a stable session id, its
// observable state, and the world that owns it.
type Entity struct {
	// Id is the session-scoped integer identity replication messages
	// carry.
	Id uint32

	// RecordId keys this entity in the snapshot store. Empty for
	// entities that are never persisted.
	RecordId string

	// Type declares what replicates and what persists.
	Type *replication.Descriptor

	// State holds the entity's auxiliary fields.
	State *replication.State

	world *WorldState
}

// World returns the owning world.
func (e *Entity) World() *WorldState {
	return e.world
}
