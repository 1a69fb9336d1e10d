package game

import (
	"context"
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-worldsync/internal/replication"
	"github.com/pixil98/go-worldsync/internal/storage"
)

// Autosaver writes every persistable entity through the replication
// layer's save path into the snapshot store. It is driven by the tick
// driver.
type Autosaver struct {
	world *WorldState
	rep   *replication.Manager
	store storage.Storer[*EntityRecord]
}

func NewAutosaver(world *WorldState, rep *replication.Manager, store storage.Storer[*EntityRecord]) *Autosaver {
	return &Autosaver{
		world: world,
		rep:   rep,
		store: store,
	}
}

// Tick saves all entities with a record id. One entity failing does
// not stop the others; every failure is reported.
func (s *Autosaver) Tick(ctx context.Context) error {
	el := errors.NewErrorList()

	s.world.ForEach(func(e *Entity) {
		if e.RecordId == "" {
			return
		}

		data, err := s.rep.Save(e.Type.Name, e.State)
		if err != nil {
			el.Add(fmt.Errorf("saving entity %q: %w", e.RecordId, err))
			return
		}

		record := &EntityRecord{
			Type: e.Type.Name,
			Data: data,
		}
		if err := s.store.Save(e.RecordId, record); err != nil {
			el.Add(fmt.Errorf("storing entity %q: %w", e.RecordId, err))
		}
	})

	return el.Err()
}
