package game

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pixil98/go-worldsync/internal/replication"
	"github.com/pixil98/go-worldsync/internal/storage"
)

// Loader restores the world from the snapshot store once the message
// bus is up, then idles until shutdown, at which point it saves the
// world one last time.
type Loader struct {
	world *WorldState
	rep   *replication.Manager
	store storage.Storer[*EntityRecord]
	bus   replication.Bus
	saver *Autosaver
}

func NewLoader(world *WorldState, rep *replication.Manager, store storage.Storer[*EntityRecord], bus replication.Bus) *Loader {
	return &Loader{
		world: world,
		rep:   rep,
		store: store,
		bus:   bus,
		saver: NewAutosaver(world, rep, store),
	}
}

func (l *Loader) Start(ctx context.Context) error {
	// Loaded authoritative entities arm init-sync broadcasts, so the
	// bus has to be up before any entity is restored.
	select {
	case <-ctx.Done():
		return nil
	case <-l.bus.Ready():
	}

	if err := l.restore(ctx); err != nil {
		return err
	}

	<-ctx.Done()

	// Final save with a fresh context; the worker context is done.
	if err := l.saver.Tick(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("saving world on shutdown: %w", err)
	}

	return nil
}

func (l *Loader) restore(ctx context.Context) error {
	count := 0
	for recordId, record := range l.store.GetAll() {
		desc := l.rep.Descriptor(record.Type)
		if desc == nil {
			slog.WarnContext(ctx, "skipping record with unregistered type",
				"record", recordId, "type", record.Type)
			continue
		}

		e, err := l.spawn(desc, recordId)
		if err != nil {
			return fmt.Errorf("spawning entity %q: %w", recordId, err)
		}

		if err := l.rep.Load(record.Type, e.Id, e.State, record.Data); err != nil {
			return fmt.Errorf("loading entity %q: %w", recordId, err)
		}
		count++
	}

	slog.InfoContext(ctx, "world restored", "entities", count, "authoritative", l.world.Authoritative())
	return nil
}

func (l *Loader) spawn(desc *replication.Descriptor, recordId string) (*Entity, error) {
	if desc.Attributes != nil {
		m, err := l.world.SpawnMobile(l.rep, desc.Name, recordId)
		if err != nil {
			return nil, err
		}
		return m.Entity, nil
	}
	return l.world.Spawn(l.rep, desc.Name, recordId)
}
