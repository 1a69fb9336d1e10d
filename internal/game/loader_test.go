package game

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/pixil98/go-testutil"
	"github.com/pixil98/go-worldsync/internal/storage"
)

func newRecordStore(t *testing.T) *storage.FileStore[*EntityRecord] {
	t.Helper()

	store, err := storage.NewFileStore[*EntityRecord](t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return store
}

func TestAutosaver_SavesPersistableEntities(t *testing.T) {
	world := NewWorldState(true)
	rep := testManager(t, world, newTestBus(), propsType(t))
	store := newRecordStore(t)

	e, err := world.Spawn(rep, "props", "props-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e.State.Set("score", 10)
	e.State.Set("session", "transient")

	// Entities without a record id are session-only.
	if _, err := world.Spawn(rep, "props", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	saver := NewAutosaver(world, rep, store)
	if err := saver.Tick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records := store.GetAll()
	testutil.AssertEqual(t, "record count", len(records), 1)

	record := records["props-1"]
	testutil.AssertEqual(t, "type", record.Type, "props")
	if _, ok := record.Data["score"]; !ok {
		t.Error("score should have been persisted")
	}
	for _, k := range []string{"session", "world", "entity"} {
		if _, ok := record.Data[k]; ok {
			t.Errorf("key %q should not have been persisted", k)
		}
	}
}

func TestLoader_RestoresWorld(t *testing.T) {
	store := newRecordStore(t)

	// Save a world containing one creature and one plain entity.
	{
		world := NewWorldState(true)
		rep := testManager(t, world, newTestBus(), guardType(t), propsType(t))

		m, err := world.SpawnMobile(rep, "guard", "guard-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		m.State.Set("health", float64(7))

		e, err := world.Spawn(rep, "props", "props-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		e.State.Set("score", float64(10))

		saver := NewAutosaver(world, rep, store)
		if err := saver.Tick(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// Restore into a fresh world.
	world := NewWorldState(true)
	bus := newTestBus()
	rep := testManager(t, world, bus, guardType(t), propsType(t))
	loader := NewLoader(world, rep, store, bus)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loader.Start(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for world.Len() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "entity count", world.Len(), 2)

	var foundGuard, foundProps bool
	world.ForEach(func(e *Entity) {
		switch e.RecordId {
		case "guard-1":
			foundGuard = true
			v, _ := e.State.Get("health")
			testutil.AssertEqual(t, "health", v, float64(7))
		case "props-1":
			foundProps = true
			v, _ := e.State.Get("score")
			testutil.AssertEqual(t, "score", v, float64(10))
		}

		// Restored states carry fresh back-references.
		w, _ := e.State.Get("world")
		testutil.AssertEqual(t, "world back-ref", w, any(world), cmpopts.EquateComparable(world))
	})

	testutil.AssertEqual(t, "guard restored", foundGuard, true)
	testutil.AssertEqual(t, "props restored", foundProps, true)
}

func TestLoader_SkipsUnknownTypes(t *testing.T) {
	store := newRecordStore(t)
	if err := store.Save("mystery-1", &EntityRecord{Type: "mystery", Data: storage.TagData{}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	world := NewWorldState(true)
	bus := newTestBus()
	rep := testManager(t, world, bus, propsType(t))
	loader := NewLoader(world, rep, store, bus)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A cancelled context still lets the loader exit cleanly without
	// touching unknown records.
	if err := loader.Start(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "entity count", world.Len(), 0)
}
