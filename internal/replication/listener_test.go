package replication

import (
	"context"
	"testing"

	"github.com/pixil98/go-testutil"
)

func marshalMessage(t *testing.T, m *Message) []byte {
	t.Helper()

	data, err := m.Marshal()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return data
}

func TestListener_MergesIntoTargetState(t *testing.T) {
	desc := guardDescriptor(t)
	world := newFakeWorld(false)
	st := NewState(nil)
	world.add(42, st)

	l := NewListener(desc, RoleServerUpdate, world, newFakeBus(), nil)
	l.handle(context.Background(), marshalMessage(t, &Message{
		EntityId: 42,
		Target:   ToAuthority,
		Key:      "name",
		Value:    "Bob",
	}))

	v, ok := st.Get("name")
	testutil.AssertEqual(t, "found", ok, true)
	testutil.AssertEqual(t, "value", v, "Bob")
}

func TestListener_DropsUnknownEntity(t *testing.T) {
	// Id 42 is absent from the registry at delivery time. Nothing is
	// mutated, nothing panics.
	desc := guardDescriptor(t)
	world := newFakeWorld(false)

	l := NewListener(desc, RoleServerUpdate, world, newFakeBus(), nil)
	l.handle(context.Background(), marshalMessage(t, &Message{
		EntityId: 42,
		Target:   ToAuthority,
		Key:      "name",
		Value:    "Bob",
	}))
}

func TestListener_MergeNeverEchoes(t *testing.T) {
	// The receiving side's merge must not fire another broadcast for
	// the same key, even on a state whose hook broadcasts.
	desc := guardDescriptor(t)
	bus := newFakeBus()
	world := newFakeWorld(true)
	b := NewBroadcaster(desc, world, bus, nil)
	st := NewState(b.Hook(42))
	world.add(42, st)

	l := NewListener(desc, RoleClientUpdate, world, bus, nil)
	l.handle(context.Background(), marshalMessage(t, &Message{
		EntityId: 42,
		Target:   ToAllReplicas,
		Key:      "health",
		Value:    7,
	}))

	v, _ := st.Get("health")
	testutil.AssertEqual(t, "merged value", v, float64(7))
	testutil.AssertEqual(t, "published count", len(bus.published()), 0)
}

func TestListener_InitSyncFiltersToSyncedKeys(t *testing.T) {
	desc := guardDescriptor(t)
	world := newFakeWorld(false)
	st := NewState(nil)
	world.add(9, st)

	l := NewListener(desc, RoleInitSync, world, newFakeBus(), nil)
	l.handle(context.Background(), marshalMessage(t, &Message{
		EntityId: 9,
		Target:   ToAllReplicas,
		Fields: map[string]any{
			"health": 7,
			"name":   "Bob",
			"secret": "stale",
		},
	}))

	testutil.AssertEqual(t, "field count", st.Len(), 2)
	if _, ok := st.Get("secret"); ok {
		t.Error("unsynced key should have been filtered out")
	}
}

func TestListener_BadPayloadIgnored(t *testing.T) {
	desc := guardDescriptor(t)
	world := newFakeWorld(false)
	st := NewState(nil)
	world.add(1, st)

	l := NewListener(desc, RoleServerUpdate, world, newFakeBus(), nil)
	l.handle(context.Background(), []byte(`{not json`))

	testutil.AssertEqual(t, "field count", st.Len(), 0)
}

func TestListener_RunStopsOnCancel(t *testing.T) {
	desc := guardDescriptor(t)
	world := newFakeWorld(false)
	st := NewState(nil)
	world.add(42, st)
	bus := newFakeBus()

	l := NewListener(desc, RoleServerUpdate, world, bus, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	eventually(t, func() bool {
		err := bus.Publish(desc.Topic(RoleServerUpdate), marshalMessage(t, &Message{
			EntityId: 42,
			Key:      "name",
			Value:    "Bob",
		}))
		if err != nil {
			return false
		}
		_, ok := st.Get("name")
		return ok
	}, "message was never merged")

	cancel()
	if err := <-done; err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
