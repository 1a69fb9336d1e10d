package replication

import (
	"reflect"
	"sync"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestState_SetAndGet(t *testing.T) {
	st := NewState(nil)

	st.Set("health", 7)

	v, ok := st.Get("health")
	testutil.AssertEqual(t, "found", ok, true)
	testutil.AssertEqual(t, "value", v, 7)

	_, ok = st.Get("missing")
	testutil.AssertEqual(t, "found", ok, false)
}

func TestState_HookPerMutation(t *testing.T) {
	type change struct {
		key   string
		value any
	}

	var changes []change
	st := NewState(func(key string, value any) {
		changes = append(changes, change{key, value})
	})

	st.Set("health", 7)
	st.Merge(map[string]any{"name": "Bob"})

	testutil.AssertEqual(t, "change count", len(changes), 2)
	testutil.AssertEqual(t, "first key", changes[0].key, "health")
	testutil.AssertEqual(t, "first value", changes[0].value, 7)
	testutil.AssertEqual(t, "second key", changes[1].key, "name")
}

func TestState_ApplyBypassesHook(t *testing.T) {
	calls := 0
	st := NewState(func(string, any) { calls++ })

	st.Apply(map[string]any{"health": 7, "name": "Bob"})

	testutil.AssertEqual(t, "hook calls", calls, 0)
	testutil.AssertEqual(t, "field count", st.Len(), 2)
}

func TestState_RemoveAndSnapshot(t *testing.T) {
	st := NewState(nil)
	st.Apply(map[string]any{"a": 1, "b": 2, "c": 3})

	snap := st.Snapshot([]string{"a", "c", "missing"})
	if !reflect.DeepEqual(snap, map[string]any{"a": 1, "c": 3}) {
		t.Errorf("unexpected snapshot: %v", snap)
	}

	st.Remove("a", "c")
	if !reflect.DeepEqual(st.All(), map[string]any{"b": 2}) {
		t.Errorf("unexpected remaining fields: %v", st.All())
	}

	// The snapshot is a copy; restoring it puts the keys back.
	st.Apply(snap)
	testutil.AssertEqual(t, "restored", st.Len(), 3)
}

func TestState_ConcurrentMutation(t *testing.T) {
	st := NewState(nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				st.Set("counter", n)
				st.Apply(map[string]any{"other": j})
				st.Get("counter")
				st.All()
			}
		}(i)
	}
	wg.Wait()

	if _, ok := st.Get("counter"); !ok {
		t.Error("counter should be present")
	}
}
