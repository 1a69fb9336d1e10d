package replication

import (
	"encoding/json"
	"sync"
	"testing"
	"time"
)

// fakeWorld implements World with a fixed entity table.
type fakeWorld struct {
	mu            sync.RWMutex
	authoritative bool
	states        map[uint32]*State
}

func newFakeWorld(authoritative bool) *fakeWorld {
	return &fakeWorld{
		authoritative: authoritative,
		states:        map[uint32]*State{},
	}
}

func (w *fakeWorld) Authoritative() bool {
	return w.authoritative
}

func (w *fakeWorld) Lookup(id uint32) (*State, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	st, ok := w.states[id]
	return st, ok
}

func (w *fakeWorld) add(id uint32, st *State) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.states[id] = st
}

type published struct {
	subject string
	msg     *Message
}

// fakeBus is an in-process bus: publishes are recorded and delivered
// synchronously to any subscribed handlers.
type fakeBus struct {
	mu    sync.Mutex
	sent  []published
	subs  map[string][]func([]byte)
	ready chan struct{}
}

func newFakeBus() *fakeBus {
	ready := make(chan struct{})
	close(ready)
	return &fakeBus{
		subs:  map[string][]func([]byte){},
		ready: ready,
	}
}

func (b *fakeBus) Ready() <-chan struct{} {
	return b.ready
}

func (b *fakeBus) Publish(subject string, data []byte) error {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}

	b.mu.Lock()
	b.sent = append(b.sent, published{subject: subject, msg: &m})
	handlers := append([]func([]byte){}, b.subs[subject]...)
	b.mu.Unlock()

	for _, h := range handlers {
		h(data)
	}
	return nil
}

func (b *fakeBus) Subscribe(subject string, handler func(data []byte)) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subs[subject] = append(b.subs[subject], handler)
	return func() {}, nil
}

func (b *fakeBus) published() []published {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]published{}, b.sent...)
}

// eventually polls cond until it returns true or the deadline passes.
func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}
