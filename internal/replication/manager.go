package replication

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pixil98/go-worldsync/internal/metrics"
	"github.com/pixil98/go-worldsync/internal/storage"
)

// Publisher provides the ability to publish messages to subjects.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Subscriber provides the ability to subscribe to message subjects.
type Subscriber interface {
	Subscribe(subject string, handler func(data []byte)) (unsubscribe func(), err error)
}

// Bus is the shared message fabric the replication layer rides on.
// Delivery is assumed reliable and ordered per subject.
type Bus interface {
	Publisher
	Subscriber

	// Ready is closed once the bus accepts traffic.
	Ready() <-chan struct{}
}

// Registry resolves a message's entity id back to a live state. A
// failed lookup means the message is dropped.
type Registry interface {
	Lookup(id uint32) (*State, bool)
}

// Locality reports which side of the replication relationship this
// process plays for its entities.
type Locality interface {
	Authoritative() bool
}

// World is the registry and locality source in one, which is how the
// game layer supplies both.
type World interface {
	Registry
	Locality
}

type registeredType struct {
	desc    *Descriptor
	bcast   *Broadcaster
	adapter *Adapter
}

// Manager owns every registered type's broadcaster, persistence
// adapter, and listener loops. It is a long-running worker: Start
// subscribes the three topic roles for each type and serves them until
// the context is cancelled.
type Manager struct {
	world World
	bus   Bus
	rec   metrics.Recorder
	delay time.Duration

	mu    sync.RWMutex
	types map[string]*registeredType
}

func NewManager(world World, bus Bus, opts ...ManagerOpt) *Manager {
	m := &Manager{
		world: world,
		bus:   bus,
		rec:   metrics.NoopRecorder{},
		delay: DefaultInitSyncDelay,
		types: map[string]*registeredType{},
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Register wires a type descriptor into the manager. Types must be
// registered before Start; a duplicate name or topic subject is an
// error.
func (m *Manager) Register(desc *Descriptor) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.types[desc.Name]; ok {
		return fmt.Errorf("type %q already registered", desc.Name)
	}
	for _, rt := range m.types {
		for _, role := range Roles {
			if rt.desc.Topic(role) == desc.Topic(role) {
				return fmt.Errorf("type %q reuses topic %q", desc.Name, desc.Topic(role))
			}
		}
	}

	sched := NewScheduler(desc, m.bus, m.rec, m.delay)
	m.types[desc.Name] = &registeredType{
		desc:    desc,
		bcast:   NewBroadcaster(desc, m.world, m.bus, m.rec),
		adapter: NewAdapter(desc, m.world, sched),
	}

	return nil
}

// Descriptor returns the registered descriptor by type name, or nil.
func (m *Manager) Descriptor(name string) *Descriptor {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rt, ok := m.types[name]
	if !ok {
		return nil
	}
	return rt.desc
}

// NewState builds a state for a fresh instance of the named type, with
// its change hook bound to the instance id. The hook is the type's
// on-change override if one was declared, otherwise the broadcaster
// when the type syncs anything, otherwise nothing.
func (m *Manager) NewState(typeName string, id uint32) (*State, error) {
	m.mu.RLock()
	rt, ok := m.types[typeName]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("type %q not registered", typeName)
	}

	var hook func(key string, value any)
	switch {
	case rt.desc.OnChange != nil:
		var st *State
		hook = func(key string, value any) {
			rt.desc.OnChange(id, st, key, value)
		}
		st = NewState(hook)
		return st, nil
	case len(rt.desc.Synced) > 0:
		hook = rt.bcast.Hook(id)
	}

	return NewState(hook), nil
}

// Load runs the persistence adapter's load path for one instance.
func (m *Manager) Load(typeName string, id uint32, st *State, data storage.TagData) error {
	rt, err := m.lookup(typeName)
	if err != nil {
		return err
	}
	return rt.adapter.OnLoad(id, st, data)
}

// Save runs the persistence adapter's save path for one instance.
func (m *Manager) Save(typeName string, st *State) (storage.TagData, error) {
	rt, err := m.lookup(typeName)
	if err != nil {
		return nil, err
	}
	return rt.adapter.OnSave(st)
}

// Start waits for the bus, then runs three listener loops per
// registered type until ctx is cancelled. A listener that fails to
// subscribe takes the worker down.
func (m *Manager) Start(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return nil
	case <-m.bus.Ready():
	}

	m.mu.RLock()
	var listeners []*Listener
	for _, rt := range m.types {
		for _, role := range Roles {
			listeners = append(listeners, NewListener(rt.desc, role, m.world, m.bus, m.rec))
		}
	}
	m.mu.RUnlock()

	slog.InfoContext(ctx, "replication listeners starting", "count", len(listeners))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errs := make(chan error, len(listeners))
	var wg sync.WaitGroup
	for _, l := range listeners {
		wg.Add(1)
		go func(l *Listener) {
			defer wg.Done()
			if err := l.Run(ctx); err != nil {
				errs <- fmt.Errorf("listener %s/%s: %w", l.desc.Name, l.role, err)
				cancel()
			}
		}(l)
	}
	wg.Wait()

	select {
	case err := <-errs:
		return err
	default:
		return nil
	}
}

func (m *Manager) lookup(typeName string) (*registeredType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rt, ok := m.types[typeName]
	if !ok {
		return nil, fmt.Errorf("type %q not registered", typeName)
	}
	return rt, nil
}
