package replication

import "sync"

// State is the observable key/value store attached to one entity.
// Every mutation path (local Set, local Merge, remote Apply) goes
// through the same mutex so a reader never observes a half-applied
// update. The change hook runs inside the critical section, which
// keeps the mutation and its broadcast decision atomic with respect to
// concurrent writers.
//
// Values are arbitrary JSON-serializable payloads; nothing here
// validates them.
type State struct {
	mu       sync.RWMutex
	fields   map[string]any
	onChange func(key string, value any)
}

// NewState creates an empty state. onChange may be nil for plain local
// stores that never replicate.
func NewState(onChange func(key string, value any)) *State {
	return &State{
		fields:   map[string]any{},
		onChange: onChange,
	}
}

// Get returns the value stored under key.
func (s *State) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.fields[key]
	return v, ok
}

// Set stores value under key and invokes the change hook.
func (s *State) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fields[key] = value
	if s.onChange != nil {
		s.onChange(key, value)
	}
}

// Merge stores every field and invokes the change hook once per key.
// The whole merge happens under one critical section; readers see
// either none or all of it.
func (s *State) Merge(fields map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, v := range fields {
		s.fields[k] = v
		if s.onChange != nil {
			s.onChange(k, v)
		}
	}
}

// Apply stores every field without invoking the change hook. This is
// the path remote merges and load/restore take: it must never echo a
// broadcast.
func (s *State) Apply(fields map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, v := range fields {
		s.fields[k] = v
	}
}

// Remove deletes the given keys without invoking the change hook.
func (s *State) Remove(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range keys {
		delete(s.fields, k)
	}
}

// Snapshot copies the values currently stored under keys. Keys not
// present are omitted.
func (s *State) Snapshot(keys []string) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]any, len(keys))
	for _, k := range keys {
		if v, ok := s.fields[k]; ok {
			out[k] = v
		}
	}
	return out
}

// All copies every field currently stored.
func (s *State) All() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]any, len(s.fields))
	for k, v := range s.fields {
		out[k] = v
	}
	return out
}

// Len returns the number of fields stored.
func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.fields)
}
