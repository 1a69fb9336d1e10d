package replication

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pixil98/go-errors"
)

// Role names the three topic flavors every replicated type owns.
type Role string

const (
	// RoleClientUpdate carries authority-originated field changes out to
	// every replica.
	RoleClientUpdate Role = "client-sync-event"

	// RoleServerUpdate carries replica-originated field changes back to
	// the authoritative instance.
	RoleServerUpdate Role = "server-sync-event"

	// RoleInitSync carries the deferred full-state snapshot broadcast
	// after a load.
	RoleInitSync Role = "init-sync-event"
)

// Roles lists every topic role in a stable order.
var Roles = []Role{RoleClientUpdate, RoleServerUpdate, RoleInitSync}

// Back-reference keys held in every attached-property state. They point
// at live objects and are always excluded from persistence.
const (
	KeyWorld  = "world"
	KeyEntity = "entity"
)

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)

// ChangeHook is invoked for every local mutation of a state field.
type ChangeHook func(id uint32, st *State, key string, value any)

// LifecycleHook is invoked on an instance's state around load/save.
type LifecycleHook func(st *State) error

// Descriptor declares how one entity type replicates and persists.
// Construct with NewDescriptor; the topic subjects are computed once
// there and never change for the process lifetime.
type Descriptor struct {
	// Module namespaces the topic subjects, typically the declaring
	// subsystem (e.g. "worldsync.game").
	Module string

	// Name identifies the type within the module.
	Name string

	// Synced keys broadcast a replication message on every local
	// mutation.
	Synced []string

	// DontSave keys are kept out of the persisted tagged data. The
	// world/entity back-references are always included.
	DontSave []string

	// OnLoad runs after persisted fields have been merged into the
	// state.
	OnLoad LifecycleHook

	// OnSave runs before the state is serialized.
	OnSave LifecycleHook

	// OnChange overrides the default broadcast behavior for local
	// mutations. Leave nil to broadcast every synced key.
	OnChange ChangeHook

	// Attributes holds initial numeric attribute values applied when a
	// creature-flavored entity is spawned.
	Attributes map[string]float64

	topics   map[Role]string
	synced   map[string]struct{}
	dontSave map[string]struct{}
}

func NewDescriptor(module, name string, opts ...DescriptorOpt) (*Descriptor, error) {
	d := &Descriptor{
		Module: module,
		Name:   name,
	}

	for _, opt := range opts {
		opt(d)
	}

	el := errors.NewErrorList()
	if d.Module == "" {
		el.Add(fmt.Errorf("module is required"))
	}
	if !namePattern.MatchString(d.Name) {
		el.Add(fmt.Errorf("name must be non-empty and alphanumeric"))
	}
	if err := el.Err(); err != nil {
		return nil, err
	}

	// Transient back-references never reach the codec.
	for _, k := range []string{KeyWorld, KeyEntity} {
		if !contains(d.DontSave, k) {
			d.DontSave = append(d.DontSave, k)
		}
	}

	d.synced = toSet(d.Synced)
	d.dontSave = toSet(d.DontSave)

	d.topics = make(map[Role]string, len(Roles))
	for _, role := range Roles {
		d.topics[role] = fmt.Sprintf("%s.%s.%s", sanitizeSubject(d.Module), d.Name, role)
	}

	return d, nil
}

// Topic returns the subject for one of this type's topic roles.
func (d *Descriptor) Topic(role Role) string {
	return d.topics[role]
}

// IsSynced reports whether mutations of key replicate.
func (d *Descriptor) IsSynced(key string) bool {
	_, ok := d.synced[key]
	return ok
}

// FilterSynced returns the subset of fields whose keys are synced.
func (d *Descriptor) FilterSynced(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if d.IsSynced(k) {
			out[k] = v
		}
	}
	return out
}

func contains(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

func toSet(keys []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

// sanitizeSubject makes a module path usable as a NATS subject prefix.
func sanitizeSubject(module string) string {
	return strings.NewReplacer("/", ".", " ", "-").Replace(module)
}
