package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-worldsync/internal/replication"
)

type ReplicationConfig struct {
	// Authoritative marks this process as the source of truth for its
	// entities. Everything else is a replica.
	Authoritative bool `json:"authoritative"`

	// Namespace prefixes every type's topic subjects.
	Namespace string `json:"namespace"`

	InitSyncDelay string       `json:"init_sync_delay"`
	Types         []TypeConfig `json:"types"`
}

func (c *ReplicationConfig) Validate() error {
	el := errors.NewErrorList()

	if c.InitSyncDelay != "" {
		_, err := time.ParseDuration(c.InitSyncDelay)
		if err != nil {
			el.Add(fmt.Errorf("parsing init_sync_delay: %w", err))
		}
	}

	if len(c.Types) == 0 {
		el.Add(fmt.Errorf("at least one replicated type is required"))
	}

	for i, t := range c.Types {
		if err := t.Validate(); err != nil {
			el.Add(fmt.Errorf("type %d: %w", i, err))
		}
	}

	return el.Err()
}

func (c *ReplicationConfig) namespace() string {
	if c.Namespace == "" {
		return "worldsync"
	}
	return c.Namespace
}

func (c *ReplicationConfig) initSyncDelay() (time.Duration, error) {
	if c.InitSyncDelay == "" {
		return replication.DefaultInitSyncDelay, nil
	}
	return time.ParseDuration(c.InitSyncDelay)
}

// TypeConfig declares one replicated entity type. Attributes makes the
// type creature-flavored: spawned instances get the listed numeric
// attributes applied at creation.
type TypeConfig struct {
	Name       string             `json:"name"`
	Synced     []string           `json:"synced,omitempty"`
	DontSave   []string           `json:"dont_save,omitempty"`
	Attributes map[string]float64 `json:"attributes,omitempty"`
}

func (c *TypeConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("type name is required")
	}
	return nil
}

func (c *TypeConfig) buildDescriptor(namespace string) (*replication.Descriptor, error) {
	opts := []replication.DescriptorOpt{
		replication.WithSynced(c.Synced...),
		replication.WithDontSave(c.DontSave...),
	}
	if c.Attributes != nil {
		opts = append(opts, replication.WithAttributes(c.Attributes))
	}
	return replication.NewDescriptor(namespace, c.Name, opts...)
}
