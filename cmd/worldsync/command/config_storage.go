package command

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-worldsync/internal/game"
	"github.com/pixil98/go-worldsync/internal/storage"
)

type StorageConfig struct {
	// Backend selects the snapshot store: "file" keeps one JSON asset
	// per entity under Path, "sqlite" keeps all snapshots in a single
	// database at Path.
	Backend string `json:"backend"`
	Path    string `json:"path"`
}

func (c *StorageConfig) Validate() error {
	el := errors.NewErrorList()

	switch c.Backend {
	case "", "file", "sqlite":
	default:
		el.Add(fmt.Errorf("unknown storage backend: %s", c.Backend))
	}

	if c.Path == "" {
		el.Add(fmt.Errorf("storage path is required"))
	}

	return el.Err()
}

func (c *StorageConfig) buildStore() (storage.Storer[*game.EntityRecord], error) {
	switch c.Backend {
	case "sqlite":
		return storage.NewSQLiteStore[*game.EntityRecord](c.Path)
	default:
		return storage.NewFileStore[*game.EntityRecord](c.Path)
	}
}
