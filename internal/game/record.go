package game

import (
	"fmt"

	"github.com/pixil98/go-worldsync/internal/storage"
)

// EntityRecord is the persisted envelope for one entity: which type it
// is and its tagged field data. Session ids are deliberately absent;
// they are reassigned on restore.
type EntityRecord struct {
	Type string          `json:"type"`
	Data storage.TagData `json:"data"`
}

// Validate satisfies storage.ValidatingSpec
func (r *EntityRecord) Validate() error {
	if r.Type == "" {
		return fmt.Errorf("entity record type is required")
	}
	return nil
}
