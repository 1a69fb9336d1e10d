package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
)

type Config struct {
	SaveInterval string            `json:"save_interval"`
	Nats         NatsConfig        `json:"nats"`
	Storage      StorageConfig     `json:"storage"`
	Replication  ReplicationConfig `json:"replication"`
	Metrics      MetricsConfig     `json:"metrics"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if c.SaveInterval != "" {
		d, err := time.ParseDuration(c.SaveInterval)
		if err != nil {
			el.Add(fmt.Errorf("parsing save_interval: %w", err))
		} else if d < time.Second {
			el.Add(fmt.Errorf("save_interval must be at least 1 second"))
		}
	}

	el.Add(c.Nats.Validate())
	el.Add(c.Storage.Validate())
	el.Add(c.Replication.Validate())
	el.Add(c.Metrics.Validate())

	return el.Err()
}
