package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-service"
	"github.com/pixil98/go-worldsync/internal/driver"
	"github.com/pixil98/go-worldsync/internal/game"
	"github.com/pixil98/go-worldsync/internal/metrics"
	"github.com/pixil98/go-worldsync/internal/replication"
	prom "github.com/prometheus/client_golang/prometheus"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	// Message bus
	nats, err := cfg.Nats.buildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}

	// Metrics
	registry := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(registry)

	// World and replication manager
	world := game.NewWorldState(cfg.Replication.Authoritative)

	delay, err := cfg.Replication.initSyncDelay()
	if err != nil {
		return nil, fmt.Errorf("parsing init_sync_delay: %w", err)
	}

	rep := replication.NewManager(world, nats,
		replication.WithRecorder(recorder),
		replication.WithInitSyncDelay(delay),
	)

	namespace := cfg.Replication.namespace()
	for _, t := range cfg.Replication.Types {
		desc, err := t.buildDescriptor(namespace)
		if err != nil {
			return nil, fmt.Errorf("building type %q: %w", t.Name, err)
		}
		if err := rep.Register(desc); err != nil {
			return nil, fmt.Errorf("registering type %q: %w", t.Name, err)
		}
	}

	// Snapshot store and world loader
	store, err := cfg.Storage.buildStore()
	if err != nil {
		return nil, fmt.Errorf("creating snapshot store: %w", err)
	}
	loader := game.NewLoader(world, rep, store, nats)

	// Periodic autosave
	var driverOpts []driver.SyncDriverOpt
	if cfg.SaveInterval != "" {
		d, err := time.ParseDuration(cfg.SaveInterval)
		if err != nil {
			return nil, fmt.Errorf("parsing save_interval: %w", err)
		}
		driverOpts = append(driverOpts, driver.WithTickLength(d))
	}
	saveDriver := driver.NewSyncDriver([]driver.Manager{
		game.NewAutosaver(world, rep, store),
	}, driverOpts...)

	workers := service.WorkerList{
		"nats":        nats,
		"replication": rep,
		"loader":      loader,
		"driver":      saveDriver,
	}

	if cfg.Metrics.Addr != "" {
		workers["metrics"] = metrics.NewServer(cfg.Metrics.Addr, registry)
	}

	return workers, nil
}
