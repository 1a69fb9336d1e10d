package metrics

import (
	prom "github.com/prometheus/client_golang/prometheus"
)

// Recorder counts replication traffic. Implementations must be safe for
// concurrent use.
type Recorder interface {
	MessagePublished(typeName, role string)
	MessageMerged(typeName, role string)
	MessageDropped(typeName, role string)
	InitSyncFired(typeName string)
}

// NoopRecorder discards all observations.
type NoopRecorder struct{}

func (NoopRecorder) MessagePublished(string, string) {}
func (NoopRecorder) MessageMerged(string, string)    {}
func (NoopRecorder) MessageDropped(string, string)   {}
func (NoopRecorder) InitSyncFired(string)            {}

// PrometheusRecorder implements Recorder using prometheus counters.
type PrometheusRecorder struct {
	published *prom.CounterVec
	merged    *prom.CounterVec
	dropped   *prom.CounterVec
	initSyncs *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers the replication
// counters on the given registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}

	r := &PrometheusRecorder{
		published: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "worldsync",
			Name:      "messages_published_total",
			Help:      "Replication messages published, by entity type and topic role",
		}, []string{"type", "role"}),
		merged: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "worldsync",
			Name:      "messages_merged_total",
			Help:      "Replication messages merged into a live entity",
		}, []string{"type", "role"}),
		dropped: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "worldsync",
			Name:      "messages_dropped_total",
			Help:      "Replication messages dropped because the target entity was not registered",
		}, []string{"type", "role"}),
		initSyncs: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "worldsync",
			Name:      "init_syncs_total",
			Help:      "Deferred full-state broadcasts fired after a load",
		}, []string{"type"}),
	}

	reg.MustRegister(r.published, r.merged, r.dropped, r.initSyncs)
	return r
}

func (r *PrometheusRecorder) MessagePublished(typeName, role string) {
	r.published.WithLabelValues(typeName, role).Inc()
}

func (r *PrometheusRecorder) MessageMerged(typeName, role string) {
	r.merged.WithLabelValues(typeName, role).Inc()
}

func (r *PrometheusRecorder) MessageDropped(typeName, role string) {
	r.dropped.WithLabelValues(typeName, role).Inc()
}

func (r *PrometheusRecorder) InitSyncFired(typeName string) {
	r.initSyncs.WithLabelValues(typeName).Inc()
}
