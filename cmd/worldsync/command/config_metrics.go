package command

type MetricsConfig struct {
	// Addr is the listen address for the /metrics endpoint. Empty
	// disables the endpoint; counters are still collected.
	Addr string `json:"addr"`
}

func (c *MetricsConfig) Validate() error {
	return nil
}
