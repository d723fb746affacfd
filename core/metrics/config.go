package metrics

import "github.com/kilianp07/shiftboard/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusAddr is where /metrics is served; empty disables the endpoint.
	PrometheusAddr string `json:"prometheus_addr"`
}
