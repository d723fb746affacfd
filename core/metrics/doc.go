// Package metrics defines the events the scheduling engine reports and the
// sink interfaces that record them. Sinks like PromSink and InfluxSink live
// in infra/metrics and register themselves in the factory; NewMetricsSink
// returns a MultiSink automatically when several sinks are configured.
package metrics
