// Package metrics defines the sinks that observe simulation runs. The engine
// reports every simulated hour and every finished run; sinks such as the
// Prometheus, InfluxDB and MQTT implementations in infra record what they
// support and ignore the rest. Several sinks are combined with NewMultiSink,
// which the factory helpers return automatically when more than one sink is
// configured.
package metrics
