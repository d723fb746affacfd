// Package infra holds the adapters behind the core interfaces: persistence
// backends, the Redis layout cache, metrics exporters and the MQTT bridge.
package infra
