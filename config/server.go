package config

import (
	"errors"
	"time"
)

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr               string `json:"addr"`
	ReadTimeoutSeconds int    `json:"read_timeout_seconds"`
	// MaxBodyBytes bounds request bodies of PUT endpoints.
	MaxBodyBytes int64 `json:"max_body_bytes"`
}

func (c *ServerConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.ReadTimeoutSeconds <= 0 {
		c.ReadTimeoutSeconds = 10
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = 1 << 20
	}
}

func (c ServerConfig) Validate() error {
	if c.Addr == "" {
		return errors.New("addr is required")
	}
	return nil
}

// ReadTimeout returns the configured timeout.
func (c ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}
