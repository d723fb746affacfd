// Package cache keeps availability snapshots and built day layouts in Redis.
// A Redis failure never fails the caller: the cache reports a miss and, when
// configured, disables itself until restarted.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kilianp07/shiftboard/core/availability"
	"github.com/kilianp07/shiftboard/core/layout"
	"github.com/kilianp07/shiftboard/core/logger"
	"github.com/kilianp07/shiftboard/core/model"
	"github.com/kilianp07/shiftboard/core/storage"
)

const (
	DefaultSnapshotTTL = 24 * time.Hour
	DefaultLayoutTTL   = time.Hour

	keySnapshot = "shiftboard:availability:" // + employee key
	keyLayout   = "shiftboard:layout:"       // + version + ":" + day
)

// Config contains cache configuration.
type Config struct {
	Enabled        bool   `json:"enabled"`
	Addr           string `json:"addr"`
	Password       string `json:"password"`
	DB             int    `json:"db"`
	SnapshotTTLSec int    `json:"snapshot_ttl_seconds"`
	LayoutTTLSec   int    `json:"layout_ttl_seconds"`
	DisableOnError bool   `json:"disable_on_error"`
}

// SetDefaults applies defaults for unset fields.
func (c *Config) SetDefaults() {
	if c.Addr == "" {
		c.Addr = "localhost:6379"
	}
	if c.SnapshotTTLSec == 0 {
		c.SnapshotTTLSec = int(DefaultSnapshotTTL / time.Second)
	}
	if c.LayoutTTLSec == 0 {
		c.LayoutTTLSec = int(DefaultLayoutTTL / time.Second)
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Addr == "" {
		return errors.New("cache addr is required")
	}
	if c.SnapshotTTLSec < 0 || c.LayoutTTLSec < 0 {
		return errors.New("cache ttl must not be negative")
	}
	return nil
}

// Cache is a Redis-backed availability.SnapshotCache and layout.Memo.
type Cache struct {
	client *redis.Client
	log    logger.Logger
	cfg    Config

	mu       sync.RWMutex
	disabled bool
}

// New connects to Redis. An unreachable server yields a disabled cache, not
// an error.
func New(cfg Config, log logger.Logger) *Cache {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	c := NewWithClient(client, cfg, log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		c.log.Warnf("redis cache unavailable, running without caching: %v", err)
		c.disabled = true
	}
	return c
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, cfg Config, log logger.Logger) *Cache {
	cfg.SetDefaults()
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Cache{client: client, log: log, cfg: cfg}
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// IsAvailable reports whether the cache is operational.
func (c *Cache) IsAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.disabled && c.client != nil
}

func (c *Cache) handleError(err error, op string) {
	if err == nil || errors.Is(err, redis.Nil) {
		return
	}
	c.log.Debugw("cache operation failed", map[string]any{"operation": op, "error": err.Error()})
	if c.cfg.DisableOnError {
		c.mu.Lock()
		c.disabled = true
		c.mu.Unlock()
		c.log.Warnf("disabling cache after redis error: %v", err)
	}
}

func (c *Cache) get(ctx context.Context, key string, dest any) (bool, error) {
	if !c.IsAvailable() {
		return false, nil
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		c.handleError(err, "get")
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.log.Debugf("drop undecodable cache entry %s: %v", key, err)
		return false, nil
	}
	return true, nil
}

func (c *Cache) set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if !c.IsAvailable() {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.handleError(err, "set")
		return err
	}
	return nil
}

func (c *Cache) GetSnapshot(ctx context.Context, employee string) (availability.Snapshot, bool, error) {
	var snap availability.Snapshot
	ok, err := c.get(ctx, keySnapshot+storage.EmployeeKey(employee), &snap)
	return snap, ok, err
}

func (c *Cache) SetSnapshot(ctx context.Context, snap availability.Snapshot) error {
	ttl := time.Duration(c.cfg.SnapshotTTLSec) * time.Second
	return c.set(ctx, keySnapshot+storage.EmployeeKey(snap.Employee), snap, ttl)
}

func layoutKey(day model.Day, version string) string {
	return keyLayout + version + ":" + day.String()
}

func (c *Cache) GetLayout(ctx context.Context, day model.Day, version string) (layout.DayLayout, bool, error) {
	var l layout.DayLayout
	ok, err := c.get(ctx, layoutKey(day, version), &l)
	l.Day = day
	return l, ok, err
}

func (c *Cache) SetLayout(ctx context.Context, version string, l layout.DayLayout) error {
	ttl := time.Duration(c.cfg.LayoutTTLSec) * time.Second
	return c.set(ctx, layoutKey(l.Day, version), l, ttl)
}

var (
	_ availability.SnapshotCache = (*Cache)(nil)
	_ layout.Memo                = (*Cache)(nil)
)
