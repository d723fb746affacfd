// Package storage defines where availability documents and the current
// schedule feed are kept. Backends register a factory by name; the memory
// backend is built in and infra/store adds sqlite.
package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/kilianp07/shiftboard/core/availability"
	"github.com/kilianp07/shiftboard/core/factory"
	"github.com/kilianp07/shiftboard/core/shifts"
)

var ErrNotFound = errors.New("not found")

// Schedule is the last accepted feed from the external scheduler.
type Schedule struct {
	Version string      `json:"version"`
	Feed    shifts.Feed `json:"feed"`
	SavedAt time.Time   `json:"saved_at"`
}

// AvailabilityStore keeps one availability snapshot per employee. Lookups
// match employee names case-insensitively.
type AvailabilityStore interface {
	GetAvailability(ctx context.Context, employee string) (availability.Snapshot, error)
	PutAvailability(ctx context.Context, snap availability.Snapshot) error
	ListAvailability(ctx context.Context) ([]availability.Snapshot, error)
}

// ScheduleStore keeps the current schedule feed.
type ScheduleStore interface {
	GetSchedule(ctx context.Context) (Schedule, error)
	PutSchedule(ctx context.Context, s Schedule) error
}

type Store interface {
	AvailabilityStore
	ScheduleStore
	Close() error
}

// EmployeeKey normalizes an employee name for lookups.
func EmployeeKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

var registry = factory.NewRegistry[Store]()

// RegisterStore adds a store backend factory identified by name.
func RegisterStore(name string, f factory.Factory[Store]) error {
	return registry.Register(name, f)
}

// NewStore creates the configured backend. An empty type selects memory.
func NewStore(cfg factory.ModuleConfig) (Store, error) {
	if cfg.Type == "" {
		cfg.Type = "memory"
	}
	return registry.Create(cfg)
}

func init() {
	_ = RegisterStore("memory", func(map[string]any) (Store, error) {
		return NewMemoryStore(), nil
	})
}
