package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kilianp07/shiftboard/core/availability"
)

type MemoryStore struct {
	mu       sync.RWMutex
	data     map[string]availability.Snapshot
	schedule *Schedule
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]availability.Snapshot{}}
}

func (s *MemoryStore) GetAvailability(_ context.Context, employee string) (availability.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.data[EmployeeKey(employee)]
	if !ok {
		return availability.Snapshot{}, fmt.Errorf("availability %q: %w", employee, ErrNotFound)
	}
	return snap, nil
}

func (s *MemoryStore) PutAvailability(_ context.Context, snap availability.Snapshot) error {
	s.mu.Lock()
	s.data[EmployeeKey(snap.Employee)] = snap
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) ListAvailability(context.Context) ([]availability.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]availability.Snapshot, 0, len(s.data))
	for _, snap := range s.data {
		res = append(res, snap)
	}
	sort.Slice(res, func(i, j int) bool { return EmployeeKey(res[i].Employee) < EmployeeKey(res[j].Employee) })
	return res, nil
}

func (s *MemoryStore) GetSchedule(context.Context) (Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.schedule == nil {
		return Schedule{}, fmt.Errorf("schedule: %w", ErrNotFound)
	}
	return *s.schedule, nil
}

func (s *MemoryStore) PutSchedule(_ context.Context, sc Schedule) error {
	s.mu.Lock()
	s.schedule = &sc
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Close() error { return nil }
