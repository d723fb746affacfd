package mqtt

import (
	"context"
	"fmt"
	"sync"

	"github.com/kilianp07/shiftboard/core/layout"
	coremqtt "github.com/kilianp07/shiftboard/core/mqtt"
	"github.com/kilianp07/shiftboard/core/model"
)

// Publisher mirrors the core LayoutPublisher interface.
type Publisher = coremqtt.LayoutPublisher

// MockPublisher records published layouts; used in tests.
type MockPublisher struct {
	Layouts  map[model.Day]layout.DayLayout
	FailDays map[model.Day]bool
	mu       sync.Mutex
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		Layouts:  make(map[model.Day]layout.DayLayout),
		FailDays: make(map[model.Day]bool),
	}
}

// PublishLayout records the layout or returns an error if configured to fail.
func (m *MockPublisher) PublishLayout(_ context.Context, l layout.DayLayout) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailDays[l.Day] {
		return fmt.Errorf("publish failed")
	}
	m.Layouts[l.Day] = l
	return nil
}

// Count returns the number of days published so far.
func (m *MockPublisher) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Layouts)
}

// Layout returns the last layout published for day.
func (m *MockPublisher) Layout(day model.Day) (layout.DayLayout, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.Layouts[day]
	return l, ok
}
