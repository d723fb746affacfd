package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MinutesPerDay is the length of a planning day.
const MinutesPerDay = 24 * 60

// EndOfDay is the exclusive end of a day, formatted as "24:00".
const EndOfDay ClockTime = MinutesPerDay

// ClockTime is an offset from the start of the day in whole minutes.
// Valid values lie in [0, EndOfDay].
type ClockTime int

// At builds a ClockTime from hours and minutes.
func At(hour, minute int) ClockTime {
	return ClockTime(hour*60 + minute)
}

// Valid reports whether t lies within the day, end inclusive.
func (t ClockTime) Valid() bool {
	return t >= 0 && t <= EndOfDay
}

// Hour returns the hour component.
func (t ClockTime) Hour() int { return int(t) / 60 }

// Minute returns the minute component.
func (t ClockTime) Minute() int { return int(t) % 60 }

// Add shifts t by d, truncated to whole minutes.
func (t ClockTime) Add(d time.Duration) ClockTime {
	return t + ClockTime(d/time.Minute)
}

// Duration converts the offset to a time.Duration.
func (t ClockTime) Duration() time.Duration {
	return time.Duration(t) * time.Minute
}

// String formats the time as "HH:MM".
func (t ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// MarshalText encodes the time as "HH:MM".
func (t ClockTime) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses "HH:MM".
func (t *ClockTime) UnmarshalText(b []byte) error {
	v, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ParseClock parses "HH:MM" (or "H:MM"). "24:00" is accepted as the end of day.
func ParseClock(s string) (ClockTime, error) {
	hs, ms, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(ms) != 2 || len(hs) == 0 || len(hs) > 2 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	h, err := strconv.Atoi(hs)
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(ms)
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	if h < 0 || m < 0 || m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("time out of range %q", s)
	}
	return At(h, m), nil
}

// ParseEndClock parses the end of a range. A midnight end means the end of day.
func ParseEndClock(s string) (ClockTime, error) {
	t, err := ParseClock(s)
	if err != nil {
		return 0, err
	}
	if t == 0 {
		return EndOfDay, nil
	}
	return t, nil
}
