package shifts

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/kilianp07/shiftboard/core/model"
)

// Feed is the schedule produced by the external optimizer:
//
//	[{"day": "Monday", "hours": [{"time": "09:00", "roles": {"Server": ["Alice"]}}]}]
type Feed []FeedDay

// FeedDay lists the staffed hour blocks of one day.
type FeedDay struct {
	Day   string      `json:"day"`
	Hours []HourBlock `json:"hours"`
}

// HourBlock lists, per role, who works during the block starting at Time.
type HourBlock struct {
	Time  string              `json:"time"`
	Roles map[string][]string `json:"roles"`
}

// ReadFeed decodes a JSON feed.
func ReadFeed(r io.Reader) (Feed, error) {
	var f Feed
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}
	return f, nil
}

// FlattenFeed converts a feed into raw assignments. Roles inside a block are
// visited in lexical order and employees in listed order, so the result is
// deterministic. A day with an unknown name or a bad time label is skipped
// and reported; the other days are still flattened.
func FlattenFeed(feed Feed) ([]model.RawAssignment, error) {
	var (
		out  []model.RawAssignment
		errs []error
	)
	for _, fd := range feed {
		day, err := model.ParseDay(fd.Day)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		recs, err := flattenDay(day, fd.Hours)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", day, err))
			continue
		}
		out = append(out, recs...)
	}
	return out, errors.Join(errs...)
}

func flattenDay(day model.Day, blocks []HourBlock) ([]model.RawAssignment, error) {
	var out []model.RawAssignment
	for _, b := range blocks {
		at, err := model.ParseClock(b.Time)
		if err != nil {
			return nil, err
		}
		if at >= model.EndOfDay {
			return nil, fmt.Errorf("block %q starts at the end of day", b.Time)
		}
		for _, role := range slices.Sorted(maps.Keys(b.Roles)) {
			for _, name := range b.Roles[role] {
				name = strings.TrimSpace(name)
				if name == "" {
					continue
				}
				out = append(out, model.RawAssignment{Day: day, At: at, Role: strings.TrimSpace(role), Employee: name})
			}
		}
	}
	return out, nil
}

// Days returns the distinct days present in records, in week order.
func Days(records []model.RawAssignment) []model.Day {
	seen := map[model.Day]bool{}
	for _, r := range records {
		seen[r.Day] = true
	}
	days := slices.Collect(maps.Keys(seen))
	slices.Sort(days)
	return days
}
