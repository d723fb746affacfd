package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/shiftboard/core/model"
	"github.com/kilianp07/shiftboard/core/shifts"
)

// GridConfig describes the availability grid and the incoming feed.
type GridConfig struct {
	SlotMinutes     int      `json:"slot_minutes"`
	FeedUnitMinutes int      `json:"feed_unit_minutes"`
	Categories      []string `json:"categories"`
	FillPolicy      string   `json:"fill_policy"`
	// ViewStart and ViewEnd bound the rows printed by the grid renderer.
	ViewStart string `json:"view_start"`
	ViewEnd   string `json:"view_end"`
}

func (c *GridConfig) SetDefaults() {
	if c.SlotMinutes <= 0 {
		c.SlotMinutes = 30
	}
	if c.FeedUnitMinutes <= 0 {
		c.FeedUnitMinutes = 60
	}
	if len(c.Categories) == 0 {
		for _, cat := range model.DefaultCategories {
			c.Categories = append(c.Categories, cat.String())
		}
	}
	if c.FillPolicy == "" {
		if c.SlotMinutes == 30 && c.FeedUnitMinutes == 60 {
			c.FillPolicy = string(shifts.FillNextHalfSlot)
		} else {
			c.FillPolicy = string(shifts.FillNone)
		}
	}
	if c.ViewStart == "" {
		c.ViewStart = "08:00"
	}
	if c.ViewEnd == "" {
		c.ViewEnd = "20:00"
	}
}

func (c GridConfig) Validate() error {
	if model.MinutesPerDay%c.SlotMinutes != 0 {
		return fmt.Errorf("slot_minutes %d does not divide a day", c.SlotMinutes)
	}
	if model.MinutesPerDay%c.FeedUnitMinutes != 0 {
		return fmt.Errorf("feed_unit_minutes %d does not divide a day", c.FeedUnitMinutes)
	}
	p, err := shifts.ParseFillPolicy(c.FillPolicy)
	if err != nil {
		return err
	}
	if p == shifts.FillNextHalfSlot && (c.SlotMinutes != 30 || c.FeedUnitMinutes != 60) {
		return fmt.Errorf("%w: %s needs a 60 minute feed on a 30 minute grid", shifts.ErrFillPolicyGranularity, p)
	}
	for _, cat := range c.Categories {
		if model.Category(cat).IsBaseline() {
			return errors.New("categories must not list the baseline")
		}
	}
	from, to, err := c.View()
	if err != nil {
		return err
	}
	if from >= to {
		return fmt.Errorf("view_start %s must precede view_end %s", from, to)
	}
	return nil
}

// Slot returns the grid slot duration.
func (c GridConfig) Slot() time.Duration { return time.Duration(c.SlotMinutes) * time.Minute }

// FeedUnit returns the duration of one feed record.
func (c GridConfig) FeedUnit() time.Duration {
	return time.Duration(c.FeedUnitMinutes) * time.Minute
}

// CategoryList returns the configured categories as typed values.
func (c GridConfig) CategoryList() []model.Category {
	out := make([]model.Category, 0, len(c.Categories))
	for _, cat := range c.Categories {
		out = append(out, model.Category(cat))
	}
	return out
}

// Policy returns the parsed fill policy; call Validate first.
func (c GridConfig) Policy() shifts.FillPolicy {
	p, _ := shifts.ParseFillPolicy(c.FillPolicy)
	return p
}

// View returns the rendered window.
func (c GridConfig) View() (model.ClockTime, model.ClockTime, error) {
	from, err := model.ParseClock(c.ViewStart)
	if err != nil {
		return 0, 0, fmt.Errorf("view_start: %w", err)
	}
	to, err := model.ParseEndClock(c.ViewEnd)
	if err != nil {
		return 0, 0, fmt.Errorf("view_end: %w", err)
	}
	return from, to, nil
}
