// Package mqtt defines the broker-facing contracts of the schedule service:
// feeds arrive on a topic and built layouts leave on another.
package mqtt

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/kilianp07/shiftboard/core/layout"
	"github.com/kilianp07/shiftboard/core/shifts"
)

// ErrInvalidPayload is returned when an incoming message cannot be decoded.
var ErrInvalidPayload = errors.New("invalid mqtt payload")

// LayoutPublisher pushes built day layouts to downstream displays.
type LayoutPublisher interface {
	// PublishLayout sends the layout of one day. Implementations retain the
	// message so late subscribers get the current layout.
	PublishLayout(ctx context.Context, l layout.DayLayout) error
}

// FeedHandler receives schedule feeds arriving from the external scheduler.
type FeedHandler func(ctx context.Context, feed shifts.Feed) error

// DecodeFeed parses a feed message body.
func DecodeFeed(payload []byte) (shifts.Feed, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrInvalidPayload)
	}
	feed, err := shifts.ReadFeed(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return feed, nil
}

// NopPublisher drops every layout.
type NopPublisher struct{}

func (NopPublisher) PublishLayout(context.Context, layout.DayLayout) error { return nil }
