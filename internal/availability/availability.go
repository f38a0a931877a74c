// Package availability turns raw provider start times into canonical slots
// and display-ready previews.
package availability

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

const (
	// DefaultPreviewLimit caps slots shown in the booking-link preview.
	DefaultPreviewLimit = 4
	// DefaultHandoffLimit caps slots quoted in DM-assistant hand-off copy.
	DefaultHandoffLimit = 6
	// DefaultDurationMinutes is used when neither the event type nor the
	// service declares a duration.
	DefaultDurationMinutes = 45
)

// FallbackTimes are the placeholder labels shown when a provider returns no
// availability.
var FallbackTimes = []string{"9:00 AM", "11:30 AM", "2:15 PM", "4:45 PM"}

// ErrInvalidDuration is returned for non-positive slot durations.
var ErrInvalidDuration = errors.New("availability: duration must be positive")

// Slot is a canonical bookable interval. End is always after Start.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// DisplaySlot is what the UI renders. Placeholders carry a label in Start
// and a nil End.
type DisplaySlot struct {
	Key   string  `json:"key"`
	Start string  `json:"start"`
	End   *string `json:"end"`
}

// Placeholder reports whether the slot is a fallback label.
func (d DisplaySlot) Placeholder() bool {
	return d.End == nil
}

// Normalize builds one slot per raw start time, preserving order.
func Normalize(raw []time.Time, durationMinutes int) ([]Slot, error) {
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDuration, durationMinutes)
	}
	d := time.Duration(durationMinutes) * time.Minute
	out := make([]Slot, len(raw))
	for i, start := range raw {
		out[i] = Slot{Start: start, End: start.Add(d)}
	}
	return out, nil
}

// WithFallback renders slots for display, substituting fallbackLabels when
// there are none. The result holds at most limit entries; limit <= 0 means
// DefaultPreviewLimit.
func WithFallback(slots []Slot, fallbackLabels []string, limit int) []DisplaySlot {
	if limit <= 0 {
		limit = DefaultPreviewLimit
	}
	if len(slots) == 0 {
		n := min(len(fallbackLabels), limit)
		out := make([]DisplaySlot, 0, n)
		for i, label := range fallbackLabels[:n] {
			out = append(out, DisplaySlot{Key: "fallback-" + strconv.Itoa(i), Start: label})
		}
		return out
	}

	n := min(len(slots), limit)
	out := make([]DisplaySlot, 0, n)
	for _, s := range slots[:n] {
		start := s.Start.Format(time.RFC3339)
		end := s.End.Format(time.RFC3339)
		out = append(out, DisplaySlot{Key: start, Start: start, End: &end})
	}
	return out
}

// Labels returns the Start text of each display slot.
func Labels(slots []DisplaySlot) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.Start
	}
	return out
}
