// Package handoff writes the DM-assistant copy that passes a prospect to the
// booking link.
package handoff

import (
	"strings"
	"time"

	"github.com/wolfman30/videobooker-api/internal/availability"
	"github.com/wolfman30/videobooker-api/internal/bookinglink"
)

// Templates are the business-editable message texts.
type Templates struct {
	Handoff      string `json:"handoff"`
	Confirmation string `json:"confirmation"`
	Reminder     string `json:"reminder"`
}

// DefaultTemplates returns the copy new workspaces start with.
func DefaultTemplates() Templates {
	return Templates{
		Handoff:      "Hi {{name}}, you can grab a spot for {{service}} here: {{link}}. Next openings: {{times}}.",
		Confirmation: "Hi {{name}}, you are confirmed for {{service}} on {{date}} at {{time}}. Reply to this message if you need to reschedule within 24 hours.",
		Reminder:     "Hi {{name}}, looking forward to seeing you for {{service}} tomorrow at {{time}}. Tap the booking link if you need to adjust.",
	}
}

// DisconnectedCaveat is appended when the provider is not connected.
const DisconnectedCaveat = "Online booking is paused right now, so we will confirm your time by message."

// Prospect is the person the assistant is talking to.
type Prospect struct {
	Name string `json:"name"`
}

// Message is the composed hand-off plus previews of the follow-up texts.
type Message struct {
	Text         string   `json:"text"`
	EventLabel   string   `json:"eventLabel"`
	BookingURL   string   `json:"bookingUrl"`
	Times        []string `json:"times"`
	Degraded     bool     `json:"degraded"`
	Confirmation string   `json:"confirmation"`
	Reminder     string   `json:"reminder"`
}

// Composer renders hand-off messages from artifacts.
type Composer struct {
	templates Templates
	renderer  Renderer
	location  *time.Location
}

// NewComposer builds a composer. Blank templates fall back to the defaults;
// a nil location means UTC.
func NewComposer(t Templates, loc *time.Location) *Composer {
	def := DefaultTemplates()
	if strings.TrimSpace(t.Handoff) == "" {
		t.Handoff = def.Handoff
	}
	if strings.TrimSpace(t.Confirmation) == "" {
		t.Confirmation = def.Confirmation
	}
	if strings.TrimSpace(t.Reminder) == "" {
		t.Reminder = def.Reminder
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Composer{templates: t, location: loc}
}

// Compose builds the hand-off for art. Slot times are quoted up to
// availability.DefaultHandoffLimit; placeholders stand in when there are none.
func (c *Composer) Compose(art bookinglink.Artifact, p Prospect) (Message, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = "there"
	}

	times, first := c.times(art)
	data := map[string]string{
		"name":    name,
		"service": art.EventLabel,
		"link":    art.BookingURL,
		"times":   strings.Join(times, ", "),
		"date":    first.date,
		"time":    first.time,
	}

	msg := Message{
		EventLabel: art.EventLabel,
		BookingURL: art.BookingURL,
		Times:      times,
		Degraded:   !art.Connected,
	}
	var err error
	if msg.Text, err = c.renderer.Render("handoff", c.templates.Handoff, data); err != nil {
		return Message{}, err
	}
	if msg.Degraded {
		msg.Text += " " + DisconnectedCaveat
	}
	if msg.Confirmation, err = c.renderer.Render("confirmation", c.templates.Confirmation, data); err != nil {
		return Message{}, err
	}
	if msg.Reminder, err = c.renderer.Render("reminder", c.templates.Reminder, data); err != nil {
		return Message{}, err
	}
	return msg, nil
}

type slotText struct {
	date string
	time string
}

func (c *Composer) times(art bookinglink.Artifact) ([]string, slotText) {
	if len(art.Availability) == 0 {
		labels := availability.Labels(availability.WithFallback(nil, availability.FallbackTimes, availability.DefaultHandoffLimit))
		return labels, slotText{date: "your chosen day", time: labels[0]}
	}
	n := min(len(art.Availability), availability.DefaultHandoffLimit)
	out := make([]string, n)
	for i, s := range art.Availability[:n] {
		out[i] = s.Start.In(c.location).Format("Mon Jan 2, 3:04 PM")
	}
	start := art.Availability[0].Start.In(c.location)
	return out, slotText{date: start.Format("Monday, January 2"), time: start.Format("3:04 PM")}
}
