package handoff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/videobooker-api/internal/availability"
	"github.com/wolfman30/videobooker-api/internal/bookinglink"
	"github.com/wolfman30/videobooker-api/internal/integrations"
)

func TestComposeWithFallbackTimes(t *testing.T) {
	art := bookinglink.Artifact{
		Provider:   integrations.ProviderCalendly,
		Connected:  true,
		EventLabel: "Consultation",
		BookingURL: "https://calendly.com/studio/consultation",
	}
	msg, err := NewComposer(Templates{}, nil).Compose(art, Prospect{Name: "Jordan"})
	require.NoError(t, err)

	assert.Equal(t, "Hi Jordan, you can grab a spot for Consultation here: https://calendly.com/studio/consultation. Next openings: 9:00 AM, 11:30 AM, 2:15 PM, 4:45 PM.", msg.Text)
	assert.Equal(t, availability.FallbackTimes, msg.Times)
	assert.False(t, msg.Degraded)
	assert.Contains(t, msg.Confirmation, "Hi Jordan, you are confirmed for Consultation")
	assert.Contains(t, msg.Reminder, "tomorrow at 9:00 AM")
}

func TestComposeQuotesUpToHandoffLimit(t *testing.T) {
	base := time.Date(2025, 3, 4, 14, 0, 0, 0, time.UTC)
	raw := make([]time.Time, 8)
	for i := range raw {
		raw[i] = base.Add(time.Duration(i) * time.Hour)
	}
	slots, err := availability.Normalize(raw, 30)
	require.NoError(t, err)

	art := bookinglink.Artifact{
		Provider:     integrations.ProviderAcuity,
		EventLabel:   "Treatment Block",
		BookingURL:   "https://example.test",
		Availability: slots,
	}
	msg, err := NewComposer(Templates{}, nil).Compose(art, Prospect{})
	require.NoError(t, err)

	require.Len(t, msg.Times, availability.DefaultHandoffLimit)
	assert.Equal(t, "Tue Mar 4, 2:00 PM", msg.Times[0])
	assert.True(t, msg.Degraded)
	assert.Contains(t, msg.Text, "Hi there")
	assert.Contains(t, msg.Text, DisconnectedCaveat)
	assert.Contains(t, msg.Confirmation, "on Tuesday, March 4 at 2:00 PM")
}

func TestComposeCustomTemplates(t *testing.T) {
	c := NewComposer(Templates{Handoff: "Book {{service}}: {{link}}"}, nil)
	msg, err := c.Compose(bookinglink.Artifact{Connected: true, EventLabel: "Intro Class", BookingURL: "u"}, Prospect{Name: "Sam"})
	require.NoError(t, err)
	assert.Equal(t, "Book Intro Class: u", msg.Text)

	c = NewComposer(Templates{Handoff: "Hi {{nickname}}"}, nil)
	_, err = c.Compose(bookinglink.Artifact{}, Prospect{})
	require.Error(t, err)
}
