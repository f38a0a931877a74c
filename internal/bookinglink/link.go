// Package bookinglink assembles the booking-link preview: a provider URL,
// the event it books and a short list of display slots.
package bookinglink

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/wolfman30/videobooker-api/internal/integrations"
	"github.com/wolfman30/videobooker-api/internal/mapping"
)

// DefaultTenant is the provider account name used when none is configured.
const DefaultTenant = "videobooker"

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases name, collapses non-alphanumeric runs into "-" and
// trims leading and trailing dashes.
func Slugify(name string) string {
	return strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

// BookingURL builds the provider's public booking URL for an event. Names
// that slug to nothing use the default event label's slug.
func BookingURL(provider integrations.Provider, tenant, eventName string) (string, error) {
	if tenant == "" {
		tenant = DefaultTenant
	}
	slug := Slugify(eventName)
	if slug == "" {
		slug = Slugify(mapping.DefaultEventLabel)
	}
	switch provider {
	case integrations.ProviderCalendly:
		return "https://calendly.com/" + url.PathEscape(tenant) + "/" + slug, nil
	case integrations.ProviderAcuity:
		q := url.Values{}
		q.Set("owner", tenant)
		q.Set("template", slug)
		return "https://app.acuityscheduling.com/schedule.php?" + q.Encode(), nil
	}
	return "", fmt.Errorf("%w: %q has no booking link", integrations.ErrProviderUnsupported, provider)
}
