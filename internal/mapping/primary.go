package mapping

import "github.com/wolfman30/videobooker-api/internal/catalog"

// DefaultEventLabel is used when neither a mapping nor any option names an event.
const DefaultEventLabel = "Intro Session"

// Primary is the service and event a booking link points at. Service is nil
// when there are no active services.
type Primary struct {
	Service   *catalog.Service
	EventName string
	// Mapped is true when the event came from an explicit, non-stale mapping.
	Mapped bool
}

// PrimaryEventFor chooses the booking-link target. The first mapped active
// service in mapping order wins; otherwise the first active service is paired
// with the first option, or DefaultEventLabel. The result always has a
// non-empty EventName.
func PrimaryEventFor(m *Mapping, active []catalog.Service, options []EventOption) Primary {
	for _, e := range m.Entries() {
		if e.EventName == "" {
			continue
		}
		if _, ok := FindOption(options, e.EventName); !ok {
			continue
		}
		for i := range active {
			if active[i].ID == e.ServiceID {
				svc := active[i]
				return Primary{Service: &svc, EventName: e.EventName, Mapped: true}
			}
		}
	}

	eventName := DefaultEventLabel
	if len(options) > 0 && options[0].Name != "" {
		eventName = options[0].Name
	}
	if len(active) == 0 {
		return Primary{EventName: eventName}
	}
	svc := active[0]
	return Primary{Service: &svc, EventName: eventName}
}
