// Package catalog owns the business's service offerings. Inactive services
// stay in the catalog but are excluded from booking-link derivation.
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when no service has the requested ID.
	ErrNotFound = errors.New("catalog: service not found")

	// ErrInvalidService is returned when a service input fails validation.
	ErrInvalidService = errors.New("catalog: invalid service")
)

// Service is one bookable offering.
type Service struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Description     string  `json:"description,omitempty"`
	DurationMinutes int     `json:"durationMinutes"`
	Price           float64 `json:"price"`
	IsActive        bool    `json:"isActive"`
}

// ServiceInput is the user-supplied shape accepted by ReplaceAll. IsActive
// defaults to true when omitted.
type ServiceInput struct {
	Name            string  `json:"name"`
	Description     string  `json:"description,omitempty"`
	DurationMinutes int     `json:"durationMinutes"`
	Price           float64 `json:"price"`
	IsActive        *bool   `json:"isActive,omitempty"`
}

// Validate checks name, duration and price.
func (in ServiceInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidService)
	}
	if in.DurationMinutes <= 0 {
		return fmt.Errorf("%w: %q duration must be a positive number of minutes", ErrInvalidService, in.Name)
	}
	if in.Price < 0 {
		return fmt.Errorf("%w: %q price cannot be negative", ErrInvalidService, in.Name)
	}
	return nil
}

func (in ServiceInput) toService(id string) Service {
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	return Service{
		ID:              id,
		Name:            strings.TrimSpace(in.Name),
		Description:     strings.TrimSpace(in.Description),
		DurationMinutes: in.DurationMinutes,
		Price:           in.Price,
		IsActive:        active,
	}
}

// DemoServices is the starter catalog new workspaces are seeded with.
func DemoServices() []ServiceInput {
	return []ServiceInput{
		{
			Name:            "Intro Class",
			Description:     "30-minute intro session for new clients.",
			DurationMinutes: 30,
			Price:           39,
		},
		{
			Name:            "Personal Training",
			Description:     "One-on-one coaching with a certified trainer.",
			DurationMinutes: 60,
			Price:           89,
		},
	}
}

// filterActive keeps active services in catalog order.
func filterActive(services []Service) []Service {
	out := make([]Service, 0, len(services))
	for _, svc := range services {
		if svc.IsActive {
			out = append(out, svc)
		}
	}
	return out
}
