package integrations

import (
	"errors"
	"fmt"
)

var (
	// ErrProviderUnsupported is returned for provider keys outside meta, calendly and acuity.
	ErrProviderUnsupported = errors.New("integrations: unsupported provider")

	// ErrInvalidStatus is returned for status values outside the defined set.
	ErrInvalidStatus = errors.New("integrations: invalid status")

	// ErrInvalidTransition is returned when a status change is not part of the state machine.
	ErrInvalidTransition = fmt.Errorf("%w: transition not allowed", ErrInvalidStatus)

	// ErrInvalidPatch is returned when a patch carries fields of another provider's variant.
	ErrInvalidPatch = errors.New("integrations: field not supported by provider")

	// ErrNotFound is returned when no record exists for a provider.
	ErrNotFound = errors.New("integrations: record not found")
)
