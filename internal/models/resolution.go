// ABOUTME: Resolution enum for chart time granularity.
// ABOUTME: Unknown resolutions are programmer errors and fail fast.
package models

import (
	"errors"
	"fmt"
	"strings"
)

// Resolution is the granularity at which daily records are bucketed.
type Resolution string

const (
	ResolutionDaily   Resolution = "daily"
	ResolutionWeekly  Resolution = "weekly"
	ResolutionMonthly Resolution = "monthly"
	ResolutionYearly  Resolution = "yearly"
)

// AllResolutions lists every supported resolution from finest to coarsest.
var AllResolutions = []Resolution{
	ResolutionDaily,
	ResolutionWeekly,
	ResolutionMonthly,
	ResolutionYearly,
}

// ErrUnknownResolution is returned for a resolution outside the fixed set.
var ErrUnknownResolution = errors.New("unknown resolution")

// ParseResolution converts user input such as "Weekly" into a Resolution.
func ParseResolution(s string) (Resolution, error) {
	r := Resolution(strings.ToLower(strings.TrimSpace(s)))
	if err := r.Validate(); err != nil {
		return "", err
	}
	return r, nil
}

// Validate returns ErrUnknownResolution if r is not a supported resolution.
func (r Resolution) Validate() error {
	for _, known := range AllResolutions {
		if r == known {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownResolution, string(r))
}
