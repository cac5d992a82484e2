package schedule

import (
	"errors"
	"fmt"
	"time"
)

// ResolveLocation loads an IANA timezone by name. Unlike time.LoadLocation
// callers that quietly substitute time.Local, an unknown or empty name is an
// error: a schedule rendered in the wrong zone is worse than no schedule.
func ResolveLocation(name string) (*time.Location, error) {
	if name == "" {
		return nil, errors.New("schedule: timezone is required")
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("schedule: unknown timezone %q: %w", name, err)
	}
	return loc, nil
}
