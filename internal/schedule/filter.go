package schedule

import (
	"schedarr/internal/model"
)

// FilterAll is the organization filter value that disables the filter.
const FilterAll = "all"

// FilterState is the transient per-request filter selection. The zero value
// passes everything.
type FilterState struct {
	// Organization restricts items to an exact, case-sensitive
	// classification match. Empty or "all" disables the filter.
	Organization string

	// BroadcastOnly drops items without a broadcast/channel value.
	BroadcastOnly bool

	// Statuses restricts recordings to the given lifecycle states. Events
	// carry no status and are unaffected. Empty disables the filter.
	Statuses []model.RecordingStatus
}

// Matches reports whether the item survives every active filter. Items that
// fail are excluded from the view entirely, never shown greyed out.
func (f FilterState) Matches(it model.ScheduledItem) bool {
	if f.Organization != "" && f.Organization != FilterAll && it.Organization != f.Organization {
		return false
	}
	if f.BroadcastOnly && it.Broadcast == "" {
		return false
	}
	if len(f.Statuses) > 0 && it.Kind == model.KindRecording {
		ok := false
		for _, s := range f.Statuses {
			if it.Status == s {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}
