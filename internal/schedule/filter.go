package schedule

import (
	"sort"
	"time"

	"odincal/internal/model"
)

// FilterFor selects what a calendar shows for one character: a nil
// characterID means the global view (global events only); otherwise global
// events plus the character's own.
func FilterFor(occ []model.Activity, characterID *string) []model.Activity {
	out := make([]model.Activity, 0, len(occ))
	for _, o := range occ {
		if o.IsGlobal {
			out = append(out, o)
			continue
		}
		if characterID != nil && o.OwnedBy(*characterID) {
			out = append(out, o)
		}
	}
	return out
}

// SortByStart orders occurrences by start time, then id, in place.
func SortByStart(occ []model.Activity) {
	sort.SliceStable(occ, func(i, j int) bool {
		if !occ[i].Start.Equal(occ[j].Start) {
			return occ[i].Start.Before(occ[j].Start)
		}
		return occ[i].ID < occ[j].ID
	})
}

// OnDay returns the occurrences starting on day's calendar date, sorted by
// start time.
func OnDay(occ []model.Activity, day time.Time) []model.Activity {
	var out []model.Activity
	for _, o := range occ {
		if sameDay(day, o.Start) {
			out = append(out, o)
		}
	}
	SortByStart(out)
	return out
}
