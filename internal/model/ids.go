package model

import (
	"strconv"
	"strings"
	"time"
)

// Markers separating a source id from the suffixes added by recurrence
// expansion and day splitting.
const (
	dailyMarker  = "_daily_"
	weeklyMarker = "_weekly_"
	dayMarker    = "_day_"
)

// isoMillis matches the UTC millisecond form used in synthetic ids,
// e.g. 2024-05-01T14:00:00.000Z.
const isoMillis = "2006-01-02T15:04:05.000Z"

// OccurrenceID builds the id of a generated occurrence.
func OccurrenceID(sourceID string, r Recurrence, start time.Time) string {
	return sourceID + "_" + string(r) + "_" + start.UTC().Format(isoMillis)
}

// SegmentID builds the id of the n-th day segment of an occurrence.
func SegmentID(occurrenceID string, n int) string {
	return occurrenceID + dayMarker + strconv.Itoa(n)
}

// BaseID strips any recurrence or day-split suffix chain, returning the id
// of the stored definition. Ids without a suffix are returned unchanged.
func BaseID(id string) string {
	cut := len(id)
	for _, m := range []string{dailyMarker, weeklyMarker, dayMarker} {
		if i := strings.Index(id, m); i >= 0 && i < cut {
			cut = i
		}
	}
	return id[:cut]
}

// IsSynthetic reports whether id was derived from another id.
func IsSynthetic(id string) bool {
	return BaseID(id) != id
}
