package schedule

import "time"

// DefaultHalfRangeDays gives a 60-day rolling window centred on today.
const DefaultHalfRangeDays = 30

// Window returns the expansion window for now: midnight of today in loc,
// minus and plus halfRangeDays. A non-positive halfRangeDays falls back to
// DefaultHalfRangeDays.
func Window(now time.Time, halfRangeDays int, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.Local
	}
	if halfRangeDays <= 0 {
		halfRangeDays = DefaultHalfRangeDays
	}
	today := startOfDay(now.In(loc))
	return today.AddDate(0, 0, -halfRangeDays), today.AddDate(0, 0, halfRangeDays)
}

// Today returns midnight of now's calendar date in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return startOfDay(now.In(loc))
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

func sameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// daysBetween is the number of calendar dates from a to b, ignoring the
// clock and any DST shift in between.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da) / (24 * time.Hour))
}
