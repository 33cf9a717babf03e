package schedule

import (
	"errors"
	"time"

	"github.com/teambition/rrule-go"

	appLog "odincal/internal/log"
	"odincal/internal/model"
)

const (
	defaultMaxOccurrencesPerEvent = 5000
)

// ExpandConfig controls how recurrence expansion is performed.
type ExpandConfig struct {
	// DisplayLocation is the zone whose wall clock recurring definitions
	// repeat in. If nil, time.Local is used.
	DisplayLocation *time.Location

	// RangeStart / RangeEnd bound generated occurrences: candidates must be
	// strictly before RangeEnd. Stored definitions are always emitted.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxOccurrencesPerEvent caps generated occurrences per definition. If
	// zero, defaultMaxOccurrencesPerEvent is used.
	MaxOccurrencesPerEvent int
}

// ExpandResult wraps the expanded occurrences and any truncation.
type ExpandResult struct {
	Occurrences []model.Activity
	// TruncatedEvents records definition ids that hit MaxOccurrencesPerEvent.
	TruncatedEvents []string
}

// Expand is the plain form of ExpandOccurrences used by callers that do not
// care about truncation. An inverted window yields only the definitions.
func Expand(defs []model.Activity, windowStart, windowEnd time.Time) []model.Activity {
	res, err := ExpandOccurrences(defs, ExpandConfig{
		DisplayLocation: windowStart.Location(),
		RangeStart:      windowStart,
		RangeEnd:        windowEnd,
	})
	if err != nil {
		out := make([]model.Activity, 0, len(defs))
		for _, d := range defs {
			out = append(out, d.WithResolvedColor())
		}
		return out
	}
	return res.Occurrences
}

// ExpandOccurrences turns stored definitions into the flat set of
// occurrences visible in [RangeStart, RangeEnd):
//
//   - every definition is emitted once, with its color resolved from its type
//   - daily definitions repeat on every day from the later of (start + 1 day)
//     and RangeStart
//   - weekly definitions repeat every 7 days from their original start,
//     skipping the original date itself
//
// Repeats keep the original wall-clock time and duration in
// DisplayLocation. Output order is not guaranteed; see SortByStart.
func ExpandOccurrences(defs []model.Activity, cfg ExpandConfig) (ExpandResult, error) {
	var result ExpandResult

	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return result, errors.New("expand: RangeEnd is before RangeStart")
	}
	if cfg.DisplayLocation == nil {
		cfg.DisplayLocation = time.Local
	}
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	all := make([]model.Activity, 0, len(defs))

	for _, def := range defs {
		occ, hitCap := expandDefinition(def, cfg)
		all = append(all, occ...)

		if hitCap {
			result.TruncatedEvents = append(result.TruncatedEvents, def.ID)
			appLog.Error("expand: truncated occurrences due to cap",
				errors.New("max occurrences reached"),
				"id", def.ID,
				"cap", cfg.MaxOccurrencesPerEvent,
			)
		}
	}

	result.Occurrences = all
	return result, nil
}

func expandDefinition(def model.Activity, cfg ExpandConfig) ([]model.Activity, bool) {
	base := def.In(cfg.DisplayLocation).WithResolvedColor()
	out := []model.Activity{base}

	var (
		starts []time.Time
		hitCap bool
		err    error
	)
	switch def.Recurrence {
	case model.RecurrenceDaily:
		starts, err = dailyStarts(base.Start, cfg)
	case model.RecurrenceWeekly:
		starts, err = weeklyStarts(base.Start, cfg)
	default:
		return out, false
	}
	if err != nil {
		appLog.Error("expand: failed to build recurrence rule", err, "id", def.ID, "recurrence", string(def.Recurrence))
		return out, false
	}

	if len(starts) > cfg.MaxOccurrencesPerEvent {
		starts = starts[:cfg.MaxOccurrencesPerEvent]
		hitCap = true
	}

	dur := def.End.Sub(def.Start)
	for _, s := range starts {
		out = append(out, makeOccurrence(base, def.Recurrence, s, dur))
	}
	return out, hitCap
}

// dailyStarts walks calendar days from the later of (start + 1 day) and
// RangeStart while strictly before RangeEnd, placing each occurrence at the
// original wall-clock time.
func dailyStarts(start time.Time, cfg ExpandConfig) ([]time.Time, error) {
	first := start.AddDate(0, 0, 1)
	if rs := cfg.RangeStart.In(cfg.DisplayLocation); rs.After(first) {
		first = rs
	}
	first = first.Truncate(time.Second)

	candidates, err := candidatesBetween(rrule.DAILY, first, first, cfg.RangeEnd.In(cfg.DisplayLocation))
	if err != nil {
		return nil, err
	}

	out := make([]time.Time, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, atClockOf(c, start))
	}
	return out, nil
}

// weeklyStarts steps whole weeks from the original start, keeping the
// candidates that fall in [RangeStart, RangeEnd) and are not on the
// original start's calendar date.
func weeklyStarts(start time.Time, cfg ExpandConfig) ([]time.Time, error) {
	anchor := start.Truncate(time.Second)
	candidates, err := candidatesBetween(rrule.WEEKLY, anchor,
		cfg.RangeStart.In(cfg.DisplayLocation),
		cfg.RangeEnd.In(cfg.DisplayLocation))
	if err != nil {
		return nil, err
	}

	out := make([]time.Time, 0, len(candidates))
	for _, c := range candidates {
		if sameDay(c, start) {
			continue
		}
		out = append(out, atClockOf(c, start))
	}
	return out, nil
}

// candidatesBetween returns rule instants t with from <= t < until.
func candidatesBetween(freq rrule.Frequency, dtstart, from, until time.Time) ([]time.Time, error) {
	if !from.Before(until) {
		return nil, nil
	}
	r, err := rrule.NewRRule(rrule.ROption{
		Freq:    freq,
		Dtstart: dtstart,
	})
	if err != nil {
		return nil, err
	}

	times := r.Between(from, until, true)
	// Between is inclusive on both ends; the window end is exclusive.
	for len(times) > 0 && !times[len(times)-1].Before(until) {
		times = times[:len(times)-1]
	}
	return times, nil
}

// makeOccurrence clones a color-resolved definition onto a new start.
func makeOccurrence(base model.Activity, rec model.Recurrence, start time.Time, dur time.Duration) model.Activity {
	occ := base
	occ.ID = model.OccurrenceID(base.ID, rec, start)
	occ.Start = start
	occ.End = start.Add(dur)
	return occ
}

// atClockOf returns day's calendar date at clock's hour/minute/second, in
// day's location.
func atClockOf(day, clock time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), 0, day.Location())
}
