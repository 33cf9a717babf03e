package ics

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	appLog "odincal/internal/log"
	"odincal/internal/model"
)

// ParseICS turns the VEVENTs of an ICS payload into activity definitions
// ready to be stored (ids are left empty).
//
//   - DTSTART/DTEND are converted to loc; a missing DTEND gets the type's
//     default duration.
//   - RRULE FREQ=DAILY / FREQ=WEEKLY map to the matching recurrence; any
//     other rule imports as a one-off.
//   - A CATEGORIES value naming an activity type selects it; otherwise the
//     activity is custom.
//   - Overrides (RECURRENCE-ID) are skipped.
func ParseICS(body []byte, loc *time.Location) ([]model.Activity, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}
	if loc == nil {
		loc = time.Local
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	out := make([]model.Activity, 0)
	for _, ve := range cal.Events() {
		a, ok, perr := parseVEvent(ve, loc)
		if perr != nil {
			appLog.Error("ics vevent parse failed", perr)
			continue
		}
		if ok {
			out = append(out, a)
		}
	}

	appLog.Info("ics parse completed", "event_count", len(out))
	return out, nil
}

func parseVEvent(ve *ical.VEvent, loc *time.Location) (model.Activity, bool, error) {
	var a model.Activity

	if ve.GetProperty(ical.ComponentProperty("RECURRENCE-ID")) != nil {
		return a, false, nil
	}

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		a.Title = p.Value
	}
	if strings.TrimSpace(a.Title) == "" {
		return a, false, errors.New("missing SUMMARY")
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		a.Notes = p.Value
	}

	a.Type = model.TypeCustom
	if p := ve.GetProperty(ical.ComponentPropertyCategories); p != nil {
		for _, c := range strings.Split(p.Value, ",") {
			if t := model.ActivityType(strings.TrimSpace(c)); t.Valid() {
				a.Type = t
				break
			}
		}
	}
	if p := ve.GetProperty(ical.ComponentProperty("COLOR")); p != nil {
		a.Color = p.Value
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return a, false, err
	}
	a.Start = start.In(loc)

	end, err := ve.GetEndAt()
	if err != nil || !end.After(start) {
		info, _ := model.LookupActivityType(a.Type)
		end = start.Add(time.Duration(info.DefaultDuration) * time.Minute)
	}
	a.End = end.In(loc)

	a.Recurrence = model.RecurrenceNone
	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		a.Recurrence = recurrenceFromRRule(p.Value, start)
	}

	return a, true, nil
}

// recurrenceFromRRule keeps only plain daily/weekly rules; anything with an
// interval, a bound, or BY-parts other than the start's own weekday is not
// representable and imports as a one-off.
func recurrenceFromRRule(raw string, start time.Time) model.Recurrence {
	opt, err := rrule.StrToROption(raw)
	if err != nil {
		appLog.Debug("ics: unparsable RRULE, importing as one-off", "rrule", raw)
		return model.RecurrenceNone
	}
	if opt.Interval > 1 || opt.Count > 0 || !opt.Until.IsZero() {
		return model.RecurrenceNone
	}
	switch opt.Freq {
	case rrule.DAILY:
		if len(opt.Byweekday) > 0 {
			return model.RecurrenceNone
		}
		return model.RecurrenceDaily
	case rrule.WEEKLY:
		switch len(opt.Byweekday) {
		case 0:
			return model.RecurrenceWeekly
		case 1:
			if opt.Byweekday[0].Day() == rruleDay(start.Weekday()) {
				return model.RecurrenceWeekly
			}
		}
		return model.RecurrenceNone
	default:
		return model.RecurrenceNone
	}
}

// rruleDay maps a time.Weekday (Sunday=0) onto rrule's numbering (Monday=0).
func rruleDay(d time.Weekday) int {
	return (int(d) + 6) % 7
}
