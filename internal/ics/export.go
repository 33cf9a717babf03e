package ics

import (
	"time"

	ical "github.com/arran4/golang-ical"

	"odincal/internal/model"
)

// ExportConfig describes the produced feed.
type ExportConfig struct {
	// ProductID is written as PRODID.
	ProductID string
	// Stamp is used for DTSTAMP so output is reproducible; zero means now.
	Stamp time.Time
}

// Export renders occurrences (typically the expanded window) as an
// iCalendar feed. Each occurrence becomes a standalone VEVENT keyed by its
// occurrence id, so subscribers never need to evaluate recurrence.
func Export(occ []model.Activity, cfg ExportConfig) []byte {
	if cfg.ProductID == "" {
		cfg.ProductID = "-//odincal//EN"
	}
	if cfg.Stamp.IsZero() {
		cfg.Stamp = time.Now()
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(cfg.ProductID)

	for _, o := range occ {
		ev := cal.AddEvent(o.ID + "@odincal")
		ev.SetDtStampTime(cfg.Stamp)
		ev.SetStartAt(o.Start)
		ev.SetEndAt(o.End)
		ev.SetSummary(o.Title)
		if o.Notes != "" {
			ev.SetDescription(o.Notes)
		}
		ev.SetProperty(ical.ComponentPropertyCategories, string(o.Type))
		if c := o.WithResolvedColor().Color; c != "" {
			ev.SetProperty(ical.ComponentProperty("COLOR"), c)
		}
	}

	return []byte(cal.Serialize())
}
