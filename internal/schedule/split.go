package schedule

import "odincal/internal/model"

// Split cuts one occurrence into per-day segments for a day grid.
// Calendar dates are taken in the location of occ.Start.
//
// A same-day occurrence yields a single segment keeping its id. Otherwise
// the first segment runs to the end of the start day, each whole
// intervening day gets a full-day segment, and a trailing segment from
// midnight to End is added only when End is past midnight. Segment n has
// id {occ.ID}_day_{n}.
func Split(occ model.Activity) []model.Segment {
	start := occ.Start
	end := occ.End.In(start.Location())

	tmpl := model.Segment{
		OriginalID:  model.BaseID(occ.ID),
		Title:       occ.Title,
		Type:        occ.Type,
		CharacterID: occ.CharacterID,
		IsGlobal:    occ.IsGlobal,
		Color:       segmentColor(occ),
		Notes:       occ.Notes,
	}

	if sameDay(start, end) {
		one := tmpl
		one.ID = occ.ID
		one.Start = start
		one.End = end
		return []model.Segment{one}
	}

	dayCount := daysBetween(start, end)
	out := make([]model.Segment, 0, max(dayCount+1, 1))

	first := tmpl
	first.ID = model.SegmentID(occ.ID, 0)
	first.Start = start
	first.End = endOfDay(start)
	out = append(out, first)

	for i := 1; i < dayCount; i++ {
		day := start.AddDate(0, 0, i)
		mid := tmpl
		mid.ID = model.SegmentID(occ.ID, i)
		mid.Start = startOfDay(day)
		mid.End = endOfDay(day)
		out = append(out, mid)
	}

	if lastStart := startOfDay(end); end.After(lastStart) {
		last := tmpl
		last.ID = model.SegmentID(occ.ID, dayCount)
		last.Start = lastStart
		last.End = end
		out = append(out, last)
	}

	return out
}

// SplitAll splits every occurrence, preserving input order.
func SplitAll(occ []model.Activity) []model.Segment {
	out := make([]model.Segment, 0, len(occ))
	for _, o := range occ {
		out = append(out, Split(o)...)
	}
	return out
}

// segmentColor: globals always render in their type color; everything
// else prefers its own color.
func segmentColor(occ model.Activity) string {
	if !occ.IsGlobal && occ.Color != "" {
		return occ.Color
	}
	if c := model.DefaultColor(occ.Type); c != "" {
		return c
	}
	return model.FallbackColor
}
