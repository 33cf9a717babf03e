package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"odincal/internal/model"
)

func TestSplit_SameDaySingleSegment(t *testing.T) {
	occ := def("x", model.RecurrenceNone, at(2024, 5, 1, 14, 0), time.Hour)
	occ.Color = "#123456"

	segs := Split(occ)

	require.Len(t, segs, 1)
	assert.Equal(t, "x", segs[0].ID)
	assert.Equal(t, "x", segs[0].OriginalID)
	assert.True(t, segs[0].Start.Equal(occ.Start))
	assert.True(t, segs[0].End.Equal(occ.End))
	assert.Equal(t, "#123456", segs[0].Color)
}

func TestSplit_CrossesMidnight(t *testing.T) {
	occ := def("x", model.RecurrenceNone, at(2024, 5, 1, 23, 0), 150*time.Minute)

	segs := Split(occ)

	require.Len(t, segs, 2)
	assert.Equal(t, "x_day_0", segs[0].ID)
	assert.Equal(t, "x_day_1", segs[1].ID)
	for _, s := range segs {
		assert.Equal(t, "x", s.OriginalID)
	}
	assert.True(t, segs[0].Start.Equal(at(2024, 5, 1, 23, 0)))
	assert.True(t, segs[0].End.Equal(endOfDay(at(2024, 5, 1, 0, 0))))
	assert.True(t, segs[1].Start.Equal(at(2024, 5, 2, 0, 0)))
	assert.True(t, segs[1].End.Equal(at(2024, 5, 2, 1, 30)))
}

func TestSplit_EndAtMidnightHasNoTrailingSegment(t *testing.T) {
	occ := def("x", model.RecurrenceNone, at(2024, 5, 1, 22, 0), 2*time.Hour)

	segs := Split(occ)

	require.Len(t, segs, 1)
	assert.Equal(t, "x_day_0", segs[0].ID)
	assert.True(t, segs[0].End.Equal(endOfDay(at(2024, 5, 1, 0, 0))))
}

func TestSplit_MultiDayFillsWholeDays(t *testing.T) {
	occ := def("w", model.RecurrenceNone, at(2024, 5, 1, 20, 0), 52*time.Hour) // ends May 4 00:00

	segs := Split(occ)

	require.Len(t, segs, 3)
	assert.Equal(t, "w_day_1", segs[1].ID)
	assert.True(t, segs[1].Start.Equal(at(2024, 5, 2, 0, 0)))
	assert.True(t, segs[1].End.Equal(endOfDay(at(2024, 5, 2, 0, 0))))
	assert.True(t, segs[2].Start.Equal(at(2024, 5, 3, 0, 0)))
}

func TestSplit_OriginalIDStripsOccurrenceSuffix(t *testing.T) {
	occ := def("abc", model.RecurrenceDaily, at(2024, 5, 2, 23, 0), 2*time.Hour)
	occ.ID = model.OccurrenceID("abc", model.RecurrenceDaily, occ.Start)

	segs := Split(occ)

	require.Len(t, segs, 2)
	assert.Equal(t, "abc", segs[0].OriginalID)
	assert.Equal(t, "abc", model.BaseID(segs[1].ID))
}

func TestSplit_Colors(t *testing.T) {
	global := def("g", model.RecurrenceDaily, at(2024, 5, 1, 14, 0), time.Hour)
	global.Type = model.TypeFieldBoss
	global.IsGlobal = true
	global.CharacterID = nil
	global.Color = "#000000"

	own := def("o", model.RecurrenceNone, at(2024, 5, 1, 14, 0), time.Hour)
	own.Color = "#abcdef"

	typed := def("t", model.RecurrenceNone, at(2024, 5, 1, 14, 0), time.Hour)
	typed.Type = model.TypeValhallaWar

	unknown := def("u", model.RecurrenceNone, at(2024, 5, 1, 14, 0), time.Hour)
	unknown.Type = "mystery"

	assert.Equal(t, "#9c3939", Split(global)[0].Color, "globals use the type color")
	assert.Equal(t, "#abcdef", Split(own)[0].Color)
	assert.Equal(t, "#dca54c", Split(typed)[0].Color)
	assert.Equal(t, model.FallbackColor, Split(unknown)[0].Color)
}

func TestSplitAll_PreservesOrder(t *testing.T) {
	a := def("a", model.RecurrenceNone, at(2024, 5, 2, 9, 0), time.Hour)
	b := def("b", model.RecurrenceNone, at(2024, 5, 1, 23, 0), 2*time.Hour)

	segs := SplitAll([]model.Activity{a, b})

	require.Len(t, segs, 3)
	assert.Equal(t, "a", segs[0].ID)
	assert.Equal(t, "b_day_0", segs[1].ID)
	assert.Equal(t, "b_day_1", segs[2].ID)
}
