package planner

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"odincal/internal/model"
)

func userActivity(title string) model.Activity {
	start := time.Date(2024, 5, 1, 19, 0, 0, 0, time.UTC)
	return model.Activity{
		Title:       title,
		Type:        model.TypeDailyDungeon,
		Start:       start,
		End:         start.Add(time.Hour),
		CharacterID: model.StringPtr("c1"),
		Recurrence:  model.RecurrenceNone,
	}
}

func TestInit_SeedsGlobalEventsOnce(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEvents(t)

	events, err := e.List(ctx)
	require.NoError(t, err)
	require.Len(t, events, 5)
	for _, ev := range events {
		assert.True(t, ev.IsGlobal)
		assert.Nil(t, ev.CharacterID)
		assert.Equal(t, model.RecurrenceDaily, ev.Recurrence)
		assert.Equal(t, 1, ev.Start.Day())
	}
	assert.Equal(t, "field-boss-afternoon", events[0].ID)

	_, err = e.Add(ctx, userActivity("Dungeon"))
	require.NoError(t, err)
	require.NoError(t, e.Init(ctx))

	events, err = e.List(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 6, "second Init must not reseed")
}

func TestAdd_AssignsIDAndColor(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEvents(t)
	rev := e.Revision()

	a := userActivity("Dungeon")
	a.IsGlobal = true
	id, err := e.Add(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, "id-1", id)
	assert.Greater(t, e.Revision(), rev)

	got, ok, err := e.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "#4c9be8", got.Color)
	assert.False(t, got.IsGlobal)
}

func TestAdd_RejectsInvalid(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEvents(t)

	bad := userActivity("Dungeon")
	bad.End = bad.Start
	_, err := e.Add(ctx, bad)
	require.ErrorIs(t, err, ErrInvalid)

	zeroStart := userActivity("Dungeon")
	zeroStart.Start = time.Time{}
	_, err = e.Add(ctx, zeroStart)
	require.ErrorIs(t, err, ErrInvalid)

	noTitle := userActivity(" ")
	_, err = e.Add(ctx, noTitle)
	require.ErrorIs(t, err, ErrInvalid)

	events, err := e.List(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 5)
}

func TestDelete_GlobalIsViolationAndStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	e, kv := newTestEvents(t)
	before, _, err := kv.Get(ctx, eventsKey)
	require.NoError(t, err)
	rev := e.Revision()

	err = e.Delete(ctx, "field-boss-night")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvariantViolation))
	var iv *InvariantViolationError
	require.True(t, errors.As(err, &iv))
	assert.Contains(t, iv.Reason, "Field Boss")

	after, _, err := kv.Get(ctx, eventsKey)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
	assert.Equal(t, rev, e.Revision())
}

func TestDelete_UserAndUnknown(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEvents(t)
	id, err := e.Add(ctx, userActivity("Dungeon"))
	require.NoError(t, err)

	require.NoError(t, e.Delete(ctx, "nope"))
	require.NoError(t, e.Delete(ctx, id))

	_, ok, err := e.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGet_ResolvesSyntheticIDs(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEvents(t)

	for _, id := range []string{
		"field-boss-night",
		"field-boss-night_daily_2024-05-03T22:00:00.000Z",
		"field-boss-night_daily_2024-05-03T22:00:00.000Z_day_1",
	} {
		got, ok, err := e.Get(ctx, id)
		require.NoError(t, err)
		require.True(t, ok, id)
		assert.Equal(t, "field-boss-night", got.ID)
	}
}

func TestUpdate_TypeChangeResetsColor(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEvents(t)
	a := userActivity("Dungeon")
	a.Color = "#e74c3c"
	id, err := e.Add(ctx, a)
	require.NoError(t, err)

	typ := model.TypeFieldBoss
	require.NoError(t, e.Update(ctx, id, ActivityPatch{Type: &typ}))

	got, _, err := e.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.TypeFieldBoss, got.Type)
	assert.Equal(t, "#9c3939", got.Color)

	color := "#000000"
	title := "Renamed"
	require.NoError(t, e.Update(ctx, id, ActivityPatch{Type: &typ, Color: &color, Title: &title}))
	got, _, err = e.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "#000000", got.Color)
	assert.Equal(t, "Renamed", got.Title)
}

func TestUpdate_RejectsInvertedTimesAndIgnoresUnknown(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEvents(t)
	id, err := e.Add(ctx, userActivity("Dungeon"))
	require.NoError(t, err)

	early := time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)
	err = e.Update(ctx, id, ActivityPatch{End: &early})
	require.ErrorIs(t, err, ErrInvalid)

	rev := e.Revision()
	require.NoError(t, e.Update(ctx, "nope", ActivityPatch{End: &early}))
	assert.Equal(t, rev, e.Revision())
}

func TestActivityPatchJSON(t *testing.T) {
	var p ActivityPatch
	require.NoError(t, json.Unmarshal([]byte(`{"title":"x","start":1714579200000,"end":"2024-05-01T17:00:00Z"}`), &p))

	require.NotNil(t, p.Title)
	require.NotNil(t, p.Start)
	require.NotNil(t, p.End)
	assert.Nil(t, p.Type)
	assert.True(t, p.Start.Equal(time.UnixMilli(1714579200000)))
}

func TestAddShared(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEvents(t)

	ids, err := e.AddShared(ctx, userActivity("Raid"), []string{"c1", "c2", "c3"})
	require.NoError(t, err)
	require.Len(t, ids, 3)

	for i, id := range ids {
		got, ok, err := e.Get(ctx, id)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, []string{"c1", "c2", "c3"}[i], *got.CharacterID)
	}

	rev := e.Revision()
	ids, err = e.AddShared(ctx, userActivity("Raid"), nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Equal(t, rev, e.Revision())
}

func TestResetGlobal_KeepsUserEvents(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEvents(t)
	id, err := e.Add(ctx, userActivity("Dungeon"))
	require.NoError(t, err)

	title := "Edited boss"
	require.NoError(t, e.Update(ctx, "field-boss-night", ActivityPatch{Title: &title}))

	later := testNow.AddDate(0, 0, 10)
	require.NoError(t, e.ResetGlobal(ctx, later))

	events, err := e.List(ctx)
	require.NoError(t, err)
	require.Len(t, events, 6)
	assert.Equal(t, id, events[0].ID)
	for _, ev := range events[1:] {
		assert.True(t, ev.IsGlobal)
		assert.Equal(t, 11, ev.Start.Day())
		assert.NotEqual(t, "Edited boss", ev.Title)
	}
}

func TestProcessed_ExpandsWindow(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEvents(t)

	p, err := e.Processed(ctx, testNow)
	require.NoError(t, err)

	assert.True(t, p.WindowStart.Equal(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, p.WindowEnd.Equal(time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)))
	// each seeded daily definition: itself plus May 2..May 30
	assert.Len(t, p.Occurrences, 5*30)
	assert.Empty(t, p.TruncatedEvents)
	assert.Equal(t, e.Revision(), p.Revision)
}

func TestList_CorruptStoreSurfacesError(t *testing.T) {
	ctx := context.Background()
	e, kv := newTestEvents(t)
	require.NoError(t, kv.Put(ctx, eventsKey, []byte(`[{"id":"x","start":"not a time"}]`)))

	_, err := e.List(ctx)
	require.Error(t, err)
}
