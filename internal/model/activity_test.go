package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityUnmarshal_AcceptsISOAndEpochMillis(t *testing.T) {
	data := []byte(`{
		"id": "a1",
		"title": "Raid",
		"type": "weeklyDungeon",
		"start": "2024-05-01T14:00:00Z",
		"end": 1714579200000,
		"characterId": "c1",
		"isGlobal": false,
		"recurrence": "weekly"
	}`)

	var a Activity
	require.NoError(t, json.Unmarshal(data, &a))

	assert.Equal(t, "a1", a.ID)
	assert.Equal(t, TypeWeeklyDungeon, a.Type)
	assert.True(t, a.Start.Equal(time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC)))
	assert.True(t, a.End.Equal(time.UnixMilli(1714579200000)))
	require.NotNil(t, a.CharacterID)
	assert.Equal(t, "c1", *a.CharacterID)
	assert.True(t, a.OwnedBy("c1"))
	assert.Equal(t, RecurrenceWeekly, a.Recurrence)
}

func TestActivityUnmarshal_BadTimestamp(t *testing.T) {
	var a Activity
	err := json.Unmarshal([]byte(`{"id":"x","start":"yesterday","end":0}`), &a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `activity "x" start`)
}

func TestActivityUnmarshal_MissingOrNullTimestamp(t *testing.T) {
	for _, data := range []string{
		`{"id":"x","title":"t","end":"2024-05-01T15:00:00Z"}`,
		`{"id":"x","title":"t","start":null,"end":"2024-05-01T15:00:00Z"}`,
		`{"id":"x","title":"t","start":"2024-05-01T14:00:00Z","end":null}`,
	} {
		var a Activity
		err := json.Unmarshal([]byte(data), &a)
		require.Error(t, err, data)
		assert.ErrorIs(t, err, ErrMissingTimestamp, data)
	}
}

func TestActivityRoundTripKeepsNullCharacter(t *testing.T) {
	in := Activity{
		ID:       "g",
		Title:    "Field Boss",
		Type:     TypeFieldBoss,
		Start:    time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC),
		End:      time.Date(2024, 5, 1, 15, 0, 0, 0, time.UTC),
		IsGlobal: true,
	}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"characterId":null`)

	var out Activity
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Nil(t, out.CharacterID)
	assert.True(t, out.Start.Equal(in.Start))
}

func TestWithResolvedColor(t *testing.T) {
	assert.Equal(t, "#9c3939", Activity{Type: TypeFieldBoss}.WithResolvedColor().Color)
	assert.Equal(t, "#111111", Activity{Type: TypeFieldBoss, Color: "#111111"}.WithResolvedColor().Color)
	assert.Equal(t, "", Activity{Type: "unknown"}.WithResolvedColor().Color)
}

func TestLookupActivityType(t *testing.T) {
	info, ok := LookupActivityType(TypeValhallaWar)
	require.True(t, ok)
	assert.Equal(t, 15, info.DefaultDuration)
	assert.Equal(t, "#dca54c", info.Color)

	_, ok = LookupActivityType("nope")
	assert.False(t, ok)
	assert.Len(t, ActivityTypes(), 5)
}

func TestAccountCounts(t *testing.T) {
	acc := Account{Characters: []Character{
		{ID: "m", Type: CharacterMain},
		{ID: "s1", Type: CharacterSub},
		{ID: "s2", Type: CharacterSub},
	}}
	main, ok := acc.Main()
	require.True(t, ok)
	assert.Equal(t, "m", main.ID)
	assert.Len(t, acc.Subs(), 2)
	assert.Equal(t, 2, acc.CountType(CharacterSub))
}
