package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ActivityType is the closed set of schedulable in-game activities.
type ActivityType string

const (
	TypeDailyDungeon  ActivityType = "dailyDungeon"
	TypeWeeklyDungeon ActivityType = "weeklyDungeon"
	TypeFieldBoss     ActivityType = "fieldBoss"
	TypeValhallaWar   ActivityType = "valhallaWar"
	TypeCustom        ActivityType = "custom"
)

// Recurrence controls how a stored definition repeats. The empty value is
// treated the same as RecurrenceNone.
type Recurrence string

const (
	RecurrenceNone   Recurrence = "none"
	RecurrenceDaily  Recurrence = "daily"
	RecurrenceWeekly Recurrence = "weekly"
)

// Repeats reports whether r produces generated occurrences.
func (r Recurrence) Repeats() bool {
	return r == RecurrenceDaily || r == RecurrenceWeekly
}

// Activity is either a stored definition or one concrete occurrence of it
// (after recurrence expansion). Occurrences carry a synthetic ID; see BaseID.
type Activity struct {
	ID    string       `json:"id"`
	Title string       `json:"title"`
	Type  ActivityType `json:"type"`

	// Start / End are wall-clock times in the display location.
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	// CharacterID is nil for global events.
	CharacterID *string    `json:"characterId"`
	IsGlobal    bool       `json:"isGlobal"`
	Recurrence  Recurrence `json:"recurrence,omitempty"`
	Color       string     `json:"color,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}

// Duration is End - Start; negative if the definition is malformed.
func (a Activity) Duration() time.Duration {
	return a.End.Sub(a.Start)
}

// OwnedBy reports whether a belongs to the given character.
func (a Activity) OwnedBy(characterID string) bool {
	return a.CharacterID != nil && *a.CharacterID == characterID
}

// WithResolvedColor returns a copy whose empty color has been filled from
// the type's default. Unknown types keep an empty color.
func (a Activity) WithResolvedColor() Activity {
	if a.Color == "" {
		a.Color = DefaultColor(a.Type)
	}
	return a
}

// In returns a copy with Start/End converted to loc.
func (a Activity) In(loc *time.Location) Activity {
	a.Start = a.Start.In(loc)
	a.End = a.End.In(loc)
	return a
}

// activityJSON mirrors Activity but lets start/end arrive either as ISO
// strings (how they are persisted) or as epoch milliseconds.
type activityJSON struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Type        ActivityType    `json:"type"`
	Start       json.RawMessage `json:"start"`
	End         json.RawMessage `json:"end"`
	CharacterID *string         `json:"characterId"`
	IsGlobal    bool            `json:"isGlobal"`
	Recurrence  Recurrence      `json:"recurrence,omitempty"`
	Color       string          `json:"color,omitempty"`
	Notes       string          `json:"notes,omitempty"`
}

func (a *Activity) UnmarshalJSON(data []byte) error {
	var raw activityJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	start, err := ParseTimestamp(raw.Start)
	if err != nil {
		return fmt.Errorf("activity %q start: %w", raw.ID, err)
	}
	end, err := ParseTimestamp(raw.End)
	if err != nil {
		return fmt.Errorf("activity %q end: %w", raw.ID, err)
	}
	*a = Activity{
		ID:          raw.ID,
		Title:       raw.Title,
		Type:        raw.Type,
		Start:       start,
		End:         end,
		CharacterID: raw.CharacterID,
		IsGlobal:    raw.IsGlobal,
		Recurrence:  raw.Recurrence,
		Color:       raw.Color,
		Notes:       raw.Notes,
	}
	return nil
}

// ErrMissingTimestamp is returned when a required start/end is absent or null.
var ErrMissingTimestamp = errors.New("timestamp is required")

// ParseTimestamp decodes a JSON timestamp given either as an RFC 3339
// string or as a number of milliseconds since the Unix epoch. A missing or
// null value is an error.
func ParseTimestamp(raw json.RawMessage) (time.Time, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}, ErrMissingTimestamp
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return time.Time{}, err
		}
		return time.Parse(time.RFC3339Nano, s)
	}
	var ms int64
	if err := json.Unmarshal(raw, &ms); err != nil {
		return time.Time{}, fmt.Errorf("timestamp must be an RFC 3339 string or epoch milliseconds: %w", err)
	}
	return time.UnixMilli(ms), nil
}

// StringPtr is a small helper for optional string fields.
func StringPtr(s string) *string {
	return &s
}
