package model

import "time"

// Segment is the part of one occurrence that falls on a single calendar
// day. OriginalID points at the stored definition so a selected segment
// can be resolved back to the editable record.
type Segment struct {
	ID          string       `json:"id"`
	OriginalID  string       `json:"originalId"`
	Title       string       `json:"title"`
	Type        ActivityType `json:"type"`
	Start       time.Time    `json:"start"`
	End         time.Time    `json:"end"`
	CharacterID *string      `json:"characterId"`
	IsGlobal    bool         `json:"isGlobal"`
	Color       string       `json:"color"`
	Notes       string       `json:"notes,omitempty"`
}
