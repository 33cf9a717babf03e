package schedule

import (
	"github.com/google/uuid"

	"odincal/internal/model"
)

// Fanout schedules one template for several characters at once. Each
// result is an independent activity with a fresh id from newID (uuid v4
// when nil), owned by one character and never global. The template's id is
// ignored. No character ids means no activities.
func Fanout(tmpl model.Activity, characterIDs []string, newID func() string) []model.Activity {
	if len(characterIDs) == 0 {
		return nil
	}
	if newID == nil {
		newID = uuid.NewString
	}

	color := tmpl.Color
	if color == "" {
		color = model.DefaultColor(tmpl.Type)
	}

	out := make([]model.Activity, 0, len(characterIDs))
	for _, cid := range characterIDs {
		a := tmpl
		a.ID = newID()
		a.CharacterID = model.StringPtr(cid)
		a.IsGlobal = false
		a.Color = color
		out = append(out, a)
	}
	return out
}
