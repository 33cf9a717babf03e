package planner

import (
	"time"

	"odincal/internal/model"
)

type seedSlot struct {
	id       string
	title    string
	typ      model.ActivityType
	hour     int
	minute   int
	duration int // minutes
}

var globalSeed = []seedSlot{
	{"field-boss-afternoon", "Field Boss", model.TypeFieldBoss, 14, 0, 60},
	{"field-boss-night", "Field Boss", model.TypeFieldBoss, 22, 0, 60},
	{"valhalla-war-afternoon", "Valhalla War", model.TypeValhallaWar, 15, 0, 15},
	{"valhalla-war-evening", "Valhalla War", model.TypeValhallaWar, 20, 0, 15},
	{"valhalla-war-night", "Valhalla War", model.TypeValhallaWar, 23, 0, 15},
}

// GlobalEvents builds the built-in daily global schedule anchored on the
// calendar date of now in loc. It is both the initial state and the target
// of ResetGlobal.
func GlobalEvents(now time.Time, loc *time.Location) []model.Activity {
	if loc == nil {
		loc = time.Local
	}
	today := now.In(loc)

	out := make([]model.Activity, 0, len(globalSeed))
	for _, s := range globalSeed {
		start := time.Date(today.Year(), today.Month(), today.Day(), s.hour, s.minute, 0, 0, loc)
		out = append(out, model.Activity{
			ID:         s.id,
			Title:      s.title,
			Type:       s.typ,
			Start:      start,
			End:        start.Add(time.Duration(s.duration) * time.Minute),
			IsGlobal:   true,
			Recurrence: model.RecurrenceDaily,
			Color:      model.DefaultColor(s.typ),
		})
	}
	return out
}

// defaultMainCharacter seeds every new account.
func defaultMainCharacter(id string) model.Character {
	return model.Character{
		ID:      id,
		Name:    "Main Character",
		Type:    model.CharacterMain,
		Level:   1,
		Class:   "Dark Wizard",
		Color:   "#4c9be8",
		Enabled: true,
	}
}
