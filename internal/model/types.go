package model

// ActivityTypeInfo is the static display/duration metadata for one type.
type ActivityTypeInfo struct {
	ID              ActivityType `json:"id"`
	Name            string       `json:"name"`
	DefaultDuration int          `json:"defaultDuration"` // minutes
	Color           string       `json:"color"`
	Description     string       `json:"description"`
}

// FallbackColor is used for rendering when neither the activity nor its
// type provides a color.
const FallbackColor = "#4c9be8"

var activityTypes = [...]ActivityTypeInfo{
	{
		ID:              TypeDailyDungeon,
		Name:            "Daily Dungeon",
		DefaultDuration: 60,
		Color:           "#4c9be8",
		Description:     "Complete daily dungeon for rewards (limit: 2 per character)",
	},
	{
		ID:              TypeWeeklyDungeon,
		Name:            "Weekly Dungeon",
		DefaultDuration: 480,
		Color:           "#9b59b6",
		Description:     "Complete weekly dungeon for significant rewards",
	},
	{
		ID:              TypeFieldBoss,
		Name:            "Field Boss",
		DefaultDuration: 60,
		Color:           "#9c3939",
		Description:     "Challenge powerful world bosses for valuable loot",
	},
	{
		ID:              TypeValhallaWar,
		Name:            "Valhalla War",
		DefaultDuration: 15,
		Color:           "#dca54c",
		Description:     "Participate in the faction-based Valhalla War event",
	},
	{
		ID:              TypeCustom,
		Name:            "Custom Activity",
		DefaultDuration: 60,
		Color:           "#7cb342",
		Description:     "Custom planned activity",
	},
}

// ActivityTypes returns a copy of the lookup table in display order.
func ActivityTypes() []ActivityTypeInfo {
	out := make([]ActivityTypeInfo, len(activityTypes))
	copy(out, activityTypes[:])
	return out
}

func LookupActivityType(t ActivityType) (ActivityTypeInfo, bool) {
	for _, info := range activityTypes {
		if info.ID == t {
			return info, true
		}
	}
	return ActivityTypeInfo{}, false
}

// DefaultColor returns the type's color, or "" for unknown types.
func DefaultColor(t ActivityType) string {
	info, ok := LookupActivityType(t)
	if !ok {
		return ""
	}
	return info.Color
}

// Valid reports whether t is one of the known activity types.
func (t ActivityType) Valid() bool {
	_, ok := LookupActivityType(t)
	return ok
}
