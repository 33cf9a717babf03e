package model

// CharacterType distinguishes the single main character of an account from
// its alts.
type CharacterType string

const (
	CharacterMain CharacterType = "main"
	CharacterSub  CharacterType = "sub"
)

type Character struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Type    CharacterType `json:"type"`
	Level   int           `json:"level"`
	Class   string        `json:"class"`
	Color   string        `json:"color"`
	Enabled bool          `json:"enabled"`
}

// Account owns an ordered list of characters.
type Account struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Characters []Character `json:"characters"`
}

// Main returns the account's main character, if any.
func (a Account) Main() (Character, bool) {
	for _, c := range a.Characters {
		if c.Type == CharacterMain {
			return c, true
		}
	}
	return Character{}, false
}

// Subs returns the account's sub characters in order.
func (a Account) Subs() []Character {
	var out []Character
	for _, c := range a.Characters {
		if c.Type == CharacterSub {
			out = append(out, c)
		}
	}
	return out
}

// CountType returns how many characters of type t the account holds.
func (a Account) CountType(t CharacterType) int {
	n := 0
	for _, c := range a.Characters {
		if c.Type == t {
			n++
		}
	}
	return n
}

// CharacterClasses are the classes offered when creating a character.
var CharacterClasses = []string{
	"Dark Wizard", "Archmage", "Priest", "Paladin",
	"Assassin", "Sniper", "Defender", "Berserker",
}

// CharacterColors are the palette offered for character badges.
var CharacterColors = []string{"#4c9be8", "#e74c3c", "#2ecc71", "#9b59b6", "#e67e22", "#1abc9c"}
