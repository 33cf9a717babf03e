package planner

import (
	"context"
	"strings"
	"sync"

	appLog "odincal/internal/log"
	"odincal/internal/model"
	"odincal/internal/store"
)

const (
	rosterKey = "roster"

	// DefaultMaxSubCharacters is the sub-character cap per account.
	DefaultMaxSubCharacters = 4
)

// Roster manages accounts and their characters, enforcing the per-account
// character invariants. A violation leaves the stored state untouched.
type Roster struct {
	mu   sync.Mutex
	kv   store.KV
	opts Options
}

func NewRoster(kv store.KV, opts Options) *Roster {
	return &Roster{kv: kv, opts: opts.withDefaults()}
}

// MaxSubCharacters reports the configured cap.
func (r *Roster) MaxSubCharacters() int {
	return r.opts.MaxSubCharacters
}

func (r *Roster) newAccount(name string) model.Account {
	return model.Account{
		ID:         r.opts.NewID(),
		Name:       name,
		Characters: []model.Character{defaultMainCharacter(r.opts.NewID())},
	}
}

// Init stores the initial single account on first run.
func (r *Roster) Init(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok, err := r.kv.Get(ctx, rosterKey)
	if err != nil || ok {
		return err
	}
	acc := r.newAccount("Account 1")
	appLog.Info("seeding initial account", "id", acc.ID)
	return r.saveAll(ctx, []model.Account{acc}, acc.ID)
}

// state loads accounts and the active id, healing both: an empty list gets
// a fresh account and a dangling active id falls back to the first account.
func (r *Roster) state(ctx context.Context) ([]model.Account, string, error) {
	st, err := store.Load(ctx, r.kv, rosterKey, rosterState{})
	if err != nil {
		return nil, "", err
	}
	accounts, current := st.Accounts, st.CurrentAccountID

	healed := false
	if len(accounts) == 0 {
		accounts = []model.Account{r.newAccount("Account 1")}
		healed = true
	}
	if indexOfAccount(accounts, current) < 0 {
		current = accounts[0].ID
		healed = true
	}
	if healed {
		appLog.Info("active account healed", "current", current)
		if err := r.saveAll(ctx, accounts, current); err != nil {
			return nil, "", err
		}
	}
	return accounts, current, nil
}

// rosterState is persisted as one value so the account list and the active
// id are always written together.
type rosterState struct {
	Accounts         []model.Account `json:"accounts"`
	CurrentAccountID string          `json:"currentAccountId"`
}

func (r *Roster) saveAll(ctx context.Context, accounts []model.Account, current string) error {
	return store.Save(ctx, r.kv, rosterKey, rosterState{Accounts: accounts, CurrentAccountID: current})
}

// Accounts returns all accounts and the active account id.
func (r *Roster) Accounts(ctx context.Context) ([]model.Account, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state(ctx)
}

// Current returns the active account.
func (r *Roster) Current(ctx context.Context) (model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	accounts, current, err := r.state(ctx)
	if err != nil {
		return model.Account{}, err
	}
	return accounts[indexOfAccount(accounts, current)], nil
}

// Switch makes id the active account. Unknown ids are a no-op.
func (r *Roster) Switch(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	accounts, _, err := r.state(ctx)
	if err != nil {
		return err
	}
	if indexOfAccount(accounts, id) < 0 {
		return nil
	}
	return r.saveAll(ctx, accounts, id)
}

// AddAccount creates an account with a default main character.
func (r *Roster) AddAccount(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("account name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	accounts, current, err := r.state(ctx)
	if err != nil {
		return "", err
	}
	acc := r.newAccount(name)
	if err := r.saveAll(ctx, append(accounts, acc), current); err != nil {
		return "", err
	}
	return acc.ID, nil
}

// RenameAccount changes an account's name. Unknown ids are a no-op.
func (r *Roster) RenameAccount(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return invalid("account name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	accounts, current, err := r.state(ctx)
	if err != nil {
		return err
	}
	i := indexOfAccount(accounts, id)
	if i < 0 {
		return nil
	}
	accounts[i].Name = name
	return r.saveAll(ctx, accounts, current)
}

// DeleteAccount removes an account and its characters. The last account
// cannot be deleted; deleting the active account activates the first
// remaining one.
func (r *Roster) DeleteAccount(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	accounts, current, err := r.state(ctx)
	if err != nil {
		return err
	}
	i := indexOfAccount(accounts, id)
	if i < 0 {
		return nil
	}
	if len(accounts) <= 1 {
		return violation("cannot delete the last account")
	}

	kept := make([]model.Account, 0, len(accounts)-1)
	kept = append(kept, accounts[:i]...)
	kept = append(kept, accounts[i+1:]...)
	if current == id {
		current = kept[0].ID
	}
	return r.saveAll(ctx, kept, current)
}

// Characters lists one account's characters.
func (r *Roster) Characters(ctx context.Context, accountID string) ([]model.Character, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	accounts, _, err := r.state(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOfAccount(accounts, accountID)
	if i < 0 {
		return nil, ErrNotFound
	}
	return accounts[i].Characters, nil
}

// AllCharacters lists characters across every account, in account order.
func (r *Roster) AllCharacters(ctx context.Context) ([]model.Character, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	accounts, _, err := r.state(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.Character
	for _, a := range accounts {
		out = append(out, a.Characters...)
	}
	return out, nil
}

// GetCharacter finds a character and the id of the account owning it.
func (r *Roster) GetCharacter(ctx context.Context, id string) (model.Character, string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	accounts, _, err := r.state(ctx)
	if err != nil {
		return model.Character{}, "", false, err
	}
	ai, ci := findCharacter(accounts, id)
	if ai < 0 {
		return model.Character{}, "", false, nil
	}
	return accounts[ai].Characters[ci], accounts[ai].ID, true, nil
}

// AddCharacter adds a character to an account and returns its new id.
func (r *Roster) AddCharacter(ctx context.Context, accountID string, c model.Character) (string, error) {
	if err := validateCharacter(c); err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	accounts, current, err := r.state(ctx)
	if err != nil {
		return "", err
	}
	i := indexOfAccount(accounts, accountID)
	if i < 0 {
		return "", ErrNotFound
	}

	acc := accounts[i]
	switch c.Type {
	case model.CharacterMain:
		if acc.CountType(model.CharacterMain) > 0 {
			return "", violation("a main character already exists")
		}
	case model.CharacterSub:
		if acc.CountType(model.CharacterSub) >= r.opts.MaxSubCharacters {
			return "", violation("maximum of %d sub-characters allowed", r.opts.MaxSubCharacters)
		}
	}

	c.ID = r.opts.NewID()
	chars := make([]model.Character, 0, len(acc.Characters)+1)
	chars = append(chars, acc.Characters...)
	accounts[i].Characters = append(chars, c)
	if err := r.saveAll(ctx, accounts, current); err != nil {
		return "", err
	}
	return c.ID, nil
}

// UpdateCharacter patches a character. Type changes must keep exactly one
// main character and respect the sub cap. Unknown ids are a no-op.
func (r *Roster) UpdateCharacter(ctx context.Context, id string, p CharacterPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	accounts, current, err := r.state(ctx)
	if err != nil {
		return err
	}
	ai, ci := findCharacter(accounts, id)
	if ai < 0 {
		return nil
	}

	acc := accounts[ai]
	old := acc.Characters[ci]
	updated := p.apply(old)
	if err := validateCharacter(updated); err != nil {
		return err
	}

	if updated.Type != old.Type {
		switch updated.Type {
		case model.CharacterSub:
			if acc.CountType(model.CharacterMain) <= 1 {
				return violation("at least one main character is required")
			}
			if acc.CountType(model.CharacterSub) >= r.opts.MaxSubCharacters {
				return violation("maximum of %d sub-characters allowed", r.opts.MaxSubCharacters)
			}
		case model.CharacterMain:
			if acc.CountType(model.CharacterMain) > 0 {
				return violation("a main character already exists")
			}
		}
	}

	chars := make([]model.Character, len(acc.Characters))
	copy(chars, acc.Characters)
	chars[ci] = updated
	accounts[ai].Characters = chars
	return r.saveAll(ctx, accounts, current)
}

// DeleteCharacter removes a character. The only main character of an
// account cannot be removed. Unknown ids are a no-op.
func (r *Roster) DeleteCharacter(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	accounts, current, err := r.state(ctx)
	if err != nil {
		return err
	}
	ai, ci := findCharacter(accounts, id)
	if ai < 0 {
		return nil
	}

	acc := accounts[ai]
	if acc.Characters[ci].Type == model.CharacterMain && acc.CountType(model.CharacterMain) <= 1 {
		return violation("at least one main character is required")
	}

	chars := make([]model.Character, 0, len(acc.Characters)-1)
	chars = append(chars, acc.Characters[:ci]...)
	chars = append(chars, acc.Characters[ci+1:]...)
	accounts[ai].Characters = chars
	return r.saveAll(ctx, accounts, current)
}

func validateCharacter(c model.Character) error {
	if strings.TrimSpace(c.Name) == "" {
		return invalid("character name is required")
	}
	if c.Type != model.CharacterMain && c.Type != model.CharacterSub {
		return invalid("unknown character type %q", c.Type)
	}
	return nil
}

func indexOfAccount(accounts []model.Account, id string) int {
	for i, a := range accounts {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func findCharacter(accounts []model.Account, id string) (int, int) {
	for ai, a := range accounts {
		for ci, c := range a.Characters {
			if c.ID == id {
				return ai, ci
			}
		}
	}
	return -1, -1
}

// CharacterPatch lists the fields to change; nil fields are left alone.
type CharacterPatch struct {
	Name    *string              `json:"name"`
	Type    *model.CharacterType `json:"type"`
	Level   *int                 `json:"level"`
	Class   *string              `json:"class"`
	Color   *string              `json:"color"`
	Enabled *bool                `json:"enabled"`
}

func (p CharacterPatch) apply(c model.Character) model.Character {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Type != nil {
		c.Type = *p.Type
	}
	if p.Level != nil {
		c.Level = *p.Level
	}
	if p.Class != nil {
		c.Class = *p.Class
	}
	if p.Color != nil {
		c.Color = *p.Color
	}
	if p.Enabled != nil {
		c.Enabled = *p.Enabled
	}
	return c
}
