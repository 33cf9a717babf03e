package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	appLog "odincal/internal/log"
	"odincal/internal/model"
	"odincal/internal/schedule"
	"odincal/internal/store"
)

const eventsKey = "events"

// Options tune the planner services. Zero values fall back to defaults.
type Options struct {
	// Location is the display timezone; nil means time.Local.
	Location *time.Location
	// HalfRangeDays is half the width of the rolling expansion window.
	HalfRangeDays int
	// MaxSubCharacters caps sub characters per account.
	MaxSubCharacters int
	// NewID generates ids for new records; uuid v4 when nil.
	NewID func() string
	// Now is the clock used only for seeding; nil means time.Now.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.HalfRangeDays <= 0 {
		o.HalfRangeDays = schedule.DefaultHalfRangeDays
	}
	if o.MaxSubCharacters <= 0 {
		o.MaxSubCharacters = DefaultMaxSubCharacters
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Events is the activity store: an ordered list of definitions persisted
// under one key. All mutations are serialized.
type Events struct {
	mu   sync.Mutex
	kv   store.KV
	opts Options
	rev  atomic.Uint64
}

func NewEvents(kv store.KV, opts Options) *Events {
	return &Events{kv: kv, opts: opts.withDefaults()}
}

// Revision increases on every save; callers key caches on it.
func (e *Events) Revision() uint64 {
	return e.rev.Load()
}

// Init seeds the global schedule on first run. It is safe to call on every
// startup.
func (e *Events) Init(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, ok, err := e.kv.Get(ctx, eventsKey)
	if err != nil {
		return fmt.Errorf("init events: %w", err)
	}
	if ok {
		return nil
	}
	seed := GlobalEvents(e.opts.Now(), e.opts.Location)
	appLog.Info("seeding global events", "count", len(seed))
	return e.save(ctx, seed)
}

func (e *Events) load(ctx context.Context) ([]model.Activity, error) {
	def := GlobalEvents(e.opts.Now(), e.opts.Location)
	return store.Load(ctx, e.kv, eventsKey, def)
}

func (e *Events) save(ctx context.Context, events []model.Activity) error {
	if err := store.Save(ctx, e.kv, eventsKey, events); err != nil {
		return err
	}
	e.rev.Add(1)
	return nil
}

// List returns the stored definitions in insertion order.
func (e *Events) List(ctx context.Context) ([]model.Activity, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.load(ctx)
}

// Add stores a new user definition under a fresh id and returns the id.
// Only the built-in schedule is global.
func (e *Events) Add(ctx context.Context, a model.Activity) (string, error) {
	if err := validate(a); err != nil {
		return "", err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	events, err := e.load(ctx)
	if err != nil {
		return "", err
	}

	a = a.WithResolvedColor()
	a.ID = e.opts.NewID()
	a.IsGlobal = false
	if err := e.save(ctx, append(events, a)); err != nil {
		return "", err
	}
	appLog.Debug("event added", "id", a.ID, "type", string(a.Type), "recurrence", string(a.Recurrence))
	return a.ID, nil
}

// AddShared stores one independent copy of tmpl per character id. An empty
// id list is a no-op.
func (e *Events) AddShared(ctx context.Context, tmpl model.Activity, characterIDs []string) ([]string, error) {
	if len(characterIDs) == 0 {
		return nil, nil
	}
	if err := validate(tmpl); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	events, err := e.load(ctx)
	if err != nil {
		return nil, err
	}

	fresh := schedule.Fanout(tmpl, characterIDs, e.opts.NewID)
	ids := make([]string, 0, len(fresh))
	for _, a := range fresh {
		ids = append(ids, a.ID)
	}
	if err := e.save(ctx, append(events, fresh...)); err != nil {
		return nil, err
	}
	appLog.Debug("shared event added", "count", len(fresh), "type", string(tmpl.Type))
	return ids, nil
}

// Update patches the definition with the given id. Unknown ids are a no-op.
func (e *Events) Update(ctx context.Context, id string, p ActivityPatch) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	events, err := e.load(ctx)
	if err != nil {
		return err
	}

	for i := range events {
		if events[i].ID != id {
			continue
		}
		updated := p.apply(events[i])
		if err := validate(updated); err != nil {
			return err
		}
		events[i] = updated
		return e.save(ctx, events)
	}
	return nil
}

// Delete removes a user definition. Global definitions cannot be deleted;
// unknown ids are a no-op.
func (e *Events) Delete(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	events, err := e.load(ctx)
	if err != nil {
		return err
	}

	kept := events[:0:0]
	found := false
	for _, ev := range events {
		if ev.ID == id {
			if ev.IsGlobal {
				return violation("cannot delete global event %q", ev.Title)
			}
			found = true
			continue
		}
		kept = append(kept, ev)
	}
	if !found {
		return nil
	}
	return e.save(ctx, kept)
}

// Get resolves any id, including synthetic occurrence and segment ids, to
// the stored definition.
func (e *Events) Get(ctx context.Context, id string) (model.Activity, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	events, err := e.load(ctx)
	if err != nil {
		return model.Activity{}, false, err
	}
	base := model.BaseID(id)
	for _, ev := range events {
		if ev.ID == base {
			return ev, true, nil
		}
	}
	return model.Activity{}, false, nil
}

// ResetGlobal discards every global definition and reinstates the built-in
// schedule anchored on now. User definitions keep their order.
func (e *Events) ResetGlobal(ctx context.Context, now time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	events, err := e.load(ctx)
	if err != nil {
		return err
	}

	kept := make([]model.Activity, 0, len(events))
	for _, ev := range events {
		if !ev.IsGlobal {
			kept = append(kept, ev)
		}
	}
	seed := GlobalEvents(now, e.opts.Location)
	appLog.Info("global events reset", "removed", len(events)-len(kept), "seeded", len(seed))
	return e.save(ctx, append(kept, seed...))
}

// Processed is the expansion of the stored definitions for one window.
type Processed struct {
	schedule.ExpandResult
	WindowStart time.Time
	WindowEnd   time.Time
	Revision    uint64
}

// Processed expands the stored definitions over the rolling window centred
// on now's calendar date.
func (e *Events) Processed(ctx context.Context, now time.Time) (Processed, error) {
	e.mu.Lock()
	events, err := e.load(ctx)
	rev := e.rev.Load()
	e.mu.Unlock()
	if err != nil {
		return Processed{}, err
	}

	ws, we := schedule.Window(now, e.opts.HalfRangeDays, e.opts.Location)
	res, err := schedule.ExpandOccurrences(events, schedule.ExpandConfig{
		DisplayLocation: e.opts.Location,
		RangeStart:      ws,
		RangeEnd:        we,
	})
	if err != nil {
		return Processed{}, err
	}
	return Processed{ExpandResult: res, WindowStart: ws, WindowEnd: we, Revision: rev}, nil
}

// validate applies the form-layer rules to a definition about to be stored.
func validate(a model.Activity) error {
	if strings.TrimSpace(a.Title) == "" {
		return invalid("title is required")
	}
	if !a.Type.Valid() {
		return invalid("unknown activity type %q", a.Type)
	}
	switch a.Recurrence {
	case "", model.RecurrenceNone, model.RecurrenceDaily, model.RecurrenceWeekly:
	default:
		return invalid("unknown recurrence %q", a.Recurrence)
	}
	if a.Start.IsZero() || a.End.IsZero() {
		return invalid("start and end times are required")
	}
	if !a.End.After(a.Start) {
		return invalid("end time must be after start time")
	}
	return nil
}

// ActivityPatch lists the fields to change; nil fields are left alone.
type ActivityPatch struct {
	Title       *string
	Type        *model.ActivityType
	Start       *time.Time
	End         *time.Time
	CharacterID *string
	Recurrence  *model.Recurrence
	Color       *string
	Notes       *string
}

func (p ActivityPatch) apply(a model.Activity) model.Activity {
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.Type != nil {
		a.Type = *p.Type
		if p.Color == nil {
			a.Color = model.DefaultColor(a.Type)
		}
	}
	if p.Start != nil {
		a.Start = *p.Start
	}
	if p.End != nil {
		a.End = *p.End
	}
	if p.CharacterID != nil {
		a.CharacterID = model.StringPtr(*p.CharacterID)
	}
	if p.Recurrence != nil {
		a.Recurrence = *p.Recurrence
	}
	if p.Color != nil {
		a.Color = *p.Color
	}
	if p.Notes != nil {
		a.Notes = *p.Notes
	}
	return a
}

func (p *ActivityPatch) UnmarshalJSON(data []byte) error {
	var raw struct {
		Title       *string             `json:"title"`
		Type        *model.ActivityType `json:"type"`
		Start       json.RawMessage     `json:"start"`
		End         json.RawMessage     `json:"end"`
		CharacterID *string             `json:"characterId"`
		Recurrence  *model.Recurrence   `json:"recurrence"`
		Color       *string             `json:"color"`
		Notes       *string             `json:"notes"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = ActivityPatch{
		Title:       raw.Title,
		Type:        raw.Type,
		CharacterID: raw.CharacterID,
		Recurrence:  raw.Recurrence,
		Color:       raw.Color,
		Notes:       raw.Notes,
	}
	if len(raw.Start) > 0 && string(raw.Start) != "null" {
		t, err := model.ParseTimestamp(raw.Start)
		if err != nil {
			return fmt.Errorf("start: %w", err)
		}
		p.Start = &t
	}
	if len(raw.End) > 0 && string(raw.End) != "null" {
		t, err := model.ParseTimestamp(raw.End)
		if err != nil {
			return fmt.Errorf("end: %w", err)
		}
		p.End = &t
	}
	return nil
}
