package planner

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"odincal/internal/store/memory"
)

var testNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func testOptions() Options {
	n := 0
	return Options{
		Location: time.UTC,
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
		Now: func() time.Time { return testNow },
	}
}

func newTestEvents(t *testing.T) (*Events, *memory.Store) {
	t.Helper()
	kv := memory.New()
	e := NewEvents(kv, testOptions())
	require.NoError(t, e.Init(context.Background()))
	return e, kv
}

func newTestRoster(t *testing.T) *Roster {
	t.Helper()
	r := NewRoster(memory.New(), testOptions())
	require.NoError(t, r.Init(context.Background()))
	return r
}
