package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBaseID(t *testing.T) {
	cases := map[string]string{
		"abc123":                                          "abc123",
		"abc123_weekly_2024-05-01T14:00:00.000Z":          "abc123",
		"abc123_daily_2024-05-01T14:00:00.000Z":           "abc123",
		"abc123_day_2":                                    "abc123",
		"abc123_daily_2024-05-01T23:00:00.000Z_day_1":     "abc123",
		"field-boss-night_daily_2024-05-01T13:00:00.000Z": "field-boss-night",
		"with_underscore":                                 "with_underscore",
	}
	for in, want := range cases {
		assert.Equal(t, want, BaseID(in), in)
	}
}

func TestOccurrenceIDUsesUTCMillis(t *testing.T) {
	seoul := time.FixedZone("KST", 9*3600)
	start := time.Date(2024, 5, 1, 23, 0, 0, 0, seoul)

	got := OccurrenceID("abc", RecurrenceDaily, start)

	assert.Equal(t, "abc_daily_2024-05-01T14:00:00.000Z", got)
	assert.True(t, IsSynthetic(got))
	assert.False(t, IsSynthetic("abc"))
}

func TestSegmentID(t *testing.T) {
	assert.Equal(t, "abc_day_0", SegmentID("abc", 0))
	assert.Equal(t, "abc", BaseID(SegmentID("abc", 3)))
}
