package schedule

import (
	"testing"
	"time"
)

func TestWindow_CentredOnLocalMidnight(t *testing.T) {
	seoul, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	// 2024-05-01 20:00 UTC is already May 2 in Seoul.
	now := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)

	ws, we := Window(now, 30, seoul)

	wantStart := time.Date(2024, 4, 2, 0, 0, 0, 0, seoul)
	wantEnd := time.Date(2024, 6, 1, 0, 0, 0, 0, seoul)
	if !ws.Equal(wantStart) || !we.Equal(wantEnd) {
		t.Fatalf("window = [%s, %s), want [%s, %s)", ws, we, wantStart, wantEnd)
	}
}

func TestWindow_NonPositiveHalfFallsBack(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	ws, we := Window(now, 0, time.UTC)

	if got := we.Sub(ws); got != 2*DefaultHalfRangeDays*24*time.Hour {
		t.Fatalf("window width = %s", got)
	}
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2024, 5, 1, 23, 0, 0, 0, time.UTC)
	b := time.Date(2024, 5, 3, 1, 0, 0, 0, time.UTC)
	if got := daysBetween(a, b); got != 2 {
		t.Fatalf("daysBetween = %d, want 2", got)
	}
	if got := daysBetween(a, a); got != 0 {
		t.Fatalf("daysBetween same day = %d", got)
	}
}
