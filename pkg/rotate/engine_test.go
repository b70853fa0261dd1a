package rotate

import (
	"testing"
	"time"
)

func mustParse(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("time.Parse(%q) error = %v", s, err)
	}
	return ts
}

// Scenario S4: daily rotate transitions.
func TestEngineDailyTransitions(t *testing.T) {
	e := NewEngine(ModeDaily)
	e.Initialize(mustParse(t, "2025-01-01T12:00:00Z"))

	if got := e.Update(mustParse(t, "2025-01-01T23:59:59Z")); got {
		t.Fatalf("Update() same-day = true, want false")
	}
	if got := e.Update(mustParse(t, "2025-01-02T00:00:00Z")); !got {
		t.Fatalf("Update() day-boundary = false, want true")
	}
	if got := e.Update(mustParse(t, "2025-01-02T10:00:00Z")); got {
		t.Fatalf("Update() same-day-after-rotate = true, want false")
	}
}

func TestEngineHourlyTransitions(t *testing.T) {
	e := NewEngine(ModeHourly)
	e.Initialize(mustParse(t, "2025-01-01T12:30:00Z"))
	if got := e.Update(mustParse(t, "2025-01-01T12:59:59Z")); got {
		t.Fatalf("Update() same-hour = true, want false")
	}
	if got := e.Update(mustParse(t, "2025-01-01T13:00:00Z")); !got {
		t.Fatalf("Update() hour-boundary = false, want true")
	}
}

func TestEngineMonthlyTransitions(t *testing.T) {
	e := NewEngine(ModeMonthly)
	e.Initialize(mustParse(t, "2025-01-31T23:00:00Z"))
	if got := e.Update(mustParse(t, "2025-02-01T00:00:00Z")); !got {
		t.Fatalf("Update() month-boundary = false, want true")
	}
}

func TestEngineWeeklyTransitionsOnMonday(t *testing.T) {
	e := NewEngine(ModeWeekly)
	// 2025-01-05 is a Sunday.
	e.Initialize(mustParse(t, "2025-01-05T23:00:00Z"))
	if got := e.Update(mustParse(t, "2025-01-05T23:59:59Z")); got {
		t.Fatalf("Update() same-week = true, want false")
	}
	if got := e.Update(mustParse(t, "2025-01-06T00:00:00Z")); !got {
		t.Fatalf("Update() week-boundary (Monday) = false, want true")
	}
}

func TestEngineModeNoneNeverRotates(t *testing.T) {
	e := NewEngine(ModeNone)
	e.Initialize(mustParse(t, "2025-01-01T00:00:00Z"))
	if got := e.Update(mustParse(t, "2030-01-01T00:00:00Z")); got {
		t.Fatalf("Update() with ModeNone = true, want false")
	}
}

func TestEngineUpdateWithoutInitializeSeedsOnFirstCall(t *testing.T) {
	e := NewEngine(ModeDaily)
	if got := e.Update(mustParse(t, "2025-01-01T00:00:00Z")); got {
		t.Fatalf("first Update() = true, want false (seeds bucket)")
	}
	if got := e.Update(mustParse(t, "2025-01-02T00:00:00Z")); !got {
		t.Fatalf("second Update() = false, want true")
	}
}

func TestParseMode(t *testing.T) {
	cases := map[string]Mode{
		"none":    ModeNone,
		"":        ModeNone,
		"Hourly":  ModeHourly,
		"DAILY":   ModeDaily,
		"weekly":  ModeWeekly,
		"Monthly": ModeMonthly,
	}
	for in, want := range cases {
		got, ok := ParseMode(in)
		if !ok || got != want {
			t.Fatalf("ParseMode(%q) = %v, %v; want %v, true", in, got, ok, want)
		}
	}
	if _, ok := ParseMode("bogus"); ok {
		t.Fatalf("ParseMode(bogus) should not be ok")
	}
}
