package workout

import (
	"strings"
	"testing"
	"time"
)

var formatStart = time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

func benchSession(end time.Time) Session {
	return Session{
		Owner:     1,
		StartTime: formatStart,
		EndTime:   &end,
		Exercises: []Exercise{
			{Name: "Bench Press", Sets: []Set{{225, 12}, {235, 10}}},
		},
	}
}

func TestSessionSummary(t *testing.T) {
	f := Formatter{Unit: UnitKg}
	got := f.SessionSummary(benchSession(formatStart.Add(45*time.Minute + 20*time.Second)))
	want := "YEAH BUDDY! Training session completed! 💪\n\n" +
		"Duration: 45 minutes\n\n" +
		"Exercises:\n" +
		"\nBench Press:\n" +
		"Set 1: 225kg x 12 reps\n" +
		"Set 2: 235kg x 10 reps\n"
	if got != want {
		t.Fatalf("summary mismatch\ngot:\n%q\nwant:\n%q", got, want)
	}
}

func TestSessionSummaryLbsAndRounding(t *testing.T) {
	f := Formatter{Unit: UnitLbs}
	got := f.SessionSummary(benchSession(formatStart.Add(89*time.Minute + 31*time.Second)))
	for _, part := range []string{"Bench Press", "225lbs x 12 reps", "235lbs x 10 reps", "Duration: 90 minutes"} {
		if !strings.Contains(got, part) {
			t.Errorf("summary missing %q:\n%s", part, got)
		}
	}
}

func TestSessionSummaryUsesNowWhileActive(t *testing.T) {
	f := Formatter{Unit: UnitKg, Now: func() time.Time { return formatStart.Add(10 * time.Minute) }}
	s := Session{StartTime: formatStart}
	if got := f.SessionSummary(s); !strings.Contains(got, "Duration: 10 minutes") {
		t.Fatalf("summary = %q", got)
	}
	if f.SessionSummary(s) != f.SessionSummary(s) {
		t.Fatal("formatting is not deterministic")
	}
}

func TestSetSummary(t *testing.T) {
	f := Formatter{Unit: UnitKg}
	got := f.SetSummary(Exercise{Name: "Squat", Sets: []Set{{100, 5}, {102.5, 5}}})
	want := "LIGHTWEIGHT BABY! Set logged for Squat:\n" +
		"102.5kg x 5 reps 💪\n\n" +
		"Sets this exercise:\n" +
		"1. 100kg x 5 reps\n" +
		"2. 102.5kg x 5 reps\n"
	if got != want {
		t.Fatalf("set summary mismatch\ngot:\n%q\nwant:\n%q", got, want)
	}
}

func TestHistoryList(t *testing.T) {
	f := Formatter{Unit: UnitKg}
	if got := f.HistoryList(nil, 0); !strings.HasPrefix(got, "No workout history found!") {
		t.Fatalf("empty history = %q", got)
	}

	sessions := []Session{benchSession(formatStart.Add(30 * time.Minute))}
	got := f.HistoryList(sessions, 3)
	for _, part := range []string{
		"🏋️‍♂️ YOUR WORKOUT HISTORY 🏋️‍♂️",
		"1. 2026-03-01 (30 min)",
		"1 exercises, 2 sets",
		"... and 2 more sessions!",
		"YEAH BUDDY! Keep crushing it! 💪",
	} {
		if !strings.Contains(got, part) {
			t.Errorf("history missing %q:\n%s", part, got)
		}
	}
}

func TestSessionDetails(t *testing.T) {
	f := Formatter{Unit: UnitKg}
	s := benchSession(formatStart.Add(30 * time.Minute))
	s.Exercises = append(s.Exercises, Exercise{Name: "Plank"})
	got := f.SessionDetails(s)
	for _, part := range []string{
		"📅 WORKOUT SESSION - 2026-03-01 at 18:00",
		"⏱️ Duration: 30 minutes",
		"1. BENCH PRESS 🎯",
		"   Set 2: 235kg x 10 reps",
		"2. PLANK 🎯\n   No sets recorded",
	} {
		if !strings.Contains(got, part) {
			t.Errorf("details missing %q:\n%s", part, got)
		}
	}
}

func TestWorkoutSaved(t *testing.T) {
	got := Formatter{}.WorkoutSaved(benchSession(formatStart))
	if !strings.Contains(got, "💪 1 exercises completed") || !strings.Contains(got, "🔥 2 total sets") {
		t.Fatalf("saved message = %q", got)
	}
}

func TestParseUnit(t *testing.T) {
	if ParseUnit("LBS") != UnitLbs || ParseUnit("") != UnitKg || ParseUnit("stone") != UnitKg {
		t.Fatal("ParseUnit mapping is wrong")
	}
}
