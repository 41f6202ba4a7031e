package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/m3rciful/yeabuddy/internal/workout"
)

func sessionAt(owner int64, start time.Time, name string) workout.Session {
	end := start.Add(45 * time.Minute)
	return workout.Session{
		Owner:     owner,
		StartTime: start,
		EndTime:   &end,
		Exercises: []workout.Exercise{{
			Name: name,
			Sets: []workout.Set{{Weight: 100, Reps: 5}, {Weight: 102.5, Reps: 3}},
		}},
	}
}

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	bolt, err := OpenBolt(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("OpenBolt: %v", err)
	}
	t.Cleanup(func() { _ = bolt.Close() })
	return map[string]Store{
		BackendMemory: NewMemoryStore(),
		BackendBolt:   bolt,
	}
}

func TestStoreRecentNewestFirst(t *testing.T) {
	base := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			// saved out of order on purpose
			for _, day := range []int{2, 0, 1} {
				if _, err := store.Save(ctx, sessionAt(7, base.AddDate(0, 0, day), "Squat")); err != nil {
					t.Fatalf("Save: %v", err)
				}
			}
			if _, err := store.Save(ctx, sessionAt(8, base, "Bench")); err != nil {
				t.Fatalf("Save other owner: %v", err)
			}

			got, err := store.Recent(ctx, 7, 2)
			if err != nil {
				t.Fatalf("Recent: %v", err)
			}
			if len(got) != 2 {
				t.Fatalf("len = %d, want 2", len(got))
			}
			if !got[0].StartTime.Equal(base.AddDate(0, 0, 2)) || !got[1].StartTime.Equal(base.AddDate(0, 0, 1)) {
				t.Fatalf("order = %v, %v", got[0].StartTime, got[1].StartTime)
			}
			if diff := cmp.Diff(sessionAt(7, base.AddDate(0, 0, 2), "Squat").Exercises, got[0].Exercises); diff != "" {
				t.Fatalf("exercises mismatch (-want +got):\n%s", diff)
			}
			if got[0].ID == "" || got[0].ID == got[1].ID {
				t.Fatalf("ids = %q, %q", got[0].ID, got[1].ID)
			}

			n, err := store.Count(ctx, 7)
			if err != nil {
				t.Fatalf("Count: %v", err)
			}
			if n != 3 {
				t.Fatalf("Count = %d, want 3", n)
			}
		})
	}
}

func TestStoreDefaultLimitAndEmptyOwner(t *testing.T) {
	base := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i := 0; i < DefaultLimit+2; i++ {
				if _, err := store.Save(ctx, sessionAt(1, base.Add(time.Duration(i)*time.Hour), "Row")); err != nil {
					t.Fatalf("Save: %v", err)
				}
			}
			got, err := store.Recent(ctx, 1, 0)
			if err != nil {
				t.Fatalf("Recent: %v", err)
			}
			if len(got) != DefaultLimit {
				t.Fatalf("len = %d, want %d", len(got), DefaultLimit)
			}
			none, err := store.Recent(ctx, 99, 5)
			if err != nil {
				t.Fatalf("Recent empty: %v", err)
			}
			if len(none) != 0 {
				t.Fatalf("len = %d, want 0", len(none))
			}
			if n, _ := store.Count(ctx, 99); n != 0 {
				t.Fatalf("Count = %d, want 0", n)
			}
		})
	}
}

func TestStoreRejectsInvalidSession(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Save(context.Background(), workout.Session{Owner: 1})
			if !errors.Is(err, ErrInvalidSession) {
				t.Fatalf("err = %v, want ErrInvalidSession", err)
			}
		})
	}
}

func TestMemoryStoreCopiesSessions(t *testing.T) {
	store := NewMemoryStore()
	s := sessionAt(3, time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC), "Deadlift")
	if _, err := store.Save(context.Background(), s); err != nil {
		t.Fatalf("Save: %v", err)
	}
	s.Exercises[0].Name = "changed"

	got, _ := store.Recent(context.Background(), 3, 1)
	if got[0].Exercises[0].Name != "Deadlift" {
		t.Fatalf("name = %q, want Deadlift", got[0].Exercises[0].Name)
	}
}

func TestBoltStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := OpenBolt(path)
	if err != nil {
		t.Fatalf("OpenBolt: %v", err)
	}
	start := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	id, err := store.Save(context.Background(), sessionAt(5, start, "Press"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	store, err = OpenBolt(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()
	got, err := store.Recent(context.Background(), 5, 1)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 1 || got[0].ID != id {
		t.Fatalf("got %+v, want id %s", got, id)
	}
	if got[0].EndTime == nil || !got[0].EndTime.Equal(start.Add(45*time.Minute)) {
		t.Fatalf("end time = %v", got[0].EndTime)
	}
}
