package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDSNFromFields(t *testing.T) {
	cfg := Config{Host: "db", Port: "5432", User: "gym", Password: "p@ss", Name: "yeabuddy"}
	want := "postgres://gym:p%40ss@db:5432/yeabuddy?sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Fatalf("DSN() = %q, want %q", got, want)
	}
}

func TestDSNPrefersURL(t *testing.T) {
	cfg := Config{URL: "postgres://u:p@remote:6543/w?sslmode=require", Host: "ignored"}
	if got := cfg.DSN(); got != cfg.URL {
		t.Fatalf("DSN() = %q, want %q", got, cfg.URL)
	}
	host, port, name := cfg.Target()
	if host != "remote" || port != "6543" || name != "w" {
		t.Fatalf("Target() = %s %s %s", host, port, name)
	}
}

func TestMigrationSet(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000002_add_index.up.sql",
		"000001_create_workouts.up.sql",
		"000001_create_workouts.down.sql",
		"000003_more.up.sql",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	set := loadMigrationSet(dir)
	want := []string{"000001_create_workouts.up.sql", "000002_add_index.up.sql", "000003_more.up.sql"}
	if diff := cmp.Diff(want, set.names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want[1:], set.between(1, 3).names()); diff != "" {
		t.Fatalf("between(1,3) mismatch (-want +got):\n%s", diff)
	}
	if got := set.between(3, 3); len(got) != 0 {
		t.Fatalf("between(3,3) = %v, want empty", got.names())
	}
}

func TestLoadMigrationSetMissingDir(t *testing.T) {
	if got := loadMigrationSet(filepath.Join(t.TempDir(), "absent")); got != nil {
		t.Fatalf("set = %v, want nil", got)
	}
}
