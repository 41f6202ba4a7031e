package bootstrap

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/yeabuddy/core/config"
	coredatabase "github.com/m3rciful/yeabuddy/core/database"
)

func noLogger(*coreconfig.Config) error { return nil }

func TestRunWithoutDatabase(t *testing.T) {
	connected := false
	res, err := Run(context.Background(), Options{
		Config:     &coreconfig.Config{},
		LoggerInit: noLogger,
		Connect: func(context.Context, coredatabase.Config) (*sqlx.DB, error) {
			connected = true
			return nil, nil
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if connected || res.DB != nil {
		t.Fatal("database must not be touched without a database config")
	}
	if err := res.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestRunMigratesBeforeConnect(t *testing.T) {
	var order []string
	_, err := Run(context.Background(), Options{
		Config:     &coreconfig.Config{},
		Database:   &coredatabase.Config{URL: "postgres://x"},
		LoggerInit: noLogger,
		Migrate: func(context.Context, coredatabase.Config) error {
			order = append(order, "migrate")
			return nil
		},
		Connect: func(context.Context, coredatabase.Config) (*sqlx.DB, error) {
			order = append(order, "connect")
			return nil, nil
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(order) != 2 || order[0] != "migrate" || order[1] != "connect" {
		t.Fatalf("order = %v, want [migrate connect]", order)
	}
}

func TestRunStopsOnMigrationFailure(t *testing.T) {
	_, err := Run(context.Background(), Options{
		Config:     &coreconfig.Config{},
		Database:   &coredatabase.Config{URL: "postgres://x"},
		LoggerInit: noLogger,
		Migrate: func(context.Context, coredatabase.Config) error {
			return errors.New("dirty")
		},
		Connect: func(context.Context, coredatabase.Config) (*sqlx.DB, error) {
			t.Fatal("connect after failed migration")
			return nil, nil
		},
	})
	if err == nil {
		t.Fatal("expected error")
	}
}
