package db

import (
	"context"
	"io"
	"testing"

	"github.com/keranjangku/keranjangku-backend/pkg/config"
	"github.com/keranjangku/keranjangku-backend/pkg/logger"
)

func TestNewRequiresDSN(t *testing.T) {
	_, err := New(context.Background(), config.DBConfig{}, config.FeatureFlagsConfig{}, nil)
	if err == nil {
		t.Fatal("expected error for empty DSN")
	}
}

func TestNewOpensSQLiteBehindFlag(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	client, err := New(
		context.Background(),
		config.DBConfig{DSN: "file::memory:?cache=shared"},
		config.FeatureFlagsConfig{UseSQLite: true},
		logg,
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer client.Close()

	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
