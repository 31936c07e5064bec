// Package testutil provides shared fixtures and helpers for nsv tests.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ajitpratap0/nsv/pkg/nsv"
)

// TestLogger creates a test logger that writes to the test output.
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// ObservedLogger returns a logger that records entries at level and above.
func ObservedLogger(level zapcore.Level) (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return zap.New(core), logs
}

// TestContext returns a context with a 30-second timeout that is cancelled
// when the test completes.
func TestContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// WriteTempFile writes data to name inside a fresh temp directory and
// returns the path.
func WriteTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// PeopleRows is a small header-plus-three-rows table covering every
// column type. Row 2 has an empty score and row 3 an empty name.
func PeopleRows() [][]string {
	return [][]string{
		{"id", "name", "score", "active", "born", "seen"},
		{"1", "alice", "9.5", "yes", "1990-01-02", "2024-01-01 10:00:00"},
		{"2", "bob", "", "no", "1985-07-30", "2024-01-02T11:30:00Z"},
		{"3", "", "7", "true", "2001-12-31", "2024-01-03 12:00:00.5"},
	}
}

// PeopleNSV returns PeopleRows encoded as NSV.
func PeopleNSV() []byte {
	return nsv.EncodeStrings(PeopleRows())
}
