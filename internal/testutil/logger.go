// Package testutil holds test helpers: a logger that writes through
// testing.TB and builders for observation fixtures on disk.
package testutil

import (
	"log/slog"
	"testing"
)

// NewTestLogger returns a logger that writes to t.Log().
// Logs only appear on test failure or when running with -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// CaptureLogger returns a logger that records every message it emits,
// for asserting on skipped-item warnings.
func CaptureLogger() (*slog.Logger, *Records) {
	rec := &Records{}
	return slog.New(rec), rec
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (n int, err error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}
