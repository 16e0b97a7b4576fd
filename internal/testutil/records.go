package testutil

import (
	"context"
	"log/slog"
	"sync"
)

// Records is a slog.Handler that keeps every record in memory.
type Records struct {
	mu      sync.Mutex
	entries []slog.Record
}

// Enabled implements slog.Handler.
func (r *Records) Enabled(context.Context, slog.Level) bool { return true }

// Handle implements slog.Handler.
func (r *Records) Handle(_ context.Context, rec slog.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, rec.Clone())
	return nil
}

// WithAttrs implements slog.Handler. Attributes are dropped.
func (r *Records) WithAttrs([]slog.Attr) slog.Handler { return r }

// WithGroup implements slog.Handler.
func (r *Records) WithGroup(string) slog.Handler { return r }

// Messages returns the messages logged at or above level.
func (r *Records) Messages(level slog.Level) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.entries {
		if e.Level >= level {
			out = append(out, e.Message)
		}
	}
	return out
}

// Attr returns the string value of key on every record that carries it.
func (r *Records) Attr(key string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.entries {
		e.Attrs(func(a slog.Attr) bool {
			if a.Key == key {
				out = append(out, a.Value.String())
				return false
			}
			return true
		})
	}
	return out
}
