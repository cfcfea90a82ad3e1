// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/olegiv/greeter-go/internal/model"
	"github.com/olegiv/greeter-go/internal/store"
	"github.com/olegiv/greeter-go/internal/testutil"
)

func newTestHandler(t *testing.T) (*EventLogHandler, *store.Queries, func()) {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	inner := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewEventLogHandler(inner, db), store.New(db), cleanup
}

func TestHandle_MirrorsWarnAndAbove(t *testing.T) {
	h, queries, cleanup := newTestHandler(t)
	defer cleanup()

	logger := slog.New(h)
	logger.Warn("notification send failed", "error", "HTTP 500")
	logger.Error("database unavailable")

	events, err := queries.ListRecentEvents(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRecentEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
}

func TestHandle_SkipsInfo(t *testing.T) {
	h, queries, cleanup := newTestHandler(t)
	defer cleanup()

	logger := slog.New(h)
	logger.Info("user registered", "username", "alice")
	logger.Debug("request handled")

	events, err := queries.ListRecentEvents(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRecentEvents: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("got %d events, want 0 (info/debug must not be mirrored)", len(events))
	}
}

func TestHandle_CategoryAttribute(t *testing.T) {
	h, queries, cleanup := newTestHandler(t)
	defer cleanup()

	logger := slog.New(h)
	logger.Warn("something odd", "category", model.EventCategoryMail)

	events, err := queries.ListRecentEvents(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListRecentEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Category != model.EventCategoryMail {
		t.Errorf("Category = %q, want %q", events[0].Category, model.EventCategoryMail)
	}
}

func TestHandle_InferredCategory(t *testing.T) {
	h, queries, cleanup := newTestHandler(t)
	defer cleanup()

	logger := slog.New(h)
	logger.Warn("failed to send notification email")

	events, err := queries.ListRecentEvents(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListRecentEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Category != model.EventCategoryMail {
		t.Errorf("Category = %q, want %q", events[0].Category, model.EventCategoryMail)
	}
}

func TestHandle_MetadataCollected(t *testing.T) {
	h, queries, cleanup := newTestHandler(t)
	defer cleanup()

	logger := slog.New(h)
	logger.Error("store failure", "op", "create user", "username", "alice")

	events, err := queries.ListRecentEvents(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListRecentEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}

	meta := events[0].Metadata
	if meta == "{}" || meta == "" {
		t.Errorf("Metadata = %q, want collected attributes", meta)
	}
}

func TestLevelToEventLevel(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  string
	}{
		{slog.LevelError, model.EventLevelError},
		{slog.LevelWarn, model.EventLevelWarning},
		{slog.LevelInfo, model.EventLevelInfo},
	}
	for _, tt := range tests {
		if got := levelToEventLevel(tt.level); got != tt.want {
			t.Errorf("levelToEventLevel(%v) = %q, want %q", tt.level, got, tt.want)
		}
	}
}
