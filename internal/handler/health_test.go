// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"strings"
	"testing"
)

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodGet, "/health", "", nil)

	assertStatus(t, w.Code, http.StatusOK)
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	if !strings.Contains(w.Body.String(), `"healthy"`) {
		t.Errorf("body = %q, want healthy status", w.Body.String())
	}
}

func TestHealth_DatabaseDown(t *testing.T) {
	app := newTestApp(t)
	_ = app.DB.Close()

	w := app.do(t, http.MethodGet, "/health", "", nil)

	assertStatus(t, w.Code, http.StatusServiceUnavailable)
	if !strings.Contains(w.Body.String(), `"unhealthy"`) {
		t.Errorf("body = %q, want unhealthy status", w.Body.String())
	}
}
