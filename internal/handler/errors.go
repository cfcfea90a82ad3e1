// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/olegiv/greeter-go/internal/render"
)

// ErrorsHandler renders the themed 404 and 500 pages.
type ErrorsHandler struct {
	renderer *render.Renderer
}

// NewErrorsHandler creates a new errors handler.
func NewErrorsHandler(renderer *render.Renderer) *ErrorsHandler {
	return &ErrorsHandler{renderer: renderer}
}

// NotFound renders the 404 page.
func (h *ErrorsHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	if err := h.renderer.Render(w, r, "404", render.TemplateData{Title: "Not Found"}); err != nil {
		slog.Error("failed to render 404 page", "error", err)
		http.NotFound(w, r)
	}
}

// Internal renders the 500 page. The underlying fault has already been
// logged by the caller; the client only sees a generic message.
func (h *ErrorsHandler) Internal(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusInternalServerError)
	if err := h.renderer.Render(w, r, "500", render.TemplateData{Title: "Server Error"}); err != nil {
		slog.Error("failed to render 500 page", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// Recoverer is middleware that converts panics into the themed 500 page,
// logging the panic value and stack server-side.
func (h *ErrorsHandler) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				slog.Error("panic recovered",
					"panic", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				h.Internal(w, r)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
