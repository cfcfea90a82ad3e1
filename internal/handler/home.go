// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler contains the HTTP handlers: the registration form flow and
// the themed error pages. Handlers are the single boundary that classifies
// failures from the store and the mail provider into user-facing outcomes.
package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/greeter-go/internal/mailer"
	"github.com/olegiv/greeter-go/internal/render"
	"github.com/olegiv/greeter-go/internal/session"
	"github.com/olegiv/greeter-go/internal/store"
)

// SubjectNewUser is the notification subject for first-time registrations.
const SubjectNewUser = "Novo Usuário Registrado"

// HomeHandler serves the registration form and processes submissions.
type HomeHandler struct {
	queries        *store.Queries
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	notifier       mailer.Notifier
	adminEmails    []string
}

// NewHomeHandler creates a new home handler. notifier may be nil when the
// mail provider is not configured; registrations then proceed silently.
func NewHomeHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager, notifier mailer.Notifier, adminEmails []string) *HomeHandler {
	return &HomeHandler{
		queries:        store.New(db),
		renderer:       renderer,
		sessionManager: sm,
		notifier:       notifier,
		adminEmails:    adminEmails,
	}
}

// HomePageData is the template data for the index page.
type HomePageData struct {
	Name      string
	Known     bool
	FormError string
}

// Home renders the registration form, pre-filled from the session. GET only,
// no side effects.
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	data := HomePageData{
		Name:  h.sessionManager.GetString(r.Context(), session.KeyName),
		Known: h.sessionManager.GetBool(r.Context(), session.KeyKnown),
	}
	h.renderHome(w, r, data)
}

// Submit processes a name submission: validates, registers first-time names,
// notifies the administrators, updates the session, and redirects back to the
// form (POST-redirect-GET).
func (h *HomeHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		slog.Error("failed to parse form", "error", err)
		h.renderHome(w, r, HomePageData{FormError: "Invalid form data."})
		return
	}

	name := strings.TrimSpace(r.PostFormValue("name"))
	if name == "" {
		// Expected condition: inline re-render, no log noise
		h.renderHome(w, r, HomePageData{FormError: "Please enter your name."})
		return
	}

	known, err := h.registerName(r, name)
	if err != nil {
		slog.Error("store failure during registration", "error", err, "username", name)
		h.renderer.SetFlash(r, "Something went wrong saving your name. Please try again.", "danger")
		h.renderHome(w, r, HomePageData{Name: name})
		return
	}

	h.sessionManager.Put(r.Context(), session.KeyName, name)
	h.sessionManager.Put(r.Context(), session.KeyKnown, known)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// registerName looks the name up and inserts it on first sight, returning
// whether the name was already known. A unique-constraint failure from a
// concurrent submission of the same new name is classified as "known": the
// database constraint is the sole arbiter of the race.
func (h *HomeHandler) registerName(r *http.Request, name string) (known bool, err error) {
	ctx := r.Context()

	_, err = h.queries.GetUserByUsername(ctx, name)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("looking up user: %w", err)
	}

	_, err = h.queries.CreateUser(ctx, store.CreateUserParams{
		Username:  name,
		CreatedAt: time.Now(),
	})
	if err != nil {
		if store.IsUniqueViolation(err) {
			// Lost the race to another request inserting the same name
			return true, nil
		}
		return false, fmt.Errorf("creating user: %w", err)
	}

	slog.Info("new user registered", "username", name)
	h.notifyRegistration(r, name)
	return false, nil
}

// notifyRegistration emails the administrators about a first-time
// registration. The outcome is surfaced as a flash banner; a failed send
// never blocks or reverts the registration itself.
func (h *HomeHandler) notifyRegistration(r *http.Request, name string) {
	if h.notifier == nil || len(h.adminEmails) == 0 {
		return
	}

	body := fmt.Sprintf("Um novo usuário foi registrado: %s", name)
	if err := h.notifier.Send(r.Context(), SubjectNewUser, h.adminEmails, body); err != nil {
		slog.Warn("failed to send registration notification",
			"error", err,
			"username", name,
			"recipients", len(h.adminEmails),
		)
		h.renderer.SetFlash(r, "Your name was saved, but the notification email could not be sent.", "warning")
		return
	}

	h.renderer.SetFlash(r, "Notification email sent to the administrators.", "success")
}

// renderHome renders the index page, falling back to a plain 500 when the
// template itself fails.
func (h *HomeHandler) renderHome(w http.ResponseWriter, r *http.Request, data HomePageData) {
	err := h.renderer.Render(w, r, "index", render.TemplateData{
		Title: "Home",
		Data:  data,
	})
	if err != nil {
		slog.Error("failed to render index", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
