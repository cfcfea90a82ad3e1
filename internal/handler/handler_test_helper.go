// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	_ "github.com/mattn/go-sqlite3"

	"github.com/olegiv/greeter-go/internal/render"
	"github.com/olegiv/greeter-go/web"
)

// testDB creates an in-memory SQLite database with the required schema for testing.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := `
		CREATE TABLE roles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE
		);

		CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			role_id INTEGER,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (role_id) REFERENCES roles(id) ON DELETE SET NULL
		);
		CREATE INDEX idx_users_username ON users(username);

		CREATE TABLE sessions (
			token TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			expiry REAL NOT NULL
		);
		CREATE INDEX idx_sessions_expiry ON sessions(expiry);

		CREATE TABLE events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			level TEXT NOT NULL DEFAULT 'info',
			category TEXT NOT NULL DEFAULT 'system',
			message TEXT NOT NULL,
			metadata TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

// sentMail records one Send call on the fake notifier.
type sentMail struct {
	Subject    string
	Recipients []string
	Body       string
}

// fakeNotifier implements mailer.Notifier and records calls.
type fakeNotifier struct {
	calls []sentMail
	err   error
}

func (f *fakeNotifier) Send(_ context.Context, subject string, recipients []string, body string) error {
	f.calls = append(f.calls, sentMail{Subject: subject, Recipients: recipients, Body: body})
	return f.err
}

// testApp bundles everything a handler test needs.
type testApp struct {
	DB             *sql.DB
	SessionManager *scs.SessionManager
	Renderer       *render.Renderer
	Notifier       *fakeNotifier
	Router         http.Handler
}

// newTestApp builds a complete test application with an in-memory database,
// in-memory sessions, the embedded templates, and a fake notifier.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db := testDB(t)

	sm := scs.New() // default in-memory store

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		t.Fatalf("templates fs: %v", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sm,
		IsDev:          true,
	})
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	notifier := &fakeNotifier{}
	homeHandler := NewHomeHandler(db, renderer, sm, notifier, []string{"admin@example.com"})
	errorsHandler := NewErrorsHandler(renderer)
	healthHandler := NewHealthHandler(db)

	r := chi.NewRouter()
	r.Use(sm.LoadAndSave)
	r.Get("/", homeHandler.Home)
	r.Post("/", homeHandler.Submit)
	r.Get("/health", healthHandler.Health)
	r.NotFound(errorsHandler.NotFound)

	return &testApp{
		DB:             db,
		SessionManager: sm,
		Renderer:       renderer,
		Notifier:       notifier,
		Router:         r,
	}
}

// cookieJar accumulates session cookies across requests in a test.
type cookieJar struct {
	cookies map[string]*http.Cookie
}

func newCookieJar() *cookieJar {
	return &cookieJar{cookies: make(map[string]*http.Cookie)}
}

func (j *cookieJar) update(resp *http.Response) {
	for _, c := range resp.Cookies() {
		j.cookies[c.Name] = c
	}
}

func (j *cookieJar) apply(req *http.Request) {
	for _, c := range j.cookies {
		req.AddCookie(c)
	}
}

// do performs a request against the app router, maintaining session cookies
// in the given jar. jar may be nil for one-shot requests.
func (app *testApp) do(t *testing.T, method, target, formBody string, jar *cookieJar) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if formBody != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(formBody))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	if jar != nil {
		jar.apply(req)
	}

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)

	if jar != nil {
		jar.update(w.Result())
	}
	return w
}

// newFormRequest builds a POST request carrying a urlencoded form body.
func newFormRequest(t *testing.T, target, formBody string) *http.Request {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(formBody))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// doRaw serves a single request against an arbitrary handler.
func doRaw(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// countUsers returns the number of rows in the users table.
func countUsers(t *testing.T, db *sql.DB) int {
	t.Helper()

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		t.Fatalf("counting users: %v", err)
	}
	return n
}

func assertStatus(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status = %d, want %d", got, want)
	}
}
