// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/olegiv/greeter-go/internal/testutil"
)

func newTestClient(endpoint string) *Client {
	return New(Config{
		Endpoint:  endpoint,
		APIToken:  "test-token",
		FromEmail: "greeter@example.com",
		FromName:  "Greeter",
		Timeout:   2 * time.Second,
	}, testutil.TestLogger())
}

func TestSend_Success(t *testing.T) {
	var gotAuth, gotUA string
	var gotPayload sendRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decoding payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	err := client.Send(context.Background(), "Novo Usuário Registrado",
		[]string{"admin@example.com"}, "Um novo usuário foi registrado: alice")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q, want Bearer test-token", gotAuth)
	}
	if gotUA != UserAgent {
		t.Errorf("User-Agent = %q, want %q", gotUA, UserAgent)
	}
	if gotPayload.Subject != "Novo Usuário Registrado" {
		t.Errorf("Subject = %q", gotPayload.Subject)
	}
	if gotPayload.From.Email != "greeter@example.com" {
		t.Errorf("From.Email = %q", gotPayload.From.Email)
	}
	if len(gotPayload.To) != 1 || gotPayload.To[0].Email != "admin@example.com" {
		t.Errorf("To = %v", gotPayload.To)
	}
	if gotPayload.Category != Category {
		t.Errorf("Category = %q, want %q", gotPayload.Category, Category)
	}
}

func TestSend_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":["Unauthorized"]}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	err := client.Send(context.Background(), "subject", []string{"admin@example.com"}, "body")
	if err == nil {
		t.Fatal("Send succeeded against a 401 provider")
	}

	var mailErr *Error
	if !errors.As(err, &mailErr) {
		t.Fatalf("error type = %T, want *mailer.Error", err)
	}
	if mailErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", mailErr.StatusCode)
	}
	if mailErr.Detail == "" {
		t.Error("Detail is empty, want provider error body")
	}
}

func TestSend_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	err := client.Send(context.Background(), "subject", []string{"admin@example.com"}, "body")

	var mailErr *Error
	if !errors.As(err, &mailErr) {
		t.Fatalf("error type = %T, want *mailer.Error", err)
	}
	if mailErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", mailErr.StatusCode)
	}
}

func TestSend_TransportFailure(t *testing.T) {
	// Point at a closed server to force a connection error
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := newTestClient(srv.URL)
	err := client.Send(context.Background(), "subject", []string{"admin@example.com"}, "body")

	var mailErr *Error
	if !errors.As(err, &mailErr) {
		t.Fatalf("error type = %T, want *mailer.Error", err)
	}
	if mailErr.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 for transport failure", mailErr.StatusCode)
	}
	if mailErr.Unwrap() == nil {
		t.Error("Unwrap() = nil, want underlying transport error")
	}
}

func TestSend_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	client := New(Config{
		Endpoint:  srv.URL,
		APIToken:  "tok",
		FromEmail: "greeter@example.com",
		Timeout:   50 * time.Millisecond,
	}, testutil.TestLogger())

	err := client.Send(context.Background(), "subject", []string{"admin@example.com"}, "body")

	var mailErr *Error
	if !errors.As(err, &mailErr) {
		t.Fatalf("error type = %T, want *mailer.Error", err)
	}
}

func TestSend_NoRecipients(t *testing.T) {
	client := newTestClient("http://localhost:0")
	err := client.Send(context.Background(), "subject", nil, "body")

	var mailErr *Error
	if !errors.As(err, &mailErr) {
		t.Fatalf("error type = %T, want *mailer.Error", err)
	}
}
