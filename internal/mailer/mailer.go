// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package mailer sends transactional email through a Mailtrap-compatible
// HTTP send API. One request per notification, no retries: the caller
// decides what a failed send means.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	// DefaultTimeout bounds a send request when the config does not set one.
	DefaultTimeout = 10 * time.Second
	// MaxResponseLen is the maximum provider response body kept for error detail (4KB).
	MaxResponseLen = 4 * 1024
	// UserAgent header value sent with every request.
	UserAgent = "greeter/1.0"
	// Category tags all registration notifications on the provider side.
	Category = "User Registration"
)

// Notifier is the interface the registration handler depends on.
type Notifier interface {
	Send(ctx context.Context, subject string, recipients []string, body string) error
}

// Error describes a failed send: a transport fault, a timeout, or a non-2xx
// provider response with its error detail.
type Error struct {
	StatusCode int    // 0 for transport-level failures
	Detail     string // provider response body, truncated
	Err        error  // underlying transport error, if any
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("mailer: provider returned HTTP %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("mailer: request failed: %v", e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Config holds the provider endpoint and credentials, sourced from the
// application configuration.
type Config struct {
	Endpoint  string
	APIToken  string
	FromEmail string
	FromName  string
	Timeout   time.Duration
}

// Client is a Notifier backed by the configured HTTP send API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a mail client with appropriate HTTP timeouts.
func New(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: logger,
	}
}

// address is a sender or recipient in the provider's wire format.
type address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// sendRequest is the provider's send payload.
type sendRequest struct {
	From     address   `json:"from"`
	To       []address `json:"to"`
	Subject  string    `json:"subject"`
	Text     string    `json:"text"`
	Category string    `json:"category,omitempty"`
}

// Send posts one plain-text message to the provider. Any non-2xx response or
// transport failure is returned as a *Error carrying the provider's detail.
func (c *Client) Send(ctx context.Context, subject string, recipients []string, body string) error {
	if len(recipients) == 0 {
		return &Error{Err: fmt.Errorf("no recipients")}
	}

	payload := sendRequest{
		From:     address{Email: c.cfg.FromEmail, Name: c.cfg.FromName},
		Subject:  subject,
		Text:     body,
		Category: Category,
	}
	for _, r := range recipients {
		payload.To = append(payload.To, address{Email: r})
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return &Error{Err: fmt.Errorf("encoding payload: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(data))
	if err != nil {
		return &Error{Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	// Read response body (limited to MaxResponseLen) for error detail
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, MaxResponseLen))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.logger.Debug("notification sent",
			"subject", subject,
			"recipients", len(recipients),
			"status_code", resp.StatusCode,
		)
		return nil
	}

	return &Error{StatusCode: resp.StatusCode, Detail: string(detail)}
}
