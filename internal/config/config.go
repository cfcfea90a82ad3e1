// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"GREETER_DB_PATH" envDefault:"./data/greeter.db"`
	SessionSecret string `env:"GREETER_SESSION_SECRET,required"`
	ServerHost    string `env:"GREETER_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"GREETER_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"GREETER_ENV" envDefault:"development"`
	LogLevel      string `env:"GREETER_LOG_LEVEL" envDefault:"info"`

	// Mail configuration. All notifications are sent through a single
	// transactional-email provider endpoint; the token is never hard-coded.
	MailEndpoint       string   `env:"GREETER_MAIL_ENDPOINT" envDefault:"https://send.api.mailtrap.io/api/send"`
	MailAPIToken       string   `env:"GREETER_MAIL_API_TOKEN"`
	MailFromEmail      string   `env:"GREETER_MAIL_FROM_EMAIL" envDefault:"greeter@example.com"`
	MailFromName       string   `env:"GREETER_MAIL_FROM_NAME" envDefault:"Greeter"`
	MailTimeoutSeconds int      `env:"GREETER_MAIL_TIMEOUT_SECONDS" envDefault:"10"`
	AdminEmails        []string `env:"GREETER_ADMIN_EMAILS" envSeparator:","`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// MailEnabled returns true if the notification provider is fully configured.
func (c Config) MailEnabled() bool {
	return c.MailAPIToken != "" && len(c.AdminEmails) > 0
}

// MinSessionSecretLength is the minimum required length for the session secret.
// AES-256 requires 32 bytes minimum for secure encryption.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Validate session secret length
	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("GREETER_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	// Reject known weak/default secrets
	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("GREETER_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	// Warn about low-entropy secrets
	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("GREETER_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	if !cfg.MailEnabled() {
		slog.Warn("mail provider not fully configured; registration notifications are disabled",
			"token_set", cfg.MailAPIToken != "",
			"recipients", len(cfg.AdminEmails),
		)
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
