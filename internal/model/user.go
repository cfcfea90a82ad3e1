// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the domain types shared across the application:
// registered users, roles, and event log records.
package model

import (
	"database/sql"
	"time"
)

// User represents a visitor who has submitted their name at least once.
// Rows are insert-only: a username is registered exactly once and never
// updated or deleted afterwards.
type User struct {
	ID        int64         `json:"id"`
	Username  string        `json:"username"`
	RoleID    sql.NullInt64 `json:"role_id,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// Role is a named grouping of users. The schema keeps roles as a foreign-key
// target for users.role_id; no request path creates or assigns them.
type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
