// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import "strings"

// IsUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure. Both drivers in use (modernc.org/sqlite at runtime,
// mattn/go-sqlite3 in tests) surface the constraint name in the error text,
// so string matching is the portable check.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
