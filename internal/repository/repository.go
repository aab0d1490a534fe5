// Package repository holds raw-SQL persistence for washhub entities. All
// reads exclude soft-deleted rows; destroys set deleted_at instead of
// removing rows.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound represents a missing (or soft-deleted) row.
var ErrNotFound = errors.New("repository: not found")

const defaultListLimit = 100

func clampLimit(limit int) int {
	if limit <= 0 || limit > defaultListLimit {
		return defaultListLimit
	}
	return limit
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}
