// Package store holds the SQL persistence functions. Every function takes
// the database handle explicitly; lookups return (nil, nil) when no row
// matches.
package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/erazemk/lostfound/internal/model"
)

// Sentinel errors.
var (
	ErrItemNotFound  = errors.New("referenced item does not exist")
	ErrInvalidStatus = errors.New("invalid status")
	ErrInvalidAction = errors.New("invalid bulk action")
)

// timeLayout matches the format SQLite uses for CURRENT_TIMESTAMP, so
// values written from Go compare correctly with column defaults.
const timeLayout = "2006-01-02 15:04:05"

func sqlTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func sqlTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return sqlTime(*t)
}

func itemTable(kind model.ItemKind) (string, error) {
	switch kind {
	case model.KindLost:
		return "lost_items", nil
	case model.KindFound:
		return "found_items", nil
	}
	return "", fmt.Errorf("unknown item kind %q", kind)
}

// inClause returns "?, ?, ?" and the ids as query arguments.
func inClause(ids []int64) (string, []any) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", "), args
}

func likePattern(q string) string {
	return "%" + q + "%"
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
