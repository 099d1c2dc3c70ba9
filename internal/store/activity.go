package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/lostfound/internal/model"
)

// LogActivity appends an entry to the activity log. userID may be nil for
// anonymous actions.
func LogActivity(ctx context.Context, db *sql.DB, userID *int64, action, details, ip string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO user_activities (user_id, action, details, ip_address) VALUES (?, ?, ?, ?)`,
		userID, action, nullString(details), nullString(ip),
	)
	if err != nil {
		return fmt.Errorf("logging activity %s: %w", action, err)
	}
	return nil
}

const activitySelect = `SELECT a.id, a.user_id, a.action, a.details, a.ip_address, a.created_at,
	        COALESCE(u.username, '')
	 FROM user_activities a
	 LEFT JOIN users u ON u.id = a.user_id`

// ListActivity returns one page of the activity log, newest first.
func ListActivity(ctx context.Context, db *sql.DB, page int) (model.Page[model.Activity], error) {
	perPage := model.PerPageActivity

	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_activities`).Scan(&total); err != nil {
		return model.Page[model.Activity]{}, fmt.Errorf("counting activity: %w", err)
	}

	rows, err := db.QueryContext(ctx,
		activitySelect+` ORDER BY a.created_at DESC, a.id DESC LIMIT ? OFFSET ?`,
		perPage, model.Offset(page, perPage),
	)
	if err != nil {
		return model.Page[model.Activity]{}, fmt.Errorf("listing activity: %w", err)
	}
	defer rows.Close()

	entries, err := scanActivity(rows)
	if err != nil {
		return model.Page[model.Activity]{}, err
	}
	return model.NewPage(entries, page, perPage, total), nil
}

// ListUserActivity returns a user's newest n activity entries.
func ListUserActivity(ctx context.Context, db *sql.DB, userID int64, n int) ([]model.Activity, error) {
	rows, err := db.QueryContext(ctx,
		activitySelect+` WHERE a.user_id = ? ORDER BY a.created_at DESC, a.id DESC LIMIT ?`,
		userID, n,
	)
	if err != nil {
		return nil, fmt.Errorf("listing user activity: %w", err)
	}
	defer rows.Close()

	return scanActivity(rows)
}

func scanActivity(rows *sql.Rows) ([]model.Activity, error) {
	var entries []model.Activity
	for rows.Next() {
		var a model.Activity
		var details, ip sql.NullString
		if err := rows.Scan(&a.ID, &a.UserID, &a.Action, &details, &ip, &a.CreatedAt, &a.Username); err != nil {
			return nil, fmt.Errorf("scanning activity: %w", err)
		}
		a.Details = details.String
		a.IPAddress = ip.String
		entries = append(entries, a)
	}
	return entries, rows.Err()
}
