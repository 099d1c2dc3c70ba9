package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/erazemk/lostfound/internal/model"
)

// ListSettings returns the admin-editable settings ordered by key.
func ListSettings(ctx context.Context, db *sql.DB) ([]model.Setting, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT key, value, description, updated_at, updated_by
		 FROM system_settings WHERE key != ? ORDER BY key`, model.SettingJWTSecret,
	)
	if err != nil {
		return nil, fmt.Errorf("listing settings: %w", err)
	}
	defer rows.Close()

	var settings []model.Setting
	for rows.Next() {
		var s model.Setting
		var desc sql.NullString
		if err := rows.Scan(&s.Key, &s.Value, &desc, &s.UpdatedAt, &s.UpdatedBy); err != nil {
			return nil, fmt.Errorf("scanning setting: %w", err)
		}
		s.Description = desc.String
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// GetSetting returns a setting value and whether it exists.
func GetSetting(ctx context.Context, db *sql.DB, key string) (string, bool, error) {
	var value string
	err := db.QueryRowContext(ctx, `SELECT value FROM system_settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("getting setting %s: %w", key, err)
	}
	return value, true, nil
}

// GetIntSetting returns a positive integer setting, or def when the
// setting is missing or not a positive integer.
func GetIntSetting(ctx context.Context, db *sql.DB, key string, def int) (int, error) {
	value, ok, err := GetSetting(ctx, db, key)
	if err != nil || !ok {
		return def, err
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return def, nil
	}
	return n, nil
}

// SetSetting creates or replaces a setting. An empty description keeps the
// existing one.
func SetSetting(ctx context.Context, db *sql.DB, key, value, description string, updatedBy *int64) error {
	if key == model.SettingJWTSecret {
		return fmt.Errorf("setting %s is read-only", key)
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO system_settings (key, value, description, updated_by) VALUES (?, ?, ?, ?)
		 ON CONFLICT (key) DO UPDATE SET
		     value = excluded.value,
		     description = COALESCE(excluded.description, description),
		     updated_by = excluded.updated_by,
		     updated_at = CURRENT_TIMESTAMP`,
		key, value, nullString(description), updatedBy,
	)
	if err != nil {
		return fmt.Errorf("saving setting %s: %w", key, err)
	}
	return nil
}

// DeleteSetting removes a setting.
func DeleteSetting(ctx context.Context, db *sql.DB, key string) error {
	if key == model.SettingJWTSecret {
		return fmt.Errorf("setting %s is read-only", key)
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM system_settings WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting setting %s: %w", key, err)
	}
	return nil
}

// GetJWTSecret retrieves the token signing secret from the database.
// If no secret exists, it generates one, stores it, and returns it.
// INSERT OR IGNORE followed by a re-SELECT keeps concurrent first starts
// on the same value.
func GetJWTSecret(ctx context.Context, db *sql.DB) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}
	candidate := hex.EncodeToString(buf)

	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO system_settings (key, value, description) VALUES (?, ?, 'Session signing key')`,
		model.SettingJWTSecret, candidate,
	)
	if err != nil {
		return "", fmt.Errorf("storing jwt_secret: %w", err)
	}

	var secret string
	err = db.QueryRowContext(ctx,
		`SELECT value FROM system_settings WHERE key = ?`, model.SettingJWTSecret,
	).Scan(&secret)
	if err != nil {
		return "", fmt.Errorf("querying jwt_secret: %w", err)
	}

	return secret, nil
}
