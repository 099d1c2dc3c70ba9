package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/erazemk/lostfound/internal/model"
)

// DefaultCategories are created on first start.
var DefaultCategories = []string{
	"Electronics", "Bags", "Books", "Personal Items", "Clothing", "Jewelry", "Sports", "Other",
}

// DefaultLocations are created on first start.
var DefaultLocations = []string{
	"Library (Steve Biko)",
	"Library (M.L. Sultan)",
	"IT Labs (Ritson)",
	"Department Office",
	"Library Information Desk",
}

// DefaultSettings are created on first start.
var DefaultSettings = []model.Setting{
	{Key: model.SettingItemExpiryDays, Value: strconv.Itoa(model.DefaultExpiryDays), Description: "Days before active reports are expired"},
	{Key: model.SettingMaxPhotoSize, Value: "5242880", Description: "Maximum photo upload size in bytes"},
	{Key: model.SettingAllowedPhotoTypes, Value: "jpg,jpeg,png,gif", Description: "Accepted photo file types"},
	{Key: model.SettingSiteName, Value: "Lost and Found Portal", Description: "Site name shown in the header"},
	{Key: model.SettingContactEmail, Value: "admin@example.com", Description: "Contact address shown to students"},
}

// SeedDefaults inserts the default categories, locations and settings.
// Existing rows are left untouched.
func SeedDefaults(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, name := range DefaultCategories {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO categories (name, description) VALUES (?, ?)`,
			name, name+" items",
		); err != nil {
			return fmt.Errorf("seeding category %s: %w", name, err)
		}
	}
	for _, name := range DefaultLocations {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO locations (name) VALUES (?)`, name,
		); err != nil {
			return fmt.Errorf("seeding location %s: %w", name, err)
		}
	}
	for _, s := range DefaultSettings {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO system_settings (key, value, description) VALUES (?, ?, ?)`,
			s.Key, s.Value, s.Description,
		); err != nil {
			return fmt.Errorf("seeding setting %s: %w", s.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing seed data: %w", err)
	}
	return nil
}

// SeedUser creates a verified account unless the username is already taken.
// It reports whether the account was created.
func SeedUser(ctx context.Context, db *sql.DB, username, email, passwordHash string, role model.Role) (bool, error) {
	existing, err := GetUserByUsername(ctx, db, username)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	u, err := CreateUser(ctx, db, username, email, passwordHash, role)
	if err != nil {
		return false, err
	}
	if err := UpdateUserAccess(ctx, db, u.ID, u.Username, u.Email, u.Role, true, false); err != nil {
		return false, err
	}
	return true, nil
}
