package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/lostfound/internal/model"
)

const userColumns = `id, username, email, password_hash, role, is_verified, is_banned, created_at, last_login`

func scanUser(row rowScanner) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role,
		&u.Verified, &u.Banned, &u.CreatedAt, &u.LastLogin)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser creates a new account.
func CreateUser(ctx context.Context, db *sql.DB, username, email, passwordHash string, role model.Role) (*model.User, error) {
	if _, err := model.ParseRole(string(role)); err != nil {
		return nil, err
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, role) VALUES (?, ?, ?, ?)`,
		username, email, passwordHash, role,
	)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	return GetUser(ctx, db, id)
}

// GetUser returns a user by ID.
func GetUser(ctx context.Context, db *sql.DB, id int64) (*model.User, error) {
	return getUserBy(ctx, db, "id", id)
}

// GetUserByUsername returns a user by username.
func GetUserByUsername(ctx context.Context, db *sql.DB, username string) (*model.User, error) {
	return getUserBy(ctx, db, "username", username)
}

// GetUserByEmail returns a user by email.
func GetUserByEmail(ctx context.Context, db *sql.DB, email string) (*model.User, error) {
	return getUserBy(ctx, db, "email", email)
}

func getUserBy(ctx context.Context, db *sql.DB, column string, value any) (*model.User, error) {
	u, err := scanUser(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+column+` = ?`, value,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by %s: %w", column, err)
	}
	return u, nil
}

// CountUsers returns the number of accounts.
func CountUsers(ctx context.Context, db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return n, nil
}

// ListUsers returns one page of accounts, newest first.
func ListUsers(ctx context.Context, db *sql.DB, page int) (model.Page[model.User], error) {
	return queryUsers(ctx, db, "", nil, page, model.PerPageAdmin)
}

// SearchUsers matches username or email.
func SearchUsers(ctx context.Context, db *sql.DB, query string, page int) (model.Page[model.User], error) {
	return queryUsers(ctx, db, ` WHERE username LIKE ? OR email LIKE ?`,
		[]any{likePattern(query), likePattern(query)}, page, model.PerPageAdmin)
}

func queryUsers(ctx context.Context, db *sql.DB, where string, args []any, page, perPage int) (model.Page[model.User], error) {
	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return model.Page[model.User]{}, fmt.Errorf("counting users: %w", err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users`+where+` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		append(args, perPage, model.Offset(page, perPage))...,
	)
	if err != nil {
		return model.Page[model.User]{}, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return model.Page[model.User]{}, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return model.Page[model.User]{}, err
	}
	return model.NewPage(users, page, perPage, total), nil
}

// UpdateUserProfile changes a user's own username and email.
func UpdateUserProfile(ctx context.Context, db *sql.DB, id int64, username, email string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET username = ?, email = ? WHERE id = ?`,
		username, email, id,
	)
	if err != nil {
		return fmt.Errorf("updating user profile: %w", err)
	}
	return nil
}

// UpdateUserAccess is the admin edit of an account.
func UpdateUserAccess(ctx context.Context, db *sql.DB, id int64, username, email string, role model.Role, verified, banned bool) error {
	if _, err := model.ParseRole(string(role)); err != nil {
		return err
	}

	_, err := db.ExecContext(ctx,
		`UPDATE users SET username = ?, email = ?, role = ?, is_verified = ?, is_banned = ? WHERE id = ?`,
		username, email, role, verified, banned, id,
	)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	return nil
}

// UpdateUserPassword updates a user's password hash.
func UpdateUserPassword(ctx context.Context, db *sql.DB, id int64, passwordHash string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return nil
}

// TouchLastLogin records a successful login.
func TouchLastLogin(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET last_login = CURRENT_TIMESTAMP WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("updating last login: %w", err)
	}
	return nil
}

// DeleteUser removes an account together with its activity log entries.
func DeleteUser(ctx context.Context, db *sql.DB, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_activities WHERE user_id = ?`, id); err != nil {
		return fmt.Errorf("deleting user activities: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing user deletion: %w", err)
	}
	return nil
}
