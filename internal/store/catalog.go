package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/lostfound/internal/model"
)

// Categories and locations share a table shape, so both are driven by the
// same helpers with the table name fixed per exported function.

func listCatalog(ctx context.Context, db *sql.DB, table string, activeOnly bool) ([]model.Category, error) {
	query := `SELECT id, name, description, is_active, created_at FROM ` + table
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY name`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", table, err)
	}
	defer rows.Close()

	var entries []model.Category
	for rows.Next() {
		var c model.Category
		var desc sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &desc, &c.Active, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", table, err)
		}
		c.Description = desc.String
		entries = append(entries, c)
	}
	return entries, rows.Err()
}

func getCatalog(ctx context.Context, db *sql.DB, table string, id int64) (*model.Category, error) {
	c := &model.Category{}
	var desc sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, name, description, is_active, created_at FROM `+table+` WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &desc, &c.Active, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s entry: %w", table, err)
	}
	c.Description = desc.String
	return c, nil
}

func createCatalog(ctx context.Context, db *sql.DB, table, name, description string) (int64, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO `+table+` (name, description) VALUES (?, ?)`, name, nullString(description),
	)
	if err != nil {
		return 0, fmt.Errorf("creating %s entry: %w", table, err)
	}
	return result.LastInsertId()
}

func updateCatalog(ctx context.Context, db *sql.DB, table string, id int64, name, description string, active bool) error {
	_, err := db.ExecContext(ctx,
		`UPDATE `+table+` SET name = ?, description = ?, is_active = ? WHERE id = ?`,
		name, nullString(description), active, id,
	)
	if err != nil {
		return fmt.Errorf("updating %s entry: %w", table, err)
	}
	return nil
}

func deleteCatalog(ctx context.Context, db *sql.DB, table string, id int64) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting %s entry: %w", table, err)
	}
	return nil
}

func catalogNameTaken(ctx context.Context, db *sql.DB, table, name string, exceptID int64) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM `+table+` WHERE name = ? AND id != ?`, name, exceptID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking %s name: %w", table, err)
	}
	return n > 0, nil
}

// ListCategories returns categories ordered by name.
func ListCategories(ctx context.Context, db *sql.DB, activeOnly bool) ([]model.Category, error) {
	return listCatalog(ctx, db, "categories", activeOnly)
}

// GetCategory returns a category by ID.
func GetCategory(ctx context.Context, db *sql.DB, id int64) (*model.Category, error) {
	return getCatalog(ctx, db, "categories", id)
}

// CreateCategory adds an active category.
func CreateCategory(ctx context.Context, db *sql.DB, name, description string) (*model.Category, error) {
	id, err := createCatalog(ctx, db, "categories", name, description)
	if err != nil {
		return nil, err
	}
	return GetCategory(ctx, db, id)
}

// UpdateCategory renames or toggles a category.
func UpdateCategory(ctx context.Context, db *sql.DB, id int64, name, description string, active bool) error {
	return updateCatalog(ctx, db, "categories", id, name, description, active)
}

// DeleteCategory removes a category. Existing reports keep their category text.
func DeleteCategory(ctx context.Context, db *sql.DB, id int64) error {
	return deleteCatalog(ctx, db, "categories", id)
}

// CategoryNameTaken reports whether another category already uses name.
func CategoryNameTaken(ctx context.Context, db *sql.DB, name string, exceptID int64) (bool, error) {
	return catalogNameTaken(ctx, db, "categories", name, exceptID)
}

// ListLocations returns locations ordered by name.
func ListLocations(ctx context.Context, db *sql.DB, activeOnly bool) ([]model.Location, error) {
	entries, err := listCatalog(ctx, db, "locations", activeOnly)
	if err != nil {
		return nil, err
	}
	locations := make([]model.Location, len(entries))
	for i, e := range entries {
		locations[i] = model.Location(e)
	}
	return locations, nil
}

// GetLocation returns a location by ID.
func GetLocation(ctx context.Context, db *sql.DB, id int64) (*model.Location, error) {
	e, err := getCatalog(ctx, db, "locations", id)
	if e == nil || err != nil {
		return nil, err
	}
	l := model.Location(*e)
	return &l, nil
}

// CreateLocation adds an active location.
func CreateLocation(ctx context.Context, db *sql.DB, name, description string) (*model.Location, error) {
	id, err := createCatalog(ctx, db, "locations", name, description)
	if err != nil {
		return nil, err
	}
	return GetLocation(ctx, db, id)
}

// UpdateLocation renames or toggles a location.
func UpdateLocation(ctx context.Context, db *sql.DB, id int64, name, description string, active bool) error {
	return updateCatalog(ctx, db, "locations", id, name, description, active)
}

// DeleteLocation removes a location.
func DeleteLocation(ctx context.Context, db *sql.DB, id int64) error {
	return deleteCatalog(ctx, db, "locations", id)
}

// LocationNameTaken reports whether another location already uses name.
func LocationNameTaken(ctx context.Context, db *sql.DB, name string, exceptID int64) (bool, error) {
	return catalogNameTaken(ctx, db, "locations", name, exceptID)
}
