package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/erazemk/lostfound/internal/model"
)

const itemColumns = `id, item_name, category, description, location, current_location,
	full_names, student_number, student_email, photo_filename, status, is_verified,
	created_at, updated_at, expires_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner, kind model.ItemKind) (*model.Item, error) {
	item := &model.Item{Kind: kind}
	var photo sql.NullString
	err := row.Scan(&item.ID, &item.Name, &item.Category, &item.Description, &item.Location,
		&item.CurrentLocation, &item.ReporterName, &item.StudentNumber, &item.StudentEmail,
		&photo, &item.Status, &item.Verified, &item.CreatedAt, &item.UpdatedAt, &item.ExpiresAt)
	if err != nil {
		return nil, err
	}
	item.PhotoFilename = photo.String
	return item, nil
}

func scanItems(rows *sql.Rows, kind model.ItemKind) ([]model.Item, error) {
	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows, kind)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// CreateItem stores a new report. It always starts active and unverified.
func CreateItem(ctx context.Context, db *sql.DB, item *model.Item) (*model.Item, error) {
	table, err := itemTable(item.Kind)
	if err != nil {
		return nil, err
	}

	currentLocation := ""
	if item.Kind == model.KindFound {
		currentLocation = item.CurrentLocation
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO `+table+` (item_name, category, description, location, current_location,
		        full_names, student_number, student_email, photo_filename, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.Name, item.Category, item.Description, item.Location, currentLocation,
		item.ReporterName, item.StudentNumber, item.StudentEmail, nullString(item.PhotoFilename),
		sqlTimePtr(item.ExpiresAt),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s item: %w", item.Kind, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, item.Kind, id)
}

// GetItem returns a report by kind and ID.
func GetItem(ctx context.Context, db *sql.DB, kind model.ItemKind, id int64) (*model.Item, error) {
	table, err := itemTable(kind)
	if err != nil {
		return nil, err
	}

	item, err := scanItem(db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM `+table+` WHERE id = ?`, id,
	), kind)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s item: %w", kind, err)
	}
	return item, nil
}

// ItemFilter narrows item listings. Empty fields are ignored.
type ItemFilter struct {
	Category string
	Status   model.ItemStatus
	Query    string
	// Reporter widens Query to also match reporter name, student number
	// and email.
	Reporter bool
}

func (f ItemFilter) where() (string, []any) {
	var clauses []string
	var args []any

	if f.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, f.Category)
	}
	if f.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, f.Status)
	}
	if f.Query != "" {
		fields := []string{"item_name", "description", "location"}
		if f.Reporter {
			fields = append(fields, "full_names", "student_number", "student_email")
		}
		var or []string
		for _, field := range fields {
			or = append(or, field+" LIKE ?")
			args = append(args, likePattern(f.Query))
		}
		clauses = append(clauses, "("+strings.Join(or, " OR ")+")")
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// ListItems returns one page of reports matching the filter.
func ListItems(ctx context.Context, db *sql.DB, kind model.ItemKind, filter ItemFilter, sort model.Sort, page, perPage int) (model.Page[model.Item], error) {
	table, err := itemTable(kind)
	if err != nil {
		return model.Page[model.Item]{}, err
	}

	where, args := filter.where()

	var total int
	err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table+where, args...).Scan(&total)
	if err != nil {
		return model.Page[model.Item]{}, fmt.Errorf("counting %s items: %w", kind, err)
	}

	query := `SELECT ` + itemColumns + ` FROM ` + table + where +
		` ORDER BY ` + orderBy(sort) + ` LIMIT ? OFFSET ?`
	rows, err := db.QueryContext(ctx, query, append(args, perPage, model.Offset(page, perPage))...)
	if err != nil {
		return model.Page[model.Item]{}, fmt.Errorf("listing %s items: %w", kind, err)
	}
	defer rows.Close()

	items, err := scanItems(rows, kind)
	if err != nil {
		return model.Page[model.Item]{}, err
	}
	return model.NewPage(items, page, perPage, total), nil
}

// ListActiveItems is the public browse listing: active reports only,
// newest first.
func ListActiveItems(ctx context.Context, db *sql.DB, kind model.ItemKind, category, query string, page int) (model.Page[model.Item], error) {
	filter := ItemFilter{Category: category, Status: model.ItemStatusActive, Query: query}
	return ListItems(ctx, db, kind, filter, model.DefaultSort, page, model.PerPagePublic)
}

// RecentActiveItems returns the newest n active reports.
func RecentActiveItems(ctx context.Context, db *sql.DB, kind model.ItemKind, n int) ([]model.Item, error) {
	p, err := ListItems(ctx, db, kind, ItemFilter{Status: model.ItemStatusActive}, model.DefaultSort, 1, n)
	if err != nil {
		return nil, err
	}
	return p.Items, nil
}

// ListItemsByEmail returns every report filed with the given student email.
func ListItemsByEmail(ctx context.Context, db *sql.DB, kind model.ItemKind, email string) ([]model.Item, error) {
	table, err := itemTable(kind)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM `+table+` WHERE student_email = ? ORDER BY created_at DESC, id DESC`,
		email,
	)
	if err != nil {
		return nil, fmt.Errorf("listing %s items by email: %w", kind, err)
	}
	defer rows.Close()

	return scanItems(rows, kind)
}

// UpdateItem saves an admin edit of a report.
func UpdateItem(ctx context.Context, db *sql.DB, item *model.Item) error {
	table, err := itemTable(item.Kind)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx,
		`UPDATE `+table+` SET item_name = ?, category = ?, description = ?, location = ?,
		        current_location = ?, status = ?, is_verified = ?, expires_at = ?,
		        updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		item.Name, item.Category, item.Description, item.Location, item.CurrentLocation,
		item.Status, item.Verified, sqlTimePtr(item.ExpiresAt), item.ID,
	)
	if err != nil {
		return fmt.Errorf("updating %s item: %w", item.Kind, err)
	}
	return nil
}

// SetItemStatus changes a report's status. It reports whether the item exists.
func SetItemStatus(ctx context.Context, db *sql.DB, kind model.ItemKind, id int64, status model.ItemStatus) (bool, error) {
	table, err := itemTable(kind)
	if err != nil {
		return false, err
	}
	if _, err := model.ParseItemStatus(string(status)); err != nil {
		return false, ErrInvalidStatus
	}

	result, err := db.ExecContext(ctx,
		`UPDATE `+table+` SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return false, fmt.Errorf("setting %s item status: %w", kind, err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// DeleteItem removes a report and returns its photo filename so the caller
// can remove the file. found is false when no such item exists.
func DeleteItem(ctx context.Context, db *sql.DB, kind model.ItemKind, id int64) (photo string, found bool, err error) {
	table, err := itemTable(kind)
	if err != nil {
		return "", false, err
	}

	var p sql.NullString
	err = db.QueryRowContext(ctx,
		`DELETE FROM `+table+` WHERE id = ? RETURNING photo_filename`, id,
	).Scan(&p)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("deleting %s item: %w", kind, err)
	}
	return p.String, true, nil
}

// BulkResult reports the outcome of a bulk action.
type BulkResult struct {
	Count int
	// Photos holds the photo filenames of deleted reports.
	Photos []string
}

// ApplyBulkAction applies action to every report of the given kind whose id
// is in ids, in a single transaction. Ids that do not exist are skipped.
func ApplyBulkAction(ctx context.Context, db *sql.DB, kind model.ItemKind, action model.BulkAction, ids []int64) (*BulkResult, error) {
	table, err := itemTable(kind)
	if err != nil {
		return nil, err
	}

	var set string
	switch action {
	case model.BulkApprove, model.BulkVerify:
		set = "is_verified = 1"
	case model.BulkReject:
		set = "is_verified = 0"
	case model.BulkExpire:
		set = "status = 'expired'"
	case model.BulkDelete:
	default:
		return nil, ErrInvalidAction
	}

	res := &BulkResult{}
	if len(ids) == 0 {
		return res, nil
	}
	in, args := inClause(ids)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if action == model.BulkDelete {
		rows, err := tx.QueryContext(ctx,
			`DELETE FROM `+table+` WHERE id IN (`+in+`) RETURNING photo_filename`, args...)
		if err != nil {
			return nil, fmt.Errorf("bulk deleting %s items: %w", kind, err)
		}
		for rows.Next() {
			var p sql.NullString
			if err := rows.Scan(&p); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scanning deleted item: %w", err)
			}
			res.Count++
			if p.String != "" {
				res.Photos = append(res.Photos, p.String)
			}
		}
		if err := rows.Close(); err != nil {
			return nil, fmt.Errorf("bulk deleting %s items: %w", kind, err)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("bulk deleting %s items: %w", kind, err)
		}
	} else {
		result, err := tx.ExecContext(ctx,
			`UPDATE `+table+` SET `+set+`, updated_at = CURRENT_TIMESTAMP WHERE id IN (`+in+`)`, args...)
		if err != nil {
			return nil, fmt.Errorf("bulk updating %s items: %w", kind, err)
		}
		n, _ := result.RowsAffected()
		res.Count = int(n)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing bulk action: %w", err)
	}
	return res, nil
}

// ExpiryResult counts the reports expired by a sweep.
type ExpiryResult struct {
	Lost  int
	Found int
}

// Total is the number of reports expired across both kinds.
func (r ExpiryResult) Total() int { return r.Lost + r.Found }

// ExpireStaleItems marks active reports created before cutoff, or whose
// explicit expiry date has passed by now, as expired. Reports that are not
// active are never touched, so repeated sweeps are no-ops.
func ExpireStaleItems(ctx context.Context, db *sql.DB, cutoff, now time.Time) (ExpiryResult, error) {
	var res ExpiryResult

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, kind := range []model.ItemKind{model.KindLost, model.KindFound} {
		table, _ := itemTable(kind)
		result, err := tx.ExecContext(ctx,
			`UPDATE `+table+` SET status = 'expired', updated_at = CURRENT_TIMESTAMP
			 WHERE status = 'active'
			   AND (created_at < ? OR (expires_at IS NOT NULL AND expires_at < ?))`,
			sqlTime(cutoff), sqlTime(now),
		)
		if err != nil {
			return res, fmt.Errorf("expiring %s items: %w", kind, err)
		}
		n, _ := result.RowsAffected()
		if kind == model.KindLost {
			res.Lost = int(n)
		} else {
			res.Found = int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("committing expiry: %w", err)
	}
	return res, nil
}

func orderBy(s model.Sort) string {
	dir := "DESC"
	if s.Order == model.Asc {
		dir = "ASC"
	}
	// Sort keys are a closed set of column names.
	return string(s.Key) + " " + dir + ", id " + dir
}
