package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/erazemk/lostfound/internal/model"
)

const claimColumns = `c.id, c.full_names, c.student_number, c.student_email, c.description,
	c.item_type, c.item_id, c.status, c.admin_notes, c.created_at, c.updated_at, c.resolved_at,
	COALESCE(l.item_name, f.item_name, '')`

const claimFrom = ` FROM claims c
	LEFT JOIN lost_items l ON c.item_type = 'lost' AND l.id = c.item_id
	LEFT JOIN found_items f ON c.item_type = 'found' AND f.id = c.item_id`

func scanClaim(row rowScanner) (*model.Claim, error) {
	c := &model.Claim{}
	var itemType, notes sql.NullString
	var itemID sql.NullInt64
	err := row.Scan(&c.ID, &c.ClaimantName, &c.StudentNumber, &c.StudentEmail, &c.Description,
		&itemType, &itemID, &c.Status, &notes, &c.CreatedAt, &c.UpdatedAt, &c.ResolvedAt,
		&c.ItemName)
	if err != nil {
		return nil, err
	}
	if itemType.Valid && itemID.Valid {
		c.Item = model.NewItemRef(model.ItemKind(itemType.String), itemID.Int64)
	}
	c.AdminNotes = notes.String
	return c, nil
}

// refArgs converts a reference to its item_type and item_id column values.
func refArgs(ref model.ItemRef) (any, any) {
	if ref.IsNone() {
		return nil, nil
	}
	return string(ref.Kind()), ref.ID()
}

func itemExists(ctx context.Context, tx *sql.Tx, ref model.ItemRef) (bool, error) {
	table, err := itemTable(ref.Kind())
	if err != nil {
		return false, err
	}
	var n int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table+` WHERE id = ?`, ref.ID()).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", ref, err)
	}
	return n > 0, nil
}

// CreateClaim stores a pending claim and its "created" history entry. A
// non-empty item reference must point at an existing item, otherwise
// ErrItemNotFound is returned and nothing is written.
func CreateClaim(ctx context.Context, db *sql.DB, claim *model.Claim) (*model.Claim, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if !claim.Item.IsNone() {
		ok, err := itemExists(ctx, tx, claim.Item)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrItemNotFound
		}
	}

	itemType, itemID := refArgs(claim.Item)
	result, err := tx.ExecContext(ctx,
		`INSERT INTO claims (full_names, student_number, student_email, description, item_type, item_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		claim.ClaimantName, claim.StudentNumber, claim.StudentEmail, claim.Description, itemType, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating claim: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting claim id: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO claim_history (claim_id, action, status, notes) VALUES (?, ?, ?, ?)`,
		id, model.HistoryCreated, model.ClaimPending, "Claim submitted",
	)
	if err != nil {
		return nil, fmt.Errorf("recording claim history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing claim: %w", err)
	}

	return GetClaim(ctx, db, id)
}

// GetClaim returns a claim by ID.
func GetClaim(ctx context.Context, db *sql.DB, id int64) (*model.Claim, error) {
	c, err := scanClaim(db.QueryRowContext(ctx,
		`SELECT `+claimColumns+claimFrom+` WHERE c.id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting claim: %w", err)
	}
	return c, nil
}

// ClaimFilter narrows claim listings. Empty fields are ignored.
type ClaimFilter struct {
	Status   model.ClaimStatus
	ItemType model.ItemKind
	Query    string
}

func (f ClaimFilter) where() (string, []any) {
	var clauses []string
	var args []any

	if f.Status != "" {
		clauses = append(clauses, "c.status = ?")
		args = append(args, f.Status)
	}
	if f.ItemType != "" {
		clauses = append(clauses, "c.item_type = ?")
		args = append(args, f.ItemType)
	}
	if f.Query != "" {
		clauses = append(clauses, "(c.full_names LIKE ? OR c.student_number LIKE ? OR c.student_email LIKE ? OR c.description LIKE ?)")
		p := likePattern(f.Query)
		args = append(args, p, p, p, p)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// ListClaims returns one page of claims matching the filter.
func ListClaims(ctx context.Context, db *sql.DB, filter ClaimFilter, sort model.Sort, page int) (model.Page[model.Claim], error) {
	where, args := filter.where()
	perPage := model.PerPageAdmin

	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM claims c`+where, args...).Scan(&total); err != nil {
		return model.Page[model.Claim]{}, fmt.Errorf("counting claims: %w", err)
	}

	dir := "DESC"
	if sort.Order == model.Asc {
		dir = "ASC"
	}
	rows, err := db.QueryContext(ctx,
		`SELECT `+claimColumns+claimFrom+where+
			` ORDER BY c.`+string(sort.Key)+` `+dir+`, c.id `+dir+` LIMIT ? OFFSET ?`,
		append(args, perPage, model.Offset(page, perPage))...,
	)
	if err != nil {
		return model.Page[model.Claim]{}, fmt.Errorf("listing claims: %w", err)
	}
	defer rows.Close()

	claims, err := scanClaims(rows)
	if err != nil {
		return model.Page[model.Claim]{}, err
	}
	return model.NewPage(claims, page, perPage, total), nil
}

// ListClaimsByEmail returns every claim filed with the given student email.
func ListClaimsByEmail(ctx context.Context, db *sql.DB, email string) ([]model.Claim, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+claimColumns+claimFrom+` WHERE c.student_email = ? ORDER BY c.created_at DESC, c.id DESC`,
		email,
	)
	if err != nil {
		return nil, fmt.Errorf("listing claims by email: %w", err)
	}
	defer rows.Close()

	return scanClaims(rows)
}

// ListClaimsForItem returns the claims referencing an item.
func ListClaimsForItem(ctx context.Context, db *sql.DB, ref model.ItemRef) ([]model.Claim, error) {
	if ref.IsNone() {
		return nil, nil
	}
	rows, err := db.QueryContext(ctx,
		`SELECT `+claimColumns+claimFrom+` WHERE c.item_type = ? AND c.item_id = ? ORDER BY c.created_at DESC, c.id DESC`,
		string(ref.Kind()), ref.ID(),
	)
	if err != nil {
		return nil, fmt.Errorf("listing claims for %s: %w", ref, err)
	}
	defer rows.Close()

	return scanClaims(rows)
}

func scanClaims(rows *sql.Rows) ([]model.Claim, error) {
	var claims []model.Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning claim: %w", err)
		}
		claims = append(claims, *c)
	}
	return claims, rows.Err()
}

// Decision is the outcome of DecideClaim.
type Decision struct {
	Claim *model.Claim
	// ItemClaimed is true when approval flipped the referenced item to
	// claimed. It stays false when the claim has no item or the item no
	// longer exists.
	ItemClaimed bool
}

// DecideClaim records an admin decision on a claim in one transaction:
// status and notes are updated, an approved claim marks its referenced
// item claimed when that item still exists, and a history entry is
// appended. Returns (nil, nil) if the claim does not exist.
func DecideClaim(ctx context.Context, db *sql.DB, id int64, status model.ClaimStatus, notes string, adminID int64) (*Decision, error) {
	if _, err := model.ParseClaimStatus(string(status)); err != nil {
		return nil, ErrInvalidStatus
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var itemType sql.NullString
	var itemID sql.NullInt64
	err = tx.QueryRowContext(ctx, `SELECT item_type, item_id FROM claims WHERE id = ?`, id).Scan(&itemType, &itemID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting claim: %w", err)
	}

	var resolvedAt any
	if status.Resolved() {
		resolvedAt = sqlTime(time.Now())
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE claims SET status = ?, admin_notes = ?, resolved_at = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		status, nullString(notes), resolvedAt, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating claim: %w", err)
	}

	d := &Decision{}
	if status == model.ClaimApproved && itemType.Valid && itemID.Valid {
		table, err := itemTable(model.ItemKind(itemType.String))
		if err != nil {
			return nil, err
		}
		result, err := tx.ExecContext(ctx,
			`UPDATE `+table+` SET status = 'claimed', updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			itemID.Int64,
		)
		if err != nil {
			return nil, fmt.Errorf("marking item claimed: %w", err)
		}
		n, _ := result.RowsAffected()
		d.ItemClaimed = n > 0
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO claim_history (claim_id, admin_id, action, status, notes) VALUES (?, ?, ?, ?, ?)`,
		id, adminID, model.HistoryUpdated, status, nullString(notes),
	)
	if err != nil {
		return nil, fmt.Errorf("recording claim history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing claim decision: %w", err)
	}

	d.Claim, err = GetClaim(ctx, db, id)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// DeleteClaim removes a claim and its history. It reports whether the claim
// existed.
func DeleteClaim(ctx context.Context, db *sql.DB, id int64) (bool, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM claim_history WHERE claim_id = ?`, id); err != nil {
		return false, fmt.Errorf("deleting claim history: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM claims WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting claim: %w", err)
	}
	n, _ := result.RowsAffected()

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing claim deletion: %w", err)
	}
	return n > 0, nil
}

// ListClaimHistory returns a claim's history, oldest first.
func ListClaimHistory(ctx context.Context, db *sql.DB, claimID int64) ([]model.ClaimHistory, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT h.id, h.claim_id, h.admin_id, h.action, h.status, h.notes, h.created_at,
		        COALESCE(u.username, '')
		 FROM claim_history h
		 LEFT JOIN users u ON u.id = h.admin_id
		 WHERE h.claim_id = ?
		 ORDER BY h.created_at, h.id`, claimID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing claim history: %w", err)
	}
	defer rows.Close()

	var history []model.ClaimHistory
	for rows.Next() {
		var h model.ClaimHistory
		var notes sql.NullString
		if err := rows.Scan(&h.ID, &h.ClaimID, &h.AdminID, &h.Action, &h.Status, &notes,
			&h.CreatedAt, &h.AdminName); err != nil {
			return nil, fmt.Errorf("scanning claim history: %w", err)
		}
		h.Notes = notes.String
		history = append(history, h)
	}
	return history, rows.Err()
}
