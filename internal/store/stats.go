package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/lostfound/internal/model"
)

// GetStats collects the dashboard and statistics page numbers.
func GetStats(ctx context.Context, db *sql.DB) (*model.Stats, error) {
	s := &model.Stats{}

	counts := []struct {
		dest  *int
		query string
	}{
		{&s.TotalUsers, `SELECT COUNT(*) FROM users`},
		{&s.TotalLost, `SELECT COUNT(*) FROM lost_items`},
		{&s.TotalFound, `SELECT COUNT(*) FROM found_items`},
		{&s.TotalClaims, `SELECT COUNT(*) FROM claims`},
		{&s.PendingClaims, `SELECT COUNT(*) FROM claims WHERE status = 'pending'`},
		{&s.ActiveLost, `SELECT COUNT(*) FROM lost_items WHERE status = 'active'`},
		{&s.ActiveFound, `SELECT COUNT(*) FROM found_items WHERE status = 'active'`},
	}
	for _, c := range counts {
		if err := db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("counting for stats: %w", err)
		}
	}

	groups := []struct {
		dest  *[]model.Count
		query string
	}{
		{&s.LostByStatus, `SELECT status, COUNT(*) FROM lost_items GROUP BY status ORDER BY status`},
		{&s.FoundByStatus, `SELECT status, COUNT(*) FROM found_items GROUP BY status ORDER BY status`},
		{&s.ClaimsByStatus, `SELECT status, COUNT(*) FROM claims GROUP BY status ORDER BY status`},
		{&s.LostByCategory, `SELECT category, COUNT(*) FROM lost_items GROUP BY category ORDER BY COUNT(*) DESC, category`},
		{&s.FoundByCategory, `SELECT category, COUNT(*) FROM found_items GROUP BY category ORDER BY COUNT(*) DESC, category`},
	}
	for _, g := range groups {
		counts, err := groupCounts(ctx, db, g.query)
		if err != nil {
			return nil, err
		}
		*g.dest = counts
	}

	return s, nil
}

func groupCounts(ctx context.Context, db *sql.DB, query string) ([]model.Count, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("grouping for stats: %w", err)
	}
	defer rows.Close()

	var counts []model.Count
	for rows.Next() {
		var c model.Count
		if err := rows.Scan(&c.Label, &c.Count); err != nil {
			return nil, fmt.Errorf("scanning stats group: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
