package store

import (
	"context"
	"testing"

	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/model"
)

func TestGetStats(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	admin := mustCreateAdmin(t, database)
	a := mustCreateItem(t, database, model.KindLost, "A")
	mustCreateItem(t, database, model.KindLost, "B")
	f := mustCreateItem(t, database, model.KindFound, "C")
	SetItemStatus(ctx, database, model.KindLost, a.ID, model.ItemStatusExpired)
	c := mustCreateClaim(t, database, f.Ref())
	mustCreateClaim(t, database, model.NoItem)
	DecideClaim(ctx, database, c.ID, model.ClaimApproved, "", admin.ID)

	s, err := GetStats(ctx, database)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if s.TotalUsers != 1 || s.TotalLost != 2 || s.TotalFound != 1 || s.TotalClaims != 2 {
		t.Errorf("unexpected totals %+v", s)
	}
	if s.PendingClaims != 1 || s.ActiveLost != 1 || s.ActiveFound != 0 {
		t.Errorf("unexpected active/pending counts %+v", s)
	}
	if len(s.LostByStatus) != 2 {
		t.Errorf("expected 2 lost status groups, got %v", s.LostByStatus)
	}
	if len(s.LostByCategory) != 1 || s.LostByCategory[0].Label != "Electronics" || s.LostByCategory[0].Count != 2 {
		t.Errorf("unexpected lost categories %v", s.LostByCategory)
	}
}
