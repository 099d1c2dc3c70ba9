package store

import (
	"context"
	"testing"

	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/model"
)

func TestActivityLog(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "logger", "log@example.com", "hash", model.RoleStudent)
	for i := 0; i < 55; i++ {
		if err := LogActivity(ctx, database, &user.ID, "login", "User logged in", "10.0.0.1"); err != nil {
			t.Fatalf("LogActivity: %v", err)
		}
	}
	LogActivity(ctx, database, &user.ID, "report_lost_item", "Reported lost item: Phone", "10.0.0.1")

	page, err := ListActivity(ctx, database, 1)
	if err != nil {
		t.Fatalf("ListActivity: %v", err)
	}
	if page.Total != 56 || len(page.Items) != model.PerPageActivity {
		t.Errorf("unexpected page total=%d len=%d", page.Total, len(page.Items))
	}
	if page.Items[0].Action != "report_lost_item" {
		t.Errorf("expected newest first, got %q", page.Items[0].Action)
	}
	if page.Items[0].Username != "logger" || page.Items[0].IPAddress != "10.0.0.1" {
		t.Errorf("unexpected entry %+v", page.Items[0])
	}

	recent, _ := ListUserActivity(ctx, database, user.ID, 5)
	if len(recent) != 5 {
		t.Errorf("expected 5 recent entries, got %d", len(recent))
	}
}
