package store

import (
	"context"
	"testing"

	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/model"
)

func TestSeedDefaultsIdempotent(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := SeedDefaults(ctx, database); err != nil {
			t.Fatalf("SeedDefaults #%d: %v", i+1, err)
		}
	}

	categories, _ := ListCategories(ctx, database, true)
	if len(categories) != len(DefaultCategories) {
		t.Errorf("expected %d categories, got %d", len(DefaultCategories), len(categories))
	}
	locations, _ := ListLocations(ctx, database, true)
	if len(locations) != len(DefaultLocations) {
		t.Errorf("expected %d locations, got %d", len(DefaultLocations), len(locations))
	}

	days, _ := GetIntSetting(ctx, database, model.SettingItemExpiryDays, 0)
	if days != 30 {
		t.Errorf("expected expiry days 30, got %d", days)
	}
}

func TestSeedUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	created, err := SeedUser(ctx, database, "admin", "admin@example.com", "hash", model.RoleAdmin)
	if err != nil || !created {
		t.Fatalf("SeedUser = %v, %v", created, err)
	}
	created, err = SeedUser(ctx, database, "admin", "admin@example.com", "hash", model.RoleAdmin)
	if err != nil || created {
		t.Fatalf("second SeedUser = %v, %v", created, err)
	}

	u, _ := GetUserByUsername(ctx, database, "admin")
	if !u.Verified || u.Role != model.RoleAdmin {
		t.Errorf("unexpected seeded user %+v", u)
	}
}
