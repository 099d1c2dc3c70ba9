package store

import (
	"context"
	"testing"

	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/model"
)

func TestGetJWTSecret_GeneratesAndPersists(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	secret1, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if len(secret1) != 64 { // 32 bytes = 64 hex chars
		t.Fatalf("expected 64 hex chars, got %d", len(secret1))
	}

	secret2, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if secret1 != secret2 {
		t.Fatalf("expected same secret, got %q and %q", secret1, secret2)
	}

	settings, _ := ListSettings(ctx, database)
	for _, s := range settings {
		if s.Key == model.SettingJWTSecret {
			t.Error("jwt secret must not be listed")
		}
	}
	if err := SetSetting(ctx, database, model.SettingJWTSecret, "x", "", nil); err == nil {
		t.Error("expected jwt secret to be read-only")
	}
}

func TestSetSettingUpsert(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if err := SetSetting(ctx, database, "site_name", "Portal", "Site name", nil); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	admin := mustCreateAdmin(t, database)
	if err := SetSetting(ctx, database, "site_name", "Campus Portal", "", &admin.ID); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}

	settings, err := ListSettings(ctx, database)
	if err != nil {
		t.Fatalf("ListSettings: %v", err)
	}
	if len(settings) != 1 {
		t.Fatalf("expected 1 setting, got %d", len(settings))
	}
	s := settings[0]
	if s.Value != "Campus Portal" || s.Description != "Site name" {
		t.Errorf("unexpected setting %+v", s)
	}
	if s.UpdatedBy == nil || *s.UpdatedBy != admin.ID {
		t.Errorf("expected updated_by %d, got %v", admin.ID, s.UpdatedBy)
	}

	if err := DeleteSetting(ctx, database, "site_name"); err != nil {
		t.Fatalf("DeleteSetting: %v", err)
	}
	if _, ok, _ := GetSetting(ctx, database, "site_name"); ok {
		t.Error("expected setting to be deleted")
	}
}

func TestGetIntSetting(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	tests := []struct {
		value string
		want  int
	}{
		{"14", 14},
		{"abc", 30},
		{"0", 30},
		{"-5", 30},
	}
	for _, tt := range tests {
		SetSetting(ctx, database, model.SettingItemExpiryDays, tt.value, "", nil)
		got, err := GetIntSetting(ctx, database, model.SettingItemExpiryDays, 30)
		if err != nil {
			t.Fatalf("GetIntSetting: %v", err)
		}
		if got != tt.want {
			t.Errorf("value %q: got %d, want %d", tt.value, got, tt.want)
		}
	}

	got, _ := GetIntSetting(ctx, database, "missing", 7)
	if got != 7 {
		t.Errorf("expected default for missing setting, got %d", got)
	}
}
