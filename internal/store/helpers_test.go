package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/erazemk/lostfound/internal/model"
)

func mustCreateItem(t *testing.T, database *sql.DB, kind model.ItemKind, name string) *model.Item {
	t.Helper()
	item, err := CreateItem(context.Background(), database, &model.Item{
		Kind:          kind,
		Name:          name,
		Category:      "Electronics",
		Description:   name + " description",
		Location:      "Library (Steve Biko)",
		ReporterName:  "Thandi Nkosi",
		StudentNumber: "22211013",
		StudentEmail:  "student@example.com",
	})
	if err != nil {
		t.Fatalf("CreateItem(%s): %v", name, err)
	}
	return item
}

func ageItem(t *testing.T, database *sql.DB, kind model.ItemKind, id int64, days int) {
	t.Helper()
	table, _ := itemTable(kind)
	_, err := database.Exec(`UPDATE `+table+` SET created_at = ? WHERE id = ?`,
		sqlTime(time.Now().AddDate(0, 0, -days)), id)
	if err != nil {
		t.Fatalf("aging item: %v", err)
	}
}
