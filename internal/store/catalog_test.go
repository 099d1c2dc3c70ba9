package store

import (
	"context"
	"testing"

	"github.com/erazemk/lostfound/internal/db"
)

func TestCategoriesCRUD(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	books, err := CreateCategory(ctx, database, "Books", "Textbooks and notes")
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	CreateCategory(ctx, database, "Bags", "")

	if _, err := CreateCategory(ctx, database, "Books", ""); err == nil {
		t.Error("expected duplicate category to fail")
	}
	taken, _ := CategoryNameTaken(ctx, database, "Books", 0)
	if !taken {
		t.Error("expected Books to be taken")
	}
	taken, _ = CategoryNameTaken(ctx, database, "Books", books.ID)
	if taken {
		t.Error("a category does not conflict with itself")
	}

	if err := UpdateCategory(ctx, database, books.ID, "Books", "Textbooks and notes", false); err != nil {
		t.Fatalf("UpdateCategory: %v", err)
	}

	all, _ := ListCategories(ctx, database, false)
	active, _ := ListCategories(ctx, database, true)
	if len(all) != 2 || len(active) != 1 || active[0].Name != "Bags" {
		t.Errorf("unexpected listings all=%v active=%v", all, active)
	}

	DeleteCategory(ctx, database, books.ID)
	if got, _ := GetCategory(ctx, database, books.ID); got != nil {
		t.Error("expected category to be deleted")
	}
}

func TestLocationsCRUD(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	lab, err := CreateLocation(ctx, database, "IT Labs (Ritson)", "")
	if err != nil {
		t.Fatalf("CreateLocation: %v", err)
	}
	if !lab.Active {
		t.Error("new locations start active")
	}

	UpdateLocation(ctx, database, lab.ID, "IT Labs", "Ritson campus", true)
	got, _ := GetLocation(ctx, database, lab.ID)
	if got.Name != "IT Labs" || got.Description != "Ritson campus" {
		t.Errorf("unexpected location %+v", got)
	}

	taken, _ := LocationNameTaken(ctx, database, "IT Labs", 0)
	if !taken {
		t.Error("expected location name to be taken")
	}

	DeleteLocation(ctx, database, lab.ID)
	locations, _ := ListLocations(ctx, database, false)
	if len(locations) != 0 {
		t.Errorf("expected no locations, got %d", len(locations))
	}
}
