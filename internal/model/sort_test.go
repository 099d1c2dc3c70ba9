package model

import "testing"

func TestParseItemSort(t *testing.T) {
	tests := []struct {
		key, order string
		want       Sort
	}{
		{"", "", DefaultSort},
		{"item_name", "asc", Sort{SortName, Asc}},
		{"category", "DESC", Sort{SortCategory, Desc}},
		{"password_hash", "asc", Sort{SortCreatedAt, Asc}},
		{"id; DROP TABLE users", "", DefaultSort},
		{"full_names", "asc", Sort{SortCreatedAt, Asc}},
	}

	for _, tt := range tests {
		got := ParseItemSort(tt.key, tt.order)
		if got != tt.want {
			t.Errorf("ParseItemSort(%q, %q) = %v, want %v", tt.key, tt.order, got, tt.want)
		}
	}
}

func TestParseClaimSort(t *testing.T) {
	if got := ParseClaimSort("full_names", "asc"); got != (Sort{SortClaimant, Asc}) {
		t.Errorf("unexpected sort %v", got)
	}
	if got := ParseClaimSort("item_name", "desc"); got != DefaultSort {
		t.Errorf("item_name is not a claim column, got %v", got)
	}
}

func TestPage(t *testing.T) {
	p := NewPage([]int{1, 2}, 0, 12, 25)
	if p.Page != 1 {
		t.Errorf("expected page 1, got %d", p.Page)
	}
	if p.Pages() != 3 {
		t.Errorf("expected 3 pages, got %d", p.Pages())
	}
	if p.HasPrev() || !p.HasNext() {
		t.Errorf("unexpected prev/next on first page")
	}

	last := NewPage([]int{}, 3, 12, 25)
	if last.HasNext() || !last.HasPrev() {
		t.Errorf("unexpected prev/next on last page")
	}

	empty := NewPage[int](nil, 1, 20, 0)
	if empty.Pages() != 1 || empty.HasNext() {
		t.Errorf("empty listing should have one page")
	}

	if Offset(3, 20) != 40 || Offset(0, 20) != 0 {
		t.Errorf("unexpected offsets")
	}
}
