package model

import "testing"

func TestParseItemRef(t *testing.T) {
	tests := []struct {
		kind, id string
		want     ItemRef
		wantErr  bool
	}{
		{"", "", NoItem, false},
		{"lost", "", NoItem, false},
		{"lost", "7", LostRef(7), false},
		{"found", "3", FoundRef(3), false},
		{"stolen", "3", NoItem, true},
		{"lost", "abc", NoItem, true},
		{"found", "0", NoItem, true},
		{"found", "-2", NoItem, true},
	}

	for _, tt := range tests {
		got, err := ParseItemRef(tt.kind, tt.id)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseItemRef(%q, %q) error = %v, wantErr %v", tt.kind, tt.id, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseItemRef(%q, %q) = %v, want %v", tt.kind, tt.id, got, tt.want)
		}
	}
}

func TestItemRefAccessors(t *testing.T) {
	if !NoItem.IsNone() || NoItem.String() != "none" {
		t.Errorf("NoItem should be none, got %v", NoItem)
	}
	ref := FoundRef(12)
	if ref.IsNone() || ref.Kind() != KindFound || ref.ID() != 12 {
		t.Errorf("unexpected ref %v", ref)
	}
	if ref.String() != "found#12" {
		t.Errorf("expected found#12, got %q", ref.String())
	}

	item := &Item{ID: 4, Kind: KindLost}
	if item.Ref() != LostRef(4) {
		t.Errorf("expected lost#4, got %v", item.Ref())
	}
}

func TestParseItemStatus(t *testing.T) {
	for _, st := range ItemStatuses {
		if got, err := ParseItemStatus(string(st)); err != nil || got != st {
			t.Errorf("ParseItemStatus(%q) = %q, %v", st, got, err)
		}
	}
	if _, err := ParseItemStatus("archived"); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestParseClaimStatus(t *testing.T) {
	if _, err := ParseClaimStatus("maybe"); err == nil {
		t.Error("expected error for unknown claim status")
	}
	st, err := ParseClaimStatus("approved")
	if err != nil || !st.Resolved() {
		t.Errorf("approved should parse and be resolved, got %q %v", st, err)
	}
	if ClaimPending.Resolved() {
		t.Error("pending must not be resolved")
	}
}

func TestParseBulkAction(t *testing.T) {
	for _, a := range []string{"delete", "approve", "reject", "expire", "verify"} {
		if _, err := ParseBulkAction(a); err != nil {
			t.Errorf("ParseBulkAction(%q): %v", a, err)
		}
	}
	if _, err := ParseBulkAction("archive"); err == nil {
		t.Error("expected error for unknown action")
	}
}
