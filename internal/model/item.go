package model

import (
	"fmt"
	"strconv"
	"time"
)

// ItemKind distinguishes lost reports from found reports.
type ItemKind string

// Item kinds.
const (
	KindLost  ItemKind = "lost"
	KindFound ItemKind = "found"
)

// ParseItemKind converts a path or form value into an ItemKind.
func ParseItemKind(s string) (ItemKind, error) {
	switch ItemKind(s) {
	case KindLost, KindFound:
		return ItemKind(s), nil
	}
	return "", fmt.Errorf("unknown item kind %q", s)
}

// Title is the capitalised kind used in headings.
func (k ItemKind) Title() string {
	if k == KindFound {
		return "Found"
	}
	return "Lost"
}

// ItemStatus is the lifecycle state of a report. Transitions between
// statuses are not restricted; admins may set any status at any time.
type ItemStatus string

// Item statuses.
const (
	ItemStatusActive   ItemStatus = "active"
	ItemStatusClaimed  ItemStatus = "claimed"
	ItemStatusReturned ItemStatus = "returned"
	ItemStatusExpired  ItemStatus = "expired"
)

// ItemStatuses lists every valid item status.
var ItemStatuses = []ItemStatus{ItemStatusActive, ItemStatusClaimed, ItemStatusReturned, ItemStatusExpired}

// ParseItemStatus converts a form value into an ItemStatus.
func ParseItemStatus(s string) (ItemStatus, error) {
	for _, st := range ItemStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown item status %q", s)
}

// Item is a lost or found report.
type Item struct {
	ID              int64      `json:"id"`
	Kind            ItemKind   `json:"kind"`
	Name            string     `json:"item_name"`
	Category        string     `json:"category"`
	Description     string     `json:"description"`
	Location        string     `json:"location"`
	CurrentLocation string     `json:"current_location,omitempty"`
	ReporterName    string     `json:"full_names"`
	StudentNumber   string     `json:"student_number"`
	StudentEmail    string     `json:"student_email"`
	PhotoFilename   string     `json:"photo_filename,omitempty"`
	Status          ItemStatus `json:"status"`
	Verified        bool       `json:"is_verified"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
}

// Ref returns the tagged reference pointing at this item.
func (i *Item) Ref() ItemRef {
	return ItemRef{kind: i.Kind, id: i.ID}
}

// DescriptionMaxLen bounds the free-text description of reports and claims.
const DescriptionMaxLen = 500

// ItemRef is a reference from a claim to an item: either no item, a lost
// item, or a found item. The zero value is NoItem.
type ItemRef struct {
	kind ItemKind
	id   int64
}

// NoItem is the empty reference.
var NoItem = ItemRef{}

// LostRef references a lost item.
func LostRef(id int64) ItemRef { return ItemRef{kind: KindLost, id: id} }

// FoundRef references a found item.
func FoundRef(id int64) ItemRef { return ItemRef{kind: KindFound, id: id} }

// NewItemRef builds a reference of the given kind.
func NewItemRef(kind ItemKind, id int64) ItemRef { return ItemRef{kind: kind, id: id} }

// ParseItemRef builds a reference from the item_type and item_id form
// fields. An empty id yields NoItem.
func ParseItemRef(kind, id string) (ItemRef, error) {
	if id == "" {
		return NoItem, nil
	}
	k, err := ParseItemKind(kind)
	if err != nil {
		return NoItem, err
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return NoItem, fmt.Errorf("invalid item id %q", id)
	}
	return ItemRef{kind: k, id: n}, nil
}

// IsNone reports whether the reference points at nothing.
func (r ItemRef) IsNone() bool { return r.id == 0 }

// Kind returns the referenced item kind; empty for NoItem.
func (r ItemRef) Kind() ItemKind { return r.kind }

// ID returns the referenced item id; zero for NoItem.
func (r ItemRef) ID() int64 { return r.id }

func (r ItemRef) String() string {
	if r.IsNone() {
		return "none"
	}
	return fmt.Sprintf("%s#%d", r.kind, r.id)
}
