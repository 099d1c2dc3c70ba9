package model

import (
	"fmt"
	"time"
)

// ClaimStatus is the decision state of a claim.
type ClaimStatus string

// Claim statuses.
const (
	ClaimPending  ClaimStatus = "pending"
	ClaimApproved ClaimStatus = "approved"
	ClaimRejected ClaimStatus = "rejected"
)

// ClaimStatuses lists every valid claim status.
var ClaimStatuses = []ClaimStatus{ClaimPending, ClaimApproved, ClaimRejected}

// ParseClaimStatus converts a form value into a ClaimStatus.
func ParseClaimStatus(s string) (ClaimStatus, error) {
	for _, st := range ClaimStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown claim status %q", s)
}

// Resolved reports whether an admin has decided the claim.
func (s ClaimStatus) Resolved() bool {
	return s == ClaimApproved || s == ClaimRejected
}

// Claim is a request by a student to take ownership of an item.
type Claim struct {
	ID            int64       `json:"id"`
	ClaimantName  string      `json:"full_names"`
	StudentNumber string      `json:"student_number"`
	StudentEmail  string      `json:"student_email"`
	Description   string      `json:"description"`
	Item          ItemRef     `json:"-"`
	Status        ClaimStatus `json:"status"`
	AdminNotes    string      `json:"admin_notes,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
	ResolvedAt    *time.Time  `json:"resolved_at,omitempty"`

	// Joined fields (not always populated).
	ItemName string `json:"item_name,omitempty"`
}

// ItemType is the serialised kind of the referenced item, empty for none.
func (c *Claim) ItemType() string { return string(c.Item.Kind()) }

// ItemID is the referenced item id, zero for none.
func (c *Claim) ItemID() int64 { return c.Item.ID() }

// ClaimHistory is one append-only entry in a claim's audit trail.
type ClaimHistory struct {
	ID        int64       `json:"id"`
	ClaimID   int64       `json:"claim_id"`
	AdminID   *int64      `json:"admin_id,omitempty"`
	Action    string      `json:"action"`
	Status    ClaimStatus `json:"status"`
	Notes     string      `json:"notes,omitempty"`
	CreatedAt time.Time   `json:"created_at"`

	AdminName string `json:"admin_name,omitempty"`
}

// Claim history actions.
const (
	HistoryCreated = "created"
	HistoryUpdated = "status_updated"
)
