package model

import "fmt"

// BulkAction is an operation an admin may apply to many reports at once.
type BulkAction string

// Bulk actions.
const (
	BulkDelete  BulkAction = "delete"
	BulkApprove BulkAction = "approve"
	BulkReject  BulkAction = "reject"
	BulkExpire  BulkAction = "expire"
	BulkVerify  BulkAction = "verify"
)

// BulkActions lists every bulk action, in display order.
var BulkActions = []BulkAction{BulkDelete, BulkApprove, BulkReject, BulkExpire, BulkVerify}

// ParseBulkAction converts a form value into a BulkAction.
func ParseBulkAction(s string) (BulkAction, error) {
	switch BulkAction(s) {
	case BulkDelete, BulkApprove, BulkReject, BulkExpire, BulkVerify:
		return BulkAction(s), nil
	}
	return "", fmt.Errorf("unknown bulk action %q", s)
}
