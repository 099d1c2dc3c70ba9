package model

// Count is a labelled row count.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Stats summarises reports and claims for the admin console.
type Stats struct {
	TotalUsers    int `json:"total_users"`
	TotalLost     int `json:"total_lost"`
	TotalFound    int `json:"total_found"`
	TotalClaims   int `json:"total_claims"`
	PendingClaims int `json:"pending_claims"`
	ActiveLost    int `json:"active_lost"`
	ActiveFound   int `json:"active_found"`

	LostByStatus    []Count `json:"lost_by_status"`
	FoundByStatus   []Count `json:"found_by_status"`
	ClaimsByStatus  []Count `json:"claims_by_status"`
	LostByCategory  []Count `json:"lost_by_category"`
	FoundByCategory []Count `json:"found_by_category"`
}
