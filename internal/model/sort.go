package model

// SortKey is a whitelisted column that list pages may order by.
type SortKey string

// Item sort keys.
const (
	SortCreatedAt SortKey = "created_at"
	SortUpdatedAt SortKey = "updated_at"
	SortName      SortKey = "item_name"
	SortCategory  SortKey = "category"
	SortStatus    SortKey = "status"
	SortLocation  SortKey = "location"
	SortClaimant  SortKey = "full_names"
)

var itemSortKeys = map[SortKey]bool{
	SortCreatedAt: true,
	SortUpdatedAt: true,
	SortName:      true,
	SortCategory:  true,
	SortStatus:    true,
	SortLocation:  true,
}

var claimSortKeys = map[SortKey]bool{
	SortCreatedAt: true,
	SortUpdatedAt: true,
	SortStatus:    true,
	SortClaimant:  true,
}

// SortOrder is ascending or descending.
type SortOrder string

// Sort orders.
const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// Sort is a validated ordering for a list query.
type Sort struct {
	Key   SortKey
	Order SortOrder
}

// DefaultSort orders newest first.
var DefaultSort = Sort{Key: SortCreatedAt, Order: Desc}

// ParseItemSort validates sort and order query parameters for item lists.
// Unknown keys fall back to created_at; unknown orders to desc.
func ParseItemSort(key, order string) Sort {
	return parseSort(itemSortKeys, key, order)
}

// ParseClaimSort validates sort and order query parameters for claim lists.
func ParseClaimSort(key, order string) Sort {
	return parseSort(claimSortKeys, key, order)
}

func parseSort(allowed map[SortKey]bool, key, order string) Sort {
	s := DefaultSort
	if allowed[SortKey(key)] {
		s.Key = SortKey(key)
	}
	if SortOrder(order) == Asc {
		s.Order = Asc
	}
	return s
}
