package model

import "time"

// Category is an admin-managed item category.
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Active      bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Location is an admin-managed campus location.
type Location struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Active      bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Setting is a key/value system setting.
type Setting struct {
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Description string    `json:"description,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
	UpdatedBy   *int64    `json:"updated_by,omitempty"`
}

// Well-known setting keys.
const (
	SettingItemExpiryDays    = "item_expiry_days"
	SettingMaxPhotoSize      = "max_photo_size"
	SettingAllowedPhotoTypes = "allowed_photo_types"
	SettingSiteName          = "site_name"
	SettingContactEmail      = "contact_email"
	SettingJWTSecret         = "jwt_secret"
)

// DefaultExpiryDays is the age after which active reports are expired.
const DefaultExpiryDays = 30

// Activity is one row of the user activity log.
type Activity struct {
	ID        int64     `json:"id"`
	UserID    *int64    `json:"user_id,omitempty"`
	Action    string    `json:"action"`
	Details   string    `json:"details,omitempty"`
	IPAddress string    `json:"ip_address,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	Username string `json:"username,omitempty"`
}
