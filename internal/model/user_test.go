package model

import "testing"

func TestRoleCan(t *testing.T) {
	tests := []struct {
		role     Role
		cap      Capability
		expected bool
	}{
		{RoleAdmin, CapAdminister, true},
		{RoleAdmin, CapReport, true},
		{RoleAdmin, CapClaim, true},
		{RoleStudent, CapAdminister, false},
		{RoleStudent, CapReport, true},
		{RoleStudent, CapClaim, true},
		// Unknown roles fail-closed.
		{"manager", CapReport, false},
		{"", CapClaim, false},
		{"", CapAdminister, false},
	}

	for _, tt := range tests {
		got := tt.role.Can(tt.cap)
		if got != tt.expected {
			t.Errorf("Role(%q).Can(%d) = %v, want %v", tt.role, tt.cap, got, tt.expected)
		}
	}
}

func TestParseRole(t *testing.T) {
	for _, r := range Roles {
		got, err := ParseRole(string(r))
		if err != nil || got != r {
			t.Errorf("ParseRole(%q) = %q, %v", r, got, err)
		}
	}
	if _, err := ParseRole("superuser"); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestIsAdmin(t *testing.T) {
	var nilUser *User
	if nilUser.IsAdmin() {
		t.Error("nil user must not be admin")
	}
	if (&User{Role: RoleStudent}).IsAdmin() {
		t.Error("student must not be admin")
	}
	if !(&User{Role: RoleAdmin}).IsAdmin() {
		t.Error("admin must be admin")
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  bool
	}{
		{"", true},
		{"short", true},
		{"123456", false},
		{"password123", false},
	}

	for _, tt := range tests {
		err := ValidatePassword(tt.password)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
		}
	}
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		username string
		wantErr  bool
	}{
		{"ab", true},
		{"abc", false},
		{"22211013", false},
		{"abcdefghijklmnopqrst", false},
		{"abcdefghijklmnopqrstu", true},
	}

	for _, tt := range tests {
		err := ValidateUsername(tt.username)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateUsername(%q) error = %v, wantErr %v", tt.username, err, tt.wantErr)
		}
	}
}
