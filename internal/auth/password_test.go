package auth

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("password123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "password123" {
		t.Fatal("hash must not equal the password")
	}
	if !CheckPassword(hash, "password123") {
		t.Error("expected password to match")
	}
	if CheckPassword(hash, "password124") {
		t.Error("expected wrong password to fail")
	}
}

func TestGeneratePassword(t *testing.T) {
	a, err := GeneratePassword(12)
	if err != nil {
		t.Fatalf("GeneratePassword: %v", err)
	}
	if len(a) != 12 {
		t.Errorf("expected 12 characters, got %d", len(a))
	}
	b, _ := GeneratePassword(12)
	if a == b {
		t.Error("expected different passwords")
	}
}
