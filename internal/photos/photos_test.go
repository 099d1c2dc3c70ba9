package photos

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"phone.jpg", "phone.jpg"},
		{"my phone.JPG", "my_phone.JPG"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\cat.png`, "cat.png"},
		{".hidden", "hidden"},
		{"naïve café.png", "nave_caf.png"},
		{"..", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSaveAndRemove(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "uploads"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	name, err := s.Save("../My Phone.png", []byte("jpeg bytes"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasSuffix(name, "_My_Phone.jpg") {
		t.Errorf("unexpected stored name %q", name)
	}

	path, err := s.Path(name)
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "jpeg bytes" {
		t.Fatalf("ReadFile = %q, %v", data, err)
	}

	other, _ := s.Save("../My Phone.png", []byte("other"))
	if other == name {
		t.Error("expected distinct names for identical uploads")
	}

	if err := s.Remove(name); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected photo to be removed")
	}

	// Removing again or removing nothing is not an error.
	if err := s.Remove(name); err != nil {
		t.Errorf("second Remove: %v", err)
	}
	if err := s.Remove(""); err != nil {
		t.Errorf("Remove empty: %v", err)
	}
}

func TestPathRejectsTraversal(t *testing.T) {
	s := &Store{Dir: t.TempDir()}
	for _, name := range []string{"../secret", "a/b.jpg", "", ".env"} {
		if _, err := s.Path(name); err != ErrInvalidName {
			t.Errorf("Path(%q) error = %v, want ErrInvalidName", name, err)
		}
	}
}
