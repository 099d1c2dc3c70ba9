// Package photos stores report photos on disk under sanitized names.
package photos

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidName is returned for names that would escape the directory.
var ErrInvalidName = errors.New("invalid photo name")

// Store keeps photos as files in a single directory.
type Store struct {
	Dir string
}

// New creates the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	return &Store{Dir: dir}, nil
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SanitizeFilename reduces a client supplied filename to ASCII letters,
// digits, dots, dashes and underscores. Directory components and leading
// dots are removed. The result may be empty.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base("/" + name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeChars.ReplaceAllString(name, "")
	name = strings.TrimLeft(name, "._")
	if name == "." || name == ".." {
		return ""
	}
	return name
}

// Save writes JPEG data under a unique name derived from the original
// filename and returns the stored name.
func (s *Store) Save(original string, data []byte) (string, error) {
	base := strings.TrimSuffix(SanitizeFilename(original), filepath.Ext(SanitizeFilename(original)))
	if base == "" {
		base = "photo"
	}
	name := uuid.NewString() + "_" + base + ".jpg"

	if err := os.WriteFile(filepath.Join(s.Dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("writing photo: %w", err)
	}
	return name, nil
}

// Path returns the on-disk path for a stored name.
func (s *Store) Path(name string) (string, error) {
	if name == "" || SanitizeFilename(name) != name {
		return "", ErrInvalidName
	}
	return filepath.Join(s.Dir, name), nil
}

// Remove deletes a stored photo. An empty name is a no-op and a missing
// file is not an error.
func (s *Store) Remove(name string) error {
	if name == "" {
		return nil
	}
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing photo: %w", err)
	}
	return nil
}
