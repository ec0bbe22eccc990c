// ABOUTME: File-backed recovery slot
// ABOUTME: Writes the snapshot as JSON via a temp file and rename

package recovery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/harper/wander/internal/models"
)

// FileSlot stores the snapshot in a single JSON file.
type FileSlot struct {
	path string
}

var _ Slot = (*FileSlot)(nil)

// NewFileSlot creates a slot backed by path.
func NewFileSlot(path string) *FileSlot {
	return &FileSlot{path: path}
}

// Path returns the snapshot file path.
func (s *FileSlot) Path() string {
	return s.path
}

// Save overwrites the snapshot file atomically.
func (s *FileSlot) Save(_ context.Context, snap *models.RecoverySnapshot) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	data, err := encode(snap)
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot file.
func (s *FileSlot) Load(_ context.Context) (*models.RecoverySnapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return decode(data)
}

// Delete removes the snapshot file.
func (s *FileSlot) Delete(_ context.Context) error {
	if err := os.Remove(s.path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}
