package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"autostreamml/internal/core/domain"
	ports "autostreamml/internal/core/ports/output"
)

// slotStore keeps each slot as a file under baseDir. Writes go to a
// temporary file that is renamed over the slot, so readers see either the
// previous value or the new one.
type slotStore struct {
	baseDir string
}

func NewSlotStore(dir string) (ports.SlotStore, error) {
	baseDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve storage dir %s: %w", dir, err)
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir %s: %w", baseDir, err)
	}
	return &slotStore{baseDir: baseDir}, nil
}

func (s *slotStore) path(slot ports.Slot) string {
	return filepath.Join(s.baseDir, string(slot))
}

func (s *slotStore) Read(ctx context.Context, slot ports.Slot) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(slot))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("read slot %s: %w", slot, err)
	}
	return data, nil
}

func (s *slotStore) Write(ctx context.Context, slot ports.Slot, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.baseDir, "."+string(slot)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for slot %s: %w", slot, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("write slot %s: %w", slot, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("sync slot %s: %w", slot, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close slot %s: %w", slot, err)
	}
	if err := os.Rename(tmpName, s.path(slot)); err != nil {
		return fmt.Errorf("replace slot %s: %w", slot, err)
	}
	return nil
}
