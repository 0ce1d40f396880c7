package ports

import (
	"context"
)

// Slot names a single-value durable location.
type Slot string

const (
	SlotDataset Slot = "dataset.csv"
	SlotModel   Slot = "best_model.gob"
)

// SlotStore persists one value per slot with last-write-wins semantics.
// Read returns domain.ErrSlotEmpty when nothing has been written yet.
type SlotStore interface {
	Read(ctx context.Context, slot Slot) ([]byte, error)
	Write(ctx context.Context, slot Slot, data []byte) error
}
