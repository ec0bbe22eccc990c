// ABOUTME: Durable single-slot storage for in-progress recording snapshots
// ABOUTME: Defines the Slot interface and shared snapshot encoding

package recovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/harper/wander/internal/models"
)

// ErrNoSnapshot is returned by Load when the slot is empty.
var ErrNoSnapshot = errors.New("no recovery snapshot")

// ErrCorrupt is returned by Load when the slot holds undecodable data.
var ErrCorrupt = errors.New("recovery snapshot is corrupt")

// Slot holds at most one snapshot. Save overwrites; Delete of an empty slot is fine.
type Slot interface {
	Save(ctx context.Context, snap *models.RecoverySnapshot) error
	Load(ctx context.Context) (*models.RecoverySnapshot, error)
	Delete(ctx context.Context) error
}

func encode(snap *models.RecoverySnapshot) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

func decode(data []byte) (*models.RecoverySnapshot, error) {
	var snap models.RecoverySnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if snap.StartTime.IsZero() {
		return nil, fmt.Errorf("%w: missing start time", ErrCorrupt)
	}
	return &snap, nil
}
