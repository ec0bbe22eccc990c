// ABOUTME: Badger-backed recovery slot
// ABOUTME: Keeps the snapshot under one key in an embedded Badger database

package recovery

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v3"
	"github.com/harper/wander/internal/models"
)

var snapshotKey = []byte("recovery:snapshot")

// BadgerSlot stores the snapshot in a Badger database directory.
type BadgerSlot struct {
	db *badger.DB
}

var _ Slot = (*BadgerSlot)(nil)

// OpenBadgerSlot opens (or creates) a Badger database at dir. Writes are
// fsynced on commit so a snapshot survives a crash right after Save.
func OpenBadgerSlot(dir string) (*BadgerSlot, error) {
	if err := os.MkdirAll(dir, 0750); err != nil { //nolint:gosec // 0750 is appropriate for user data directory
		return nil, fmt.Errorf("create recovery directory: %w", err)
	}
	opts := badger.DefaultOptions(dir).WithSyncWrites(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open recovery database: %w", err)
	}
	return &BadgerSlot{db: db}, nil
}

// OpenInMemoryBadgerSlot opens a Badger slot that never touches disk.
func OpenInMemoryBadgerSlot() (*BadgerSlot, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open recovery database: %w", err)
	}
	return &BadgerSlot{db: db}, nil
}

// Save overwrites the snapshot. For a disk-backed slot the write is synced
// before returning.
func (s *BadgerSlot) Save(_ context.Context, snap *models.RecoverySnapshot) error {
	data, err := encode(snap)
	if err != nil {
		return err
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(snapshotKey, data)
	}); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Load returns the stored snapshot.
func (s *BadgerSlot) Load(_ context.Context) (*models.RecoverySnapshot, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(snapshotKey)
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return decode(data)
}

// Delete removes the snapshot.
func (s *BadgerSlot) Delete(_ context.Context) error {
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(snapshotKey)
	}); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *BadgerSlot) Close() error {
	return s.db.Close()
}
