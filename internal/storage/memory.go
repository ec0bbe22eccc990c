// ABOUTME: In-memory RecordStore used by tests and dry runs
// ABOUTME: Supports injected failures to exercise error paths

package storage

import (
	"context"
	"sort"
	"sync"
)

// MemoryDB is a RecordStore held entirely in memory.
type MemoryDB struct {
	mu       sync.Mutex
	data     map[string]map[int64][]byte
	readOnly bool

	// PutErr, when set, is returned by PutRecord wrapped as unavailable.
	PutErr error
	// GetErr, when set, is returned by reads wrapped as unavailable.
	GetErr error
}

var _ RecordStore = (*MemoryDB)(nil)

// NewMemoryDB creates an empty in-memory store.
func NewMemoryDB() *MemoryDB {
	return &MemoryDB{data: make(map[string]map[int64][]byte)}
}

// SetReadOnly toggles read-only mode.
func (m *MemoryDB) SetReadOnly(ro bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readOnly = ro
}

// PutRecord stores a copy of data.
func (m *MemoryDB) PutRecord(_ context.Context, collection string, id int64, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutErr != nil {
		return Unavailable("put record", m.PutErr)
	}
	c, ok := m.data[collection]
	if !ok {
		c = make(map[int64][]byte)
		m.data[collection] = c
	}
	c[id] = append([]byte(nil), data...)
	return nil
}

// GetRecord returns a copy of one record.
func (m *MemoryDB) GetRecord(_ context.Context, collection string, id int64) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, Unavailable("get record", m.GetErr)
	}
	data, ok := m.data[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// GetAllRecords returns copies of every record in a collection ordered by id.
func (m *MemoryDB) GetAllRecords(_ context.Context, collection string) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, Unavailable("get records", m.GetErr)
	}
	records := make([]Record, 0, len(m.data[collection]))
	for id, data := range m.data[collection] {
		records = append(records, Record{ID: id, Data: append([]byte(nil), data...)})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

// DeleteRecord removes one record.
func (m *MemoryDB) DeleteRecord(_ context.Context, collection string, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data[collection], id)
	return nil
}

// ClearCollection removes a collection's records.
func (m *MemoryDB) ClearCollection(_ context.Context, collection string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, collection)
	return nil
}

// Close is a no-op.
func (m *MemoryDB) Close() error { return nil }

// Sync is a no-op.
func (m *MemoryDB) Sync() error { return nil }

// IsReadOnly reports the read-only flag.
func (m *MemoryDB) IsReadOnly() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readOnly
}
