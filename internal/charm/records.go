// ABOUTME: RecordStore implementation over Charm KV
// ABOUTME: Stores each record under a "<collection>:<id>" key as JSON bytes

package charm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/charmbracelet/charm/kv"
	"github.com/harper/wander/internal/storage"
)

// Compile-time check that Client implements storage.RecordStore.
var _ storage.RecordStore = (*Client)(nil)

func recordKey(collection string, id int64) []byte {
	return []byte(collection + keySeparator + strconv.FormatInt(id, 10))
}

func collectionPrefix(collection string) []byte {
	return []byte(collection + keySeparator)
}

// PutRecord stores data under the collection and id.
func (c *Client) PutRecord(_ context.Context, collection string, id int64, data []byte) error {
	err := c.write(func(k *kv.KV) error {
		return k.Set(recordKey(collection, id), data)
	})
	if err != nil {
		return storage.Unavailable("set record", err)
	}
	return nil
}

// GetRecord returns one record, or storage.ErrNotFound.
func (c *Client) GetRecord(_ context.Context, collection string, id int64) ([]byte, error) {
	var data []byte
	err := c.read(func(k *kv.KV) error {
		var err error
		data, err = k.Get(recordKey(collection, id))
		return err
	})
	if err != nil {
		if errors.Is(err, kv.ErrMissingKey) {
			return nil, storage.ErrNotFound
		}
		return nil, storage.Unavailable("get record", err)
	}
	return data, nil
}

// GetAllRecords scans every key with the collection prefix in one read-only session.
func (c *Client) GetAllRecords(_ context.Context, collection string) ([]storage.Record, error) {
	prefix := collectionPrefix(collection)
	var records []storage.Record

	err := c.read(func(k *kv.KV) error {
		keys, err := k.Keys()
		if err != nil {
			return fmt.Errorf("list keys: %w", err)
		}
		for _, key := range keys {
			if !bytes.HasPrefix(key, prefix) {
				continue
			}
			id, err := strconv.ParseInt(string(key[len(prefix):]), 10, 64)
			if err != nil {
				// Not one of ours.
				continue
			}
			data, err := k.Get(key)
			if err != nil {
				return fmt.Errorf("get %s: %w", key, err)
			}
			records = append(records, storage.Record{ID: id, Data: data})
		}
		return nil
	})
	if err != nil {
		return nil, storage.Unavailable("scan records", err)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

// DeleteRecord removes one record. Missing keys are ignored.
func (c *Client) DeleteRecord(_ context.Context, collection string, id int64) error {
	err := c.write(func(k *kv.KV) error {
		return k.Delete(recordKey(collection, id))
	})
	if err != nil && !errors.Is(err, kv.ErrMissingKey) {
		return storage.Unavailable("delete record", err)
	}
	return nil
}

// ClearCollection deletes every key in the collection in a single write session.
func (c *Client) ClearCollection(_ context.Context, collection string) error {
	prefix := collectionPrefix(collection)
	err := c.write(func(k *kv.KV) error {
		keys, err := k.Keys()
		if err != nil {
			return fmt.Errorf("list keys: %w", err)
		}
		for _, key := range keys {
			if !bytes.HasPrefix(key, prefix) {
				continue
			}
			if err := k.Delete(key); err != nil {
				return fmt.Errorf("delete %s: %w", key, err)
			}
		}
		return nil
	})
	if err != nil {
		return storage.Unavailable("clear collection", err)
	}
	return nil
}
