// Package store persists the template/theme library and durable session
// state in a single bbolt file, one bucket per collection.
package store

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"deckview/internal/domain/ports"
)

// Bucket names.
const (
	BucketTemplates = "templates"
	BucketThemes    = "themes"
	BucketSettings  = "settings"
)

// BoltStore wraps one bbolt database file.
type BoltStore struct {
	db *bolt.DB
}

// Open opens (creating if needed) the store file and ensures all buckets
// exist.
func Open(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening store %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{BucketTemplates, BucketThemes, BucketSettings} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing store buckets: %w", err)
	}
	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Collection returns the keyed collection stored in the named bucket.
func (s *BoltStore) Collection(name string) ports.CollectionStore {
	return &collection{db: s.db, bucket: []byte(name)}
}

// Settings returns the durable key-value state bucket.
func (s *BoltStore) Settings() ports.SettingsStore {
	return &kv{db: s.db, bucket: []byte(BucketSettings)}
}

type collection struct {
	db     *bolt.DB
	bucket []byte
}

func (c *collection) All() (map[string][]byte, error) {
	records := make(map[string][]byte)
	err := c.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(c.bucket).ForEach(func(k, v []byte) error {
			val := make([]byte, len(v))
			copy(val, v)
			records[string(k)] = val
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (c *collection) Get(id string) ([]byte, error) {
	var val []byte
	err := c.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(c.bucket).Get([]byte(id))
		if v == nil {
			return ports.ErrNotFound
		}
		val = make([]byte, len(v))
		copy(val, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (c *collection) Put(id string, value []byte) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(c.bucket).Put([]byte(id), value)
	})
}

func (c *collection) Delete(id string) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(c.bucket).Delete([]byte(id))
	})
}

// ReplaceAll swaps the whole collection in one transaction, so readers see
// either the old set or the new one.
func (c *collection) ReplaceAll(records map[string][]byte) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(c.bucket); err != nil {
			return err
		}
		b, err := tx.CreateBucket(c.bucket)
		if err != nil {
			return err
		}
		for id, value := range records {
			if err := b.Put([]byte(id), value); err != nil {
				return err
			}
		}
		return nil
	})
}

type kv struct {
	db     *bolt.DB
	bucket []byte
}

func (s *kv) Get(key string) ([]byte, error) {
	var val []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(s.bucket).Get([]byte(key))
		if v == nil {
			return ports.ErrNotFound
		}
		val = make([]byte, len(v))
		copy(val, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (s *kv) Set(key string, value []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), value)
	})
}
