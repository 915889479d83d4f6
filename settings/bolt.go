package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"go.etcd.io/bbolt"
)

var bucketSettings = []byte("settings")

// DefaultOpenTimeout bounds how long Open waits for another process holding
// the database lock.
const DefaultOpenTimeout = 2 * time.Second

// BoltStore persists settings in a single bbolt bucket.
type BoltStore struct {
	db   *bbolt.DB
	path string
}

// Compile-time interface check.
var _ Store = (*BoltStore)(nil)

// Open opens or creates the settings database at path. The parent
// directory is created if it does not exist.
func Open(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("settings: create directory: %w", err)
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: DefaultOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("settings: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSettings)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("settings: create bucket: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "settings.Open",
		"path":     path,
	}).Debug("Opened settings store")

	return &BoltStore{db: db, path: path}, nil
}

// Path returns the database file location.
func (s *BoltStore) Path() string { return s.path }

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// Get returns the value for key. Read errors and empty values are reported
// as absent; a read error is logged.
func (s *BoltStore) Get(key string) (string, bool) {
	var value string
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketSettings)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			value = string(v)
		}
		return nil
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "BoltStore.Get",
			"key":      key,
			"error":    err.Error(),
		}).Warn("Failed to read setting")
		return "", false
	}
	if value == "" {
		return "", false
	}
	return value, true
}

// Put stores value under key, replacing any previous value.
func (s *BoltStore) Put(key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSettings).Put([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("settings: put %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *BoltStore) Delete(key string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSettings).Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("settings: delete %q: %w", key, err)
	}
	return nil
}

// PathStore reads settings from a bbolt file, opening it read-only for each
// lookup so another process can hold the write lock between reads.
type PathStore struct {
	Path string
}

// Get implements interfaces.IAddressStore. A missing file reads as empty.
func (p PathStore) Get(key string) (string, bool) {
	if _, err := os.Stat(p.Path); err != nil {
		return "", false
	}
	db, err := bbolt.Open(p.Path, 0o600, &bbolt.Options{ReadOnly: true, Timeout: DefaultOpenTimeout})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "PathStore.Get",
			"path":     p.Path,
			"error":    err.Error(),
		}).Warn("Failed to open settings store")
		return "", false
	}
	defer db.Close()

	store := &BoltStore{db: db, path: p.Path}
	return store.Get(key)
}
