package settings

import (
	"errors"
	"sync"
)

// ReceiverAddressKey holds the last-known receiver address, either a bare
// host or host:port.
const ReceiverAddressKey = "last_receiver_ip"

// ErrEmptyKey is returned when a write names no key.
var ErrEmptyKey = errors.New("settings: empty key")

// Store is the read/write view over persisted settings. Get satisfies
// interfaces.IAddressStore.
type Store interface {
	Get(key string) (string, bool)
	Put(key, value string) error
	Delete(key string) error
}

// MapStore is an in-memory Store. The zero value is an empty store.
type MapStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMapStore returns a MapStore seeded with a copy of initial.
func NewMapStore(initial map[string]string) *MapStore {
	values := make(map[string]string, len(initial))
	for k, v := range initial {
		values[k] = v
	}
	return &MapStore{values: values}
}

// Get returns the value for key. Empty values are reported as absent.
func (m *MapStore) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (m *MapStore) Put(key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = make(map[string]string)
	}
	m.values[key] = value
	return nil
}

func (m *MapStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
