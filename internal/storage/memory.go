package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/gzip"
)

// Memory is the default adapter: an insertion-ordered in-memory store,
// optionally persisted as a gzip-compressed JSON snapshot.
type Memory struct {
	mu           sync.RWMutex
	values       map[string]json.RawMessage
	keys         []string // insertion order, backs KeyAt
	snapshotPath string
}

// snapshot is the on-disk representation of a Memory store.
type snapshot struct {
	Keys   []string                   `json:"keys"`
	Values map[string]json.RawMessage `json:"values"`
}

// NewMemory creates an empty, non-persistent store.
func NewMemory() *Memory {
	return &Memory{
		values: make(map[string]json.RawMessage),
	}
}

// NewMemoryWithSnapshot creates a store persisted at path. An existing
// snapshot is loaded; a missing file starts empty; an unreadable or
// corrupt snapshot fails construction.
func NewMemoryWithSnapshot(path string) (*Memory, error) {
	m := NewMemory()
	m.snapshotPath = path

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	snap, err := decodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	m.keys = snap.Keys
	for _, key := range snap.Keys {
		m.values[key] = snap.Values[key]
	}
	return m, nil
}

// Read returns the stored value, or nil when the key is unset.
func (m *Memory) Read(ctx context.Context, key string) (json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key], nil
}

// Write stores value under key, appending new keys to the enumeration order.
func (m *Memory) Write(ctx context.Context, key string, value json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
	return m.persistLocked()
}

// Remove deletes key. Removing an unset key is not an error.
func (m *Memory) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.values[key]; !exists {
		return nil
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
	return m.persistLocked()
}

// KeyAt returns the key at index in insertion order.
func (m *Memory) KeyAt(ctx context.Context, index int) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if index < 0 || index >= len(m.keys) {
		return "", fmt.Errorf("key index %d out of range (%d keys)", index, len(m.keys))
	}
	return m.keys[index], nil
}

// Count returns the number of stored keys.
func (m *Memory) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.keys), nil
}

// Clear removes all keys.
func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values = make(map[string]json.RawMessage)
	m.keys = nil
	return m.persistLocked()
}

// persistLocked writes the snapshot if persistence is configured.
// Callers hold the write lock.
func (m *Memory) persistLocked() error {
	if m.snapshotPath == "" {
		return nil
	}

	snap := snapshot{Keys: m.keys, Values: m.values}
	data, err := sonic.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot: %w", err)
	}

	tmp := m.snapshotPath + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}

	gz := gzip.NewWriter(f)
	if _, err := gz.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := gz.Close(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to flush snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close snapshot: %w", err)
	}

	return os.Rename(tmp, m.snapshotPath)
}

func decodeSnapshot(data []byte) (snapshot, error) {
	var snap snapshot

	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return snap, err
	}
	defer gz.Close()

	dec := sonic.ConfigDefault.NewDecoder(gz)
	if err := dec.Decode(&snap); err != nil {
		return snap, err
	}
	if snap.Values == nil {
		snap.Values = make(map[string]json.RawMessage)
	}
	return snap, nil
}
