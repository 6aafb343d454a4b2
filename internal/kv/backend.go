package kv

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Revision orders writes to a single key. Zero means absent.
type Revision int64

// Record is a raw stored value.
type Record struct {
	Value    []byte
	Revision Revision
}

// Backend is raw per-key storage.
type Backend interface {
	Get(key string) (Record, error)
	Put(key string, value []byte) (Revision, error)
	Revision(key string) (Revision, error)
	Close() error
}

// Backend kinds accepted by Open.
const (
	KindSQLite = "sqlite"
	KindFiles  = "files"
	KindMemory = "memory"
)

// Open creates the named backend under dir.
func Open(kind, dir string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindSQLite:
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		return OpenSQLite(filepath.Join(dir, "shopfront.db"))
	case KindFiles:
		return OpenDir(filepath.Join(dir, "store"))
	case KindMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", kind)
	}
}

// Memory keeps values in process. Several Stores may share one Memory to
// stand in for separate processes.
type Memory struct {
	mu     sync.RWMutex
	rev    Revision
	values map[string]Record
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]Record)}
}

func (m *Memory) Get(key string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.values[key]
	if !ok {
		return Record{}, nil
	}
	rec.Value = append([]byte(nil), rec.Value...)
	return rec, nil
}

func (m *Memory) Put(key string, value []byte) (Revision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rev++
	m.values[key] = Record{Value: append([]byte(nil), value...), Revision: m.rev}
	return m.rev, nil
}

func (m *Memory) Revision(key string) (Revision, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key].Revision, nil
}

// SetRaw stores bytes without going through a Store. Tests use it to plant
// corrupt values or simulate foreign writers.
func (m *Memory) SetRaw(key string, value []byte) Revision {
	rev, _ := m.Put(key, value)
	return rev
}

func (m *Memory) Close() error { return nil }
