package kv

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"sync"
)

// DefaultMaxValueBytes mirrors the per-origin limit of browser storage.
const DefaultMaxValueBytes = 5 << 20

// Store is the typed, soft-failing view of a Backend.
type Store struct {
	backend  Backend
	logger   *slog.Logger
	maxBytes int
	onError  func(*StorageError)

	mu  sync.Mutex
	own map[string]Revision
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for soft read failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxValueBytes overrides the per-value quota. Non-positive values keep
// the default.
func WithMaxValueBytes(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxBytes = n
		}
	}
}

// WithErrorHook is called for every StorageError, read or write.
func WithErrorHook(fn func(*StorageError)) Option {
	return func(s *Store) { s.onError = fn }
}

// NewStore wraps backend.
func NewStore(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend:  backend,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxBytes: DefaultMaxValueBytes,
		own:      make(map[string]Revision),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Backend returns the underlying backend.
func (s *Store) Backend() Backend {
	return s.backend
}

// Load decodes the value at key into dest, which must be a non-nil pointer.
// It returns false and leaves dest untouched when the key is missing or the
// value cannot be read or decoded.
func (s *Store) Load(key string, dest any) bool {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return false
	}
	rec, err := s.backend.Get(key)
	if err != nil {
		s.report(&StorageError{Op: "read", Key: key, Err: err})
		return false
	}
	if rec.Revision == 0 || len(bytes.TrimSpace(rec.Value)) == 0 {
		return false
	}
	if bytes.Equal(bytes.TrimSpace(rec.Value), []byte("null")) {
		return false
	}
	fresh := reflect.New(rv.Elem().Type())
	if err := json.Unmarshal(rec.Value, fresh.Interface()); err != nil {
		s.report(&StorageError{Op: "read", Key: key, Err: fmt.Errorf("%w: %v", ErrCorrupt, err)})
		return false
	}
	rv.Elem().Set(fresh.Elem())
	return true
}

// Get returns the value at key or def.
func Get[T any](s *Store, key string, def T) T {
	out := def
	s.Load(key, &out)
	return out
}

// Save encodes value and writes it to key. On failure the previous value is
// left in place and a *StorageError is returned.
func (s *Store) Save(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return s.fail(&StorageError{Op: "write", Key: key, Err: fmt.Errorf("%w: %v", ErrEncode, err)})
	}
	if len(data) > s.maxBytes {
		return s.fail(&StorageError{Op: "write", Key: key, Err: fmt.Errorf("%w: %d bytes over %d", ErrQuota, len(data), s.maxBytes)})
	}
	rev, err := s.backend.Put(key, data)
	if err != nil {
		return s.fail(&StorageError{Op: "write", Key: key, Err: err})
	}
	s.mu.Lock()
	s.own[key] = rev
	s.mu.Unlock()
	return nil
}

// Revision reports the backend's current revision for key.
func (s *Store) Revision(key string) (Revision, error) {
	rev, err := s.backend.Revision(key)
	if err != nil {
		return 0, &StorageError{Op: "stat", Key: key, Err: err}
	}
	return rev, nil
}

// OwnRevision returns the revision of this store's most recent write to key.
func (s *Store) OwnRevision(key string) Revision {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.own[key]
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) fail(err *StorageError) error {
	s.report(err)
	return err
}

func (s *Store) report(err *StorageError) {
	level := slog.LevelWarn
	if errors.Is(err, ErrCorrupt) {
		level = slog.LevelError
	}
	s.logger.Log(context.Background(), level, "storage error", "op", err.Op, "key", err.Key, "error", err.Err)
	if s.onError != nil {
		s.onError(err)
	}
}
