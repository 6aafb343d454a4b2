package kv

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Dir stores each key as <dir>/<key>.json.
type Dir struct {
	root string

	mu   sync.Mutex
	last map[string]Revision
}

// OpenDir creates dir when needed and returns a file backend rooted there.
func OpenDir(dir string) (*Dir, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("storage dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Dir{root: filepath.Clean(dir), last: make(map[string]Revision)}, nil
}

func (d *Dir) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(d.root, key+".json"), nil
}

func (d *Dir) Get(key string) (Record, error) {
	path, err := d.path(key)
	if err != nil {
		return Record{}, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Record{}, nil
	}
	if err != nil {
		return Record{}, fmt.Errorf("read %s: %w", key, err)
	}
	rev, err := d.Revision(key)
	if err != nil {
		return Record{}, err
	}
	return Record{Value: data, Revision: rev}, nil
}

// Put writes to a temp file in the same directory and renames it over the
// target. Revisions are modification times in nanoseconds, nudged forward
// when the filesystem clock did not advance since this handle's last write.
func (d *Dir) Put(key string, value []byte) (Revision, error) {
	path, err := d.path(key)
	if err != nil {
		return 0, err
	}
	tmp, err := os.CreateTemp(d.root, "."+key+"-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		return 0, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return 0, fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("close temp file: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	prev, err := d.statRevision(path)
	if err != nil {
		return 0, err
	}
	if prev < d.last[key] {
		prev = d.last[key]
	}
	if err := os.Rename(tmpName, path); err != nil {
		return 0, fmt.Errorf("replace %s: %w", key, err)
	}
	rev, err := d.statRevision(path)
	if err != nil {
		return 0, err
	}
	if rev <= prev {
		rev = prev + 1
		at := time.Unix(0, int64(rev))
		if err := os.Chtimes(path, at, at); err != nil {
			return 0, fmt.Errorf("touch %s: %w", key, err)
		}
	}
	d.last[key] = rev
	return rev, nil
}

func (d *Dir) Revision(key string) (Revision, error) {
	path, err := d.path(key)
	if err != nil {
		return 0, err
	}
	return d.statRevision(path)
}

func (d *Dir) statRevision(path string) (Revision, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", filepath.Base(path), err)
	}
	return Revision(info.ModTime().UnixNano()), nil
}

func (d *Dir) Close() error { return nil }
