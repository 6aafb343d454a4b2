package kv

import (
	"errors"
	"fmt"
)

// Sentinel causes carried by StorageError.
var (
	ErrQuota   = errors.New("quota exceeded")
	ErrEncode  = errors.New("serialization failed")
	ErrCorrupt = errors.New("stored value is not valid JSON")
	ErrClosed  = errors.New("backend closed")
)

// StorageError describes a failed store operation.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
