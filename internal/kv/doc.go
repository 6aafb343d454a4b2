// Package kv is shopfront's durable key/value store and the only
// authoritative copy of application state.
//
// The package is split in two layers:
//
//   - Backend stores raw bytes per key and hands out a Revision for every
//     write. Memory keeps values in process, Dir keeps one <key>.json file
//     per key, and SQLite keeps a single kv table through modernc.org/sqlite.
//     Revision 0 means the key is absent.
//   - Store is the typed contract the services use. It encodes values as
//     JSON, enforces a per-value size quota, and records which revisions it
//     wrote itself so the sync bridge can tell local writes from writes made
//     by another process on the same backend.
//
// Soft-fail reads
//
// Load and Get never return an error. A missing key, a backend read failure
// or a value that does not decode all leave the caller's default in place.
// Failures other than "missing" are logged as a *StorageError so they show up
// in the diagnostics view.
//
// Writes
//
// Save encodes first and checks the quota before touching the backend, so a
// serialization failure or an oversized value leaves the previous value
// untouched. Backends make each single-key write atomic: Dir writes a temp
// file and renames it over the target, SQLite uses one UPSERT statement.
// Nothing spans keys; a checkout that clears the cart and appends to the
// order history performs two independent writes.
//
// Errors
//
// Every write failure is a *StorageError carrying the operation and key. Use
// errors.Is with ErrQuota, ErrEncode or ErrCorrupt to classify it.
package kv
