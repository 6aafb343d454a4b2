// Package bridge makes writes from other shopfront processes visible on the
// local event bus.
//
// # Overview
//
// Every shopfront process (the TUI, a second TUI, a one-shot `shopfront cart
// add` command) opens the same store backend. Processes never share memory;
// the store is the only channel between them. The bridge polls the backend
// revision of each watched key and, when it moves because of somebody else's
// write, re-reads the value and publishes the topic a local mutation would
// have published. Views therefore have a single inbound path for changes.
//
//	key           topic            payload
//	cart          cart-changed     {cart, count}
//	userProfile   profile-updated  saved profile (skipped when absent)
//	orderHistory  orders-changed   full history
//	theme         theme-changed    stored theme name
//
// # Local vs foreign writes
//
// kv.Store remembers the revision of its own latest write per key. A poll
// that finds the backend at that revision skips the key, since the service
// that wrote it already published. Any other new revision is foreign.
//
// # Scheduling
//
// Start arms Poll on the sched.Scheduler every Interval (default 500ms)
// instead of running a free goroutine, so in the TUI each poll and the
// publishes it triggers run on the bubbletea update loop like any other
// timer callback.
//
//	Start()
//	  └─> AfterFunc(interval) ──> tick()
//	                                ├─> Poll()
//	                                │     └─> Revision(key) / Get / Publish
//	                                └─> AfterFunc(calculateBackoff(...))
//
// # Error Handling
//
// A backend failure on one key does not stop the others. Consecutive failed
// polls back off exponentially from the base interval up to 30 seconds and
// reset after the first clean poll. Failures are logged and reported through
// Options.OnError; they never reach views directly.
//
// # Consistency
//
// Last writer wins. If two processes write the same key between polls, only
// the surviving value is published and the earlier writer is not told it was
// overwritten. Republishing an unchanged value is harmless because views
// re-derive everything from a fresh read.
package bridge
