// Package catalog loads the product catalog and drives search, category
// filters and debounced search suggestions.
//
// # Overview
//
// An Engine owns three pieces of state:
//
//   - the catalog itself, with a load Status (loading, ready, failed)
//   - the search box text and the selected categories
//   - the applied Query that decides which products are visible
//
// Typing does not refilter the list. The applied query only changes on
// Submit (Enter), on a category change, on SelectSuggestion, or when the
// search box is cleared. Every applied change is reflected to the Location
// as "search=<term>&filters=a,b" so the view can be restored with
// ParseQuery and Restore before the first render.
//
// # Loading
//
// Fetch prefers the cache under the products key. Without a cached catalog
// it waits the configured latency, downloads through the Fetcher and caches
// the result:
//
//	BeginLoad ──▶ Fetch (any goroutine) ──▶ Apply (logical thread)
//	                 │
//	                 ├─ cache hit ─────────────▶ ready (source=cache)
//	                 ├─ download ok ───────────▶ ready (source=network)
//	                 └─ error or empty catalog ▶ failed
//
// Load runs the three steps in sequence for callers that can block. A failed
// load stays failed until Retry; nothing retries on its own.
//
// # Suggestions
//
// SetInput restarts a debounce window on the scheduler. Each call bumps a
// generation counter and cancels the previous task, so after a burst of
// keystrokes only the last term computes suggestions:
//
//	t=0ms     SetInput("a")   gen=1, task armed for 1500ms
//	t=50ms    SetInput("ab")  gen=2, task 1 cancelled
//	t=1550ms  task 2 fires    suggestions for "ab"
//
// Suggestions are products whose title contains the term, ignoring case,
// ordered by title using English collation and capped at SuggestionLimit.
// SuggestionsLoading is true while a computation is pending.
//
// # Opening products
//
// Open and SelectSuggestion publish open-product-detail on the bus. Products
// that appear in the order history are shown as bought and do not open.
package catalog
