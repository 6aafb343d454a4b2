// Package ui provides the shopfront terminal user interface.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. Model is a value type; everything that bus
// handlers and timer callbacks change lives behind one shared pointer so that
// every copy of Model sees it. The services (cart, catalog, checkout,
// profile, orders, prefs) own the state; views re-read it on every render
// instead of caching it.
//
// # Package Structure
//
//   - app.go: Model, Options, Update loop and Run
//   - catalog.go: product list, search box, suggestions and category chips
//   - cart.go: cart list, remove confirmation and checkout controls
//   - profile.go: profile form with per-field validation messages
//   - history.go: order history viewport
//   - diagnostics.go: tail of the shopfront log file, filtered by level
//   - header.go: header tabs, cart badge and footer
//   - modal.go: product detail and confirmation dialogs
//   - help.go, keys.go, theme.go: help overlay, key bindings, palettes
//
// # Timers
//
// The services arm their timers (suggestion debounce, add-to-cart feedback,
// checkout delay, sync polling) on a sched.Realtime. Run points that
// scheduler at Program.Send, so each callback arrives as a callbackMsg and
// runs inside Update. Nothing else touches service state off the loop.
//
// # Event Flow
//
//  1. Run() builds the Model, wires the scheduler and calls OnStart
//  2. Init() enters the catalog loading state and fetches in a command
//  3. Keys call service methods; services write the store and publish
//  4. Bus handlers record requests (open product, navigate, theme) in shared
//  5. Update absorbs those requests, then Bubble Tea re-renders
//
// # Key Bindings
//
//   - tab / shift+tab: Cycle views
//   - esc: Close dialog or return to the catalog
//   - /: Search (catalog), enter applies or picks a suggestion
//   - 1-9: Toggle a category filter, x clears them
//   - enter: Open product; in the dialog enter or space adds/removes it
//   - d: Remove cart item (asks first)
//   - o / c: Place / cancel order
//   - e: Edit profile
//   - f / r: Cycle log level / reload (diagnostics)
//   - T: Toggle light/dark
//   - ?: Help
//   - q or Ctrl+C: Exit
package ui
