// Package checkout implements order placement as an explicit state machine
// with a cancellable processing delay.
//
// # States
//
//	            Start() with incomplete profile
//	  idle ──────────────────────────────────────> (awaiting-login: navigate
//	   │                                             to profile, nothing armed)
//	   │ Start()
//	   v
//	processing ── Cancel() ─────────────> cancelled
//	   │
//	   │ timer fires
//	   v
//	complete(): profile still complete? ── no ──> cancelled + notice
//	   │ yes
//	   v
//	completed (order prepended, cart cleared, navigate to history)
//
// completed and cancelled are terminal for their session. The workflow
// itself reports idle again, and the next Start creates a fresh session with
// a new id.
//
// # Cancellation
//
// The processing delay is a sched.Task. Cancel revokes it, so the completion
// callback never runs for a cancelled session even if the timer already
// fired and the callback is queued on the update loop. The callback also
// checks that its session is still the current one and still processing, so
// a lingering cancel button or a stale timer cannot produce a second order.
//
// # Re-validation
//
// The profile is checked again when the timer fires because it can change
// during the delay, from this process or another one. A profile edit during
// processing does not abort the session by itself; only the completion
// check decides.
//
// # Writes
//
// Completion performs two independent store writes: prepend to the order
// history, then clear the cart. If the history write fails nothing else
// happens and the session is aborted with a notice. If the cart clear fails
// the order stands and the user is told the cart was not cleared.
//
// # Observability
//
// Each session is an OpenTelemetry span carrying the session id, item count,
// order id, total and outcome. Outcomes are counted in
// shopfront_checkout_outcomes_total.
package checkout
