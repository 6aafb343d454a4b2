package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which product categories
	// and prices are dropped from list rows.
	LayoutCompactWidth = 60

	// ModalWidth is the width of dialogs and the help overlay.
	ModalWidth = 48
)

// Log display limits.
const (
	// LogTailLines is how many lines of the log file the diagnostics view
	// reads.
	LogTailLines = 500
)

// Timing constants.
const (
	// NoticeTTL is how long a transient notice stays in the footer.
	NoticeTTL = 3 * time.Second

	// LogRefreshInterval is how often the diagnostics view rereads the log.
	LogRefreshInterval = 2 * time.Second
)
