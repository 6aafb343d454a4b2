// Package logtail reads and parses the tail of shopfront's log file.
//
// # Overview
//
// The TUI owns the terminal, so shopfront logs through slog.TextHandler
// to a file. The diagnostics view shows the last few hundred records from
// that file, filtered by level. This package does the reading and parsing;
// the ui package does the styling.
//
// # Reading Log Files
//
// Read uses a ring buffer sized to maxLines:
//
//	1. Allocate ring buffer of size maxLines
//	2. For each line in file:
//	   - Store line at the next slot, wrapping at maxLines
//	   - Track total lines seen
//	3. Return the buffer starting at the oldest line
//
// The file is scanned once and memory stays O(maxLines) regardless of file
// size. Lines longer than 1 MiB stop the scan with an error.
//
// # Parsing
//
// ParseLine understands the slog text format:
//
//	time=2026-04-01T12:00:00.000Z level=WARN msg="cart save failed" key=cart
//
// time, level and msg fill the Entry fields; every other pair is kept in
// order as an Attr. Quoted values are unquoted. Tail combines Read and
// ParseLine and drops records below a minimum level. Lines that are not slog
// records (a panic trace, for example) are kept as Info entries so nothing
// disappears from the view.
//
// # Error Handling
//
// Read and Tail return nil, nil for a missing file. Other errors (permission
// denied, I/O errors) are returned wrapped. ParseLine never fails; it reports
// false instead.
package logtail
