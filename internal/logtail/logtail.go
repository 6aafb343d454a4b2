package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Entry is one parsed slog text record.
type Entry struct {
	Time  time.Time
	Level slog.Level
	Msg   string
	Attrs []Attr
	Raw   string
}

// Attr is a key=value pair that followed msg.
type Attr struct {
	Key   string
	Value string
}

// Read returns at most maxLines from the end of the file at path. A missing
// file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	if maxLines <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	tail := newRing(maxLines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		tail.push(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	return tail.lines(), nil
}

// Tail reads the last maxLines of path and parses them, keeping records at
// or above min. Lines that are not slog records are kept as Info entries
// with only Raw and Msg set.
func Tail(path string, maxLines int, min slog.Level) ([]Entry, error) {
	lines, err := Read(path, maxLines)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		e, ok := ParseLine(line)
		if !ok {
			e = Entry{Level: slog.LevelInfo, Msg: line, Raw: line}
		}
		if e.Level >= min {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// ParseLine parses a line written by slog.TextHandler:
//
//	time=2026-04-01T12:00:00.000Z level=INFO msg="order recorded" order_id=ORD--1
//
// It reports false when the line has no level or msg.
func ParseLine(line string) (Entry, bool) {
	e := Entry{Raw: line}
	var haveLevel, haveMsg bool
	for _, f := range fields(line) {
		switch f.Key {
		case slog.TimeKey:
			if t, err := time.Parse(time.RFC3339Nano, f.Value); err == nil {
				e.Time = t
			}
		case slog.LevelKey:
			if err := e.Level.UnmarshalText([]byte(f.Value)); err == nil {
				haveLevel = true
			}
		case slog.MessageKey:
			e.Msg = f.Value
			haveMsg = true
		default:
			e.Attrs = append(e.Attrs, f)
		}
	}
	return e, haveLevel && haveMsg
}

// fields splits key=value pairs. Quoted values are unquoted.
func fields(line string) []Attr {
	var out []Attr
	rest := strings.TrimSpace(line)
	for rest != "" {
		eq := strings.IndexByte(rest, '=')
		if eq <= 0 {
			break
		}
		key := rest[:eq]
		if strings.ContainsAny(key, " \t\"") {
			break
		}
		rest = rest[eq+1:]

		var value string
		if strings.HasPrefix(rest, `"`) {
			end := closingQuote(rest)
			if end < 0 {
				break
			}
			unquoted, err := strconv.Unquote(rest[:end+1])
			if err != nil {
				unquoted = rest[1:end]
			}
			value = unquoted
			rest = rest[end+1:]
		} else {
			sp := strings.IndexByte(rest, ' ')
			if sp < 0 {
				sp = len(rest)
			}
			value = rest[:sp]
			rest = rest[sp:]
		}
		out = append(out, Attr{Key: key, Value: value})
		rest = strings.TrimLeft(rest, " ")
	}
	return out
}

func closingQuote(s string) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}

type ring struct {
	buf   []string
	next  int
	count int
}

func newRing(size int) *ring {
	return &ring{buf: make([]string, size)}
}

func (r *ring) push(line string) {
	r.buf[r.next] = line
	r.next = (r.next + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

// lines returns the buffered lines oldest first.
func (r *ring) lines() []string {
	out := make([]string, r.count)
	if r.count < len(r.buf) {
		copy(out, r.buf[:r.count])
		return out
	}
	for i := range out {
		out[i] = r.buf[(r.next+i)%len(r.buf)]
	}
	return out
}
