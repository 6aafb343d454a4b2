package ui

import (
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/shopfront/internal/logtail"
)

// logLevels is the cycle order for the minimum level filter.
var logLevels = []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError}

// logState holds the diagnostics view state.
type logState struct {
	entries     []logtail.Entry
	follow      bool
	lastRefresh time.Time
	err         error
}

func (m Model) handleDiagnosticsKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.CycleLevel):
		m.logLevel = nextLevel(m.logLevel)
		m.refreshLogs()
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.refreshLogs()
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.logState.follow = true
		m.logs.GotoBottom()
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.logState.follow = false
		m.logs.GotoTop()
		return m, nil
	}

	var cmd tea.Cmd
	m.logs, cmd = m.logs.Update(msg)
	m.logState.follow = m.logs.AtBottom()
	return m, cmd
}

func nextLevel(current slog.Level) slog.Level {
	for i, l := range logLevels {
		if l == current {
			return logLevels[(i+1)%len(logLevels)]
		}
	}
	return slog.LevelInfo
}

// refreshLogs rereads the log file and re-renders the viewport.
func (m *Model) refreshLogs() {
	entries, err := logtail.Tail(m.opts.LogFile, LogTailLines, m.logLevel)
	m.logState.entries = entries
	m.logState.err = err
	m.logState.lastRefresh = time.Now()
	m.logs.SetContent(m.logContent(m.theme().Styles()))
	if m.logState.follow {
		m.logs.GotoBottom()
	}
}

func (m Model) logContent(styles Styles) string {
	if m.logState.err != nil {
		return styles.DangerText.Render("Could not read " + m.opts.LogFile + ": " + m.logState.err.Error())
	}
	if len(m.logState.entries) == 0 {
		return styles.MutedText.Render("No log records at " + m.logLevel.String() + " or above")
	}
	lines := make([]string, 0, len(m.logState.entries))
	for _, e := range m.logState.entries {
		lines = append(lines, formatEntry(styles, e))
	}
	return strings.Join(lines, "\n")
}

func formatEntry(styles Styles, e logtail.Entry) string {
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(styles.FaintText.Render(e.Time.In(time.Local).Format("15:04:05")))
		b.WriteString(" ")
	}
	level := e.Level.String()
	b.WriteString(styles.LevelStyle(level).Render(padRight(level, 5)))
	b.WriteString(" ")
	b.WriteString(styles.Text.Render(e.Msg))
	for _, a := range e.Attrs {
		b.WriteString(" ")
		b.WriteString(styles.MutedText.Render(a.Key + "="))
		b.WriteString(styles.Text.Render(a.Value))
	}
	return b.String()
}

func (m Model) renderDiagnostics(styles Styles) string {
	status := "paused"
	if m.logState.follow {
		status = "following"
	}
	bar := styles.MutedText.Render("level >= "+m.logLevel.String()+"  "+status+"  ") +
		styles.FaintText.Render(truncate(m.opts.LogFile, max(10, m.width-40)))
	return bar + "\n" + m.logs.View()
}
