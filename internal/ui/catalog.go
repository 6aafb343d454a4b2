package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/shopfront/internal/catalog"
	"github.com/five82/shopfront/internal/shop"
)

// Catalog messages.
const (
	MessageCatalogLoading = "Loading catalog..."
	MessageCatalogFailed  = "Could not load the catalog"
	MessageNoMatches      = "No products match"
	MessageSearching      = "Searching..."
	NoticeAlreadyBought   = "You already bought this product"
	BoughtMarker          = "BOUGHT"
)

func newSearchInput() textinput.Model {
	in := textinput.New()
	in.Prompt = "/ "
	in.Placeholder = "Search products"
	in.CharLimit = 64
	in.Width = 32
	return in
}

func (m Model) handleCatalogKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	engine := m.opts.Catalog
	visible := engine.Visible()

	switch {
	case key.Matches(msg, m.keys.Retry):
		if engine.Status() == catalog.StatusFailed {
			return m, m.loadCatalog()
		}

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.suggestion = -1
		m.search.SetValue(engine.Input())
		m.search.CursorEnd()
		return m, m.search.Focus()

	case key.Matches(msg, m.keys.Up):
		m.cursor = clamp(m.cursor-1, len(visible))

	case key.Matches(msg, m.keys.Down):
		m.cursor = clamp(m.cursor+1, len(visible))

	case key.Matches(msg, m.keys.Top):
		m.cursor = 0

	case key.Matches(msg, m.keys.Bottom):
		m.cursor = clamp(len(visible)-1, len(visible))

	case key.Matches(msg, m.keys.Open):
		if len(visible) == 0 {
			return m, nil
		}
		p := visible[clamp(m.cursor, len(visible))]
		if !engine.Open(p.ID) && engine.Purchased(p.ID) {
			m.st.say(NoticeAlreadyBought)
		}

	case key.Matches(msg, m.keys.ClearFilters):
		engine.SetCategories()
		m.cursor = 0

	default:
		// 1-9 toggle the matching category chip.
		if n, err := strconv.Atoi(msg.String()); err == nil && n >= 1 {
			categories := engine.Categories()
			if n <= len(categories) {
				engine.ToggleCategory(categories[n-1])
				m.cursor = 0
			}
		}
	}
	return m, nil
}

// handleSearchKey feeds the search box. Every edit restarts the suggestion
// debounce; enter applies the term or picks the highlighted suggestion.
func (m Model) handleSearchKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	engine := m.opts.Catalog
	suggestions := engine.Suggestions()

	switch msg.String() {
	case "esc":
		engine.DismissSuggestions()
		m.closeSearch()
		return m, nil

	case "enter":
		if m.suggestion >= 0 && m.suggestion < len(suggestions) {
			engine.SelectSuggestion(suggestions[m.suggestion].ID)
		} else {
			engine.Submit()
		}
		m.closeSearch()
		m.cursor = 0
		return m, nil

	case "up":
		if m.suggestion >= 0 {
			m.suggestion--
		}
		return m, nil

	case "down":
		if m.suggestion < len(suggestions)-1 {
			m.suggestion++
		}
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if after := m.search.Value(); after != before {
		engine.SetInput(after)
		m.suggestion = -1
	}
	return m, cmd
}

func (m *Model) closeSearch() {
	m.searching = false
	m.suggestion = -1
	m.search.Blur()
	m.search.SetValue(m.opts.Catalog.Input())
}

func (m Model) renderCatalog(styles Styles, height int) string {
	engine := m.opts.Catalog
	var lines []string

	lines = append(lines, m.renderSearchBox(styles))
	if m.searching {
		lines = append(lines, m.renderSuggestions(styles)...)
	}
	lines = append(lines, m.renderCategories(styles), "")

	switch engine.Status() {
	case catalog.StatusLoading:
		lines = append(lines, styles.MutedText.Render(MessageCatalogLoading))
		return strings.Join(lines, "\n")
	case catalog.StatusFailed:
		lines = append(lines, m.renderLoadError(styles))
		return strings.Join(lines, "\n")
	}

	visible := engine.Visible()
	if len(visible) == 0 {
		lines = append(lines, styles.MutedText.Render(MessageNoMatches))
		return strings.Join(lines, "\n")
	}

	rows := max(1, height-len(lines))
	start, end := window(m.cursor, len(visible), rows)
	for i := start; i < end; i++ {
		lines = append(lines, m.renderProductRow(styles, visible[i], i == m.cursor))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderSearchBox(styles Styles) string {
	if m.searching {
		return m.search.View()
	}
	term := m.opts.Catalog.Input()
	if term == "" {
		return styles.FaintText.Render("/ Search products")
	}
	return styles.FaintText.Render("/ ") + styles.Text.Render(term)
}

func (m Model) renderSuggestions(styles Styles) []string {
	engine := m.opts.Catalog
	if engine.SuggestionsLoading() {
		return []string{"  " + styles.FaintText.Render(MessageSearching)}
	}
	suggestions := engine.Suggestions()
	lines := make([]string, 0, len(suggestions))
	for i, p := range suggestions {
		row := "  " + p.Title
		if i == m.suggestion {
			lines = append(lines, styles.Selected.Render(row))
		} else {
			lines = append(lines, styles.AccentText.Render(row))
		}
	}
	return lines
}

func (m Model) renderCategories(styles Styles) string {
	engine := m.opts.Catalog
	categories := engine.Categories()
	if len(categories) == 0 {
		return ""
	}
	chips := make([]string, 0, len(categories))
	for i, c := range categories {
		label := fmt.Sprintf("%d %s", i+1, c)
		if engine.Selected(c) {
			chips = append(chips, styles.ActiveTab.Render(label))
		} else {
			chips = append(chips, styles.Tab.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, chips...)
}

func (m Model) renderLoadError(styles Styles) string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.DangerText.Render(MessageCatalogFailed),
		styles.MutedText.Render(truncate(errString(m.opts.Catalog.Err()), max(20, m.width-8))),
		"",
		styles.FaintText.Render("r: retry"),
	)
	return styles.Card.Render(body)
}

func (m Model) renderProductRow(styles Styles, p shop.Product, selected bool) string {
	titleWidth := max(12, min(40, m.width-40))
	row := padRight(truncate(p.Title, titleWidth), titleWidth)
	if m.width >= LayoutCompactWidth {
		row += "  " + padRight(p.Price.Rounded(), 12) + padRight(p.Category(), 14)
	}
	prefix := "  "
	if selected {
		prefix = "> "
	}
	line := prefix + row
	if selected {
		line = styles.Selected.Render(line)
	} else {
		line = styles.Text.Render(line)
	}
	if m.opts.Catalog.Purchased(p.ID) {
		line += " " + styles.Bought.Render(BoughtMarker)
	}
	return line
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
