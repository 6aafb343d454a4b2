package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/shopfront/internal/cart"
	"github.com/five82/shopfront/internal/shop"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// Remove confirmation labels.
const (
	ConfirmRemoveTitle = "Remove item?"
	ConfirmRemoveYes   = "Yes, remove"
	ConfirmRemoveNo    = "Cancel"
)

// confirmModal asks a yes/no question. onConfirm runs only for yes.
type confirmModal struct {
	title     string
	body      string
	yes       string
	no        string
	yesFocus  bool
	onConfirm func()
}

func newRemoveConfirm(item shop.CartItem, onConfirm func()) confirmModal {
	return confirmModal{
		title:     ConfirmRemoveTitle,
		body:      item.Title,
		yes:       ConfirmRemoveYes,
		no:        ConfirmRemoveNo,
		yesFocus:  true,
		onConfirm: onConfirm,
	}
}

func (c confirmModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil, false
	}
	switch {
	case key.Matches(km, keys.Escape), key.Matches(km, keys.No):
		return c, nil, true
	case key.Matches(km, keys.Yes):
		c.onConfirm()
		return c, nil, true
	case key.Matches(km, keys.Confirm):
		if c.yesFocus {
			c.onConfirm()
		}
		return c, nil, true
	case key.Matches(km, keys.Left), key.Matches(km, keys.Right), key.Matches(km, keys.Tab), key.Matches(km, keys.ShiftTab):
		c.yesFocus = !c.yesFocus
	}
	return c, nil, false
}

func (c confirmModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()

	yes, no := styles.ButtonMuted, styles.ButtonMuted
	if c.yesFocus {
		yes = styles.Button
	} else {
		no = styles.Button
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.Text.Bold(true).Render(c.title),
		"",
		styles.MutedText.Render(truncate(c.body, ModalWidth-6)),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, yes.Render(c.yes), "  ", no.Render(c.no)),
	)
	return place(theme, width, height, styles.Modal.Width(ModalWidth).Render(content))
}

// detailModal shows one product and its add/remove toggle.
type detailModal struct {
	product shop.Product
	toggle  *cart.Toggle
}

func (d detailModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return d, nil, false
	}
	switch {
	case key.Matches(km, keys.Escape):
		return d, nil, true
	case key.Matches(km, keys.Activate):
		d.toggle.Activate()
	}
	return d, nil, false
}

func (d detailModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	p := d.product

	button := styles.Button
	view := d.toggle.View()
	if view.Disabled {
		button = styles.ButtonMuted
	}

	lines := []string{
		styles.Text.Bold(true).Render(truncate(p.Title, ModalWidth-6)),
		styles.MutedText.Render(p.Type) + "  " + styles.AccentText.Render(p.Price.String()),
		"",
	}
	if desc := strings.TrimSpace(p.Description); desc != "" {
		lines = append(lines, lipgloss.NewStyle().Width(ModalWidth-6).Render(styles.Text.Render(desc)), "")
	}
	lines = append(lines,
		button.Render(view.Label),
		"",
		styles.FaintText.Render("enter add/remove  esc close"),
	)
	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return place(theme, width, height, styles.Modal.Width(ModalWidth).Render(content))
}

// place centers a dialog on the screen.
func place(theme Theme, width, height int, dialog string) string {
	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		dialog,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}
