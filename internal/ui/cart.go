package ui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/shopfront/internal/cart"
	"github.com/five82/shopfront/internal/checkout"
)

// MessageCartEmpty is the cart view's empty state.
const MessageCartEmpty = "Cart is empty"

func (m Model) handleCartKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	items := m.opts.Cart.List()

	switch {
	case key.Matches(msg, m.keys.Up):
		m.cartCursor = clamp(m.cartCursor-1, len(items))

	case key.Matches(msg, m.keys.Down):
		m.cartCursor = clamp(m.cartCursor+1, len(items))

	case key.Matches(msg, m.keys.Remove):
		if len(items) == 0 || m.opts.Checkout.State() == checkout.StateProcessing {
			return m, nil
		}
		item := items[clamp(m.cartCursor, len(items))]
		svc, st, logger := m.opts.Cart, m.st, m.logger
		m.modal = newRemoveConfirm(item, func() {
			if err := svc.Remove(item.ID); err != nil {
				logger.Warn("cart remove failed", "product_id", item.ID, "error", err)
				st.say(cart.NoticeSaveError)
			}
		})

	case key.Matches(msg, m.keys.PlaceOrder):
		m.placeOrder()

	case key.Matches(msg, m.keys.CancelOrder):
		m.opts.Checkout.Cancel()
	}
	return m, nil
}

// placeOrder activates the checkout button.
func (m *Model) placeOrder() {
	view := m.opts.Checkout.View()
	if view.Hidden || view.Disabled {
		return
	}
	outcome, err := m.opts.Checkout.Start(m.ctx)
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		m.st.say(checkout.NoticeEmptyCart)
	case err != nil:
		m.logger.Warn("checkout start failed", "error", err)
	case outcome == checkout.OutcomeAwaitingLogin:
		m.st.say(checkout.NoticeLoginRequired)
	}
}

func (m Model) renderCart(styles Styles, height int) string {
	items := m.opts.Cart.List()
	view := m.opts.Checkout.View()

	if len(items) == 0 {
		return styles.MutedText.Render(MessageCartEmpty)
	}

	var lines []string
	lines = append(lines, styles.Text.Bold(true).Render("Cart, "+plural(len(items), "item")), "")

	rows := max(1, height-6)
	start, end := window(m.cartCursor, len(items), rows)
	titleWidth := max(12, min(40, m.width-24))
	for i := start; i < end; i++ {
		item := items[i]
		row := padRight(truncate(item.Title, titleWidth), titleWidth) + "  " + item.Price.String()
		if i == m.cartCursor {
			lines = append(lines, styles.Selected.Render("> "+row))
		} else {
			lines = append(lines, styles.Text.Render("  "+row))
		}
	}

	lines = append(lines, "",
		styles.MutedText.Render("Total ")+styles.AccentText.Bold(true).Render(m.opts.Cart.Total().String()),
		"",
		m.renderCheckoutControls(styles, view),
	)
	return strings.Join(lines, "\n")
}

func (m Model) renderCheckoutControls(styles Styles, view checkout.View) string {
	if view.Hidden {
		return ""
	}
	button := styles.Button
	if view.Disabled {
		button = styles.ButtonMuted
	}
	parts := []string{button.Render(view.Label)}
	if view.CancelVisible {
		parts = append(parts, "  ", styles.ButtonMuted.Render(checkout.LabelCancel))
	}
	hint := "o: " + strings.ToLower(view.Label)
	if view.CancelVisible {
		hint = "c: cancel"
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...) + "  " + styles.FaintText.Render(hint)
}
