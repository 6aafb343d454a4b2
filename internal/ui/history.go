package ui

import (
	"strings"

	"github.com/five82/shopfront/internal/orders"
)

// refreshHistory re-renders the order list into the history viewport.
func (m *Model) refreshHistory() {
	m.history.SetContent(m.historyContent(m.theme().Styles()))
}

func (m Model) historyContent(styles Styles) string {
	history := m.opts.Orders.Sorted()
	if len(history) == 0 {
		return styles.MutedText.Render(orders.EmptyMessage)
	}

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Order history"))
	b.WriteString("\n")
	for _, o := range history {
		b.WriteString("\n")
		b.WriteString(styles.AccentText.Bold(true).Render(o.ID))
		b.WriteString("  ")
		b.WriteString(styles.MutedText.Render(o.DisplayDate()))
		b.WriteString("  ")
		b.WriteString(styles.Text.Bold(true).Render(o.Amount().String()))
		b.WriteString("\n")
		if o.Customer.Name != "" || o.Customer.Email != "" {
			b.WriteString(styles.FaintText.Render("  " + strings.TrimSpace(o.Customer.Name+" <"+o.Customer.Email+">")))
			b.WriteString("\n")
		}
		for _, item := range o.Items {
			b.WriteString(styles.Text.Render("  - " + padRight(truncate(item.Title, 40), 40) + "  " + item.Price.String()))
			b.WriteString("\n")
		}
	}
	return b.String()
}
