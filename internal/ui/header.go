package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/shopfront/internal/checkout"
)

// renderMain composes header, the active view and footer.
func (m Model) renderMain() string {
	theme := m.theme()
	styles := theme.Styles()
	height := m.bodyHeight()

	var body string
	switch m.route {
	case RouteCatalog:
		body = m.renderCatalog(styles, height)
	case RouteCart:
		body = m.renderCart(styles, height)
	case RouteProfile:
		body = m.renderProfile(styles)
	case RouteHistory:
		body = m.history.View()
	case RouteDiagnostics:
		body = m.renderDiagnostics(styles)
	}
	body = lipgloss.NewStyle().Width(m.width).Height(height).MaxHeight(height).Render(body)

	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(theme), body, m.renderFooter(theme))
}

// renderHeader renders the logo, the view tabs and the cart badge.
func (m Model) renderHeader(theme Theme) string {
	styles := theme.Styles().WithBackground(theme.Surface)

	tabs := make([]string, 0, len(routeNames))
	for i, name := range routeNames {
		if Route(i) == m.route {
			tabs = append(tabs, styles.ActiveTab.Render(name))
		} else {
			tabs = append(tabs, styles.Tab.Render(name))
		}
	}

	badge := styles.Badge.Render(cartBadge(m.opts.Cart.Count()))
	if m.opts.Checkout.State() == checkout.StateProcessing {
		badge = styles.WarningText.Render(checkout.LabelProcessing) + styles.Tab.Render("") + badge
	}

	logo := []string{styles.Logo.Render("shopfront"), styles.Tab.Render("")}
	left := lipgloss.JoinHorizontal(lipgloss.Top, append(logo, tabs...)...)
	if lipgloss.Width(left)+lipgloss.Width(badge)+3 > m.width {
		// Too narrow for every tab; keep the active one.
		left = lipgloss.JoinHorizontal(lipgloss.Top, append(logo, tabs[m.route])...)
	}

	// Header padding takes two columns of m.width.
	gap := max(1, m.width-lipgloss.Width(left)-lipgloss.Width(badge)-2)
	filler := lipgloss.NewStyle().Background(lipgloss.Color(theme.Surface)).Render(strings.Repeat(" ", gap))
	return styles.Header.Width(m.width).MaxWidth(m.width).MaxHeight(1).Render(left + filler + badge)
}

// cartBadge is the accessible cart label.
func cartBadge(n int) string {
	return "Cart, " + plural(n, "item")
}

// renderFooter shows the current notice, or key hints and the catalog query.
func (m Model) renderFooter(theme Theme) string {
	styles := theme.Styles().WithBackground(theme.Surface)

	var content string
	if m.st.notice != "" {
		content = styles.SuccessText.Render(m.st.notice)
	} else {
		content = styles.MutedText.Render(m.footerHints())
	}
	if m.route == RouteCatalog && m.st.location != "" {
		content += styles.FaintText.Render("  ?" + m.st.location)
	}
	return styles.Footer.Width(m.width).MaxWidth(m.width).MaxHeight(1).Render(content)
}

func (m Model) footerHints() string {
	switch m.route {
	case RouteCatalog:
		if m.searching {
			return "type to search  up/down pick  enter apply  esc close"
		}
		return "/ search  j/k move  enter open  1-9 category  x clear  ? help  q quit"
	case RouteCart:
		return "j/k move  d remove  o order  c cancel  ? help  q quit"
	case RouteProfile:
		return "e edit  tab views  ? help  q quit"
	case RouteHistory:
		return "j/k scroll  tab views  ? help  q quit"
	case RouteDiagnostics:
		return "f level  r reload  G follow  ? help  q quit"
	}
	return "? help  q quit"
}
