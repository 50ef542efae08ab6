package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/brinaregal/brina/internal/service"
)

// View 实现 tea.Model
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	switch m.view {
	case ViewOrderDetail:
		return m.renderOrderDetailView()
	default:
		return m.renderOrderListView()
	}
}

func (m Model) renderStatusLines(b *strings.Builder) {
	if m.err != nil {
		b.WriteString(styleError.Render(fmt.Sprintf("  Error: %v", m.err)))
		b.WriteString("\n\n")
	}
	if m.notice != "" {
		b.WriteString(styleNotice.Render("  " + m.notice))
		b.WriteString("\n\n")
	}
	if m.loading {
		b.WriteString(styleMuted().Render("  Loading..."))
		b.WriteString("\n\n")
	}
}

func (m Model) renderOrderListView() string {
	var b strings.Builder

	scope := "commandes en attente"
	if m.showAll {
		scope = "toutes les commandes"
	}
	b.WriteString(styleHeader.Width(m.width).Render("  Brina'Régal · " + scope))
	b.WriteString("\n\n")

	m.renderStatusLines(&b)

	// 表头
	tableHeader := fmt.Sprintf(
		"  %-12s │ %-5s │ %-16s │ %-14s │ %-12s │ %-14s │ %s",
		"Référence", "Heure", "Client", "Téléphone", "Lieu", "Total", "Statut",
	)
	b.WriteString(styleTableHeader.Width(m.width).Render(tableHeader))
	b.WriteString("\n")
	b.WriteString(styleMuted().Render(strings.Repeat("─", m.width)))
	b.WriteString("\n")

	if len(m.orders) == 0 {
		b.WriteString(styleMuted().Render("  Aucune commande à traiter."))
		b.WriteString("\n")
	} else {
		// 按终端高度计算可见行数
		visibleRows := m.height - 12
		if visibleRows < 5 {
			visibleRows = 5
		}

		startIdx := 0
		if m.selected >= visibleRows {
			startIdx = m.selected - visibleRows + 1
		}
		endIdx := startIdx + visibleRows
		if endIdx > len(m.orders) {
			endIdx = len(m.orders)
		}

		for i := startIdx; i < endIdx; i++ {
			b.WriteString(m.renderOrderRow(m.orders[i], i == m.selected))
			b.WriteString("\n")
		}

		if len(m.orders) > visibleRows {
			b.WriteString(styleMuted().Render(fmt.Sprintf("  %d-%d / %d", startIdx+1, endIdx, len(m.orders))))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.renderSummary())
	b.WriteString("\n\n")
	b.WriteString(styleHelp.Render("  [↑/↓] Navigate  [Enter] Details  [c] Confirm  [x] Reject  [a] All/Open  [r] Refresh  [q] Quit"))

	return b.String()
}

func (m Model) renderOrderRow(o service.OrderView, selected bool) string {
	customer := truncate(o.CustomerName, 16)
	if customer == "" {
		customer = "-"
	}
	place := o.Place
	if o.Kind == service.OrderKindReservation {
		place = fmt.Sprintf("table ×%d", o.PartySize)
	}

	row := fmt.Sprintf(
		"  %-12s │ %-5s │ %-16s │ %-14s │ %-12s │ %-14s │ %s",
		o.Reference,
		m.clock(o.CreatedAt),
		customer,
		truncate(o.Phone, 14),
		truncate(place, 12),
		FormatPrice(o.Total),
		StatusBadge(o.Status),
	)

	if selected {
		return styleTableRowSelected.Width(m.width).Render("▶" + row[1:])
	}
	return styleTableRow.Render(row)
}

func (m Model) renderSummary() string {
	var awaiting int
	var total int64
	for _, o := range m.orders {
		if o.Status.Awaiting() {
			awaiting++
			total += o.Total
		}
	}
	return fmt.Sprintf("  %s %d en attente  │  %s à encaisser",
		StatusBadge(service.OrderStatusPending), awaiting, FormatPrice(total))
}

func (m Model) renderOrderDetailView() string {
	o := m.detail
	if o == nil {
		return m.renderOrderListView()
	}
	var b strings.Builder

	b.WriteString(styleHeader.Width(m.width).Render("  Commande " + o.Reference))
	b.WriteString("\n\n")
	m.renderStatusLines(&b)

	rows := []struct{ label, value string }{
		{"Statut", StatusBadge(o.Status)},
		{"Reçue", m.timestamp(o.CreatedAt)},
		{"Client", o.CustomerName},
		{"Téléphone", o.Phone},
	}
	if o.Kind == service.OrderKindReservation {
		rows = append(rows,
			struct{ label, value string }{"Table", fmt.Sprintf("%d pers.", o.PartySize)},
			struct{ label, value string }{"Date", o.ReservationDate + " " + o.ReservationTime},
		)
	} else {
		rows = append(rows, struct{ label, value string }{"Lieu", o.Place})
	}
	if o.PaymentProofURL != "" {
		rows = append(rows, struct{ label, value string }{"Paiement", o.PaymentProofURL})
	}
	if o.Instructions != "" {
		rows = append(rows, struct{ label, value string }{"Note", o.Instructions})
	}
	if o.StatusReason != "" {
		rows = append(rows, struct{ label, value string }{"Motif", o.StatusReason})
	}

	var lines []string
	for _, r := range rows {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, styleLabel.Render(r.label), styleValue.Render(r.value)))
	}
	lines = append(lines, "")

	items := o.Items
	if m.detailScrollOffset > 0 && m.detailScrollOffset < len(items) {
		items = items[m.detailScrollOffset:]
	}
	for _, it := range items {
		lines = append(lines, fmt.Sprintf("%2d × %-24s %s", it.Quantity, truncate(it.Name, 24), FormatPrice(it.Subtotal)))
	}
	lines = append(lines, "", lipgloss.JoinHorizontal(lipgloss.Top, styleLabel.Render("Total"), styleValue.Bold(true).Render(FormatPrice(o.Total))))

	b.WriteString(styleDetailBox.Render(strings.Join(lines, "\n")))
	b.WriteString("\n\n")

	help := "  [↑/↓] Scroll  [Esc] Back  [q] Quit"
	if o.Status.Awaiting() {
		help = "  [c] Confirm  [x] Reject" + help
	}
	b.WriteString(styleHelp.Render(help))
	return b.String()
}

func (m Model) clock(unix int64) string {
	if unix <= 0 {
		return "--:--"
	}
	return time.Unix(unix, 0).In(m.location).Format("15:04")
}

func (m Model) timestamp(unix int64) string {
	if unix <= 0 {
		return "-"
	}
	return time.Unix(unix, 0).In(m.location).Format("02/01/2006 15:04")
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
