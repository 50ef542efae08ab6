package tui

import (
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/brinaregal/brina/internal/service"
)

var (
	// Colors
	colorPrimary   = lipgloss.Color("#B45309")
	colorSecondary = lipgloss.Color("#F59E0B")
	colorSuccess   = lipgloss.Color("#22C55E")
	colorWarning   = lipgloss.Color("#EAB308")
	colorDanger    = lipgloss.Color("#EF4444")
	colorMuted     = lipgloss.Color("#6B7280")

	// Base styles
	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(colorPrimary).
			Padding(0, 1)

	styleHelp = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	styleError = lipgloss.NewStyle().
			Foreground(colorDanger).
			Bold(true)

	styleNotice = lipgloss.NewStyle().
			Foreground(colorSuccess)

	// Table styles
	styleTableHeader = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(colorPrimary).
				Padding(0, 1)

	styleTableRow = lipgloss.NewStyle().
			Padding(0, 1)

	styleTableRowSelected = lipgloss.NewStyle().
				Background(lipgloss.Color("#1F2937")).
				Foreground(lipgloss.Color("#FFFFFF")).
				Padding(0, 1)

	styleDetailBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(1, 2)

	// Label styles
	styleLabel = lipgloss.NewStyle().
			Foreground(colorMuted).
			Width(14)

	styleValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))
)

var pricePrinter = message.NewPrinter(language.French)

// StatusBadge returns a colored order status.
func StatusBadge(status service.OrderStatus) string {
	style := lipgloss.NewStyle().Bold(true)
	switch status {
	case service.OrderStatusPending:
		return style.Foreground(colorWarning).Render("● en attente")
	case service.OrderStatusReservation:
		return style.Foreground(colorSecondary).Render("◐ réservation")
	case service.OrderStatusConfirmed:
		return style.Foreground(colorSuccess).Render("✓ confirmée")
	case service.OrderStatusRejected:
		return style.Foreground(colorDanger).Render("✗ refusée")
	default:
		return styleMuted().Render("? " + string(status))
	}
}

func styleMuted() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorMuted)
}

// FormatPrice renders an amount in FCFA with French digit grouping.
func FormatPrice(amount int64) string {
	return pricePrinter.Sprintf("%d FCFA", amount)
}
