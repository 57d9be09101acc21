package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Raisondetr3/store-sales-proxy/internal/model"
	"github.com/Raisondetr3/store-sales-proxy/pkg/dto"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69"))
	headerStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	badStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

var itemColumns = []struct {
	title string
	width int
}{
	{"ID", 10},
	{"NAME", 24},
	{"CATEGORY", 14},
	{"QTY", 8},
	{"UNIT PRICE", 12},
	{"TOTAL", 12},
	{"DATE", 12},
}

func renderRow(cells []string) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		parts[i] = lipgloss.NewStyle().Width(itemColumns[i].width).MaxWidth(itemColumns[i].width).Render(cell)
	}
	return strings.TrimRight(lipgloss.JoinHorizontal(lipgloss.Top, parts...), " ")
}

func renderItems(items []model.SaleItem) string {
	if len(items) == 0 {
		return mutedStyle.Render("No sale items found.")
	}

	headers := make([]string, len(itemColumns))
	for i, col := range itemColumns {
		headers[i] = col.title
	}

	lines := []string{headerStyle.Render(renderRow(headers))}
	for _, item := range items {
		lines = append(lines, renderRow([]string{
			item.ID.String(),
			item.Name,
			item.Category,
			formatNumber(item.Quantity),
			money(item.UnitPrice),
			money(item.Total()),
			shortDate(item.Date),
		}))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderItem(item *model.SaleItem) string {
	field := func(label, value string) string {
		return headerStyle.Render(fmt.Sprintf("%-12s", label)) + value
	}

	lines := []string{
		titleStyle.Render(item.Name),
		field("ID", item.ID.String()),
		field("Description", item.Description),
		field("Category", item.Category),
		field("Quantity", formatNumber(item.Quantity)),
		field("Unit price", money(item.UnitPrice)),
		field("Total", money(item.Total())),
		field("Date", shortDate(item.Date)),
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderSummary(s model.SalesSummary) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Sales summary"),
		fmt.Sprintf("Items:       %d", s.TotalItems),
		fmt.Sprintf("Quantity:    %s", formatNumber(s.TotalQuantity)),
		fmt.Sprintf("Total value: %s", money(s.TotalValue)),
		fmt.Sprintf("Categories:  %d", s.Categories),
	)
}

func renderHealth(h *dto.HealthStatus) string {
	style := badStyle
	if h.Healthy() {
		style = okStyle
	}

	line := style.Render(h.Status) + " " + h.Message
	if h.ResponseTime != nil {
		line += mutedStyle.Render(fmt.Sprintf(" (%d ms)", *h.ResponseTime))
	}
	return line
}

func money(v float64) string {
	return "$" + strconv.FormatFloat(v, 'f', 2, 64)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// shortDate keeps the calendar day of an ISO timestamp.
func shortDate(s string) string {
	if len(s) >= 10 {
		return s[:10]
	}
	return s
}
