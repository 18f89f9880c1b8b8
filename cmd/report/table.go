package main

import (
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	analyticsapp "insights/internal/analytics/application"
	shareddomain "insights/internal/shared/domain"
)

// renderTable écrit un tableau markdown aligné sur la largeur d'affichage des cellules
func renderTable(w io.Writer, headers []string, rows [][]string) error {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = max(3, runewidth.StringWidth(h))
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], runewidth.StringWidth(row[i]))
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		sb.WriteString("|")
		for i, width := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			sb.WriteString(" ")
			sb.WriteString(runewidth.FillRight(cell, width))
			sb.WriteString(" |")
		}
		sb.WriteString("\n")
	}

	writeRow(headers)
	sb.WriteString("|")
	for _, width := range widths {
		sb.WriteString(" ")
		sb.WriteString(strings.Repeat("-", width))
		sb.WriteString(" |")
	}
	sb.WriteString("\n")
	for _, row := range rows {
		writeRow(row)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

var topProductHeaders = []string{"#", "product", "category", "price", "discount", "rating", "reviews", "popularity"}

func topProductRows(page analyticsapp.TopProductsResponse, nameWidth int) [][]string {
	rows := make([][]string, len(page.Products))
	offset := (page.Page - 1) * page.PageSize
	for i, p := range page.Products {
		rows[i] = []string{
			strconv.Itoa(offset + i + 1),
			runewidth.Truncate(p.ProductName, nameWidth, "…"),
			lastSegment(p.Category),
			formatFloat(p.DiscountedPrice, 0),
			formatPercent(p.DiscountPercentage),
			formatFloat(p.Rating, 1),
			formatInt(p.RatingCount),
			formatFloat(p.PopularityScore, 1),
		}
	}
	return rows
}

func lastSegment(category string) string {
	if i := strings.LastIndex(category, "|"); i >= 0 {
		return category[i+1:]
	}
	return category
}

func formatFloat(v shareddomain.NullFloat, prec int) string {
	f, ok := v.Get()
	if !ok {
		return "-"
	}
	return strconv.FormatFloat(f, 'f', prec, 64)
}

func formatPercent(v shareddomain.NullFloat) string {
	if !v.Valid() {
		return "-"
	}
	return formatFloat(v, 0) + "%"
}

func formatInt(v shareddomain.NullInt) string {
	n, ok := v.Get()
	if !ok {
		return "-"
	}
	return strconv.FormatInt(n, 10)
}
