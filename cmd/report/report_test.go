package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"

	analyticsapp "insights/internal/analytics/application"
	cataloginfra "insights/internal/catalog/infrastructure"
	"insights/internal/metrics"
	"insights/internal/testhelpers"
)

func TestRenderTable_AlignsWideRunes(t *testing.T) {
	var buf bytes.Buffer
	err := renderTable(&buf, []string{"name", "price"}, [][]string{
		{"ケーブル", "399"},
		{"Kettle", "1500"},
	})
	if err != nil {
		t.Fatalf("renderTable: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	width := runewidth.StringWidth(lines[0])
	for _, l := range lines[1:] {
		if w := runewidth.StringWidth(l); w != width {
			t.Errorf("line %q has width %d, want %d", l, w, width)
		}
	}
	if !strings.HasPrefix(lines[1], "| ----") {
		t.Errorf("unexpected separator %q", lines[1])
	}
}

func TestReport(t *testing.T) {
	store := cataloginfra.NewMemoryProductStore(testhelpers.Catalog()...)
	analytics := analyticsapp.NewAnalyticsService(store, zap.NewNop(), metrics.NewRegistry(), 0)

	var buf bytes.Buffer
	if err := report(context.Background(), &buf, analytics, "profit", 2, 8, []string{"electronics"}); err != nil {
		t.Fatalf("report: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"## Top 2 by profit (2 matching)",
		"| 1   | Headpho… |",
		"## Categories (4)",
		"| Electronics|Audio",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestReport_InvalidSort(t *testing.T) {
	store := cataloginfra.NewMemoryProductStore()
	analytics := analyticsapp.NewAnalyticsService(store, zap.NewNop(), metrics.NewRegistry(), 0)
	if err := report(context.Background(), &bytes.Buffer{}, analytics, "price", 5, 10, nil); err == nil {
		t.Error("expected an error for an unknown sort key")
	}
}
