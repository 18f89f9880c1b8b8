package application

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"go.uber.org/zap"

	analyticsapp "insights/internal/analytics/application"
	analyticsdomain "insights/internal/analytics/domain"
	cataloginfra "insights/internal/catalog/infrastructure"
	"insights/internal/export/domain"
	"insights/internal/metrics"
	shareddomain "insights/internal/shared/domain"
	"insights/internal/testhelpers"
)

func newExportService(t *testing.T) *ExportService {
	t.Helper()
	store := cataloginfra.NewMemoryProductStore(testhelpers.Catalog()...)
	analytics := analyticsapp.NewAnalyticsService(store, zap.NewNop(), metrics.NewRegistry(), 0)
	s := NewExportService(analytics, zap.NewNop())
	s.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return s
}

func query(t *testing.T, page, size int) analyticsdomain.RankQuery {
	t.Helper()
	p, err := shareddomain.NewPageRequest(page, size, 0)
	if err != nil {
		t.Fatal(err)
	}
	return analyticsdomain.RankQuery{SortBy: analyticsdomain.SortPopularity, Page: p}
}

func TestExportTopProducts_CSV(t *testing.T) {
	s := newExportService(t)

	export, err := s.ExportTopProducts(context.Background(), query(t, 2, 2), domain.ExportFormatCSV)
	if err != nil {
		t.Fatalf("ExportTopProducts: %v", err)
	}
	if export.Job.FileName() != "top_products_20240102_030405.csv" {
		t.Errorf("FileName() = %q", export.Job.FileName())
	}

	records, err := csv.NewReader(bytes.NewReader(export.Body)).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want header + 2", len(records))
	}
	// la deuxième page commence au rang 3
	if records[1][0] != "3" || records[1][1] != "p4" || records[2][1] != "p2" {
		t.Errorf("unexpected rows %v", records[1:])
	}
}

func TestExportTopProducts_Parquet(t *testing.T) {
	s := newExportService(t)

	export, err := s.ExportTopProducts(context.Background(), query(t, 1, 10), domain.ExportFormatParquet)
	if err != nil {
		t.Fatalf("ExportTopProducts: %v", err)
	}
	if !bytes.HasPrefix(export.Body, []byte("PAR1")) || !bytes.HasSuffix(export.Body, []byte("PAR1")) {
		t.Error("body is not a parquet file")
	}
	if export.Job.Format().ContentType() != "application/vnd.apache.parquet" {
		t.Errorf("unexpected content type %q", export.Job.Format().ContentType())
	}
}
