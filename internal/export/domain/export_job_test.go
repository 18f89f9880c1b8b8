package domain

import (
	"strings"
	"testing"
	"time"

	shareddomain "insights/internal/shared/domain"
)

func sampleRow() ProductExportRow {
	return ProductExportRow{
		Rank:               1,
		ProductID:          "p1",
		ProductName:        "Cable, USB-C",
		Category:           "Electronics|Cables",
		ActualPrice:        shareddomain.NewNullFloat(1000),
		DiscountedPrice:    shareddomain.NewNullFloat(899.5),
		DiscountPercentage: shareddomain.NewNullFloat(10),
		Rating:             shareddomain.NewNullFloat(4.2),
		RatingCount:        shareddomain.NewNullInt(120),
		PopularityScore:    shareddomain.NewNullFloat(504),
		TotalSales:         shareddomain.NewNullFloat(107940),
		Profit:             shareddomain.NullFloat{},
	}
}

func TestParseExportFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    ExportFormat
		wantErr bool
	}{
		{"", ExportFormatParquet, false},
		{"parquet", ExportFormatParquet, false},
		{" CSV ", ExportFormatCSV, false},
		{"xlsx", "", true},
	}
	for _, tt := range tests {
		got, err := ParseExportFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseExportFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseExportFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExportJob_FileName(t *testing.T) {
	job := NewExportJob(ExportFormatCSV, time.Date(2024, 10, 15, 14, 30, 5, 0, time.UTC))
	if got, want := job.FileName(), "top_products_20241015_143005.csv"; got != want {
		t.Errorf("FileName() = %q, want %q", got, want)
	}
	if job.Format().ContentType() != "text/csv" {
		t.Errorf("unexpected content type %q", job.Format().ContentType())
	}
	if ExportFormatParquet.ContentType() == "text/csv" {
		t.Error("parquet must not be served as csv")
	}
}

func TestProductExportRow_ToCSVRow(t *testing.T) {
	row := sampleRow().ToCSVRow()
	if len(row) != len(CSVHeaders()) {
		t.Fatalf("row has %d cells, headers %d", len(row), len(CSVHeaders()))
	}
	want := []string{"1", "p1", "Cable, USB-C", "Electronics|Cables", "1000", "899.5", "10", "4.2", "120", "504", "107940", ""}
	if strings.Join(row, ";") != strings.Join(want, ";") {
		t.Errorf("ToCSVRow() = %v, want %v", row, want)
	}
}

// ========================================
// Benchmarks
// ========================================

func BenchmarkProductExportRow_ToCSVRow(b *testing.B) {
	row := sampleRow()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = row.ToCSVRow()
	}
}

func BenchmarkBatchRowProcessing_1000(b *testing.B) {
	rows := make([]ProductExportRow, 1000)
	for i := range rows {
		rows[i] = sampleRow()
		rows[i].Rank = i + 1
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		for _, row := range rows {
			_ = row.ToCSVRow()
		}
	}
}
