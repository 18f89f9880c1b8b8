package infrastructure

import (
	"bytes"
	"encoding/csv"
	"testing"

	"insights/internal/export/domain"
	shareddomain "insights/internal/shared/domain"
)

func exportRows() []domain.ProductExportRow {
	return []domain.ProductExportRow{
		{
			Rank:            1,
			ProductID:       "p1",
			ProductName:     "Cable",
			Category:        "Electronics|Cables",
			ActualPrice:     shareddomain.NewNullFloat(1000),
			DiscountedPrice: shareddomain.NewNullFloat(900),
			Rating:          shareddomain.NewNullFloat(4.5),
			RatingCount:     shareddomain.NewNullInt(10),
			PopularityScore: shareddomain.NewNullFloat(45),
		},
		{
			Rank:        2,
			ProductID:   "p2",
			ProductName: "Lamp",
			Category:    "Home",
		},
	}
}

func TestWriteParquet(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteParquet(&buf, exportRows()); err != nil {
		t.Fatalf("WriteParquet() error = %v", err)
	}
	data := buf.Bytes()
	if len(data) < 8 {
		t.Fatalf("parquet output too short: %d bytes", len(data))
	}
	if string(data[:4]) != "PAR1" || string(data[len(data)-4:]) != "PAR1" {
		t.Errorf("output is not framed by the parquet magic number")
	}
}

func TestWriteParquet_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteParquet(&buf, nil); err != nil {
		t.Fatalf("WriteParquet() error = %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("PAR1")) {
		t.Error("empty export must still be a parquet file")
	}
}

func TestToParquet_Nulls(t *testing.T) {
	row := toParquet(exportRows()[1])
	if row.ActualPrice != nil || row.RatingCount != nil || row.Profit != nil {
		t.Errorf("null values must map to nil pointers: %+v", row)
	}
	full := toParquet(exportRows()[0])
	if full.ActualPrice == nil || *full.ActualPrice != 1000 {
		t.Errorf("ActualPrice = %v, want 1000", full.ActualPrice)
	}
	if full.RatingCount == nil || *full.RatingCount != 10 {
		t.Errorf("RatingCount = %v, want 10", full.RatingCount)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, exportRows()); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want header + 2", len(records))
	}
	if records[0][0] != "rank" || records[2][1] != "p2" {
		t.Errorf("unexpected records %v", records)
	}
	if records[2][4] != "" {
		t.Errorf("null actual_price = %q, want empty cell", records[2][4])
	}
}

func BenchmarkWriteParquet(b *testing.B) {
	rows := make([]domain.ProductExportRow, 1000)
	for i := range rows {
		rows[i] = exportRows()[0]
		rows[i].Rank = i + 1
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		var buf bytes.Buffer
		_ = WriteParquet(&buf, rows)
	}
}
