package infrastructure

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"insights/internal/export/domain"
)

// csvFlushEvery force l'écriture du buffer CSV toutes les N lignes
const csvFlushEvery = 1000

// productParquet est le schéma Parquet d'une ligne du classement.
// Les colonnes numériques nullables sont OPTIONAL.
type productParquet struct {
	Rank               int32    `parquet:"name=rank, type=INT32"`
	ProductID          string   `parquet:"name=product_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	ProductName        string   `parquet:"name=product_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	Category           string   `parquet:"name=category, type=BYTE_ARRAY, convertedtype=UTF8"`
	ActualPrice        *float64 `parquet:"name=actual_price, type=DOUBLE, repetitiontype=OPTIONAL"`
	DiscountedPrice    *float64 `parquet:"name=discounted_price, type=DOUBLE, repetitiontype=OPTIONAL"`
	DiscountPercentage *float64 `parquet:"name=discount_percentage, type=DOUBLE, repetitiontype=OPTIONAL"`
	Rating             *float64 `parquet:"name=rating, type=DOUBLE, repetitiontype=OPTIONAL"`
	RatingCount        *int64   `parquet:"name=rating_count, type=INT64, repetitiontype=OPTIONAL"`
	PopularityScore    *float64 `parquet:"name=popularity_score, type=DOUBLE, repetitiontype=OPTIONAL"`
	TotalSales         *float64 `parquet:"name=total_sales, type=DOUBLE, repetitiontype=OPTIONAL"`
	Profit             *float64 `parquet:"name=profit, type=DOUBLE, repetitiontype=OPTIONAL"`
}

func optional(v interface{ Get() (float64, bool) }) *float64 {
	f, ok := v.Get()
	if !ok {
		return nil
	}
	return &f
}

func toParquet(r domain.ProductExportRow) productParquet {
	row := productParquet{
		Rank:               int32(r.Rank),
		ProductID:          r.ProductID,
		ProductName:        r.ProductName,
		Category:           r.Category,
		ActualPrice:        optional(r.ActualPrice),
		DiscountedPrice:    optional(r.DiscountedPrice),
		DiscountPercentage: optional(r.DiscountPercentage),
		Rating:             optional(r.Rating),
		PopularityScore:    optional(r.PopularityScore),
		TotalSales:         optional(r.TotalSales),
		Profit:             optional(r.Profit),
	}
	if n, ok := r.RatingCount.Get(); ok {
		row.RatingCount = &n
	}
	return row
}

// WriteParquet écrit les lignes au format Parquet (compression Snappy)
func WriteParquet(w io.Writer, rows []domain.ProductExportRow) error {
	pw, err := writer.NewParquetWriterFromWriter(w, new(productParquet), 1)
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, r := range rows {
		if err := pw.Write(toParquet(r)); err != nil {
			return fmt.Errorf("write parquet row %d: %w", r.Rank, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("finish parquet file: %w", err)
	}
	return nil
}

// WriteCSV écrit les en-têtes puis les lignes au format CSV
func WriteCSV(w io.Writer, rows []domain.ProductExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(domain.CSVHeaders()); err != nil {
		return err
	}
	for i, r := range rows {
		if err := cw.Write(r.ToCSVRow()); err != nil {
			return err
		}
		if (i+1)%csvFlushEvery == 0 {
			cw.Flush()
		}
	}
	cw.Flush()
	return cw.Error()
}
