package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	shareddomain "insights/internal/shared/domain"
)

// ExportFormat représente le format d'export
type ExportFormat string

const (
	ExportFormatCSV     ExportFormat = "csv"
	ExportFormatParquet ExportFormat = "parquet"
)

// ParseExportFormat valide un format; une chaîne vide donne Parquet
func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", ExportFormatParquet:
		return ExportFormatParquet, nil
	case ExportFormatCSV:
		return ExportFormatCSV, nil
	default:
		return "", fmt.Errorf("invalid export format %q", s)
	}
}

// ContentType retourne le type MIME du format
func (f ExportFormat) ContentType() string {
	if f == ExportFormatCSV {
		return "text/csv"
	}
	return "application/vnd.apache.parquet"
}

// ExportJob représente un export du classement produits
type ExportJob struct {
	format    ExportFormat
	createdAt time.Time
}

// NewExportJob crée un job d'export
func NewExportJob(format ExportFormat, createdAt time.Time) ExportJob {
	return ExportJob{format: format, createdAt: createdAt}
}

// Format retourne le format d'export
func (ej ExportJob) Format() ExportFormat {
	return ej.format
}

// FileName retourne le nom du fichier proposé au client
func (ej ExportJob) FileName() string {
	return fmt.Sprintf("top_products_%s.%s", ej.createdAt.UTC().Format("20060102_150405"), ej.format)
}

// ProductExportRow représente une ligne d'export du classement
type ProductExportRow struct {
	Rank               int
	ProductID          string
	ProductName        string
	Category           string
	ActualPrice        shareddomain.NullFloat
	DiscountedPrice    shareddomain.NullFloat
	DiscountPercentage shareddomain.NullFloat
	Rating             shareddomain.NullFloat
	RatingCount        shareddomain.NullInt
	PopularityScore    shareddomain.NullFloat
	TotalSales         shareddomain.NullFloat
	Profit             shareddomain.NullFloat
}

// ToCSVRow convertit en tableau pour CSV; une valeur nulle donne une cellule vide
func (r ProductExportRow) ToCSVRow() []string {
	return []string{
		strconv.Itoa(r.Rank),
		r.ProductID,
		r.ProductName,
		r.Category,
		formatFloat(r.ActualPrice),
		formatFloat(r.DiscountedPrice),
		formatFloat(r.DiscountPercentage),
		formatFloat(r.Rating),
		formatInt(r.RatingCount),
		formatFloat(r.PopularityScore),
		formatFloat(r.TotalSales),
		formatFloat(r.Profit),
	}
}

func formatFloat(v shareddomain.NullFloat) string {
	f, ok := v.Get()
	if !ok {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatInt(v shareddomain.NullInt) string {
	n, ok := v.Get()
	if !ok {
		return ""
	}
	return strconv.FormatInt(n, 10)
}

// CSVHeaders retourne les en-têtes CSV
func CSVHeaders() []string {
	return []string{
		"rank",
		"product_id",
		"product_name",
		"category",
		"actual_price",
		"discounted_price",
		"discount_percentage",
		"rating",
		"rating_count",
		"popularity_score",
		"total_sales",
		"profit",
	}
}
