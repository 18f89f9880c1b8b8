package application

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	analyticsapp "insights/internal/analytics/application"
	analyticsdomain "insights/internal/analytics/domain"
	"insights/internal/export/domain"
	"insights/internal/export/infrastructure"
)

// TopProductsSource fournit une page du classement
type TopProductsSource interface {
	TopProducts(ctx context.Context, q analyticsdomain.RankQuery) (analyticsapp.TopProductsResponse, error)
}

// Export est un fichier prêt à être servi
type Export struct {
	Job  domain.ExportJob
	Body []byte
}

// ExportService exporte le classement des produits en CSV ou Parquet
type ExportService struct {
	source TopProductsSource
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService crée le service d'export
func NewExportService(source TopProductsSource, logger *zap.Logger) *ExportService {
	return &ExportService{source: source, logger: logger, now: time.Now}
}

// ExportTopProducts exporte la page demandée du classement
func (s *ExportService) ExportTopProducts(ctx context.Context, q analyticsdomain.RankQuery, format domain.ExportFormat) (Export, error) {
	top, err := s.source.TopProducts(ctx, q)
	if err != nil {
		return Export{}, err
	}

	offset := q.Page.Offset()
	rows := make([]domain.ProductExportRow, len(top.Products))
	for i, p := range top.Products {
		rows[i] = domain.ProductExportRow{
			Rank:               offset + i + 1,
			ProductID:          p.ProductID,
			ProductName:        p.ProductName,
			Category:           p.Category,
			ActualPrice:        p.ActualPrice,
			DiscountedPrice:    p.DiscountedPrice,
			DiscountPercentage: p.DiscountPercentage,
			Rating:             p.Rating,
			RatingCount:        p.RatingCount,
			PopularityScore:    p.PopularityScore,
			TotalSales:         p.TotalSales,
			Profit:             p.Profit,
		}
	}

	job := domain.NewExportJob(format, s.now())
	buffer := bytes.NewBuffer(make([]byte, 0, 64*1024))
	switch format {
	case domain.ExportFormatCSV:
		err = infrastructure.WriteCSV(buffer, rows)
	default:
		err = infrastructure.WriteParquet(buffer, rows)
	}
	if err != nil {
		return Export{}, fmt.Errorf("export top products as %s: %w", format, err)
	}

	s.logger.Info("top products exported",
		zap.String("format", string(format)),
		zap.Int("rows", len(rows)),
		zap.Int("bytes", buffer.Len()),
	)
	return Export{Job: job, Body: buffer.Bytes()}, nil
}
