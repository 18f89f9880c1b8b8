package application

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"insights/internal/analytics/domain"
	catalogdomain "insights/internal/catalog/domain"
	cataloginfra "insights/internal/catalog/infrastructure"
	shareddomain "insights/internal/shared/domain"
)

// SummaryTopSize est le nombre de produits du résumé
const SummaryTopSize = 5

var summaryPriceFields = []catalogdomain.Field{
	catalogdomain.FieldActualPrice,
	catalogdomain.FieldDiscountedPrice,
	catalogdomain.FieldDiscountPercentage,
}

// Summary calcule le résumé du catalogue. Le comptage, les catégories et les
// sections calculées sur les produits sont lancés en parallèle; la première
// erreur annule les autres.
func (s *AnalyticsService) Summary(ctx context.Context) (SummarySection, error) {
	var (
		count      int
		categories []string
		section    SummarySection
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.store.Count(gctx, cataloginfra.Filter{})
		if err != nil {
			return fmt.Errorf("count products: %w", err)
		}
		count = n
		return nil
	})

	g.Go(func() error {
		values, err := s.Categories(gctx)
		if err != nil {
			return err
		}
		categories = values
		return nil
	})

	g.Go(func() error {
		batch, err := s.load(gctx, cataloginfra.Filter{})
		if err != nil {
			return err
		}
		section = s.summarize(batch)
		return nil
	})

	if err := g.Wait(); err != nil {
		return SummarySection{}, err
	}
	section.ProductCount = count
	section.CategoryCount = len(categories)
	return section, nil
}

// summarize calcule les sections dérivées des produits nettoyés
func (s *AnalyticsService) summarize(batch catalogdomain.Batch) SummarySection {
	prices := make(map[string]SummaryResponse, len(summaryPriceFields))
	for _, f := range summaryPriceFields {
		var values []float64
		for _, p := range batch.Products {
			if v, ok := p.Number(f).Get(); ok {
				values = append(values, v)
			}
		}
		prices[string(f)] = assembleSummary(domain.Describe(values))
	}

	reviews := s.expand(batch.Products)
	counts := make(map[domain.Sentiment]int, len(domain.Sentiments))
	for _, cr := range reviews {
		if label, ok := domain.Classify(cr.Review.Rating); ok {
			counts[label]++
		}
	}

	page, _ := shareddomain.NewPageRequest(1, SummaryTopSize, 0)
	top := domain.RankProducts(batch.Products, domain.RankQuery{SortBy: domain.SortPopularity, Page: page})

	return SummarySection{
		ReviewCount:           len(reviews),
		Prices:                prices,
		SentimentDistribution: assembleDistributionCounts(counts),
		TopProducts:           assembleRanked(top.Products),
	}
}
