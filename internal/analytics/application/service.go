package application

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"insights/internal/analytics/domain"
	catalogdomain "insights/internal/catalog/domain"
	cataloginfra "insights/internal/catalog/infrastructure"
	"insights/internal/metrics"
)

// AnalyticsService calcule les agrégations du catalogue.
// Chaque appel fait une seule lecture du stockage puis travaille en mémoire:
// aucun état n'est partagé entre deux appels.
type AnalyticsService struct {
	store     cataloginfra.ProductStore
	logger    *zap.Logger
	metrics   *metrics.Registry
	trendStep float64
}

// NewAnalyticsService crée le service; un pas de tendance nul prend la valeur par défaut
func NewAnalyticsService(
	store cataloginfra.ProductStore,
	logger *zap.Logger,
	reg *metrics.Registry,
	trendStep float64,
) *AnalyticsService {
	if trendStep <= 0 {
		trendStep = domain.DefaultTrendStep
	}
	return &AnalyticsService{
		store:     store,
		logger:    logger,
		metrics:   reg,
		trendStep: trendStep,
	}
}

// load récupère et nettoie les produits correspondant au filtre.
// Les champs dégradés vers null sont journalisés en debug et comptés.
func (s *AnalyticsService) load(ctx context.Context, f cataloginfra.Filter) (catalogdomain.Batch, error) {
	raws, err := s.store.Find(ctx, f)
	if err != nil {
		return catalogdomain.Batch{}, fmt.Errorf("fetch products: %w", err)
	}
	s.metrics.RecordsScanned.Observe(float64(len(raws)))

	batch := catalogdomain.CleanBatch(raws)
	for _, d := range batch.Diagnostics {
		s.logger.Debug("field degraded to null",
			zap.String("product_id", string(d.ProductID)),
			zap.String("field", string(d.Field)),
			zap.String("raw", d.Raw),
			zap.String("reason", d.Reason),
		)
		s.metrics.ParseDegraded.WithLabelValues(string(d.Field)).Inc()
	}
	return batch, nil
}

// expand développe les avis de tous les produits du lot
func (s *AnalyticsService) expand(products []catalogdomain.Product) []domain.CategorizedReview {
	var out []domain.CategorizedReview
	for _, p := range products {
		reviews, mismatch := catalogdomain.ExpandReviews(p)
		if mismatch != nil {
			lengths := make(map[string]int, len(mismatch.Lengths))
			for f, n := range mismatch.Lengths {
				lengths[string(f)] = n
			}
			s.logger.Warn("review list length mismatch",
				zap.String("product_id", string(mismatch.ProductID)),
				zap.Any("lengths", lengths),
				zap.Int("used", mismatch.Used),
			)
		}
		path := catalogdomain.SplitCategory(p.Category)
		for _, r := range reviews {
			out = append(out, domain.CategorizedReview{Path: path, Review: r})
		}
	}
	return out
}

func reviewsOf(categorized []domain.CategorizedReview) []catalogdomain.ExpandedReview {
	out := make([]catalogdomain.ExpandedReview, len(categorized))
	for i, cr := range categorized {
		out[i] = cr.Review
	}
	return out
}

// report compte les échecs "données insuffisantes" par agrégation
func (s *AnalyticsService) report(aggregation string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInsufficientData) {
		s.metrics.Insufficient.WithLabelValues(aggregation).Inc()
		s.logger.Info("insufficient data",
			zap.String("aggregation", aggregation),
			zap.String("reason", err.Error()),
		)
	}
	return err
}

// PriceTrend ajuste discounted_price sur actual_price et échantillonne la droite.
// La matrice de corrélation porte sur les colonnes numériques présentes; si aucune
// ligne n'est complète pour elles, la matrice est vide et la tendance reste servie.
func (s *AnalyticsService) PriceTrend(ctx context.Context) (PriceTrendResponse, error) {
	const aggregation = "price_trend"
	batch, err := s.load(ctx, cataloginfra.Filter{})
	if err != nil {
		return PriceTrendResponse{}, err
	}
	if err := domain.RequireFields(batch, catalogdomain.FieldActualPrice, catalogdomain.FieldDiscountedPrice); err != nil {
		return PriceTrendResponse{}, s.report(aggregation, err)
	}

	fit, err := domain.FitPriceTrend(batch.Products)
	if err != nil {
		return PriceTrendResponse{}, s.report(aggregation, err)
	}

	var fields []catalogdomain.Field
	for _, f := range catalogdomain.NumericFields {
		if batch.Has(f) {
			fields = append(fields, f)
		}
	}
	matrix := CorrelationResponse{}
	if corr, err := domain.Correlate(batch.Products, fields...); err == nil {
		matrix = assembleCorrelation(corr)
	} else {
		s.logger.Info("price trend served without correlation matrix", zap.Error(err))
	}

	return PriceTrendResponse{
		FutureTrends:      assembleTrend(domain.SampleTrend(fit, s.trendStep)),
		CorrelationMatrix: matrix,
	}, nil
}

// RatingDiscountCorrelation calcule la corrélation entre remise et note
func (s *AnalyticsService) RatingDiscountCorrelation(ctx context.Context) (CorrelationResponse, error) {
	const aggregation = "rating_discount_correlation"
	batch, err := s.load(ctx, cataloginfra.Filter{})
	if err != nil {
		return nil, err
	}
	fields := []catalogdomain.Field{catalogdomain.FieldDiscountPercentage, catalogdomain.FieldRating}
	if err := domain.RequireFields(batch, fields...); err != nil {
		return nil, s.report(aggregation, err)
	}
	corr, err := domain.Correlate(batch.Products, fields...)
	if err != nil {
		return nil, s.report(aggregation, err)
	}
	return assembleCorrelation(corr), nil
}

// SentimentAnalysis entraîne et évalue le classifieur; example est le texte à prédire
func (s *AnalyticsService) SentimentAnalysis(ctx context.Context, example string) (SentimentAnalysisResponse, error) {
	const aggregation = "sentiment_analysis"
	batch, err := s.load(ctx, cataloginfra.Filter{})
	if err != nil {
		return SentimentAnalysisResponse{}, err
	}
	if err := domain.RequireFields(batch, catalogdomain.FieldRating, catalogdomain.FieldReviewContent); err != nil {
		return SentimentAnalysisResponse{}, s.report(aggregation, err)
	}
	report, err := domain.AnalyzeSentiment(reviewsOf(s.expand(batch.Products)), example)
	if err != nil {
		return SentimentAnalysisResponse{}, s.report(aggregation, err)
	}
	return assembleSentimentReport(report), nil
}

// SentimentDistribution répartit les avis par catégorie principale, ou par
// sous-catégorie si bySub
func (s *AnalyticsService) SentimentDistribution(ctx context.Context, bySub bool) ([]CategorySentimentResponse, error) {
	const aggregation = "sentiment_distribution"
	batch, err := s.load(ctx, cataloginfra.Filter{})
	if err != nil {
		return nil, err
	}
	if err := domain.RequireFields(batch, catalogdomain.FieldCategory, catalogdomain.FieldRating, catalogdomain.FieldReviewID); err != nil {
		return nil, s.report(aggregation, err)
	}
	groups, err := domain.SentimentDistribution(s.expand(batch.Products), bySub)
	if err != nil {
		return nil, s.report(aggregation, err)
	}
	return assembleCategorySentiments(groups), nil
}

// SentimentWordcloud retourne les mots les plus fréquents des avis positifs et négatifs
func (s *AnalyticsService) SentimentWordcloud(ctx context.Context) (WordcloudResponse, error) {
	const aggregation = "sentiment_wordcloud"
	batch, err := s.load(ctx, cataloginfra.Filter{})
	if err != nil {
		return WordcloudResponse{}, err
	}
	if err := domain.RequireFields(batch, catalogdomain.FieldRating, catalogdomain.FieldReviewContent); err != nil {
		return WordcloudResponse{}, s.report(aggregation, err)
	}
	cloud, err := domain.SentimentWordcloud(reviewsOf(s.expand(batch.Products)))
	if err != nil {
		return WordcloudResponse{}, s.report(aggregation, err)
	}
	return assembleWordcloud(cloud), nil
}

// PriceDiscountAnalysis calcule les statistiques de remise par tranche de prix
func (s *AnalyticsService) PriceDiscountAnalysis(ctx context.Context) (PriceDiscountResponse, error) {
	const aggregation = "price_discount_analysis"
	batch, err := s.load(ctx, cataloginfra.Filter{})
	if err != nil {
		return PriceDiscountResponse{}, err
	}
	if err := domain.RequireFields(batch, catalogdomain.FieldActualPrice, catalogdomain.FieldDiscountPercentage); err != nil {
		return PriceDiscountResponse{}, s.report(aggregation, err)
	}
	analysis, err := domain.AnalyzePriceDiscount(batch.Products)
	if err != nil {
		return PriceDiscountResponse{}, s.report(aggregation, err)
	}
	return assemblePriceDiscount(analysis), nil
}

// rank récupère les produits du filtre et applique le classement.
// Le filtre de stockage réduit la lecture; les critères sont réappliqués
// après nettoyage pour que tous les stockages donnent le même résultat.
func (s *AnalyticsService) rank(ctx context.Context, q domain.RankQuery) (domain.TopProducts, error) {
	batch, err := s.load(ctx, cataloginfra.Filter{Criteria: q.Criteria})
	if err != nil {
		return domain.TopProducts{}, err
	}
	return domain.RankProducts(batch.Products, q), nil
}

// TopProducts retourne une page du classement
func (s *AnalyticsService) TopProducts(ctx context.Context, q domain.RankQuery) (TopProductsResponse, error) {
	top, err := s.rank(ctx, q)
	if err != nil {
		return TopProductsResponse{}, err
	}
	return assembleTopProducts(top, q), nil
}

// Categories retourne les catégories brutes distinctes
func (s *AnalyticsService) Categories(ctx context.Context) ([]string, error) {
	values, err := s.store.Distinct(ctx, catalogdomain.FieldCategory)
	if err != nil {
		return nil, fmt.Errorf("distinct categories: %w", err)
	}
	return domain.Categories(values), nil
}
