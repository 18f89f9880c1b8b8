package api

import (
	"net/http"

	"go.uber.org/zap"

	"insights/internal/metrics"
)

// NewRouter enregistre toutes les routes et les middlewares
func NewRouter(h *Handlers, logger *zap.Logger, reg *metrics.Registry) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", h.Health)
	mux.Handle("GET /metrics", reg.Handler())

	mux.HandleFunc("GET /analytics/price_trend", h.PriceTrend)
	mux.HandleFunc("GET /analytics/rating_discount_correlation", h.RatingDiscountCorrelation)
	mux.HandleFunc("GET /analytics/sentiment_analysis", h.SentimentAnalysis)
	mux.HandleFunc("GET /analytics/sentiment_distribution", h.SentimentDistribution)
	mux.HandleFunc("GET /analytics/sentiment_wordcloud", h.SentimentWordcloud)
	mux.HandleFunc("GET /analytics/price_discount_analysis", h.PriceDiscountAnalysis)
	mux.HandleFunc("GET /analytics/top_products", h.TopProducts)
	mux.HandleFunc("GET /analytics/top_products/export", h.ExportTopProducts)
	mux.HandleFunc("GET /analytics/categories", h.Categories)
	mux.HandleFunc("GET /analytics/summary", h.Summary)

	mux.HandleFunc("GET /data/{$}", h.ListProducts)
	mux.HandleFunc("POST /products/{id}/reviews/{review_id}/helpful", h.VoteHelpful)

	return withRequestID(withObservability(logger, reg, mux))
}
