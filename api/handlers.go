package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	analyticsapp "insights/internal/analytics/application"
	analyticsdomain "insights/internal/analytics/domain"
	catalogapp "insights/internal/catalog/application"
	catalogdomain "insights/internal/catalog/domain"
	cataloginfra "insights/internal/catalog/infrastructure"
	exportapp "insights/internal/export/application"
	exportdomain "insights/internal/export/domain"
	shareddomain "insights/internal/shared/domain"
)

// PageLimits configure la pagination par défaut et maximale
type PageLimits struct {
	Default int
	Max     int
}

// Handlers contient tous les handlers HTTP
type Handlers struct {
	analytics *analyticsapp.AnalyticsService
	catalog   *catalogapp.CatalogService
	exports   *exportapp.ExportService
	cache     *analyticsapp.ResponseCache
	logger    *zap.Logger
	pages     PageLimits
}

// NewHandlers crée une nouvelle instance des handlers
func NewHandlers(
	analytics *analyticsapp.AnalyticsService,
	catalog *catalogapp.CatalogService,
	exports *exportapp.ExportService,
	cache *analyticsapp.ResponseCache,
	logger *zap.Logger,
	pages PageLimits,
) *Handlers {
	return &Handlers{
		analytics: analytics,
		catalog:   catalog,
		exports:   exports,
		cache:     cache,
		logger:    logger,
		pages:     pages,
	}
}

// badRequestError signale un paramètre de requête invalide
type badRequestError struct {
	msg string
}

func (e *badRequestError) Error() string {
	return e.msg
}

func badRequest(format string, args ...any) error {
	return &badRequestError{msg: fmt.Sprintf(format, args...)}
}

// errorResponse est le corps de toutes les erreurs
type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeBody(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// writeError traduit une erreur en statut HTTP:
// 400 paramètre invalide, 404 introuvable, 409 conflit d'écriture,
// 422 données insuffisantes, 500 sinon
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var bad *badRequestError
	var insufficient *analyticsdomain.InsufficientDataError

	switch {
	case errors.As(err, &bad):
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: bad.msg})
	case errors.Is(err, cataloginfra.ErrInvalidRange):
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: err.Error()})
	case errors.As(err, &insufficient):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Detail: insufficient.Reason})
	case errors.Is(err, catalogdomain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Detail: err.Error()})
	case errors.Is(err, catalogdomain.ErrConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Detail: err.Error()})
	default:
		h.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			requestIDField(r.Context()),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "internal server error"})
	}
}

// cached sert la réponse encodée depuis le cache ou la calcule
func (h *Handlers) cached(w http.ResponseWriter, r *http.Request, name string, compute func() (any, error)) {
	key := analyticsapp.Key(name, r.URL.Query().Encode())
	body, err := h.cache.Fetch(key, compute)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeBody(w, body)
}

// Health handler pour GET /api/health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// PriceTrend handler pour GET /analytics/price_trend
func (h *Handlers) PriceTrend(w http.ResponseWriter, r *http.Request) {
	h.cached(w, r, "price_trend", func() (any, error) {
		return h.analytics.PriceTrend(r.Context())
	})
}

// RatingDiscountCorrelation handler pour GET /analytics/rating_discount_correlation
func (h *Handlers) RatingDiscountCorrelation(w http.ResponseWriter, r *http.Request) {
	h.cached(w, r, "rating_discount_correlation", func() (any, error) {
		return h.analytics.RatingDiscountCorrelation(r.Context())
	})
}

// SentimentAnalysis handler pour GET /analytics/sentiment_analysis?review=
func (h *Handlers) SentimentAnalysis(w http.ResponseWriter, r *http.Request) {
	example := strings.TrimSpace(r.URL.Query().Get("review"))
	h.cached(w, r, "sentiment_analysis", func() (any, error) {
		return h.analytics.SentimentAnalysis(r.Context(), example)
	})
}

// SentimentDistribution handler pour GET /analytics/sentiment_distribution?level=main|sub
func (h *Handlers) SentimentDistribution(w http.ResponseWriter, r *http.Request) {
	var bySub bool
	switch level := r.URL.Query().Get("level"); level {
	case "", "main":
	case "sub":
		bySub = true
	default:
		h.writeError(w, r, badRequest("level must be main or sub, got %q", level))
		return
	}
	h.cached(w, r, "sentiment_distribution", func() (any, error) {
		return h.analytics.SentimentDistribution(r.Context(), bySub)
	})
}

// SentimentWordcloud handler pour GET /analytics/sentiment_wordcloud
func (h *Handlers) SentimentWordcloud(w http.ResponseWriter, r *http.Request) {
	h.cached(w, r, "sentiment_wordcloud", func() (any, error) {
		return h.analytics.SentimentWordcloud(r.Context())
	})
}

// PriceDiscountAnalysis handler pour GET /analytics/price_discount_analysis
func (h *Handlers) PriceDiscountAnalysis(w http.ResponseWriter, r *http.Request) {
	h.cached(w, r, "price_discount_analysis", func() (any, error) {
		return h.analytics.PriceDiscountAnalysis(r.Context())
	})
}

// TopProducts handler pour GET /analytics/top_products
func (h *Handlers) TopProducts(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseRankQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.cached(w, r, "top_products", func() (any, error) {
		return h.analytics.TopProducts(r.Context(), q)
	})
}

// ExportTopProducts handler pour GET /analytics/top_products/export?format=parquet|csv
func (h *Handlers) ExportTopProducts(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseRankQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	format, err := exportdomain.ParseExportFormat(r.URL.Query().Get("format"))
	if err != nil {
		h.writeError(w, r, badRequest("%v", err))
		return
	}

	export, err := h.exports.ExportTopProducts(r.Context(), q, format)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", "attachment; filename="+export.Job.FileName())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(export.Body)
}

// Categories handler pour GET /analytics/categories
func (h *Handlers) Categories(w http.ResponseWriter, r *http.Request) {
	h.cached(w, r, "categories", func() (any, error) {
		return h.analytics.Categories(r.Context())
	})
}

// Summary handler pour GET /analytics/summary
func (h *Handlers) Summary(w http.ResponseWriter, r *http.Request) {
	h.cached(w, r, "summary", func() (any, error) {
		return h.analytics.Summary(r.Context())
	})
}

// ListProducts handler pour GET /data/
func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, err := h.parsePage(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	products, err := h.catalog.ListProducts(r.Context(), page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// VoteHelpful handler pour POST /products/{id}/reviews/{review_id}/helpful
func (h *Handlers) VoteHelpful(w http.ResponseWriter, r *http.Request) {
	productID := catalogdomain.ProductID(r.PathValue("id"))
	reviewID := r.PathValue("review_id")

	review, err := h.catalog.VoteHelpful(r.Context(), productID, reviewID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

// parseRankQuery lit category (répétable), min_rating, max_rating, sort_by, page et page_size
func (h *Handlers) parseRankQuery(r *http.Request) (analyticsdomain.RankQuery, error) {
	query := r.URL.Query()

	minRating, err := parseRating(query.Get("min_rating"), "min_rating")
	if err != nil {
		return analyticsdomain.RankQuery{}, err
	}
	maxRating, err := parseRating(query.Get("max_rating"), "max_rating")
	if err != nil {
		return analyticsdomain.RankQuery{}, err
	}
	filter, err := cataloginfra.NewFilter(query["category"], minRating, maxRating)
	if err != nil {
		return analyticsdomain.RankQuery{}, err
	}

	sortBy, err := analyticsdomain.ParseSortKey(query.Get("sort_by"))
	if err != nil {
		return analyticsdomain.RankQuery{}, badRequest("%v", err)
	}

	page, err := h.parsePage(r)
	if err != nil {
		return analyticsdomain.RankQuery{}, err
	}

	return analyticsdomain.RankQuery{
		Criteria: filter.Criteria,
		SortBy:   sortBy,
		Page:     page,
	}, nil
}

func parseRating(s, name string) (shareddomain.NullFloat, error) {
	if s == "" {
		return shareddomain.NullFloat{}, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return shareddomain.NullFloat{}, badRequest("%s must be a number, got %q", name, s)
	}
	return shareddomain.NewNullFloat(v), nil
}

func (h *Handlers) parsePage(r *http.Request) (shareddomain.PageRequest, error) {
	query := r.URL.Query()

	page := 1
	if s := query.Get("page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return shareddomain.PageRequest{}, badRequest("page must be an integer, got %q", s)
		}
		page = n
	}
	size := h.pages.Default
	if s := query.Get("page_size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return shareddomain.PageRequest{}, badRequest("page_size must be an integer, got %q", s)
		}
		size = n
	}

	p, err := shareddomain.NewPageRequest(page, size, h.pages.Max)
	if err != nil {
		return shareddomain.PageRequest{}, badRequest("%v", err)
	}
	return p, nil
}
