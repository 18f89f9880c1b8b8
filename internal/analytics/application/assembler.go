package application

import (
	"insights/internal/analytics/domain"
	catalogdomain "insights/internal/catalog/domain"
	shareddomain "insights/internal/shared/domain"
)

// Les réponses ci-dessous fixent les noms de clés exposés par l'API.
// Tous les flottants passent par NullFloat: NaN et Inf sortent en null.

// CorrelationResponse est une matrice {champ: {champ: corrélation}}
type CorrelationResponse map[string]map[string]shareddomain.NullFloat

// TrendPointResponse est un point de la tendance prédite
type TrendPointResponse struct {
	ActualPrice              shareddomain.NullFloat `json:"actual_price"`
	PredictedDiscountedPrice shareddomain.NullFloat `json:"predicted_discounted_price"`
}

// PriceTrendResponse est la réponse de /analytics/price_trend
type PriceTrendResponse struct {
	FutureTrends      []TrendPointResponse `json:"future_trends"`
	CorrelationMatrix CorrelationResponse  `json:"correlation_matrix"`
}

// ClassificationReport regroupe les métriques par métrique puis par label
type ClassificationReport struct {
	Precision map[string]shareddomain.NullFloat `json:"precision"`
	Recall    map[string]shareddomain.NullFloat `json:"recall"`
	F1Score   map[string]shareddomain.NullFloat `json:"f1_score"`
	Support   map[string]int                    `json:"support"`
}

// ExamplePrediction est la prédiction du classifieur pour un texte
type ExamplePrediction struct {
	Review             string `json:"review"`
	PredictedSentiment string `json:"predicted_sentiment"`
}

// SentimentAnalysisResponse est la réponse de /analytics/sentiment_analysis
type SentimentAnalysisResponse struct {
	Accuracy              shareddomain.NullFloat `json:"accuracy"`
	ClassificationReport  ClassificationReport   `json:"classification_report"`
	ExamplePrediction     ExamplePrediction      `json:"example_prediction"`
	SentimentDistribution map[string]int         `json:"sentiment_distribution"`
}

// CategorySentimentResponse est une ligne de /analytics/sentiment_distribution
type CategorySentimentResponse struct {
	MainCategory       string                 `json:"main_category"`
	Subcategory        *string                `json:"subcategory,omitempty"`
	Positive           int                    `json:"positive"`
	Neutral            int                    `json:"neutral"`
	Negative           int                    `json:"negative"`
	Total              int                    `json:"total"`
	PositivePercentage shareddomain.NullFloat `json:"positive_percentage"`
	NeutralPercentage  shareddomain.NullFloat `json:"neutral_percentage"`
	NegativePercentage shareddomain.NullFloat `json:"negative_percentage"`
	AverageRating      shareddomain.NullFloat `json:"average_rating"`
}

// WordResponse est un mot du nuage
type WordResponse struct {
	Text  string `json:"text"`
	Value int    `json:"value"`
}

// WordcloudResponse est la réponse de /analytics/sentiment_wordcloud
type WordcloudResponse struct {
	Positive []WordResponse `json:"positive"`
	Negative []WordResponse `json:"negative"`
}

// PriceRangeResponse est une tranche de /analytics/price_discount_analysis
type PriceRangeResponse struct {
	PriceRange                string                 `json:"price_range"`
	Count                     int                    `json:"count"`
	AverageDiscountPercentage shareddomain.NullFloat `json:"average_discount_percentage"`
	MedianDiscountPercentage  shareddomain.NullFloat `json:"median_discount_percentage"`
	StdDiscountPercentage     shareddomain.NullFloat `json:"std_discount_percentage"`
}

// SummaryResponse est un résumé descriptif d'une colonne
type SummaryResponse struct {
	Count  int                    `json:"count"`
	Mean   shareddomain.NullFloat `json:"mean"`
	Median shareddomain.NullFloat `json:"median"`
	Min    shareddomain.NullFloat `json:"min"`
	Max    shareddomain.NullFloat `json:"max"`
	Std    shareddomain.NullFloat `json:"std"`
}

// PriceDiscountResponse est la réponse de /analytics/price_discount_analysis
type PriceDiscountResponse struct {
	PerPriceRangeStats       []PriceRangeResponse       `json:"per_price_range_stats"`
	OverallStats             map[string]SummaryResponse `json:"overall_stats"`
	PriceDiscountCorrelation CorrelationResponse        `json:"price_discount_correlation"`
}

// TopProductResponse est un produit classé
type TopProductResponse struct {
	ProductID          string                 `json:"product_id"`
	ProductName        string                 `json:"product_name"`
	Category           string                 `json:"category"`
	ActualPrice        shareddomain.NullFloat `json:"actual_price"`
	DiscountedPrice    shareddomain.NullFloat `json:"discounted_price"`
	DiscountPercentage shareddomain.NullFloat `json:"discount_percentage"`
	Rating             shareddomain.NullFloat `json:"rating"`
	RatingCount        shareddomain.NullInt   `json:"rating_count"`
	PopularityScore    shareddomain.NullFloat `json:"popularity_score"`
	TotalSales         shareddomain.NullFloat `json:"total_sales"`
	Profit             shareddomain.NullFloat `json:"profit"`
}

// TopProductsResponse est la réponse paginée de /analytics/top_products
type TopProductsResponse struct {
	TotalCount int                  `json:"total_count"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"page_size"`
	SortBy     string               `json:"sort_by"`
	Products   []TopProductResponse `json:"products"`
}

// SummarySection est le résumé global de /analytics/summary
type SummarySection struct {
	ProductCount          int                        `json:"product_count"`
	ReviewCount           int                        `json:"review_count"`
	CategoryCount         int                        `json:"category_count"`
	Prices                map[string]SummaryResponse `json:"prices"`
	SentimentDistribution map[string]int             `json:"sentiment_distribution"`
	TopProducts           []TopProductResponse       `json:"top_products"`
}

func assembleCorrelation(m domain.CorrelationMatrix) CorrelationResponse {
	out := make(CorrelationResponse, len(m.Fields))
	for _, a := range m.Fields {
		row := make(map[string]shareddomain.NullFloat, len(m.Fields))
		for _, b := range m.Fields {
			row[string(b)] = m.Get(a, b)
		}
		out[string(a)] = row
	}
	return out
}

func assembleTrend(points []domain.TrendPoint) []TrendPointResponse {
	out := make([]TrendPointResponse, len(points))
	for i, p := range points {
		out[i] = TrendPointResponse{
			ActualPrice:              shareddomain.NewNullFloat(p.ActualPrice),
			PredictedDiscountedPrice: shareddomain.NewNullFloat(p.PredictedDiscountedPrice),
		}
	}
	return out
}

func assembleDistributionCounts(counts map[domain.Sentiment]int) map[string]int {
	out := make(map[string]int, len(domain.Sentiments))
	for _, s := range domain.Sentiments {
		out[string(s)] = counts[s]
	}
	return out
}

func assembleSentimentReport(r domain.SentimentReport) SentimentAnalysisResponse {
	report := ClassificationReport{
		Precision: make(map[string]shareddomain.NullFloat, len(domain.Sentiments)),
		Recall:    make(map[string]shareddomain.NullFloat, len(domain.Sentiments)),
		F1Score:   make(map[string]shareddomain.NullFloat, len(domain.Sentiments)),
		Support:   make(map[string]int, len(domain.Sentiments)),
	}
	for _, s := range domain.Sentiments {
		m := r.Labels[s]
		report.Precision[string(s)] = shareddomain.NewNullFloat(m.Precision)
		report.Recall[string(s)] = shareddomain.NewNullFloat(m.Recall)
		report.F1Score[string(s)] = shareddomain.NewNullFloat(m.F1)
		report.Support[string(s)] = m.Support
	}
	return SentimentAnalysisResponse{
		Accuracy:             shareddomain.NewNullFloat(r.Accuracy),
		ClassificationReport: report,
		ExamplePrediction: ExamplePrediction{
			Review:             r.Example,
			PredictedSentiment: string(r.ExampleLabel),
		},
		SentimentDistribution: assembleDistributionCounts(r.Distribution),
	}
}

func assembleCategorySentiments(groups []domain.CategorySentiment) []CategorySentimentResponse {
	out := make([]CategorySentimentResponse, len(groups))
	for i, g := range groups {
		out[i] = CategorySentimentResponse{
			MainCategory:       g.MainCategory,
			Subcategory:        g.Subcategory,
			Positive:           g.Counts[domain.Positive],
			Neutral:            g.Counts[domain.Neutral],
			Negative:           g.Counts[domain.Negative],
			Total:              g.Total,
			PositivePercentage: shareddomain.NewNullFloat(g.Percentages[domain.Positive]),
			NeutralPercentage:  shareddomain.NewNullFloat(g.Percentages[domain.Neutral]),
			NegativePercentage: shareddomain.NewNullFloat(g.Percentages[domain.Negative]),
			AverageRating:      g.AverageRating,
		}
	}
	return out
}

func assembleWords(words []domain.WordCount) []WordResponse {
	out := make([]WordResponse, len(words))
	for i, w := range words {
		out[i] = WordResponse{Text: w.Text, Value: w.Value}
	}
	return out
}

func assembleWordcloud(w domain.Wordcloud) WordcloudResponse {
	return WordcloudResponse{
		Positive: assembleWords(w.Positive),
		Negative: assembleWords(w.Negative),
	}
}

func assembleSummary(s domain.Summary) SummaryResponse {
	return SummaryResponse{
		Count:  s.Count,
		Mean:   s.Mean,
		Median: s.Median,
		Min:    s.Min,
		Max:    s.Max,
		Std:    s.Std,
	}
}

func assemblePriceDiscount(a domain.PriceDiscountAnalysis) PriceDiscountResponse {
	bins := make([]PriceRangeResponse, len(a.Bins))
	for i, b := range a.Bins {
		bins[i] = PriceRangeResponse{
			PriceRange:                b.Label,
			Count:                     b.Count,
			AverageDiscountPercentage: b.Discount.Mean,
			MedianDiscountPercentage:  b.Discount.Median,
			StdDiscountPercentage:     b.Discount.Std,
		}
	}
	return PriceDiscountResponse{
		PerPriceRangeStats: bins,
		OverallStats: map[string]SummaryResponse{
			string(catalogdomain.FieldDiscountPercentage): assembleSummary(a.Discount),
			string(catalogdomain.FieldActualPrice):        assembleSummary(a.ActualPrice),
		},
		PriceDiscountCorrelation: assembleCorrelation(a.Correlation),
	}
}

func assembleRanked(ranked []domain.RankedProduct) []TopProductResponse {
	out := make([]TopProductResponse, len(ranked))
	for i, r := range ranked {
		p := r.Product
		out[i] = TopProductResponse{
			ProductID:          string(p.ID),
			ProductName:        p.Name,
			Category:           p.Category,
			ActualPrice:        p.ActualPrice,
			DiscountedPrice:    p.DiscountedPrice,
			DiscountPercentage: p.DiscountPercentage,
			Rating:             p.Rating,
			RatingCount:        p.RatingCount,
			PopularityScore:    r.Popularity,
			TotalSales:         r.TotalSales,
			Profit:             r.Profit,
		}
	}
	return out
}

func assembleTopProducts(top domain.TopProducts, q domain.RankQuery) TopProductsResponse {
	return TopProductsResponse{
		TotalCount: top.TotalCount,
		Page:       q.Page.Page(),
		PageSize:   q.Page.Size(),
		SortBy:     string(q.SortBy),
		Products:   assembleRanked(top.Products),
	}
}
