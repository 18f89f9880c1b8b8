package domain

import (
	"fmt"
	"sort"

	catalogdomain "insights/internal/catalog/domain"
	"insights/internal/shared/domain"
)

// CostRatio est l'hypothèse de coût utilisée pour le profit: 70% du prix d'origine
const CostRatio = 0.7

// SortKey est la clé de tri du classement
type SortKey string

const (
	SortPopularity SortKey = "popularity_score"
	SortTotalSales SortKey = "total_sales"
	SortProfit     SortKey = "profit"
)

// ParseSortKey valide une clé de tri; une chaîne vide donne la popularité
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(s) {
	case "", "popularity", SortPopularity:
		return SortPopularity, nil
	case SortTotalSales:
		return SortTotalSales, nil
	case SortProfit:
		return SortProfit, nil
	default:
		return "", fmt.Errorf("unknown sort key %q", s)
	}
}

// RankedProduct est un produit accompagné de ses scores
type RankedProduct struct {
	Product    catalogdomain.Product
	Popularity domain.NullFloat
	TotalSales domain.NullFloat
	Profit     domain.NullFloat
}

// Score retourne le score correspondant à la clé
func (r RankedProduct) Score(key SortKey) domain.NullFloat {
	switch key {
	case SortTotalSales:
		return r.TotalSales
	case SortProfit:
		return r.Profit
	default:
		return r.Popularity
	}
}

// RankQuery décrit une demande de classement
type RankQuery struct {
	Criteria catalogdomain.Criteria
	SortBy   SortKey
	Page     domain.PageRequest
}

// TopProducts est une page du classement et la taille totale de l'ensemble filtré
type TopProducts struct {
	TotalCount int
	Products   []RankedProduct
}

// Score calcule les trois scores d'un produit; un facteur nul rend le score nul
func Score(p catalogdomain.Product) RankedProduct {
	r := RankedProduct{Product: p}
	count, ok := p.RatingCount.Get()
	if !ok {
		return r
	}
	n := float64(count)
	if rating, ok := p.Rating.Get(); ok {
		r.Popularity = domain.NewNullFloat(rating * n)
	}
	if discounted, ok := p.DiscountedPrice.Get(); ok {
		r.TotalSales = domain.NewNullFloat(discounted * n)
		if actual, ok := p.ActualPrice.Get(); ok {
			r.Profit = domain.NewNullFloat((discounted - CostRatio*actual) * n)
		}
	}
	return r
}

// SortRanked trie par score décroissant, les scores nuls en dernier.
// Le tri est stable: les égalités gardent l'ordre de récupération.
func SortRanked(ranked []RankedProduct, key SortKey) {
	sort.SliceStable(ranked, func(i, j int) bool {
		a, aok := ranked[i].Score(key).Get()
		b, bok := ranked[j].Score(key).Get()
		if aok != bok {
			return aok
		}
		return aok && a > b
	})
}

// RankProducts filtre, score, trie et pagine les produits
func RankProducts(products []catalogdomain.Product, q RankQuery) TopProducts {
	ranked := make([]RankedProduct, 0, len(products))
	for _, p := range products {
		if q.Criteria.Match(p) {
			ranked = append(ranked, Score(p))
		}
	}
	SortRanked(ranked, q.SortBy)

	start, end := q.Page.Bounds(len(ranked))
	return TopProducts{
		TotalCount: len(ranked),
		Products:   ranked[start:end],
	}
}

// Categories retourne les catégories brutes distinctes, triées, sans les vides
func Categories(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
