package domain

import (
	"strings"

	"insights/internal/shared/domain"
)

// Criteria décrit une sélection de produits: catégories (sous-chaîne insensible
// à la casse, combinées en OU) et intervalle de notes inclusif. Chaque borne est optionnelle.
type Criteria struct {
	Categories []string
	MinRating  domain.NullFloat
	MaxRating  domain.NullFloat
}

// HasRatingRange vérifie si au moins une borne est fixée
func (c Criteria) HasRatingRange() bool {
	return c.MinRating.Valid() || c.MaxRating.Valid()
}

// MatchCategory vérifie si le chemin contient une des catégories demandées
func (c Criteria) MatchCategory(path string) bool {
	if len(c.Categories) == 0 {
		return true
	}
	lower := strings.ToLower(path)
	for _, cat := range c.Categories {
		if strings.Contains(lower, strings.ToLower(cat)) {
			return true
		}
	}
	return false
}

// MatchRating vérifie la note nettoyée; une note nulle ne satisfait aucune borne
func (c Criteria) MatchRating(rating domain.NullFloat) bool {
	if !c.HasRatingRange() {
		return true
	}
	r, ok := rating.Get()
	if !ok {
		return false
	}
	if lo, ok := c.MinRating.Get(); ok && r < lo {
		return false
	}
	if hi, ok := c.MaxRating.Get(); ok && r > hi {
		return false
	}
	return true
}

// Match applique les deux critères à un produit nettoyé
func (c Criteria) Match(p Product) bool {
	return c.MatchCategory(p.Category) && c.MatchRating(p.Rating)
}
