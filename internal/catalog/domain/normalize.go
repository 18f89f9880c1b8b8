package domain

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"insights/internal/shared/domain"
)

// RatingSentinel est la valeur littérale utilisée par la source pour une note invalide
const RatingSentinel = "|"

const (
	MinRating = 1.0
	MaxRating = 5.0
)

var (
	formatChars = regexp.MustCompile(`[₹$€£¥,%]`)
	strayChars  = regexp.MustCompile(`[^0-9.]`)
)

// Diagnostic décrit une dégradation locale d'un champ vers null
type Diagnostic struct {
	ProductID ProductID
	Field     Field
	Raw       string
	Reason    string
}

// NormalizeNumber convertit une valeur brute en flottant fini ou null.
// Seule une vraie absence court-circuite: 0 et "0" sont des valeurs.
// La fonction est totale et idempotente sur ses propres sorties.
func NormalizeNumber(raw domain.RawValue) (domain.NullFloat, string) {
	if raw.IsMissing() {
		return domain.NullFloat{}, ""
	}
	s := formatChars.ReplaceAllString(raw.String(), "")
	s = strayChars.ReplaceAllString(s, "")
	if s == "" {
		return domain.NullFloat{}, "no numeric content"
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return domain.NullFloat{}, "unparseable number"
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return domain.NullFloat{}, "non-finite number"
	}
	return domain.NewNullFloat(v), ""
}

// NormalizeRating applique NormalizeNumber puis rejette la sentinelle "|"
// et toute note hors de l'intervalle [1, 5]
func NormalizeRating(raw domain.RawValue) (domain.NullFloat, string) {
	if raw.Kind() == domain.RawText && strings.TrimSpace(raw.String()) == RatingSentinel {
		return domain.NullFloat{}, "invalid rating sentinel"
	}
	v, note := NormalizeNumber(raw)
	r, ok := v.Get()
	if !ok {
		return v, note
	}
	if r < MinRating || r > MaxRating {
		return domain.NullFloat{}, "rating out of range"
	}
	return v, ""
}

// NormalizeCount applique NormalizeNumber puis tronque vers zéro
func NormalizeCount(raw domain.RawValue) (domain.NullInt, string) {
	v, note := NormalizeNumber(raw)
	f, ok := v.Get()
	if !ok {
		return domain.NullInt{}, note
	}
	t := math.Trunc(f)
	if t >= math.MaxInt64 || t <= math.MinInt64 {
		return domain.NullInt{}, "count overflows int64"
	}
	return domain.NewNullInt(int64(t)), ""
}

// Clean nettoie un enregistrement brut. Les échecs de conversion deviennent null
// et sont retournés comme diagnostics; la ligne n'est jamais rejetée.
func Clean(raw RawProduct) (Product, []Diagnostic) {
	var diags []Diagnostic
	note := func(f Field, v domain.RawValue, reason string) {
		if reason != "" {
			diags = append(diags, Diagnostic{ProductID: raw.ID, Field: f, Raw: v.String(), Reason: reason})
		}
	}

	p := Product{
		ID:           raw.ID,
		Name:         raw.ProductName,
		Category:     raw.Category,
		AboutProduct: raw.AboutProduct,
		ImgLink:      raw.ImgLink,
		ProductLink:  raw.ProductLink,
		Reviews:      raw.Reviews,
	}

	var reason string
	p.DiscountedPrice, reason = NormalizeNumber(raw.DiscountedPrice)
	note(FieldDiscountedPrice, raw.DiscountedPrice, reason)
	p.ActualPrice, reason = NormalizeNumber(raw.ActualPrice)
	note(FieldActualPrice, raw.ActualPrice, reason)
	p.DiscountPercentage, reason = NormalizeNumber(raw.DiscountPercentage)
	note(FieldDiscountPercentage, raw.DiscountPercentage, reason)
	p.Rating, reason = NormalizeRating(raw.Rating)
	note(FieldRating, raw.Rating, reason)
	p.RatingCount, reason = NormalizeCount(raw.RatingCount)
	note(FieldRatingCount, raw.RatingCount, reason)

	return p, diags
}
