package domain

import (
	"math"
	"sort"

	"insights/internal/shared/domain"
)

// Summary regroupe les statistiques descriptives d'une série
type Summary struct {
	Count  int
	Mean   domain.NullFloat
	Median domain.NullFloat
	Min    domain.NullFloat
	Max    domain.NullFloat
	Std    domain.NullFloat
}

// Describe calcule les statistiques descriptives; l'écart-type est l'écart-type
// d'échantillon (n-1) et vaut null sous deux valeurs
func Describe(values []float64) Summary {
	s := Summary{Count: len(values)}
	if len(values) == 0 {
		return s
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	s.Mean = domain.NewNullFloat(mean(values))
	s.Median = domain.NewNullFloat(median(sorted))
	s.Min = domain.NewNullFloat(sorted[0])
	s.Max = domain.NewNullFloat(sorted[len(sorted)-1])
	s.Std = sampleStd(values)
	return s
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func sampleStd(values []float64) domain.NullFloat {
	if len(values) < 2 {
		return domain.NullFloat{}
	}
	m := mean(values)
	var ss float64
	for _, v := range values {
		ss += (v - m) * (v - m)
	}
	return domain.NewNullFloat(math.Sqrt(ss / float64(len(values)-1)))
}

// pearson calcule le coefficient de corrélation de Pearson.
// Une série de variance nulle donne null.
func pearson(xs, ys []float64) domain.NullFloat {
	if len(xs) == 0 || len(xs) != len(ys) {
		return domain.NullFloat{}
	}
	mx, my := mean(xs), mean(ys)
	var sxy, sxx, syy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return domain.NullFloat{}
	}
	r := sxy / math.Sqrt(sxx*syy)
	return domain.NewNullFloat(math.Max(-1, math.Min(1, r)))
}
