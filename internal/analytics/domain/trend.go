package domain

import (
	"math"

	catalogdomain "insights/internal/catalog/domain"
)

// DefaultTrendStep est l'écart entre deux prix échantillonnés
const DefaultTrendStep = 1000.0

const maxTrendSamples = 1000

// LinearFit représente une droite des moindres carrés y = Slope*x + Intercept
type LinearFit struct {
	Slope     float64
	Intercept float64
	Rows      int
	MinX      float64
	MaxX      float64
}

// Predict évalue la droite en x
func (f LinearFit) Predict(x float64) float64 {
	return f.Slope*x + f.Intercept
}

// TrendPoint est une prédiction du prix remisé pour un prix de référence
type TrendPoint struct {
	ActualPrice              float64
	PredictedDiscountedPrice float64
}

// FitPriceTrend ajuste discounted_price sur actual_price.
// Sans variance en x (une seule ligne par exemple) la pente vaut 0
// et l'ordonnée à l'origine la moyenne des prix remisés.
func FitPriceTrend(products []catalogdomain.Product) (LinearFit, error) {
	var xs, ys []float64
	for _, p := range products {
		x, okx := p.ActualPrice.Get()
		y, oky := p.DiscountedPrice.Get()
		if !okx || !oky {
			continue
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	if len(xs) == 0 {
		return LinearFit{}, insufficient("no valid price data available")
	}

	mx, my := mean(xs), mean(ys)
	fit := LinearFit{Rows: len(xs), MinX: xs[0], MaxX: xs[0]}
	var sxy, sxx float64
	for i := range xs {
		dx := xs[i] - mx
		sxy += dx * (ys[i] - my)
		sxx += dx * dx
		fit.MinX = math.Min(fit.MinX, xs[i])
		fit.MaxX = math.Max(fit.MaxX, xs[i])
	}
	if sxx > 0 {
		fit.Slope = sxy / sxx
	}
	fit.Intercept = my - fit.Slope*mx
	return fit, nil
}

// SampleTrend évalue la droite de MinX à MaxX par pas de step, MaxX inclus.
// Le pas est élargi si l'intervalle produirait trop de points.
func SampleTrend(fit LinearFit, step float64) []TrendPoint {
	if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		step = DefaultTrendStep
	}
	span := fit.MaxX - fit.MinX
	if span/step > maxTrendSamples {
		step = span / maxTrendSamples
	}

	var points []TrendPoint
	for i := 0; ; i++ {
		x := fit.MinX + float64(i)*step
		if x > fit.MaxX {
			break
		}
		points = append(points, TrendPoint{ActualPrice: x, PredictedDiscountedPrice: fit.Predict(x)})
	}
	if last := points[len(points)-1].ActualPrice; last < fit.MaxX {
		points = append(points, TrendPoint{ActualPrice: fit.MaxX, PredictedDiscountedPrice: fit.Predict(fit.MaxX)})
	}
	return points
}
