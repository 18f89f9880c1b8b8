package domain

import (
	"math"
	"strconv"

	catalogdomain "insights/internal/catalog/domain"
)

// PriceBinWidth est la largeur d'une tranche de prix
const PriceBinWidth = 5000.0

// PriceBinCount est le nombre de tranches, la dernière est ouverte
const PriceBinCount = 5

// PriceBin est une tranche [Lower, Upper) de actual_price; Upper est +Inf pour la dernière
type PriceBin struct {
	Label    string
	Lower    float64
	Upper    float64
	Count    int
	Discount Summary
}

// PriceDiscountAnalysis regroupe les statistiques de remise par tranche de prix
type PriceDiscountAnalysis struct {
	Bins        []PriceBin
	Discount    Summary
	ActualPrice Summary
	Correlation CorrelationMatrix
}

// PriceBins construit les tranches contiguës [0, 5000), [5000, 10000), ... [20000, +Inf)
func PriceBins() []PriceBin {
	bins := make([]PriceBin, PriceBinCount)
	for i := range bins {
		lower := float64(i) * PriceBinWidth
		upper := lower + PriceBinWidth
		label := formatPrice(lower) + "-" + formatPrice(upper)
		if i == PriceBinCount-1 {
			upper = math.Inf(1)
			label = formatPrice(lower) + "+"
		}
		bins[i] = PriceBin{Label: label, Lower: lower, Upper: upper}
	}
	return bins
}

// BinIndex retourne l'index de la tranche contenant price
func BinIndex(price float64) int {
	if price < 0 {
		return 0
	}
	i := int(price / PriceBinWidth)
	if i >= PriceBinCount {
		return PriceBinCount - 1
	}
	return i
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// AnalyzePriceDiscount répartit les produits ayant un actual_price dans les tranches
// et calcule les statistiques de discount_percentage par tranche et globales
func AnalyzePriceDiscount(products []catalogdomain.Product) (PriceDiscountAnalysis, error) {
	bins := PriceBins()
	discounts := make([][]float64, len(bins))
	var allDiscounts, allPrices []float64

	for _, p := range products {
		price, ok := p.ActualPrice.Get()
		if !ok {
			continue
		}
		i := BinIndex(price)
		bins[i].Count++
		allPrices = append(allPrices, price)
		if d, ok := p.DiscountPercentage.Get(); ok {
			discounts[i] = append(discounts[i], d)
			allDiscounts = append(allDiscounts, d)
		}
	}

	if len(allPrices) == 0 {
		return PriceDiscountAnalysis{}, insufficient("no valid price data available")
	}
	if len(allDiscounts) == 0 {
		return PriceDiscountAnalysis{}, insufficient("no valid discount data available")
	}

	for i := range bins {
		bins[i].Discount = Describe(discounts[i])
	}

	corr, err := Correlate(products, catalogdomain.FieldActualPrice, catalogdomain.FieldDiscountPercentage)
	if err != nil {
		return PriceDiscountAnalysis{}, err
	}

	return PriceDiscountAnalysis{
		Bins:        bins,
		Discount:    Describe(allDiscounts),
		ActualPrice: Describe(allPrices),
		Correlation: corr,
	}, nil
}
