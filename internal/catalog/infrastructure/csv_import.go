package infrastructure

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"insights/internal/catalog/domain"
	shareddomain "insights/internal/shared/domain"
	"insights/internal/shared/infrastructure"
)

// ErrMissingColumn est retourné quand l'en-tête CSV ne contient pas product_id
var ErrMissingColumn = errors.New("csv header is missing a required column")

// ReadCSV lit un export catalogue au format CSV (une ligne par produit, avis dénormalisés).
// Les colonnes sont repérées par leur nom; les colonnes inconnues sont ignorées.
func ReadCSV(r io.Reader) ([]domain.RawProduct, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	if _, ok := index["product_id"]; !ok {
		return nil, fmt.Errorf("%w: product_id", ErrMissingColumn)
	}

	var products []domain.RawProduct
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		col := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(record) {
				return ""
			}
			return record[i]
		}
		products = append(products, domain.RawProduct{
			ID:                 domain.ProductID(strings.TrimSpace(col("product_id"))),
			ProductName:        col("product_name"),
			Category:           col("category"),
			DiscountedPrice:    shareddomain.Text(col("discounted_price")),
			ActualPrice:        shareddomain.Text(col("actual_price")),
			DiscountPercentage: shareddomain.Text(col("discount_percentage")),
			Rating:             shareddomain.Text(col("rating")),
			RatingCount:        shareddomain.Text(col("rating_count")),
			AboutProduct:       col("about_product"),
			ImgLink:            col("img_link"),
			ProductLink:        col("product_link"),
			Reviews: domain.ReviewFields{
				UserID:        col("user_id"),
				UserName:      col("user_name"),
				ReviewID:      col("review_id"),
				ReviewTitle:   col("review_title"),
				ReviewContent: col("review_content"),
				HelpfulCount:  col("helpful_count"),
			},
		})
	}
	return products, nil
}

// ImportBatches insère les produits par lots, dans l'ordre du fichier.
// Un seul worker vide la file: l'ordre d'insertion (seq, ordre de lecture des stores)
// suit donc le CSV et les égalités du classement sont identiques d'un import à l'autre.
// Chaque lot est une transaction indépendante: un lot en échec n'annule pas les autres.
func ImportBatches(ctx context.Context, w ProductWriter, products []domain.RawProduct, batchSize int) error {
	if batchSize < 1 {
		batchSize = 500
	}

	pool := infrastructure.NewWorkerPool(ctx, 1)
	pool.Start()

	for start := 0; start < len(products); start += batchSize {
		end := min(start+batchSize, len(products))
		batch := products[start:end]
		first := start
		err := pool.Submit(func(ctx context.Context) error {
			if err := w.InsertMany(ctx, batch); err != nil {
				return fmt.Errorf("insert rows %d-%d: %w", first, first+len(batch)-1, err)
			}
			return nil
		})
		if err != nil {
			pool.Stop()
			return err
		}
	}
	return pool.Wait()
}
