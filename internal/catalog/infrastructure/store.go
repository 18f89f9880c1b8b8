package infrastructure

import (
	"context"
	"fmt"
	"sort"

	"insights/internal/catalog/domain"
)

// ProductStore est la source de données du catalogue.
// Find retourne les enregistrements dans un ordre stable (ordre d'insertion).
// UpdateOne n'écrit set que si chaque colonne de expect a encore la valeur lue
// ("" pour une colonne absente): ErrNotFound si id n'existe pas, ErrConflict sinon.
type ProductStore interface {
	Find(ctx context.Context, f Filter) ([]domain.RawProduct, error)
	Distinct(ctx context.Context, field domain.Field) ([]string, error)
	Count(ctx context.Context, f Filter) (int, error)
	UpdateOne(ctx context.Context, id domain.ProductID, set, expect map[domain.Field]string) error
}

// ProductWriter importe des enregistrements en masse
type ProductWriter interface {
	InsertMany(ctx context.Context, products []domain.RawProduct) error
}

// textFields sont les colonnes texte acceptées par Distinct et UpdateOne
var textFields = map[domain.Field]bool{
	domain.FieldProductName:   true,
	domain.FieldCategory:      true,
	domain.FieldAboutProduct:  true,
	domain.FieldImgLink:       true,
	domain.FieldProductLink:   true,
	domain.FieldUserID:        true,
	domain.FieldUserName:      true,
	domain.FieldReviewID:      true,
	domain.FieldReviewTitle:   true,
	domain.FieldReviewContent: true,
	domain.FieldHelpfulCount:  true,
}

func checkFields(fields ...map[domain.Field]string) error {
	for _, m := range fields {
		for f := range m {
			if err := checkField(f); err != nil {
				return err
			}
		}
	}
	return nil
}

// sortedFields retourne les colonnes dans un ordre stable pour construire les requêtes
func sortedFields(m map[domain.Field]string) []string {
	out := make([]string, 0, len(m))
	for f := range m {
		out = append(out, string(f))
	}
	sort.Strings(out)
	return out
}

func checkField(f domain.Field) error {
	if textFields[f] {
		return nil
	}
	for _, n := range domain.NumericFields {
		if n == f {
			return nil
		}
	}
	return fmt.Errorf("unknown field %q", f)
}
