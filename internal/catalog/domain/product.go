package domain

import (
	"insights/internal/shared/domain"
)

// ProductID représente l'identifiant unique d'un produit (ObjectID hex, clé SQL ou uuid)
type ProductID string

// Field nomme une colonne du schéma catalogue
type Field string

const (
	FieldProductName        Field = "product_name"
	FieldCategory           Field = "category"
	FieldDiscountedPrice    Field = "discounted_price"
	FieldActualPrice        Field = "actual_price"
	FieldDiscountPercentage Field = "discount_percentage"
	FieldRating             Field = "rating"
	FieldRatingCount        Field = "rating_count"
	FieldAboutProduct       Field = "about_product"
	FieldImgLink            Field = "img_link"
	FieldProductLink        Field = "product_link"
	FieldUserID             Field = "user_id"
	FieldUserName           Field = "user_name"
	FieldReviewID           Field = "review_id"
	FieldReviewTitle        Field = "review_title"
	FieldReviewContent      Field = "review_content"
	FieldHelpfulCount       Field = "helpful_count"
)

// NumericFields liste les colonnes numériques dans l'ordre du contrat de sortie
var NumericFields = []Field{
	FieldActualPrice,
	FieldDiscountedPrice,
	FieldDiscountPercentage,
	FieldRating,
	FieldRatingCount,
}

// ReviewFields contient les six colonnes d'avis stockées sous forme de listes jointes par des virgules.
// L'index i de chaque liste décrit le même avis.
type ReviewFields struct {
	UserID        string
	UserName      string
	ReviewID      string
	ReviewTitle   string
	ReviewContent string
	HelpfulCount  string
}

// RawProduct représente un enregistrement produit tel que stocké (dénormalisé, non nettoyé)
type RawProduct struct {
	ID                 ProductID
	ProductName        string
	Category           string
	DiscountedPrice    domain.RawValue
	ActualPrice        domain.RawValue
	DiscountPercentage domain.RawValue
	Rating             domain.RawValue
	RatingCount        domain.RawValue
	AboutProduct       string
	ImgLink            string
	ProductLink        string
	Reviews            ReviewFields
}

// Has vérifie si la colonne est présente (non absente) dans l'enregistrement brut
func (p RawProduct) Has(f Field) bool {
	switch f {
	case FieldProductName:
		return p.ProductName != ""
	case FieldCategory:
		return p.Category != ""
	case FieldDiscountedPrice:
		return !p.DiscountedPrice.IsMissing()
	case FieldActualPrice:
		return !p.ActualPrice.IsMissing()
	case FieldDiscountPercentage:
		return !p.DiscountPercentage.IsMissing()
	case FieldRating:
		return !p.Rating.IsMissing()
	case FieldRatingCount:
		return !p.RatingCount.IsMissing()
	case FieldReviewID:
		return p.Reviews.ReviewID != ""
	case FieldReviewContent:
		return p.Reviews.ReviewContent != ""
	case FieldHelpfulCount:
		return p.Reviews.HelpfulCount != ""
	default:
		return false
	}
}

// Product représente un produit nettoyé: chaque champ numérique est fini ou null
type Product struct {
	ID                 ProductID
	Name               string
	Category           string
	DiscountedPrice    domain.NullFloat
	ActualPrice        domain.NullFloat
	DiscountPercentage domain.NullFloat
	Rating             domain.NullFloat
	RatingCount        domain.NullInt
	AboutProduct       string
	ImgLink            string
	ProductLink        string
	Reviews            ReviewFields
}

// Number retourne une colonne numérique par son nom (rating_count converti en flottant)
func (p Product) Number(f Field) domain.NullFloat {
	switch f {
	case FieldActualPrice:
		return p.ActualPrice
	case FieldDiscountedPrice:
		return p.DiscountedPrice
	case FieldDiscountPercentage:
		return p.DiscountPercentage
	case FieldRating:
		return p.Rating
	case FieldRatingCount:
		if v, ok := p.RatingCount.Get(); ok {
			return domain.NewNullFloat(float64(v))
		}
		return domain.NullFloat{}
	default:
		return domain.NullFloat{}
	}
}

// Batch est le résultat du nettoyage d'un lot d'enregistrements.
// Il conserve l'information de présence des colonnes pour distinguer
// "colonne absente du jeu de données" de "valeurs non interprétables".
type Batch struct {
	Products    []Product
	Diagnostics []Diagnostic
	present     map[Field]bool
}

// CleanBatch nettoie un lot d'enregistrements bruts dans l'ordre de récupération
func CleanBatch(raws []RawProduct) Batch {
	batch := Batch{
		Products: make([]Product, 0, len(raws)),
		present:  make(map[Field]bool),
	}
	for _, raw := range raws {
		for _, f := range []Field{FieldCategory, FieldActualPrice, FieldDiscountedPrice, FieldDiscountPercentage,
			FieldRating, FieldRatingCount, FieldReviewID, FieldReviewContent, FieldHelpfulCount} {
			if !batch.present[f] && raw.Has(f) {
				batch.present[f] = true
			}
		}
		product, diags := Clean(raw)
		batch.Products = append(batch.Products, product)
		batch.Diagnostics = append(batch.Diagnostics, diags...)
	}
	return batch
}

// Has vérifie qu'au moins un enregistrement du lot contient la colonne
func (b Batch) Has(f Field) bool {
	return b.present[f]
}

// Missing retourne les colonnes demandées qui sont absentes de tout le lot
func (b Batch) Missing(fields ...Field) []Field {
	var missing []Field
	for _, f := range fields {
		if !b.present[f] {
			missing = append(missing, f)
		}
	}
	return missing
}
