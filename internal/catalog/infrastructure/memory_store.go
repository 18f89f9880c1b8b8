package infrastructure

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"insights/internal/catalog/domain"
	shareddomain "insights/internal/shared/domain"
)

// MemoryProductStore garde le catalogue en mémoire (tests, démo)
type MemoryProductStore struct {
	mu       sync.RWMutex
	products []domain.RawProduct
}

// NewMemoryProductStore crée un store contenant products
func NewMemoryProductStore(products ...domain.RawProduct) *MemoryProductStore {
	s := &MemoryProductStore{}
	_ = s.InsertMany(context.Background(), products)
	return s
}

// InsertMany ajoute des enregistrements; un identifiant vide reçoit un uuid
func (s *MemoryProductStore) InsertMany(ctx context.Context, products []domain.RawProduct) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range products {
		if p.ID == "" {
			p.ID = domain.ProductID(uuid.NewString())
		}
		s.products = append(s.products, p)
	}
	return nil
}

// Find retourne les enregistrements correspondant au filtre
func (s *MemoryProductStore) Find(ctx context.Context, f Filter) ([]domain.RawProduct, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.RawProduct
	skipped := 0
	for _, p := range s.products {
		if !f.Match(p) {
			continue
		}
		if skipped < f.Skip {
			skipped++
			continue
		}
		out = append(out, p)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

// Distinct retourne les valeurs distinctes non vides d'une colonne
func (s *MemoryProductStore) Distinct(ctx context.Context, field domain.Field) ([]string, error) {
	if err := checkField(field); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []string
	for _, p := range s.products {
		v := rawField(p, field)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out, nil
}

// Count compte les enregistrements correspondant au filtre, sans limite
func (s *MemoryProductStore) Count(ctx context.Context, f Filter) (int, error) {
	f.Limit, f.Skip = 0, 0
	products, err := s.Find(ctx, f)
	return len(products), err
}

// UpdateOne modifie des colonnes d'un enregistrement si expect correspond encore
func (s *MemoryProductStore) UpdateOne(ctx context.Context, id domain.ProductID, set, expect map[domain.Field]string) error {
	if err := checkFields(set, expect); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.products {
		if s.products[i].ID != id {
			continue
		}
		for f, v := range expect {
			if rawField(s.products[i], f) != v {
				return domain.ErrConflict
			}
		}
		for f, v := range set {
			setRawField(&s.products[i], f, v)
		}
		return nil
	}
	return domain.ErrNotFound
}

func rawField(p domain.RawProduct, f domain.Field) string {
	switch f {
	case domain.FieldProductName:
		return p.ProductName
	case domain.FieldCategory:
		return p.Category
	case domain.FieldDiscountedPrice:
		return p.DiscountedPrice.String()
	case domain.FieldActualPrice:
		return p.ActualPrice.String()
	case domain.FieldDiscountPercentage:
		return p.DiscountPercentage.String()
	case domain.FieldRating:
		return p.Rating.String()
	case domain.FieldRatingCount:
		return p.RatingCount.String()
	case domain.FieldAboutProduct:
		return p.AboutProduct
	case domain.FieldImgLink:
		return p.ImgLink
	case domain.FieldProductLink:
		return p.ProductLink
	case domain.FieldUserID:
		return p.Reviews.UserID
	case domain.FieldUserName:
		return p.Reviews.UserName
	case domain.FieldReviewID:
		return p.Reviews.ReviewID
	case domain.FieldReviewTitle:
		return p.Reviews.ReviewTitle
	case domain.FieldReviewContent:
		return p.Reviews.ReviewContent
	case domain.FieldHelpfulCount:
		return p.Reviews.HelpfulCount
	default:
		return ""
	}
}

func setRawField(p *domain.RawProduct, f domain.Field, v string) {
	switch f {
	case domain.FieldProductName:
		p.ProductName = v
	case domain.FieldCategory:
		p.Category = v
	case domain.FieldDiscountedPrice:
		p.DiscountedPrice = shareddomain.Text(v)
	case domain.FieldActualPrice:
		p.ActualPrice = shareddomain.Text(v)
	case domain.FieldDiscountPercentage:
		p.DiscountPercentage = shareddomain.Text(v)
	case domain.FieldRating:
		p.Rating = shareddomain.Text(v)
	case domain.FieldRatingCount:
		p.RatingCount = shareddomain.Text(v)
	case domain.FieldAboutProduct:
		p.AboutProduct = v
	case domain.FieldImgLink:
		p.ImgLink = v
	case domain.FieldProductLink:
		p.ProductLink = v
	case domain.FieldUserID:
		p.Reviews.UserID = v
	case domain.FieldUserName:
		p.Reviews.UserName = v
	case domain.FieldReviewID:
		p.Reviews.ReviewID = v
	case domain.FieldReviewTitle:
		p.Reviews.ReviewTitle = v
	case domain.FieldReviewContent:
		p.Reviews.ReviewContent = v
	case domain.FieldHelpfulCount:
		p.Reviews.HelpfulCount = v
	}
}
