package application

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"insights/internal/catalog/domain"
	"insights/internal/catalog/infrastructure"
	"insights/internal/events"
	shareddomain "insights/internal/shared/domain"
)

// Invalidator vide les réponses mises en cache après une écriture
type Invalidator interface {
	Invalidate()
}

// ProductResponse est un produit nettoyé accompagné de ses avis développés
type ProductResponse struct {
	ProductID          string                  `json:"product_id"`
	ProductName        string                  `json:"product_name"`
	Category           string                  `json:"category"`
	DiscountedPrice    shareddomain.NullFloat  `json:"discounted_price"`
	ActualPrice        shareddomain.NullFloat  `json:"actual_price"`
	DiscountPercentage shareddomain.NullFloat  `json:"discount_percentage"`
	Rating             shareddomain.NullFloat  `json:"rating"`
	RatingCount        shareddomain.NullInt    `json:"rating_count"`
	AboutProduct       string                  `json:"about_product"`
	ImgLink            string                  `json:"img_link"`
	ProductLink        string                  `json:"product_link"`
	Reviews            []domain.ExpandedReview `json:"reviews"`
}

// ProductPage est une page du catalogue nettoyé
type ProductPage struct {
	TotalCount int               `json:"total_count"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	Products   []ProductResponse `json:"products"`
}

// CatalogService expose le catalogue nettoyé et le vote "utile" sur les avis
type CatalogService struct {
	store     infrastructure.ProductStore
	publisher events.Publisher
	cache     Invalidator
	logger    *zap.Logger
}

// NewCatalogService crée le service catalogue
func NewCatalogService(
	store infrastructure.ProductStore,
	publisher events.Publisher,
	cache Invalidator,
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{
		store:     store,
		publisher: publisher,
		cache:     cache,
		logger:    logger,
	}
}

// ListProducts retourne une page de produits nettoyés dans l'ordre de stockage
func (s *CatalogService) ListProducts(ctx context.Context, page shareddomain.PageRequest) (ProductPage, error) {
	total, err := s.store.Count(ctx, infrastructure.Filter{})
	if err != nil {
		return ProductPage{}, fmt.Errorf("count products: %w", err)
	}
	raws, err := s.store.Find(ctx, infrastructure.Filter{Limit: page.Size(), Skip: page.Offset()})
	if err != nil {
		return ProductPage{}, fmt.Errorf("fetch products: %w", err)
	}

	products := make([]ProductResponse, 0, len(raws))
	for _, raw := range raws {
		p, diags := domain.Clean(raw)
		for _, d := range diags {
			s.logger.Debug("field degraded to null",
				zap.String("product_id", string(d.ProductID)),
				zap.String("field", string(d.Field)),
				zap.String("raw", d.Raw),
			)
		}
		products = append(products, s.toResponse(p))
	}

	s.logger.Info("products listed", zap.Int("count", len(products)), zap.Int("total", total))
	return ProductPage{
		TotalCount: total,
		Page:       page.Page(),
		PageSize:   page.Size(),
		Products:   products,
	}, nil
}

func (s *CatalogService) toResponse(p domain.Product) ProductResponse {
	reviews, mismatch := domain.ExpandReviews(p)
	if mismatch != nil {
		s.logger.Warn("review list length mismatch",
			zap.String("product_id", string(mismatch.ProductID)),
			zap.Int("used", mismatch.Used),
		)
	}
	return ProductResponse{
		ProductID:          string(p.ID),
		ProductName:        p.Name,
		Category:           p.Category,
		DiscountedPrice:    p.DiscountedPrice,
		ActualPrice:        p.ActualPrice,
		DiscountPercentage: p.DiscountPercentage,
		Rating:             p.Rating,
		RatingCount:        p.RatingCount,
		AboutProduct:       p.AboutProduct,
		ImgLink:            p.ImgLink,
		ProductLink:        p.ProductLink,
		Reviews:            reviews,
	}
}

// maxVoteAttempts borne les relectures quand un vote concurrent a modifié le produit
const maxVoteAttempts = 5

// VoteHelpful incrémente le compteur d'utilité d'un avis, publie l'événement
// et invalide les réponses en cache. L'écriture est conditionnée à la valeur lue;
// en cas de vote concurrent le produit est relu et le vote rejoué.
// Un échec de publication est journalisé sans annuler l'écriture.
func (s *CatalogService) VoteHelpful(ctx context.Context, productID domain.ProductID, reviewID string) (domain.ExpandedReview, error) {
	var (
		review domain.ExpandedReview
		err    error
	)
	for attempt := 1; attempt <= maxVoteAttempts; attempt++ {
		review, err = s.applyVote(ctx, productID, reviewID)
		if !errors.Is(err, domain.ErrConflict) {
			break
		}
		s.logger.Debug("helpful vote conflict",
			zap.String("product_id", string(productID)),
			zap.Int("attempt", attempt),
		)
	}
	if err != nil {
		return domain.ExpandedReview{}, err
	}
	s.cache.Invalidate()

	event := events.NewHelpfulVoted(string(productID), reviewID, review.HelpfulCount)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("publish helpful vote failed",
			zap.String("event_id", event.ID),
			zap.String("product_id", string(productID)),
			zap.Error(err),
		)
	}

	s.logger.Info("helpful vote recorded",
		zap.String("product_id", string(productID)),
		zap.String("review_id", reviewID),
		zap.Int64("helpful_count", review.HelpfulCount),
	)
	return review, nil
}

// applyVote lit le produit, calcule la nouvelle colonne helpful_count et
// l'écrit à condition qu'elle n'ait pas changé entre-temps
func (s *CatalogService) applyVote(ctx context.Context, productID domain.ProductID, reviewID string) (domain.ExpandedReview, error) {
	raws, err := s.store.Find(ctx, infrastructure.ByID(productID))
	if err != nil {
		return domain.ExpandedReview{}, fmt.Errorf("fetch product %s: %w", productID, err)
	}
	if len(raws) == 0 {
		return domain.ExpandedReview{}, fmt.Errorf("product %s: %w", productID, domain.ErrNotFound)
	}

	product, _ := domain.Clean(raws[0])
	column, review, err := domain.IncrementHelpful(product, reviewID)
	if err != nil {
		return domain.ExpandedReview{}, fmt.Errorf("review %s of product %s: %w", reviewID, productID, err)
	}

	set := map[domain.Field]string{domain.FieldHelpfulCount: column}
	expect := map[domain.Field]string{domain.FieldHelpfulCount: raws[0].Reviews.HelpfulCount}
	if err := s.store.UpdateOne(ctx, productID, set, expect); err != nil {
		return domain.ExpandedReview{}, fmt.Errorf("update helpful count: %w", err)
	}
	return review, nil
}
