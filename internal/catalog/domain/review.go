package domain

import (
	"errors"
	"strconv"
	"strings"

	"insights/internal/shared/domain"
)

// ReviewSeparator sépare les valeurs des colonnes d'avis dénormalisées
const ReviewSeparator = ","

// ErrNotFound est retourné quand un produit ou un avis n'existe pas
var ErrNotFound = errors.New("not found")

// ErrConflict est retourné quand un enregistrement a changé depuis sa lecture
var ErrConflict = errors.New("concurrent update")

// ExpandedReview représente un avis reconstruit à partir des listes parallèles d'un produit
type ExpandedReview struct {
	ReviewID      string           `json:"review_id"`
	ProductID     ProductID        `json:"product_id"`
	UserID        string           `json:"user_id"`
	UserName      string           `json:"user_name"`
	Rating        domain.NullFloat `json:"rating"`
	ReviewTitle   string           `json:"review_title"`
	ReviewContent string           `json:"review_content"`
	ReviewDate    *string          `json:"review_date"`
	HelpfulCount  int64            `json:"helpful_count"`
}

// LengthMismatch signale des listes d'avis de longueurs différentes.
// Les entrées au-delà de Used sont ignorées.
type LengthMismatch struct {
	ProductID ProductID
	Lengths   map[Field]int
	Used      int
}

// SplitList découpe une colonne dénormalisée et nettoie chaque élément.
// Une colonne vide donne une liste vide.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ReviewSeparator)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// JoinList recompose une colonne dénormalisée
func JoinList(items []string) string {
	return strings.Join(items, ReviewSeparator)
}

type reviewLists struct {
	userIDs, userNames, reviewIDs, titles, contents, helpful []string
}

func splitReviews(r ReviewFields) reviewLists {
	l := reviewLists{
		userIDs:   SplitList(r.UserID),
		userNames: SplitList(r.UserName),
		reviewIDs: SplitList(r.ReviewID),
		titles:    SplitList(r.ReviewTitle),
		contents:  SplitList(r.ReviewContent),
		helpful:   SplitList(r.HelpfulCount),
	}
	if len(l.helpful) == 0 {
		longest := 0
		for _, n := range []int{len(l.userIDs), len(l.userNames), len(l.reviewIDs), len(l.titles), len(l.contents)} {
			if n > longest {
				longest = n
			}
		}
		l.helpful = make([]string, longest)
		for i := range l.helpful {
			l.helpful[i] = "0"
		}
	}
	return l
}

func (l reviewLists) lengths() map[Field]int {
	return map[Field]int{
		FieldUserID:        len(l.userIDs),
		FieldUserName:      len(l.userNames),
		FieldReviewID:      len(l.reviewIDs),
		FieldReviewTitle:   len(l.titles),
		FieldReviewContent: len(l.contents),
		FieldHelpfulCount:  len(l.helpful),
	}
}

func (l reviewLists) size() (int, bool) {
	n := -1
	aligned := true
	for _, m := range l.lengths() {
		if n >= 0 && m != n {
			aligned = false
		}
		if n < 0 || m < n {
			n = m
		}
	}
	return n, aligned
}

// ExpandReviews reconstruit les avis d'un produit. Le nombre d'avis est la plus
// petite longueur des six listes; un écart de longueur est signalé mais non fatal.
// La note de chaque avis est celle du produit.
func ExpandReviews(p Product) ([]ExpandedReview, *LengthMismatch) {
	lists := splitReviews(p.Reviews)
	n, aligned := lists.size()

	var mismatch *LengthMismatch
	if !aligned {
		mismatch = &LengthMismatch{ProductID: p.ID, Lengths: lists.lengths(), Used: n}
	}

	reviews := make([]ExpandedReview, 0, n)
	for i := 0; i < n; i++ {
		helpful, _ := NormalizeCount(domain.Text(lists.helpful[i]))
		reviews = append(reviews, ExpandedReview{
			ReviewID:      lists.reviewIDs[i],
			ProductID:     p.ID,
			UserID:        lists.userIDs[i],
			UserName:      lists.userNames[i],
			Rating:        p.Rating,
			ReviewTitle:   lists.titles[i],
			ReviewContent: lists.contents[i],
			HelpfulCount:  helpful.Or(0),
		})
	}
	return reviews, mismatch
}

// IncrementHelpful incrémente le compteur d'utilité de l'avis reviewID et retourne
// la nouvelle colonne helpful_count ainsi que l'avis mis à jour
func IncrementHelpful(p Product, reviewID string) (string, ExpandedReview, error) {
	lists := splitReviews(p.Reviews)
	n, _ := lists.size()

	for i := 0; i < n; i++ {
		if lists.reviewIDs[i] != reviewID {
			continue
		}
		current, _ := NormalizeCount(domain.Text(lists.helpful[i]))
		next := current.Or(0) + 1
		lists.helpful[i] = strconv.FormatInt(next, 10)

		p.Reviews.HelpfulCount = JoinList(lists.helpful)
		reviews, _ := ExpandReviews(p)
		return p.Reviews.HelpfulCount, reviews[i], nil
	}
	return "", ExpandedReview{}, ErrNotFound
}
