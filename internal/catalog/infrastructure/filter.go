package infrastructure

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"insights/internal/catalog/domain"
	shareddomain "insights/internal/shared/domain"
	"insights/internal/shared/infrastructure"
)

// ErrInvalidRange est retourné quand la borne basse dépasse la borne haute
var ErrInvalidRange = errors.New("min_rating must not exceed max_rating")

var _ infrastructure.Specification = Filter{}

// numericRating reproduit le nettoyage des notes côté Postgres: suppression de tout
// caractère autre que chiffre ou point, puis conversion si le résultat est un nombre.
const numericRating = `CASE WHEN regexp_replace(rating, '[^0-9.]', '', 'g') ~ '^([0-9]+\.?[0-9]*|\.[0-9]+)$' ` +
	`THEN CAST(regexp_replace(rating, '[^0-9.]', '', 'g') AS DOUBLE PRECISION) END`

// Filter est le filtre de stockage construit à partir des paramètres de requête
type Filter struct {
	domain.Criteria
	IDs   []domain.ProductID
	Limit int
	Skip  int
}

// NewFilter construit un filtre de catégories et de notes.
// Les catégories vides sont ignorées; chaque borne est optionnelle.
func NewFilter(categories []string, minRating, maxRating shareddomain.NullFloat) (Filter, error) {
	lo, hasLo := minRating.Get()
	hi, hasHi := maxRating.Get()
	if hasLo && hasHi && lo > hi {
		return Filter{}, ErrInvalidRange
	}

	var cats []string
	for _, c := range categories {
		if c = strings.TrimSpace(c); c != "" {
			cats = append(cats, c)
		}
	}
	return Filter{Criteria: domain.Criteria{Categories: cats, MinRating: minRating, MaxRating: maxRating}}, nil
}

// ByID retourne un filtre sur un seul identifiant
func ByID(id domain.ProductID) Filter {
	return Filter{IDs: []domain.ProductID{id}, Limit: 1}
}

// Match évalue le filtre en mémoire sur un enregistrement brut
func (f Filter) Match(raw domain.RawProduct) bool {
	if len(f.IDs) > 0 {
		found := false
		for _, id := range f.IDs {
			if id == raw.ID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !f.MatchCategory(raw.Category) {
		return false
	}
	if f.HasRatingRange() {
		rating, _ := domain.NormalizeRating(raw.Rating)
		return f.MatchRating(rating)
	}
	return true
}

// ToSQL implémente infrastructure.Specification.
// Les catégories sont comparées littéralement sans tenir compte de la casse.
// Les bornes de note ne sont poussées que vers Postgres; le moteur les réapplique
// après normalisation.
func (f Filter) ToSQL(d infrastructure.Dialect, offset int) (string, []any) {
	var clauses []string
	var args []any
	next := func(v any) string {
		args = append(args, v)
		return d.Placeholder(offset + len(args))
	}

	if len(f.IDs) > 0 {
		ph := make([]string, len(f.IDs))
		for i, id := range f.IDs {
			ph[i] = next(string(id))
		}
		clauses = append(clauses, "id IN ("+strings.Join(ph, ", ")+")")
	}

	if len(f.Categories) > 0 {
		ors := make([]string, len(f.Categories))
		for i, c := range f.Categories {
			if d == infrastructure.Postgres {
				ors[i] = "category ~* " + next(regexp.QuoteMeta(c))
			} else {
				ors[i] = "LOWER(category) LIKE " + next("%"+escapeLike(strings.ToLower(c))+"%") + ` ESCAPE '\'`
			}
		}
		clauses = append(clauses, "("+strings.Join(ors, " OR ")+")")
	}

	if d == infrastructure.Postgres {
		if lo, ok := f.MinRating.Get(); ok {
			clauses = append(clauses, "("+numericRating+") >= "+next(lo))
		}
		if hi, ok := f.MaxRating.Get(); ok {
			clauses = append(clauses, "("+numericRating+") <= "+next(hi))
		}
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return strings.Join(clauses, " AND "), args
}

// LimitSQL retourne la clause LIMIT/OFFSET du filtre
func (f Filter) LimitSQL() string {
	var b strings.Builder
	if f.Limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(f.Limit))
	}
	if f.Skip > 0 {
		if f.Limit <= 0 {
			// sqlite exige LIMIT avant OFFSET
			b.WriteString(" LIMIT -1")
		}
		b.WriteString(" OFFSET ")
		b.WriteString(strconv.Itoa(f.Skip))
	}
	return b.String()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// ToBSON rend le filtre pour MongoDB.
// Les notes stockées en texte passent le filtre et sont triées après normalisation.
func (f Filter) ToBSON() bson.M {
	var and []bson.M

	if len(f.IDs) > 0 {
		ids := make([]any, len(f.IDs))
		for i, id := range f.IDs {
			ids[i] = mongoID(id)
		}
		and = append(and, bson.M{"_id": bson.M{"$in": ids}})
	}

	if len(f.Categories) > 0 {
		ors := make([]bson.M, len(f.Categories))
		for i, c := range f.Categories {
			ors[i] = bson.M{"category": bson.M{"$regex": regexp.QuoteMeta(c), "$options": "i"}}
		}
		and = append(and, bson.M{"$or": ors})
	}

	if f.HasRatingRange() {
		bounds := bson.M{}
		if lo, ok := f.MinRating.Get(); ok {
			bounds["$gte"] = lo
		}
		if hi, ok := f.MaxRating.Get(); ok {
			bounds["$lte"] = hi
		}
		and = append(and, bson.M{"$or": []bson.M{
			{"rating": bounds},
			{"rating": bson.M{"$type": "string"}},
		}})
	}

	switch len(and) {
	case 0:
		return bson.M{}
	case 1:
		return and[0]
	default:
		return bson.M{"$and": and}
	}
}

// mongoID convertit un identifiant hexadécimal en ObjectID, sinon le garde tel quel
func mongoID(id domain.ProductID) any {
	if oid, err := primitive.ObjectIDFromHex(string(id)); err == nil {
		return oid
	}
	return string(id)
}
