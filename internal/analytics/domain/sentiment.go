package domain

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	catalogdomain "insights/internal/catalog/domain"
	"insights/internal/shared/domain"
)

// Sentiment est le label dérivé de la note
type Sentiment string

const (
	Positive Sentiment = "positive"
	Neutral  Sentiment = "neutral"
	Negative Sentiment = "negative"
)

// Sentiments liste les labels dans l'ordre de sortie
var Sentiments = []Sentiment{Positive, Neutral, Negative}

// Seuils de la règle par bandes: [4, 5] positif, ]3.3, 4[ neutre, sinon négatif
const (
	PositiveThreshold = 4.0
	NeutralThreshold  = 3.3
)

// WordcloudSize est le nombre de mots retournés par polarité
const WordcloudSize = 100

const minTokenLength = 2

// Classify applique la règle par bandes. Une note nulle n'a pas de label.
func Classify(rating domain.NullFloat) (Sentiment, bool) {
	r, ok := rating.Get()
	if !ok {
		return "", false
	}
	switch {
	case r >= PositiveThreshold:
		return Positive, true
	case r > NeutralThreshold:
		return Neutral, true
	default:
		return Negative, true
	}
}

// CategorizedReview associe un avis développé au chemin de catégorie de son produit
type CategorizedReview struct {
	Path   catalogdomain.CategoryPath
	Review catalogdomain.ExpandedReview
}

// CategorySentiment est la répartition des labels pour une catégorie
type CategorySentiment struct {
	MainCategory  string
	Subcategory   *string
	Counts        map[Sentiment]int
	Total         int
	Percentages   map[Sentiment]float64
	AverageRating domain.NullFloat
}

type sentimentGroup struct {
	main, sub string
}

// SentimentDistribution regroupe les avis classés par catégorie principale,
// ou par (catégorie, sous-catégorie) si bySub. Les groupes suivent l'ordre
// de première apparition.
func SentimentDistribution(reviews []CategorizedReview, bySub bool) ([]CategorySentiment, error) {
	index := make(map[sentimentGroup]int)
	var groups []CategorySentiment
	var sums []float64

	for _, cr := range reviews {
		label, ok := Classify(cr.Review.Rating)
		if !ok {
			continue
		}
		key := sentimentGroup{main: cr.Path.Main}
		if bySub {
			key.sub = cr.Path.Sub
		}
		i, seen := index[key]
		if !seen {
			g := CategorySentiment{MainCategory: key.main, Counts: make(map[Sentiment]int, len(Sentiments))}
			if bySub {
				sub := key.sub
				g.Subcategory = &sub
			}
			i = len(groups)
			index[key] = i
			groups = append(groups, g)
			sums = append(sums, 0)
		}
		groups[i].Counts[label]++
		groups[i].Total++
		sums[i] += cr.Review.Rating.Or(0)
	}

	if len(groups) == 0 {
		return nil, insufficient("no reviews with a usable rating")
	}

	for i := range groups {
		g := &groups[i]
		g.Percentages = make(map[Sentiment]float64, len(Sentiments))
		for _, s := range Sentiments {
			g.Percentages[s] = float64(g.Counts[s]) / float64(g.Total) * 100
		}
		g.AverageRating = domain.NewNullFloat(sums[i] / float64(g.Total))
	}
	return groups, nil
}

// WordCount est un mot et son nombre d'occurrences
type WordCount struct {
	Text  string
	Value int
}

// Wordcloud contient les mots les plus fréquents par polarité
type Wordcloud struct {
	Positive []WordCount
	Negative []WordCount
}

// SentimentWordcloud compte les mots du contenu des avis positifs et négatifs
func SentimentWordcloud(reviews []catalogdomain.ExpandedReview) (Wordcloud, error) {
	positive := make(map[string]int)
	negative := make(map[string]int)
	classified := 0

	for _, r := range reviews {
		label, ok := Classify(r.Rating)
		if !ok {
			continue
		}
		classified++
		var counts map[string]int
		switch label {
		case Positive:
			counts = positive
		case Negative:
			counts = negative
		default:
			continue
		}
		for _, tok := range Tokenize(r.ReviewContent) {
			counts[tok]++
		}
	}

	if classified == 0 {
		return Wordcloud{}, insufficient("no reviews with a usable rating")
	}
	return Wordcloud{
		Positive: topWords(positive, WordcloudSize),
		Negative: topWords(negative, WordcloudSize),
	}, nil
}

func topWords(counts map[string]int, n int) []WordCount {
	words := make([]WordCount, 0, len(counts))
	for text, value := range counts {
		words = append(words, WordCount{Text: text, Value: value})
	}
	sort.Slice(words, func(i, j int) bool {
		if words[i].Value != words[j].Value {
			return words[i].Value > words[j].Value
		}
		return words[i].Text < words[j].Text
	})
	if len(words) > n {
		words = words[:n]
	}
	return words
}

// Tokenize met le texte en minuscules, retire les accents et ne garde que
// les suites de lettres (tout alphabet) d'au moins deux caractères
func Tokenize(text string) []string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), text)
	if err != nil {
		folded = text
	}
	folded = strings.ToLower(folded)

	tokens := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.Is(unicode.Mc, r)
	})
	out := tokens[:0]
	for _, t := range tokens {
		if utf8.RuneCountInString(t) >= minTokenLength {
			out = append(out, t)
		}
	}
	return out
}
