package domain

import (
	"math"

	catalogdomain "insights/internal/catalog/domain"
)

// holdoutEvery place un avis sur holdoutEvery dans le jeu de test
const holdoutEvery = 5

const laplace = 1.0

// NaiveBayes est un classifieur bayésien naïf multinomial sur les mots des avis
type NaiveBayes struct {
	docs       map[Sentiment]int
	words      map[Sentiment]map[string]int
	totals     map[Sentiment]int
	vocabulary map[string]struct{}
	n          int
}

// NewNaiveBayes crée un classifieur vide
func NewNaiveBayes() *NaiveBayes {
	nb := &NaiveBayes{
		docs:       make(map[Sentiment]int),
		words:      make(map[Sentiment]map[string]int),
		totals:     make(map[Sentiment]int),
		vocabulary: make(map[string]struct{}),
	}
	for _, s := range Sentiments {
		nb.words[s] = make(map[string]int)
	}
	return nb
}

// Train ajoute un document étiqueté
func (nb *NaiveBayes) Train(text string, label Sentiment) {
	nb.n++
	nb.docs[label]++
	for _, tok := range Tokenize(text) {
		nb.words[label][tok]++
		nb.totals[label]++
		nb.vocabulary[tok] = struct{}{}
	}
}

// Predict retourne le label de plus forte log-probabilité a posteriori.
// Les égalités sont départagées par l'ordre de Sentiments.
func (nb *NaiveBayes) Predict(text string) Sentiment {
	tokens := Tokenize(text)
	v := float64(len(nb.vocabulary))

	best := Sentiment("")
	bestScore := math.Inf(-1)
	for _, s := range Sentiments {
		if nb.docs[s] == 0 {
			continue
		}
		score := math.Log(float64(nb.docs[s]) / float64(nb.n))
		denom := float64(nb.totals[s]) + laplace*v
		for _, tok := range tokens {
			if _, known := nb.vocabulary[tok]; !known {
				continue
			}
			score += math.Log((float64(nb.words[s][tok]) + laplace) / denom)
		}
		if score > bestScore {
			best, bestScore = s, score
		}
	}
	return best
}

// LabelMetrics regroupe les métriques de classification d'un label
type LabelMetrics struct {
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// SentimentReport est le résultat de l'évaluation du classifieur
type SentimentReport struct {
	Accuracy      float64
	Labels        map[Sentiment]LabelMetrics
	Example       string
	ExampleLabel  Sentiment
	Distribution  map[Sentiment]int
	TrainingCount int
	TestCount     int
}

// AnalyzeSentiment entraîne le classifieur sur les avis étiquetés par la règle
// de notes, l'évalue sur un avis sur cinq et prédit le label de example.
// Si example est vide, le premier avis de test sert d'exemple.
// Sous cinq avis, le jeu complet sert à l'entraînement et au test.
func AnalyzeSentiment(reviews []catalogdomain.ExpandedReview, example string) (SentimentReport, error) {
	type sample struct {
		text  string
		label Sentiment
	}
	var samples []sample
	distribution := make(map[Sentiment]int, len(Sentiments))
	for _, s := range Sentiments {
		distribution[s] = 0
	}
	for _, r := range reviews {
		label, ok := Classify(r.Rating)
		if !ok || r.ReviewContent == "" {
			continue
		}
		samples = append(samples, sample{text: r.ReviewContent, label: label})
		distribution[label]++
	}
	if len(samples) == 0 {
		return SentimentReport{}, insufficient("no reviews with both text and a usable rating")
	}

	var train, test []sample
	if len(samples) < holdoutEvery {
		train, test = samples, samples
	} else {
		for i, s := range samples {
			if i%holdoutEvery == holdoutEvery-1 {
				test = append(test, s)
			} else {
				train = append(train, s)
			}
		}
	}

	nb := NewNaiveBayes()
	for _, s := range train {
		nb.Train(s.text, s.label)
	}

	tp := make(map[Sentiment]int)
	predicted := make(map[Sentiment]int)
	support := make(map[Sentiment]int)
	correct := 0
	for _, s := range test {
		got := nb.Predict(s.text)
		support[s.label]++
		predicted[got]++
		if got == s.label {
			tp[got]++
			correct++
		}
	}

	report := SentimentReport{
		Accuracy:      float64(correct) / float64(len(test)),
		Labels:        make(map[Sentiment]LabelMetrics, len(Sentiments)),
		Distribution:  distribution,
		TrainingCount: len(train),
		TestCount:     len(test),
	}
	for _, s := range Sentiments {
		m := LabelMetrics{Support: support[s]}
		if predicted[s] > 0 {
			m.Precision = float64(tp[s]) / float64(predicted[s])
		}
		if support[s] > 0 {
			m.Recall = float64(tp[s]) / float64(support[s])
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		report.Labels[s] = m
	}

	report.Example = example
	if report.Example == "" {
		report.Example = test[0].text
	}
	report.ExampleLabel = nb.Predict(report.Example)
	return report, nil
}
