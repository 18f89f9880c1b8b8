package domain

import (
	catalogdomain "insights/internal/catalog/domain"
	"insights/internal/shared/domain"
)

// CorrelationMatrix associe à chaque paire de colonnes leur corrélation de Pearson
type CorrelationMatrix struct {
	Fields []catalogdomain.Field
	Rows   int
	values map[catalogdomain.Field]map[catalogdomain.Field]domain.NullFloat
}

// Get retourne corr(a, b)
func (m CorrelationMatrix) Get(a, b catalogdomain.Field) domain.NullFloat {
	return m.values[a][b]
}

// Correlate calcule la matrice de corrélation sur les lignes dont aucune
// colonne requise n'est nulle
func Correlate(products []catalogdomain.Product, fields ...catalogdomain.Field) (CorrelationMatrix, error) {
	columns := make([][]float64, len(fields))
	rows := 0
	for _, p := range products {
		values := make([]float64, len(fields))
		complete := true
		for i, f := range fields {
			v, ok := p.Number(f).Get()
			if !ok {
				complete = false
				break
			}
			values[i] = v
		}
		if !complete {
			continue
		}
		for i := range fields {
			columns[i] = append(columns[i], values[i])
		}
		rows++
	}

	if rows == 0 {
		return CorrelationMatrix{}, insufficient("no valid data for correlation")
	}

	m := CorrelationMatrix{
		Fields: fields,
		Rows:   rows,
		values: make(map[catalogdomain.Field]map[catalogdomain.Field]domain.NullFloat, len(fields)),
	}
	for _, f := range fields {
		m.values[f] = make(map[catalogdomain.Field]domain.NullFloat, len(fields))
	}
	for i, a := range fields {
		for j := i; j < len(fields); j++ {
			b := fields[j]
			r := pearson(columns[i], columns[j])
			m.values[a][b] = r
			m.values[b][a] = r
		}
	}
	return m, nil
}
