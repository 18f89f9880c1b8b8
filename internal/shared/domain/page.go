package domain

import (
	"errors"
	"math"
)

// PageRequest représente une demande de pagination (page indexée à partir de 1)
// Value Object: immuable, validé à la construction.
type PageRequest struct {
	page int
	size int
}

// NewPageRequest crée une PageRequest avec validation
func NewPageRequest(page, size, maxSize int) (PageRequest, error) {
	if page < 1 {
		return PageRequest{}, errors.New("page must be >= 1")
	}
	if size < 1 {
		return PageRequest{}, errors.New("page_size must be >= 1")
	}
	if maxSize > 0 && size > maxSize {
		return PageRequest{}, errors.New("page_size exceeds maximum")
	}
	if page-1 > math.MaxInt/size {
		return PageRequest{}, errors.New("page is out of range")
	}
	return PageRequest{page: page, size: size}, nil
}

// Page retourne le numéro de page
func (p PageRequest) Page() int {
	return p.page
}

// Size retourne la taille de page
func (p PageRequest) Size() int {
	return p.size
}

// Offset retourne le nombre d'éléments à sauter
func (p PageRequest) Offset() int {
	return (p.page - 1) * p.size
}

// Bounds retourne l'intervalle [start, end) de la page dans un ensemble de taille total.
// Une page au-delà de la fin retourne un intervalle vide.
func (p PageRequest) Bounds(total int) (int, int) {
	start := p.Offset()
	if start < 0 || start > total {
		start = total
	}
	end := start + p.size
	if end < start || end > total {
		end = total
	}
	return start, end
}
