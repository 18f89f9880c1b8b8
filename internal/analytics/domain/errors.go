package domain

import (
	"errors"
	"fmt"
	"strings"

	catalogdomain "insights/internal/catalog/domain"
)

// ErrInsufficientData est la cause commune des échecs "pas assez de données"
var ErrInsufficientData = errors.New("insufficient data")

// InsufficientDataError décrit pourquoi une agrégation n'a pas pu être calculée
type InsufficientDataError struct {
	Reason string
}

// Error retourne la raison lisible
func (e *InsufficientDataError) Error() string {
	return e.Reason
}

// Unwrap permet errors.Is(err, ErrInsufficientData)
func (e *InsufficientDataError) Unwrap() error {
	return ErrInsufficientData
}

func insufficient(format string, args ...any) error {
	return &InsufficientDataError{Reason: fmt.Sprintf(format, args...)}
}

// RequireFields vérifie que chaque colonne requise existe dans le lot
func RequireFields(batch catalogdomain.Batch, fields ...catalogdomain.Field) error {
	missing := batch.Missing(fields...)
	if len(missing) == 0 {
		return nil
	}
	names := make([]string, len(missing))
	for i, f := range missing {
		names[i] = string(f)
	}
	return insufficient("required fields not found: %s", strings.Join(names, ", "))
}
