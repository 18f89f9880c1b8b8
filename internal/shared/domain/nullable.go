package domain

import (
	"encoding/json"
	"math"
)

// NullFloat représente un flottant fini ou null.
// Invariant: une valeur valide n'est jamais NaN ni infinie, ce qui garantit
// qu'aucun NaN n'est sérialisé en sortie.
type NullFloat struct {
	value float64
	valid bool
}

// NewNullFloat crée un NullFloat; NaN et ±Inf deviennent null
func NewNullFloat(v float64) NullFloat {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NullFloat{}
	}
	return NullFloat{value: v, valid: true}
}

// NullFloatOf crée un NullFloat à partir d'un couple (valeur, présent)
func NullFloatOf(v float64, ok bool) NullFloat {
	if !ok {
		return NullFloat{}
	}
	return NewNullFloat(v)
}

// Get retourne la valeur et sa validité
func (n NullFloat) Get() (float64, bool) {
	return n.value, n.valid
}

// Valid vérifie si la valeur est présente
func (n NullFloat) Valid() bool {
	return n.valid
}

// Or retourne la valeur ou le fallback si null
func (n NullFloat) Or(fallback float64) float64 {
	if !n.valid {
		return fallback
	}
	return n.value
}

// MarshalJSON implémente json.Marshaler
func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.value)
}

// UnmarshalJSON implémente json.Unmarshaler
func (n *NullFloat) UnmarshalJSON(data []byte) error {
	var v *float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == nil {
		*n = NullFloat{}
		return nil
	}
	*n = NewNullFloat(*v)
	return nil
}

// NullInt représente un entier ou null
type NullInt struct {
	value int64
	valid bool
}

// NewNullInt crée un NullInt valide
func NewNullInt(v int64) NullInt {
	return NullInt{value: v, valid: true}
}

// Get retourne la valeur et sa validité
func (n NullInt) Get() (int64, bool) {
	return n.value, n.valid
}

// Valid vérifie si la valeur est présente
func (n NullInt) Valid() bool {
	return n.valid
}

// Or retourne la valeur ou le fallback si null
func (n NullInt) Or(fallback int64) int64 {
	if !n.valid {
		return fallback
	}
	return n.value
}

// MarshalJSON implémente json.Marshaler
func (n NullInt) MarshalJSON() ([]byte, error) {
	if !n.valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.value)
}

// UnmarshalJSON implémente json.Unmarshaler
func (n *NullInt) UnmarshalJSON(data []byte) error {
	var v *int64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == nil {
		*n = NullInt{}
		return nil
	}
	*n = NewNullInt(*v)
	return nil
}
