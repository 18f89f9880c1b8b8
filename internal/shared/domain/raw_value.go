package domain

import (
	"database/sql/driver"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RawKind distingue les trois formes qu'un champ brut peut prendre en stockage
type RawKind uint8

const (
	RawMissing RawKind = iota
	RawNumeric
	RawText
)

// String retourne le nom lisible du type
func (k RawKind) String() string {
	switch k {
	case RawNumeric:
		return "numeric"
	case RawText:
		return "text"
	default:
		return "missing"
	}
}

// RawValue représente une valeur de champ telle que stockée: absente, numérique ou texte.
// Le type est résolu une seule fois à la lecture; la normalisation dispatch sur Kind()
// au lieu de réinspecter la valeur à chaque appel.
type RawValue struct {
	kind RawKind
	num  float64
	text string
}

// Missing retourne une valeur absente
func Missing() RawValue {
	return RawValue{kind: RawMissing}
}

// Numeric crée une valeur numérique (NaN et ±Inf sont conservés, la normalisation les rejette)
func Numeric(v float64) RawValue {
	return RawValue{kind: RawNumeric, num: v}
}

// Text crée une valeur texte; une chaîne vide ou blanche est une absence
func Text(s string) RawValue {
	if strings.TrimSpace(s) == "" {
		return Missing()
	}
	return RawValue{kind: RawText, text: s}
}

// RawFrom convertit une valeur issue d'un driver (sql, bson, csv) vers l'union
func RawFrom(v any) RawValue {
	switch t := v.(type) {
	case nil:
		return Missing()
	case RawValue:
		return t
	case string:
		return Text(t)
	case []byte:
		return Text(string(t))
	case float64:
		return Numeric(t)
	case float32:
		return Numeric(float64(t))
	case int:
		return Numeric(float64(t))
	case int32:
		return Numeric(float64(t))
	case int64:
		return Numeric(float64(t))
	case uint32:
		return Numeric(float64(t))
	case uint64:
		return Numeric(float64(t))
	case bool:
		return Text(strconv.FormatBool(t))
	case fmt.Stringer:
		return Text(t.String())
	default:
		return Text(fmt.Sprint(t))
	}
}

// Kind retourne la forme de la valeur
func (v RawValue) Kind() RawKind {
	return v.kind
}

// IsMissing vérifie si la valeur est absente
func (v RawValue) IsMissing() bool {
	return v.kind == RawMissing
}

// Number retourne la valeur numérique si la valeur est de forme numérique
func (v RawValue) Number() (float64, bool) {
	if v.kind != RawNumeric {
		return 0, false
	}
	return v.num, true
}

// String retourne la représentation texte ("" si absente)
func (v RawValue) String() string {
	switch v.kind {
	case RawNumeric:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case RawText:
		return v.text
	default:
		return ""
	}
}

// Scan implémente sql.Scanner
func (v *RawValue) Scan(src any) error {
	*v = RawFrom(src)
	return nil
}

// Value implémente driver.Valuer; les colonnes sont stockées en TEXT
func (v RawValue) Value() (driver.Value, error) {
	if v.kind == RawMissing {
		return nil, nil
	}
	if v.kind == RawNumeric && (math.IsNaN(v.num) || math.IsInf(v.num, 0)) {
		return nil, nil
	}
	return v.String(), nil
}
