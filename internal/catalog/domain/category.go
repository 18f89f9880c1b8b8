package domain

import "strings"

// CategorySeparator sépare les niveaux d'un chemin de catégorie ("Electronics|Phones")
const CategorySeparator = "|"

// CategoryPath représente un chemin de catégorie découpé en niveaux
type CategoryPath struct {
	Main string
	Sub  string
}

// SplitCategory découpe un chemin sur le premier et le second segment.
// Un chemin vide donne une catégorie principale vide.
func SplitCategory(path string) CategoryPath {
	parts := strings.SplitN(path, CategorySeparator, 3)
	cp := CategoryPath{Main: strings.TrimSpace(parts[0])}
	if len(parts) > 1 {
		cp.Sub = strings.TrimSpace(parts[1])
	}
	return cp
}
