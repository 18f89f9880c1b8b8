package infrastructure

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"insights/database"
	"insights/internal/catalog/domain"
	"insights/internal/shared/infrastructure"
)

// SQLProductStore lit et écrit le catalogue dans la table products (Postgres ou SQLite)
type SQLProductStore struct {
	infrastructure.BaseRepository
	uow infrastructure.UnitOfWork
}

// NewSQLProductStore crée un store SQL pour le dialecte donné
func NewSQLProductStore(db *sql.DB, dialect infrastructure.Dialect) *SQLProductStore {
	return &SQLProductStore{
		BaseRepository: infrastructure.NewBaseRepository(db, dialect),
		uow:            infrastructure.NewUnitOfWork(db),
	}
}

var selectProducts = "SELECT " + strings.Join(database.ProductColumns, ", ") + " FROM products"

func where(clause string) string {
	if clause == "" {
		return ""
	}
	return " WHERE " + clause
}

// Find retourne les enregistrements dans l'ordre d'insertion
func (s *SQLProductStore) Find(ctx context.Context, f Filter) ([]domain.RawProduct, error) {
	clause, args := f.ToSQL(s.Dialect(), 0)
	query := selectProducts + where(clause) + " ORDER BY seq" + f.LimitSQL()

	rows, err := s.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer rows.Close()

	var products []domain.RawProduct
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

func scanProduct(rows *sql.Rows) (domain.RawProduct, error) {
	var (
		p                                         domain.RawProduct
		id, name, category, about, img, link      sql.NullString
		userID, userName, reviewID, title, review sql.NullString
		helpful                                   sql.NullString
	)
	err := rows.Scan(
		&id, &name, &category,
		&p.DiscountedPrice, &p.ActualPrice, &p.DiscountPercentage, &p.Rating, &p.RatingCount,
		&about, &userID, &userName, &reviewID, &title, &review, &img, &link, &helpful,
	)
	if err != nil {
		return domain.RawProduct{}, err
	}
	p.ID = domain.ProductID(id.String)
	p.ProductName = name.String
	p.Category = category.String
	p.AboutProduct = about.String
	p.ImgLink = img.String
	p.ProductLink = link.String
	p.Reviews = domain.ReviewFields{
		UserID:        userID.String,
		UserName:      userName.String,
		ReviewID:      reviewID.String,
		ReviewTitle:   title.String,
		ReviewContent: review.String,
		HelpfulCount:  helpful.String,
	}
	return p, nil
}

// Distinct retourne les valeurs distinctes non vides d'une colonne
func (s *SQLProductStore) Distinct(ctx context.Context, field domain.Field) ([]string, error) {
	if err := checkField(field); err != nil {
		return nil, err
	}
	col := string(field)
	query := "SELECT DISTINCT " + col + " FROM products WHERE " + col + " IS NOT NULL AND " + col + " <> '' ORDER BY " + col

	rows, err := s.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("distinct %s: %w", col, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan %s: %w", col, err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// Count compte les enregistrements correspondant au filtre
func (s *SQLProductStore) Count(ctx context.Context, f Filter) (int, error) {
	clause, args := f.ToSQL(s.Dialect(), 0)

	var n int
	if err := s.QueryRow(ctx, "SELECT COUNT(*) FROM products"+where(clause), args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// UpdateOne modifie des colonnes d'un enregistrement.
// expect devient une condition COALESCE(col, '') = valeur dans la clause WHERE.
func (s *SQLProductStore) UpdateOne(ctx context.Context, id domain.ProductID, set, expect map[domain.Field]string) error {
	if len(set) == 0 {
		return nil
	}
	if err := checkFields(set, expect); err != nil {
		return err
	}

	d := s.Dialect()
	args := make([]any, 0, len(set)+len(expect)+1)
	next := func(v any) string {
		args = append(args, v)
		return d.Placeholder(len(args))
	}

	var assignments []string
	for _, col := range sortedFields(set) {
		assignments = append(assignments, col+" = "+next(set[domain.Field(col)]))
	}
	conditions := []string{"id = " + next(string(id))}
	for _, col := range sortedFields(expect) {
		conditions = append(conditions, "COALESCE("+col+", '') = "+next(expect[domain.Field(col)]))
	}
	query := "UPDATE products SET " + strings.Join(assignments, ", ") + " WHERE " + strings.Join(conditions, " AND ")

	res, err := s.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update product %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update product %s: %w", id, err)
	}
	if n > 0 {
		return nil
	}

	var exists int
	if err := s.QueryRow(ctx, "SELECT COUNT(*) FROM products WHERE id = "+d.Placeholder(1), string(id)).Scan(&exists); err != nil {
		return fmt.Errorf("check product %s: %w", id, err)
	}
	if exists == 0 {
		return domain.ErrNotFound
	}
	return domain.ErrConflict
}

// InsertMany insère les enregistrements dans une seule transaction
func (s *SQLProductStore) InsertMany(ctx context.Context, products []domain.RawProduct) error {
	if len(products) == 0 {
		return nil
	}
	d := s.Dialect()
	ph := make([]string, len(database.ProductColumns))
	for i := range ph {
		ph[i] = d.Placeholder(i + 1)
	}
	query := "INSERT INTO products (" + strings.Join(database.ProductColumns, ", ") + ") VALUES (" + strings.Join(ph, ", ") + ")"

	return s.uow.Execute(ctx, func(tx *sql.Tx) error {
		repo := s.WithTx(tx)
		for _, p := range products {
			if p.ID == "" {
				p.ID = domain.ProductID(uuid.NewString())
			}
			_, err := repo.Exec(ctx, query,
				string(p.ID), nullable(p.ProductName), nullable(p.Category),
				p.DiscountedPrice, p.ActualPrice, p.DiscountPercentage, p.Rating, p.RatingCount,
				nullable(p.AboutProduct),
				nullable(p.Reviews.UserID), nullable(p.Reviews.UserName), nullable(p.Reviews.ReviewID),
				nullable(p.Reviews.ReviewTitle), nullable(p.Reviews.ReviewContent),
				nullable(p.ImgLink), nullable(p.ProductLink), nullable(p.Reviews.HelpfulCount),
			)
			if err != nil {
				return fmt.Errorf("insert product %s: %w", p.ID, err)
			}
		}
		return nil
	})
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
