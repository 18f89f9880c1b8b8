package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"insights/internal/shared/infrastructure"
)

// Open ouvre et vérifie une connexion pour le dialecte donné
func Open(ctx context.Context, dialect infrastructure.Dialect, dsn string) (*sql.DB, error) {
	driver := string(dialect)
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	// Pool de connexions optimisé
	switch dialect {
	case infrastructure.SQLite:
		// sqlite n'accepte qu'un écrivain à la fois
		db.SetMaxOpenConns(1)
	default:
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

// ProductColumns liste les colonnes catalogue dans l'ordre d'insertion et de lecture
var ProductColumns = []string{
	"id",
	"product_name",
	"category",
	"discounted_price",
	"actual_price",
	"discount_percentage",
	"rating",
	"rating_count",
	"about_product",
	"user_id",
	"user_name",
	"review_id",
	"review_title",
	"review_content",
	"img_link",
	"product_link",
	"helpful_count",
}

// EnsureSchema crée la table products si elle n'existe pas.
// Toutes les colonnes catalogue sont du texte nullable: les encodages hétérogènes
// de la source sont conservés tels quels et nettoyés à la lecture.
func EnsureSchema(ctx context.Context, db *sql.DB, dialect infrastructure.Dialect) error {
	seq := "seq BIGSERIAL PRIMARY KEY"
	if dialect == infrastructure.SQLite {
		seq = "seq INTEGER PRIMARY KEY AUTOINCREMENT"
	}

	ddl := "CREATE TABLE IF NOT EXISTS products (\n\t" + seq + ",\n\tid TEXT NOT NULL UNIQUE"
	for _, col := range ProductColumns[1:] {
		ddl += ",\n\t" + col + " TEXT"
	}
	ddl += "\n)"

	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create products table: %w", err)
	}
	if _, err := db.ExecContext(ctx, "CREATE INDEX IF NOT EXISTS idx_products_category ON products (category)"); err != nil {
		return fmt.Errorf("create category index: %w", err)
	}
	return nil
}
