package testhelpers

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"

	"insights/database"
	catalogdomain "insights/internal/catalog/domain"
	"insights/internal/config"
	shareddomain "insights/internal/shared/domain"
	sharedinfra "insights/internal/shared/infrastructure"
)

// Catalog retourne un petit catalogue brut couvrant les encodages rencontrés:
// prix formatés, valeurs numériques natives, note sentinelle, listes d'avis désalignées
func Catalog() []catalogdomain.RawProduct {
	return []catalogdomain.RawProduct{
		{
			ID: "p1", ProductName: "USB-C Cable", Category: "Computers&Accessories|Accessories|Cables",
			DiscountedPrice: shareddomain.Text("₹399"), ActualPrice: shareddomain.Text("₹1,099"),
			DiscountPercentage: shareddomain.Text("64%"), Rating: shareddomain.Text("4.2"),
			RatingCount: shareddomain.Text("24,269"),
			Reviews: catalogdomain.ReviewFields{
				UserID: "u1,u2", UserName: "Ann,Bob", ReviewID: "r1,r2",
				ReviewTitle: "Great,Good", ReviewContent: "great cable fast charging,good value great build",
				HelpfulCount: "3,0",
			},
		},
		{
			ID: "p2", ProductName: "Electric Kettle", Category: "Home&Kitchen|Appliances",
			DiscountedPrice: shareddomain.Numeric(1500), ActualPrice: shareddomain.Numeric(2500),
			DiscountPercentage: shareddomain.Numeric(40), Rating: shareddomain.Text("|"),
			RatingCount: shareddomain.Numeric(12),
			Reviews: catalogdomain.ReviewFields{
				UserID: "u3", UserName: "Cid", ReviewID: "r3",
				ReviewTitle: "Meh", ReviewContent: "leaks water",
			},
		},
		{
			ID: "p3", ProductName: "Smartphone", Category: "Electronics|Phones",
			DiscountedPrice: shareddomain.Text("₹9,999"), ActualPrice: shareddomain.Text("₹14,999"),
			DiscountPercentage: shareddomain.Text("33%"), Rating: shareddomain.Text("3.0"),
			RatingCount: shareddomain.Text("1,024"),
			Reviews: catalogdomain.ReviewFields{
				UserID: "u4,u5,u6", UserName: "Dee,Eve", ReviewID: "r4,r5,r6",
				ReviewTitle: "Bad,Poor,Broken", ReviewContent: "battery died,screen broke,never again",
			},
		},
		{
			ID: "p4", ProductName: "Headphones", Category: "Electronics|Audio",
			DiscountedPrice: shareddomain.Text("₹24,999"), ActualPrice: shareddomain.Text("₹31,999"),
			DiscountPercentage: shareddomain.Text("22%"), Rating: shareddomain.Text("3.6"),
			RatingCount: shareddomain.Text("87"),
			Reviews: catalogdomain.ReviewFields{
				UserID: "u7", UserName: "Fay", ReviewID: "r7",
				ReviewTitle: "Fine", ReviewContent: "decent sound",
				HelpfulCount: "1",
			},
		},
	}
}

// SetupSQLite crée une base sqlite temporaire avec le schéma catalogue
func SetupSQLite(tb testing.TB) *sql.DB {
	tb.Helper()

	ctx := context.Background()
	db, err := database.Open(ctx, sharedinfra.SQLite, filepath.Join(tb.TempDir(), "catalog.db"))
	if err != nil {
		tb.Fatalf("Failed to open sqlite: %v", err)
	}
	tb.Cleanup(func() { db.Close() })

	if err := database.EnsureSchema(ctx, db, sharedinfra.SQLite); err != nil {
		tb.Fatalf("Failed to create schema: %v", err)
	}
	return db
}

// SetupTestDB ouvre la base PostgreSQL de test, crée le schéma et vide la table
func SetupTestDB(tb testing.TB) *sql.DB {
	tb.Helper()
	SkipIfNoDatabase(tb)

	cfg, err := loadConfig()
	if err != nil {
		tb.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	db, err := database.Open(ctx, sharedinfra.Postgres, cfg.Store.DSN())
	if err != nil {
		tb.Fatalf("Failed to open database: %v", err)
	}
	tb.Cleanup(func() { db.Close() })

	if err := database.EnsureSchema(ctx, db, sharedinfra.Postgres); err != nil {
		tb.Fatalf("Failed to create schema: %v", err)
	}
	if _, err := db.ExecContext(ctx, "TRUNCATE products"); err != nil {
		tb.Fatalf("Failed to truncate products: %v", err)
	}
	return db
}

// SkipIfNoDatabase skip le test/benchmark si la DB n'est pas disponible
func SkipIfNoDatabase(tb testing.TB) {
	tb.Helper()

	cfg, err := loadConfig()
	if err != nil {
		tb.Skip("Database not configured:", err)
	}

	db, err := sql.Open("postgres", cfg.Store.DSN())
	if err != nil {
		tb.Skip("Database not available:", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		tb.Skip("Database not available:", err)
	}
}

func loadConfig() (*config.Config, error) {
	_ = godotenv.Load("../../.env")
	return config.Load()
}
