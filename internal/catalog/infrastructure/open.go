package infrastructure

import (
	"context"
	"fmt"

	"insights/database"
	"insights/internal/config"
	"insights/internal/shared/infrastructure"
)

// Store réunit la lecture et l'import en masse
type Store interface {
	ProductStore
	ProductWriter
}

// OpenStore ouvre le stockage choisi par la configuration.
// Pour les backends SQL le schéma est créé s'il n'existe pas.
// La fonction retournée libère les connexions.
func OpenStore(ctx context.Context, cfg config.StoreConfig) (Store, func() error, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemoryProductStore(), func() error { return nil }, nil

	case "mongo":
		store, err := NewMongoProductStore(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
		if err != nil {
			return nil, nil, err
		}
		return store, func() error { return store.Close(context.Background()) }, nil

	case "sqlite", "postgres":
		dialect, dsn := infrastructure.Postgres, cfg.DSN()
		if cfg.Backend == "sqlite" {
			dialect, dsn = infrastructure.SQLite, cfg.SQLitePath
		}
		db, err := database.Open(ctx, dialect, dsn)
		if err != nil {
			return nil, nil, err
		}
		if err := database.EnsureSchema(ctx, db, dialect); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return NewSQLProductStore(db, dialect), db.Close, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", config.ErrInvalidStoreBackend, cfg.Backend)
	}
}
