package infrastructure

import (
	"context"
	"database/sql"
	"strconv"
)

// Dialect décrit les différences de syntaxe SQL entre moteurs
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// Placeholder retourne le paramètre positionnel n (à partir de 1)
func (d Dialect) Placeholder(n int) string {
	if d == Postgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// UnitOfWork gère les transactions pour les opérations d'écriture
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// DBUnitOfWork implémentation de UnitOfWork avec sql.DB
type DBUnitOfWork struct {
	db *sql.DB
}

// NewUnitOfWork crée une nouvelle instance de UnitOfWork
func NewUnitOfWork(db *sql.DB) UnitOfWork {
	return &DBUnitOfWork{db: db}
}

// Execute exécute une fonction dans une transaction, annulée si fn échoue ou panique
func (uow *DBUnitOfWork) Execute(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := uow.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return rbErr
		}
		return err
	}

	return tx.Commit()
}

// Specification pattern pour les requêtes complexes.
// ToSQL retourne une clause WHERE (sans le mot-clé) et ses arguments,
// numérotés à partir de offset+1.
type Specification interface {
	ToSQL(d Dialect, offset int) (string, []any)
}

// Executor est satisfait par *sql.DB et *sql.Tx
type Executor interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// BaseRepository structure de base pour les repositories SQL
type BaseRepository struct {
	db      *sql.DB
	tx      *sql.Tx
	dialect Dialect
}

// NewBaseRepository crée un nouveau repository de base
func NewBaseRepository(db *sql.DB, dialect Dialect) BaseRepository {
	return BaseRepository{db: db, dialect: dialect}
}

// WithTx retourne une copie du repository qui exécute dans tx
func (r BaseRepository) WithTx(tx *sql.Tx) BaseRepository {
	r.tx = tx
	return r
}

// Dialect retourne le dialecte SQL
func (r BaseRepository) Dialect() Dialect {
	return r.dialect
}

// DB retourne la connexion sous-jacente
func (r BaseRepository) DB() *sql.DB {
	return r.db
}

// Executor retourne l'exécuteur approprié (DB ou Tx)
func (r BaseRepository) Executor() Executor {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// Query exécute une requête de lecture
func (r BaseRepository) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return r.Executor().QueryContext(ctx, query, args...)
}

// QueryRow exécute une requête de lecture pour une seule ligne
func (r BaseRepository) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return r.Executor().QueryRowContext(ctx, query, args...)
}

// Exec exécute une requête d'écriture
func (r BaseRepository) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return r.Executor().ExecContext(ctx, query, args...)
}
