package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/Shivanand-hulikatti/parking-lot/internal/dbx"
)

// PostgresStore is the Store backed by PostgreSQL through database/sql.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Repos returns repositories running on the pool, one statement per call.
func (s *PostgresStore) Repos() Repos {
	return bind(s.db)
}

// WithTx runs fn inside a READ COMMITTED transaction. Serialisation comes from
// the row locks taken by the GetForUpdate calls, not from the isolation level.
func (s *PostgresStore) WithTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) error {
	opts := &sql.TxOptions{Isolation: sql.LevelReadCommitted}
	return dbx.WithTx(ctx, s.db, opts, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, bind(tx))
	})
}

func bind(db dbx.DBTX) Repos {
	return Repos{
		Areas:        NewAreaRepo(db),
		Vehicles:     NewVehicleRepo(db),
		Tariffs:      NewTariffRepo(db),
		Transactions: NewTransactionRepo(db),
	}
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func nullInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func int64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func timePtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	v := n.Time
	return &v
}

func nullTime(p *time.Time) sql.NullTime {
	if p == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *p, Valid: true}
}
