package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/parking-lot/internal/dbx"
	"github.com/Shivanand-hulikatti/parking-lot/internal/model"
)

const transactionColumns = `id, vehicle_id, area_id, tariff_id, actor_id, entry_time, exit_time,
	duration_minutes, total_fee, status, token`

// TransactionRepo is the PostgreSQL TransactionRepository.
type TransactionRepo struct {
	db dbx.DBTX
}

// NewTransactionRepo constructs a TransactionRepo.
func NewTransactionRepo(db dbx.DBTX) *TransactionRepo {
	return &TransactionRepo{db: db}
}

// Create inserts an ongoing transaction. The partial unique index on
// (vehicle_id) WHERE status = 'ongoing' is the last line against double
// parking and surfaces as ErrVehicleAlreadyParked.
func (r *TransactionRepo) Create(ctx context.Context, tr *model.Transaction) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO transactions (vehicle_id, area_id, tariff_id, actor_id, entry_time, status, token)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		tr.VehicleID, tr.AreaID, tr.TariffID, tr.ActorID, tr.EntryTime, string(tr.Status), tr.Token,
	).Scan(&tr.ID)
	if err != nil {
		if c, ok := uniqueViolation(err); ok && c == constraintVehicleOngoing {
			return model.ErrVehicleAlreadyParked
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID returns a single transaction or ErrTransactionNotFound.
func (r *TransactionRepo) GetByID(ctx context.Context, id int64) (*model.Transaction, error) {
	tr, err := scanTransaction(r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return tr, nil
}

// HasOngoing reports whether the vehicle is parked anywhere.
func (r *TransactionRepo) HasOngoing(ctx context.Context, vehicleID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM transactions WHERE vehicle_id = $1 AND status = 'ongoing')`,
		vehicleID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check ongoing: %w", err)
	}
	return exists, nil
}

// CountOngoing counts the ongoing transactions of an area.
func (r *TransactionRepo) CountOngoing(ctx context.Context, areaID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE area_id = $1 AND status = 'ongoing'`,
		areaID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count ongoing: %w", err)
	}
	return n, nil
}

// Complete closes the transaction. The status predicate makes the transition
// happen at most once: a concurrent second check-out affects no row.
func (r *TransactionRepo) Complete(ctx context.Context, tr *model.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET status = 'completed', exit_time = $2, duration_minutes = $3, total_fee = $4
		 WHERE id = $1 AND status = 'ongoing'`,
		tr.ID, nullTime(tr.ExitTime), nullInt64(tr.DurationMinutes), nullInt64(tr.TotalFee),
	)
	if err != nil {
		return fmt.Errorf("complete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("complete transaction: %w", err)
	}
	if n == 0 {
		return model.ErrAlreadyCompleted
	}
	return nil
}

// List returns the transactions of an area, newest first. An empty status
// returns all of them.
func (r *TransactionRepo) List(ctx context.Context, areaID int64, status model.Status) ([]model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE area_id = $1`
	args := []any{areaID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, string(status))
	}
	query += ` ORDER BY entry_time DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	list := []model.Transaction{}
	for rows.Next() {
		tr, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		list = append(list, *tr)
	}
	return list, rows.Err()
}

// Delete removes a transaction.
func (r *TransactionRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n == 0 {
		return model.ErrTransactionNotFound
	}
	return nil
}

func scanTransaction(s scanner) (*model.Transaction, error) {
	var (
		tr            model.Transaction
		status        string
		exit          sql.NullTime
		duration, fee sql.NullInt64
	)
	err := s.Scan(&tr.ID, &tr.VehicleID, &tr.AreaID, &tr.TariffID, &tr.ActorID, &tr.EntryTime,
		&exit, &duration, &fee, &status, &tr.Token)
	if err != nil {
		return nil, err
	}
	tr.Status = model.Status(status)
	tr.ExitTime = timePtr(exit)
	tr.DurationMinutes = int64Ptr(duration)
	tr.TotalFee = int64Ptr(fee)
	return &tr, nil
}
