package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/parking-lot/internal/dbx"
	"github.com/Shivanand-hulikatti/parking-lot/internal/model"
)

const tariffColumns = `id, area_id, vehicle_class, rule_type, base_price, continuation_price,
	interval_minutes, progressive_steps, daily_cap, valid_from, valid_to, active, created_at`

// TariffRepo is the PostgreSQL TariffRepository.
type TariffRepo struct {
	db dbx.DBTX
}

// NewTariffRepo constructs a TariffRepo.
func NewTariffRepo(db dbx.DBTX) *TariffRepo {
	return &TariffRepo{db: db}
}

// Create inserts a rule. The partial unique index on active rules turns a
// duplicate (area, class, type, window) into ErrAmbiguousTariff.
func (r *TariffRepo) Create(ctx context.Context, rule *model.TariffRule) error {
	steps, err := encodeSteps(rule.ProgressiveSteps)
	if err != nil {
		return err
	}
	err = r.db.QueryRowContext(ctx,
		`INSERT INTO tariff_rules (area_id, vehicle_class, rule_type, base_price, continuation_price,
		     interval_minutes, progressive_steps, daily_cap, valid_from, valid_to, active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, created_at`,
		rule.AreaID, string(rule.VehicleClass), string(rule.RuleType), rule.BasePrice,
		nullInt64(rule.ContinuationPrice), nullInt64(rule.IntervalMinutes), steps,
		nullInt64(rule.DailyCap), nullTimeOfDay(rule.ValidFrom), nullTimeOfDay(rule.ValidTo), rule.Active,
	).Scan(&rule.ID, &rule.CreatedAt)
	if err != nil {
		if c, ok := uniqueViolation(err); ok && c == constraintActiveTariff {
			return model.ErrAmbiguousTariff
		}
		return fmt.Errorf("insert tariff: %w", err)
	}
	return nil
}

// GetByID returns a single rule or ErrTariffNotFound.
func (r *TariffRepo) GetByID(ctx context.Context, id int64) (*model.TariffRule, error) {
	rule, err := scanTariff(r.db.QueryRowContext(ctx, `SELECT `+tariffColumns+` FROM tariff_rules WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrTariffNotFound
		}
		return nil, fmt.Errorf("get tariff: %w", err)
	}
	return rule, nil
}

// ListByArea returns every rule of an area, active or not.
func (r *TariffRepo) ListByArea(ctx context.Context, areaID int64) ([]model.TariffRule, error) {
	return r.list(ctx, `SELECT `+tariffColumns+` FROM tariff_rules WHERE area_id = $1 ORDER BY id`, areaID)
}

// ListActive returns the active rules for one class in one area.
func (r *TariffRepo) ListActive(ctx context.Context, areaID int64, class model.VehicleClass) ([]model.TariffRule, error) {
	return r.list(ctx,
		`SELECT `+tariffColumns+` FROM tariff_rules
		 WHERE area_id = $1 AND vehicle_class = $2 AND active
		 ORDER BY id`,
		areaID, string(class))
}

func (r *TariffRepo) list(ctx context.Context, query string, args ...any) ([]model.TariffRule, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tariffs: %w", err)
	}
	defer rows.Close()

	rules := []model.TariffRule{}
	for rows.Next() {
		rule, err := scanTariff(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tariff: %w", err)
		}
		rules = append(rules, *rule)
	}
	return rules, rows.Err()
}

// SetActive flips the active flag. Rules are never deleted because completed
// transactions keep referencing them.
func (r *TariffRepo) SetActive(ctx context.Context, id int64, active bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE tariff_rules SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		if c, ok := uniqueViolation(err); ok && c == constraintActiveTariff {
			return model.ErrAmbiguousTariff
		}
		return fmt.Errorf("update tariff: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update tariff: %w", err)
	}
	if n == 0 {
		return model.ErrTariffNotFound
	}
	return nil
}

func scanTariff(s scanner) (*model.TariffRule, error) {
	var (
		rule                   model.TariffRule
		class, ruleType        string
		continuation, interval sql.NullInt64
		dailyCap               sql.NullInt64
		steps                  []byte
		validFrom, validTo     sql.NullString
	)
	err := s.Scan(&rule.ID, &rule.AreaID, &class, &ruleType, &rule.BasePrice, &continuation,
		&interval, &steps, &dailyCap, &validFrom, &validTo, &rule.Active, &rule.CreatedAt)
	if err != nil {
		return nil, err
	}
	rule.VehicleClass = model.VehicleClass(class)
	rule.RuleType = model.RuleType(ruleType)
	rule.ContinuationPrice = int64Ptr(continuation)
	rule.IntervalMinutes = int64Ptr(interval)
	rule.DailyCap = int64Ptr(dailyCap)
	if len(steps) > 0 {
		if err := json.Unmarshal(steps, &rule.ProgressiveSteps); err != nil {
			return nil, fmt.Errorf("decode progressive steps: %w", err)
		}
		if len(rule.ProgressiveSteps) == 0 {
			rule.ProgressiveSteps = nil
		}
	}
	if rule.ValidFrom, err = parseTimeOfDay(validFrom); err != nil {
		return nil, err
	}
	if rule.ValidTo, err = parseTimeOfDay(validTo); err != nil {
		return nil, err
	}
	return &rule, nil
}

func encodeSteps(steps []model.ProgressiveStep) (string, error) {
	if len(steps) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(steps)
	if err != nil {
		return "", fmt.Errorf("encode progressive steps: %w", err)
	}
	return string(b), nil
}

func nullTimeOfDay(t *model.TimeOfDay) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.String(), Valid: true}
}

func parseTimeOfDay(s sql.NullString) (*model.TimeOfDay, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := model.ParseTimeOfDay(s.String)
	if err != nil {
		return nil, fmt.Errorf("decode window: %w", err)
	}
	return &t, nil
}
