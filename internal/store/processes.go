package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/pralnica/internal/model"
)

const processColumns = `id, name, COALESCE(description, '') AS description, duration_minutes,
	temperature, detergent_amount, softener_amount, bleach_amount, is_active,
	created_at, updated_at`

// CreateProcess inserts a new laundry process.
func CreateProcess(ctx context.Context, db *sqlx.DB, in model.LaundryProcessInput) (*model.LaundryProcess, error) {
	lp := in.Process()
	ts := now()

	result, err := db.ExecContext(ctx,
		`INSERT INTO laundry_processes (name, description, duration_minutes, temperature,
		                                detergent_amount, softener_amount, bleach_amount,
		                                is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lp.Name, nullString(lp.Description), lp.DurationMinutes, lp.Temperature,
		lp.DetergentAmount, lp.SoftenerAmount, lp.BleachAmount,
		lp.IsActive, ts, ts,
	)
	if err != nil {
		return nil, classify("creating laundry process", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting laundry process id: %w", err)
	}
	return GetProcess(ctx, db, id)
}

// GetProcess returns a laundry process by ID.
func GetProcess(ctx context.Context, db sqlx.QueryerContext, id int64) (*model.LaundryProcess, error) {
	var lp model.LaundryProcess
	err := sqlx.GetContext(ctx, db, &lp, `SELECT `+processColumns+` FROM laundry_processes WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting laundry process: %w", err)
	}
	return &lp, nil
}

// ListProcesses returns laundry processes ordered by name. A nil active
// returns both active and inactive processes.
func ListProcesses(ctx context.Context, db *sqlx.DB, active *bool, page model.Page) ([]model.LaundryProcess, error) {
	query := `SELECT ` + processColumns + ` FROM laundry_processes`
	var args []any
	if active != nil {
		query += ` WHERE is_active = ?`
		args = append(args, *active)
	}
	query, args = paginate(query+` ORDER BY name, id`, args, page)

	var list []model.LaundryProcess
	if err := db.SelectContext(ctx, &list, query, args...); err != nil {
		return nil, fmt.Errorf("listing laundry processes: %w", err)
	}
	return list, nil
}

// UpdateProcess applies a patch to a laundry process.
func UpdateProcess(ctx context.Context, db *sqlx.DB, id int64, patch model.LaundryProcessPatch) (*model.LaundryProcess, error) {
	err := withTx(ctx, db, func(tx *sqlx.Tx) error {
		lp, err := GetProcess(ctx, tx, id)
		if err != nil {
			return err
		}
		if lp == nil {
			return fmt.Errorf("updating laundry process %d: %w", id, ErrNotFound)
		}

		patch.Apply(lp)

		_, err = tx.ExecContext(ctx,
			`UPDATE laundry_processes SET name = ?, description = ?, duration_minutes = ?,
			                              temperature = ?, detergent_amount = ?, softener_amount = ?,
			                              bleach_amount = ?, is_active = ?, updated_at = ?
			 WHERE id = ?`,
			lp.Name, nullString(lp.Description), lp.DurationMinutes,
			lp.Temperature, lp.DetergentAmount, lp.SoftenerAmount,
			lp.BleachAmount, lp.IsActive, now(), id,
		)
		if err != nil {
			return classify("updating laundry process", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return GetProcess(ctx, db, id)
}

// DeleteProcess removes a laundry process.
func DeleteProcess(ctx context.Context, db *sqlx.DB, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM laundry_processes WHERE id = ?`, id)
	if err != nil {
		return classify("deleting laundry process", err)
	}
	return mustAffect("deleting laundry process", result)
}
