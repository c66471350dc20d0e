package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/pralnica/internal/model"
)

const costSelect = `SELECT c.id, c.department_id, c.month, c.total_weight, c.total_cost,
	c.cost_per_kg, c.created_at, c.updated_at, d.name AS department_name
	FROM cost_allocations c
	JOIN departments d ON d.id = c.department_id`

// CreateCostAllocation inserts a monthly cost record. The cost per kg is
// always derived from the totals.
func CreateCostAllocation(ctx context.Context, db *sqlx.DB, in model.CostAllocationInput) (*model.CostAllocation, error) {
	c := in.Allocation()

	var id int64
	err := withTx(ctx, db, func(tx *sqlx.Tx) error {
		if _, err := requireDepartment(ctx, tx, c.DepartmentID); err != nil {
			return err
		}

		ts := now()
		result, err := tx.ExecContext(ctx,
			`INSERT INTO cost_allocations (department_id, month, total_weight, total_cost,
			                               cost_per_kg, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.DepartmentID, c.Month, c.TotalWeight, c.TotalCost, c.CostPerKg, ts, ts,
		)
		if err != nil {
			return classify("creating cost allocation", err)
		}

		id, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("getting cost allocation id: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return GetCostAllocation(ctx, db, id)
}

// GetCostAllocation returns a cost allocation by ID.
func GetCostAllocation(ctx context.Context, db sqlx.QueryerContext, id int64) (*model.CostAllocation, error) {
	var c model.CostAllocation
	err := sqlx.GetContext(ctx, db, &c, costSelect+` WHERE c.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting cost allocation: %w", err)
	}
	return &c, nil
}

// ListCostAllocations returns cost allocations, latest month first.
func ListCostAllocations(ctx context.Context, db *sqlx.DB, f model.CostFilter) ([]model.CostAllocation, error) {
	query := costSelect + ` WHERE 1=1`
	var args []any

	if f.Month != "" {
		query += ` AND c.month = ?`
		args = append(args, f.Month)
	}
	if f.DepartmentID > 0 {
		query += ` AND c.department_id = ?`
		args = append(args, f.DepartmentID)
	}
	query, args = paginate(query+` ORDER BY c.month DESC, d.name, c.id`, args, f.Page)

	var list []model.CostAllocation
	if err := db.SelectContext(ctx, &list, query, args...); err != nil {
		return nil, fmt.Errorf("listing cost allocations: %w", err)
	}
	return list, nil
}

// UpdateCostAllocation applies a patch and recomputes the cost per kg.
func UpdateCostAllocation(ctx context.Context, db *sqlx.DB, id int64, patch model.CostAllocationPatch) (*model.CostAllocation, error) {
	err := withTx(ctx, db, func(tx *sqlx.Tx) error {
		c, err := GetCostAllocation(ctx, tx, id)
		if err != nil {
			return err
		}
		if c == nil {
			return fmt.Errorf("updating cost allocation %d: %w", id, ErrNotFound)
		}
		if patch.DepartmentID != nil && *patch.DepartmentID != c.DepartmentID {
			if _, err := requireDepartment(ctx, tx, *patch.DepartmentID); err != nil {
				return err
			}
		}

		patch.Apply(c)

		_, err = tx.ExecContext(ctx,
			`UPDATE cost_allocations SET department_id = ?, month = ?, total_weight = ?,
			                             total_cost = ?, cost_per_kg = ?, updated_at = ?
			 WHERE id = ?`,
			c.DepartmentID, c.Month, c.TotalWeight, c.TotalCost, c.CostPerKg, now(), id,
		)
		if err != nil {
			return classify("updating cost allocation", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return GetCostAllocation(ctx, db, id)
}

// DeleteCostAllocation removes a cost allocation.
func DeleteCostAllocation(ctx context.Context, db *sqlx.DB, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM cost_allocations WHERE id = ?`, id)
	if err != nil {
		return classify("deleting cost allocation", err)
	}
	return mustAffect("deleting cost allocation", result)
}
