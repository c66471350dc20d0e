package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/pralnica/internal/model"
)

const departmentColumns = `id, name, COALESCE(description, '') AS description,
	COALESCE(location, '') AS location, created_at`

// CreateDepartment creates a new department. Names are unique.
func CreateDepartment(ctx context.Context, db *sqlx.DB, in model.DepartmentInput) (*model.Department, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO departments (name, description, location, created_at) VALUES (?, ?, ?, ?)`,
		in.Name, nullString(in.Description), nullString(in.Location), now(),
	)
	if err != nil {
		return nil, classify("creating department", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting department id: %w", err)
	}

	return GetDepartment(ctx, db, id)
}

// GetDepartment returns a department by ID.
func GetDepartment(ctx context.Context, db sqlx.QueryerContext, id int64) (*model.Department, error) {
	var d model.Department
	err := sqlx.GetContext(ctx, db, &d, `SELECT `+departmentColumns+` FROM departments WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting department: %w", err)
	}
	return &d, nil
}

// ListDepartments returns departments ordered by name.
func ListDepartments(ctx context.Context, db *sqlx.DB, page model.Page) ([]model.Department, error) {
	query, args := paginate(`SELECT `+departmentColumns+` FROM departments ORDER BY name`, nil, page)

	var departments []model.Department
	if err := db.SelectContext(ctx, &departments, query, args...); err != nil {
		return nil, fmt.Errorf("listing departments: %w", err)
	}
	return departments, nil
}

// UpdateDepartment applies a patch to a department.
func UpdateDepartment(ctx context.Context, db *sqlx.DB, id int64, patch model.DepartmentPatch) (*model.Department, error) {
	err := withTx(ctx, db, func(tx *sqlx.Tx) error {
		d, err := GetDepartment(ctx, tx, id)
		if err != nil {
			return err
		}
		if d == nil {
			return fmt.Errorf("updating department %d: %w", id, ErrNotFound)
		}
		if err := patch.Apply(d); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE departments SET name = ?, description = ?, location = ? WHERE id = ?`,
			d.Name, nullString(d.Description), nullString(d.Location), id,
		)
		if err != nil {
			return classify("updating department", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return GetDepartment(ctx, db, id)
}

// DeleteDepartment removes a department. Departments still referenced by
// tasks, users or cost allocations cannot be deleted.
func DeleteDepartment(ctx context.Context, db *sqlx.DB, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM departments WHERE id = ?`, id)
	if err != nil {
		return classify("deleting department", err)
	}
	return mustAffect("deleting department", result)
}
