package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/pralnica/internal/model"
)

// MaxTaskIDAttempts bounds how often a generated task ID is regenerated after
// losing a race against a concurrent insert.
const MaxTaskIDAttempts = 5

// errTaskIDTaken marks a unique violation on a generated task ID.
var errTaskIDTaken = errors.New("generated task id already taken")

// generateTaskID picks the next task ID for a prefix inside the insert
// transaction.
var generateTaskID = nextTaskID

const taskSelect = `SELECT t.id, t.task_id, t.description, t.requested_by, t.assigned_to,
	t.department_id, t.status, t.priority, t.weight_kg, t.due_date,
	COALESCE(t.notes, '') AS notes, t.created_at, t.updated_at, t.completed_at,
	d.name AS department_name,
	COALESCE(r.name, r.username, '') AS requester_name,
	COALESCE(a.name, a.username, '') AS assignee_name
	FROM tasks t
	JOIN departments d ON d.id = t.department_id
	LEFT JOIN users r ON r.id = t.requested_by
	LEFT JOIN users a ON a.id = t.assigned_to`

// CreateTask inserts a task requested by requestedBy. When in.TaskID is empty
// an ID of the form YY-DP-NNNN is generated; a collision with a concurrent
// insert is retried with a fresh ID. A duplicate caller-supplied ID is an
// ErrConflict.
func CreateTask(ctx context.Context, db *sqlx.DB, in model.TaskInput, requestedBy *int64) (*model.Task, error) {
	generated := in.TaskID == ""

	var id int64
	for attempt := 1; ; attempt++ {
		var err error
		id, err = insertTask(ctx, db, in, requestedBy)
		if err == nil {
			break
		}
		if generated && errors.Is(err, errTaskIDTaken) && attempt < MaxTaskIDAttempts {
			slog.Warn("task id collision, regenerating", "attempt", attempt, "department_id", in.DepartmentID)
			continue
		}
		if errors.Is(err, errTaskIDTaken) {
			return nil, fmt.Errorf("creating task after %d attempts: %w", attempt, ErrConflict)
		}
		return nil, err
	}

	return GetTask(ctx, db, id)
}

func insertTask(ctx context.Context, db *sqlx.DB, in model.TaskInput, requestedBy *int64) (int64, error) {
	var id int64
	err := withTx(ctx, db, func(tx *sqlx.Tx) error {
		dept, err := requireDepartment(ctx, tx, in.DepartmentID)
		if err != nil {
			return err
		}
		if in.AssignedTo != nil {
			if err := requireUser(ctx, tx, "assigned_to", *in.AssignedTo); err != nil {
				return err
			}
		}

		ts := now()
		taskID := in.TaskID
		if taskID == "" {
			taskID, err = generateTaskID(ctx, tx, model.TaskIDPrefix(ts.Year(), dept.Name))
			if err != nil {
				return err
			}
		}

		t := &model.Task{Status: model.TaskStatusPending}
		t.SetStatus(in.Status, ts)

		result, err := tx.ExecContext(ctx,
			`INSERT INTO tasks (task_id, description, requested_by, assigned_to, department_id,
			                    status, priority, weight_kg, due_date, notes,
			                    created_at, updated_at, completed_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			taskID, in.Description, requestedBy, in.AssignedTo, in.DepartmentID,
			t.Status, in.Priority, in.WeightKg, in.DueDate, nullString(in.Notes),
			ts, ts, t.CompletedAt,
		)
		if isUniqueViolation(err) {
			if in.TaskID == "" {
				return fmt.Errorf("inserting task %s: %w", taskID, errTaskIDTaken)
			}
			return fmt.Errorf("task id %s already exists: %w", taskID, ErrConflict)
		}
		if err != nil {
			return classify("creating task", err)
		}

		id, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("getting task id: %w", err)
		}
		return nil
	})
	return id, err
}

// nextTaskID scans the existing IDs carrying prefix and returns the one after
// the highest sequence.
func nextTaskID(ctx context.Context, tx *sqlx.Tx, prefix string) (string, error) {
	var existing []string
	err := tx.SelectContext(ctx, &existing,
		`SELECT task_id FROM tasks WHERE substr(task_id, 1, ?) = ?`, utf8.RuneCountInString(prefix), prefix)
	if err != nil {
		return "", fmt.Errorf("scanning task ids: %w", err)
	}
	return model.NextTaskID(prefix, existing), nil
}

// GetTask returns a task by ID.
func GetTask(ctx context.Context, db sqlx.QueryerContext, id int64) (*model.Task, error) {
	var t model.Task
	err := sqlx.GetContext(ctx, db, &t, taskSelect+` WHERE t.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting task: %w", err)
	}
	return &t, nil
}

// ListTasks returns tasks matching the filter, newest first.
func ListTasks(ctx context.Context, db *sqlx.DB, f model.TaskFilter) ([]model.Task, error) {
	query := taskSelect + ` WHERE 1=1`
	var args []any

	if f.Status != "" {
		query += ` AND t.status = ?`
		args = append(args, f.Status)
	}
	if f.Priority != "" {
		query += ` AND t.priority = ?`
		args = append(args, f.Priority)
	}
	if f.DepartmentID > 0 {
		query += ` AND t.department_id = ?`
		args = append(args, f.DepartmentID)
	}
	if f.AssignedTo > 0 {
		query += ` AND t.assigned_to = ?`
		args = append(args, f.AssignedTo)
	}

	query, args = paginate(query+` ORDER BY t.created_at DESC, t.id DESC`, args, f.Page)

	var tasks []model.Task
	if err := db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

// CountTasksByStatus returns the number of tasks per status. Every status is
// present in the result.
func CountTasksByStatus(ctx context.Context, db *sqlx.DB) (map[string]int, error) {
	var rows []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}
	if err := db.SelectContext(ctx, &rows, `SELECT status, COUNT(*) AS count FROM tasks GROUP BY status`); err != nil {
		return nil, fmt.Errorf("counting tasks by status: %w", err)
	}

	counts := make(map[string]int, len(model.TaskStatuses))
	for _, s := range model.TaskStatuses {
		counts[s] = 0
	}
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

// UpdateTask applies a patch to a task in one transaction. check, when not
// nil, sees the stored task before the patch and can veto the update.
func UpdateTask(ctx context.Context, db *sqlx.DB, id int64, patch model.TaskPatch, check func(*model.Task) error) (*model.Task, error) {
	err := withTx(ctx, db, func(tx *sqlx.Tx) error {
		t, err := GetTask(ctx, tx, id)
		if err != nil {
			return err
		}
		if t == nil {
			return fmt.Errorf("updating task %d: %w", id, ErrNotFound)
		}
		if check != nil {
			if err := check(t); err != nil {
				return err
			}
		}

		if patch.DepartmentID != nil && *patch.DepartmentID != t.DepartmentID {
			if _, err := requireDepartment(ctx, tx, *patch.DepartmentID); err != nil {
				return err
			}
		}
		if patch.AssignedTo != nil && *patch.AssignedTo != 0 {
			if err := requireUser(ctx, tx, "assigned_to", *patch.AssignedTo); err != nil {
				return err
			}
		}

		ts := now()
		patch.Apply(t, ts)

		_, err = tx.ExecContext(ctx,
			`UPDATE tasks SET description = ?, assigned_to = ?, department_id = ?, status = ?,
			                  priority = ?, weight_kg = ?, due_date = ?, notes = ?,
			                  completed_at = ?, updated_at = ?
			 WHERE id = ?`,
			t.Description, t.AssignedTo, t.DepartmentID, t.Status,
			t.Priority, t.WeightKg, t.DueDate, nullString(t.Notes),
			t.CompletedAt, ts, id,
		)
		if err != nil {
			return classify("updating task", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return GetTask(ctx, db, id)
}

// DeleteTask permanently removes a task.
func DeleteTask(ctx context.Context, db *sqlx.DB, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	return mustAffect("deleting task", result)
}

// requireDepartment loads a department referenced by a request.
func requireDepartment(ctx context.Context, q sqlx.QueryerContext, id int64) (*model.Department, error) {
	d, err := GetDepartment(ctx, q, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, &model.ValidationError{Field: "department_id", Message: "department not found"}
	}
	return d, nil
}

// requireUser checks that an active user referenced by field exists.
func requireUser(ctx context.Context, q sqlx.QueryerContext, field string, id int64) error {
	u, err := GetUser(ctx, q, id)
	if err != nil {
		return err
	}
	if u == nil || u.DeletedAt != nil {
		return &model.ValidationError{Field: field, Message: "user not found"}
	}
	return nil
}
