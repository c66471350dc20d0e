package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/pralnica/internal/model"
)

const userColumns = `id, username, password_hash, COALESCE(name, '') AS name,
	COALESCE(email, '') AS email, role, department_id, created_at, deleted_at`

// NewUser describes an account to create.
type NewUser struct {
	Username     string
	PasswordHash string
	Name         string
	Email        string
	Role         string
	DepartmentID *int64
}

// CreateUser creates a new user. Usernames are unique among active users.
func CreateUser(ctx context.Context, db *sqlx.DB, u NewUser) (*model.User, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, name, email, role, department_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.Username, u.PasswordHash, nullString(u.Name), nullString(u.Email), u.Role, u.DepartmentID, now(),
	)
	if err != nil {
		return nil, classify("creating user", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	return GetUser(ctx, db, id)
}

// GetUser returns a user by ID.
func GetUser(ctx context.Context, db sqlx.QueryerContext, id int64) (*model.User, error) {
	var u model.User
	err := sqlx.GetContext(ctx, db, &u, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return &u, nil
}

// GetUserByUsername returns the active user with username.
func GetUserByUsername(ctx context.Context, db *sqlx.DB, username string) (*model.User, error) {
	var u model.User
	err := db.GetContext(ctx, &u,
		`SELECT `+userColumns+` FROM users WHERE username = ? AND deleted_at IS NULL`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by username: %w", err)
	}
	return &u, nil
}

// ListUsers returns all non-deleted users.
func ListUsers(ctx context.Context, db *sqlx.DB, page model.Page) ([]model.User, error) {
	query, args := paginate(`SELECT `+userColumns+` FROM users WHERE deleted_at IS NULL ORDER BY id`, nil, page)

	var users []model.User
	if err := db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// UserPatch holds optional user profile updates.
type UserPatch struct {
	Name         *string `json:"name"`
	Email        *string `json:"email"`
	Role         *string `json:"role"`
	DepartmentID *int64  `json:"department_id"`
}

// UpdateUser applies a patch to an active user. A zero DepartmentID clears
// the department.
func UpdateUser(ctx context.Context, db *sqlx.DB, id int64, patch UserPatch) (*model.User, error) {
	err := withTx(ctx, db, func(tx *sqlx.Tx) error {
		u, err := GetUser(ctx, tx, id)
		if err != nil {
			return err
		}
		if u == nil || u.DeletedAt != nil {
			return fmt.Errorf("updating user %d: %w", id, ErrNotFound)
		}

		if patch.Name != nil {
			u.Name = *patch.Name
		}
		if patch.Email != nil {
			u.Email = *patch.Email
		}
		if patch.Role != nil {
			u.Role = *patch.Role
		}
		if patch.DepartmentID != nil {
			if *patch.DepartmentID == 0 {
				u.DepartmentID = nil
			} else {
				u.DepartmentID = patch.DepartmentID
			}
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE users SET name = ?, email = ?, role = ?, department_id = ? WHERE id = ?`,
			nullString(u.Name), nullString(u.Email), u.Role, u.DepartmentID, id,
		)
		if err != nil {
			return classify("updating user", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return GetUser(ctx, db, id)
}

// UpdateUserPassword updates a user's password hash.
func UpdateUserPassword(ctx context.Context, db *sqlx.DB, id int64, passwordHash string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ? AND deleted_at IS NULL`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return mustAffect("updating user password", result)
}

// DeleteUser soft-deletes a user.
func DeleteUser(ctx context.Context, db *sqlx.DB, id int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE users SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		now(), id,
	)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return mustAffect("deleting user", result)
}
