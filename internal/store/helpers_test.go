package store

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/pralnica/internal/model"
)

// setClock pins the store clock for the duration of a test.
func setClock(t *testing.T, ts time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return ts }
	t.Cleanup(func() { now = prev })
}

func mustDepartment(t *testing.T, db *sqlx.DB, name string) *model.Department {
	t.Helper()
	d, err := CreateDepartment(context.Background(), db, model.DepartmentInput{Name: name})
	if err != nil {
		t.Fatalf("CreateDepartment(%q): %v", name, err)
	}
	return d
}

func mustUser(t *testing.T, db *sqlx.DB, username, role string) *model.User {
	t.Helper()
	u, err := CreateUser(context.Background(), db, NewUser{Username: username, PasswordHash: "hash", Role: role})
	if err != nil {
		t.Fatalf("CreateUser(%q): %v", username, err)
	}
	return u
}

func mustTask(t *testing.T, db *sqlx.DB, in model.TaskInput) *model.Task {
	t.Helper()
	if err := in.Validate(); err != nil {
		t.Fatalf("TaskInput.Validate: %v", err)
	}
	task, err := CreateTask(context.Background(), db, in, nil)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	return task
}

func ptr[T any](v T) *T { return &v }
