package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is the full database schema. Derived columns (task_id, completed_at,
// last_restocked, next_maintenance, cost_per_kg) are maintained by the store
// package, not by triggers.
const schema = `
CREATE TABLE IF NOT EXISTS departments (
    id          INTEGER PRIMARY KEY,
    name        TEXT NOT NULL,
    description TEXT,
    location    TEXT,
    created_at  DATETIME NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_departments_name ON departments(name);

CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    name          TEXT,
    email         TEXT,
    role          TEXT NOT NULL DEFAULT 'staff' CHECK (role IN (
        'admin', 'manager', 'supervisor', 'staff', 'department',
        'inventory', 'technician', 'billing', 'reports')),
    department_id INTEGER REFERENCES departments(id),
    created_at    DATETIME NOT NULL,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS tasks (
    id            INTEGER PRIMARY KEY,
    task_id       TEXT NOT NULL,
    description   TEXT NOT NULL,
    requested_by  INTEGER REFERENCES users(id),
    assigned_to   INTEGER REFERENCES users(id),
    department_id INTEGER NOT NULL REFERENCES departments(id),
    status        TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'in_progress', 'completed', 'delayed')),
    priority      TEXT NOT NULL DEFAULT 'medium' CHECK (priority IN ('low', 'medium', 'high', 'critical')),
    weight_kg     REAL,
    due_date      DATETIME,
    notes         TEXT,
    created_at    DATETIME NOT NULL,
    updated_at    DATETIME NOT NULL,
    completed_at  DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_tasks_task_id ON tasks(task_id);
CREATE INDEX IF NOT EXISTS idx_tasks_department ON tasks(department_id);
CREATE INDEX IF NOT EXISTS idx_tasks_assigned ON tasks(assigned_to);
CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);

CREATE TABLE IF NOT EXISTS inventory_items (
    id             INTEGER PRIMARY KEY,
    name           TEXT NOT NULL,
    category       TEXT NOT NULL,
    unit           TEXT NOT NULL,
    quantity       REAL NOT NULL DEFAULT 0 CHECK (quantity >= 0),
    minimum_level  REAL NOT NULL DEFAULT 0 CHECK (minimum_level >= 0),
    unit_cost      REAL NOT NULL DEFAULT 0 CHECK (unit_cost >= 0),
    location       TEXT,
    supplier       TEXT,
    last_restocked DATETIME,
    notes          TEXT,
    created_at     DATETIME NOT NULL,
    updated_at     DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS inventory_alerts (
    id              INTEGER PRIMARY KEY,
    item_id         INTEGER NOT NULL REFERENCES inventory_items(id) ON DELETE CASCADE,
    alert_type      TEXT NOT NULL,
    message         TEXT NOT NULL,
    created_at      DATETIME NOT NULL,
    acknowledged    INTEGER NOT NULL DEFAULT 0,
    acknowledged_at DATETIME,
    acknowledged_by INTEGER REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS idx_inventory_alerts_item ON inventory_alerts(item_id);

CREATE TABLE IF NOT EXISTS equipment (
    id               INTEGER PRIMARY KEY,
    name             TEXT NOT NULL,
    type             TEXT NOT NULL,
    status           TEXT NOT NULL DEFAULT 'available' CHECK (status IN ('active', 'maintenance', 'available', 'in_queue')),
    last_maintenance DATETIME,
    next_maintenance DATETIME,
    time_remaining   INTEGER,
    notes            TEXT,
    image            BLOB,
    image_mime       TEXT,
    created_at       DATETIME NOT NULL,
    updated_at       DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS laundry_processes (
    id               INTEGER PRIMARY KEY,
    name             TEXT NOT NULL,
    description      TEXT,
    duration_minutes INTEGER NOT NULL CHECK (duration_minutes > 0),
    temperature      INTEGER NOT NULL,
    detergent_amount REAL NOT NULL DEFAULT 0,
    softener_amount  REAL NOT NULL DEFAULT 0,
    bleach_amount    REAL NOT NULL DEFAULT 0,
    is_active        INTEGER NOT NULL DEFAULT 1,
    created_at       DATETIME NOT NULL,
    updated_at       DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS cost_allocations (
    id            INTEGER PRIMARY KEY,
    department_id INTEGER NOT NULL REFERENCES departments(id),
    month         TEXT NOT NULL,
    total_weight  REAL NOT NULL DEFAULT 0 CHECK (total_weight >= 0),
    total_cost    REAL NOT NULL DEFAULT 0 CHECK (total_cost >= 0),
    cost_per_kg   REAL NOT NULL DEFAULT 0,
    created_at    DATETIME NOT NULL,
    updated_at    DATETIME NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_cost_allocations_department_month
    ON cost_allocations(department_id, month);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: speed up the dashboard's completed-today count.
	`CREATE INDEX IF NOT EXISTS idx_tasks_completed_at ON tasks(completed_at)`,
}

// EnsureSchema creates all tables and indexes if they don't already exist and
// applies pending migrations.
func EnsureSchema(db *sqlx.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
