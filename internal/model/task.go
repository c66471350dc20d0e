package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Task is a laundry work order requested by a department.
type Task struct {
	ID           int64      `json:"id" db:"id"`
	TaskID       string     `json:"task_id" db:"task_id"`
	Description  string     `json:"description" db:"description"`
	RequestedBy  *int64     `json:"requested_by,omitempty" db:"requested_by"`
	AssignedTo   *int64     `json:"assigned_to,omitempty" db:"assigned_to"`
	DepartmentID int64      `json:"department_id" db:"department_id"`
	Status       string     `json:"status" db:"status"`
	Priority     string     `json:"priority" db:"priority"`
	WeightKg     *float64   `json:"weight_kg,omitempty" db:"weight_kg"`
	DueDate      *time.Time `json:"due_date,omitempty" db:"due_date"`
	Notes        string     `json:"notes,omitempty" db:"notes"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty" db:"completed_at"`

	// Joined fields (not always populated).
	DepartmentName string `json:"department_name,omitempty" db:"department_name"`
	RequesterName  string `json:"requester_name,omitempty" db:"requester_name"`
	AssigneeName   string `json:"assignee_name,omitempty" db:"assignee_name"`
}

// Task statuses.
const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
	TaskStatusDelayed    = "delayed"
)

// TaskStatuses lists every task status in display order.
var TaskStatuses = []string{TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusDelayed}

// Task priorities.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// ValidTaskStatus reports whether s is a known task status.
func ValidTaskStatus(s string) bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusDelayed:
		return true
	}
	return false
}

// ValidPriority reports whether p is a known priority.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// SetStatus moves the task to status. Entering completed from any other state
// stamps CompletedAt; leaving completed keeps the stamp.
func (t *Task) SetStatus(status string, now time.Time) {
	if status == TaskStatusCompleted && t.Status != TaskStatusCompleted {
		stamp := now
		t.CompletedAt = &stamp
	}
	t.Status = status
}

// TaskInput is the body of a task creation request.
type TaskInput struct {
	TaskID       string     `json:"task_id"`
	Description  string     `json:"description"`
	AssignedTo   *int64     `json:"assigned_to"`
	DepartmentID int64      `json:"department_id"`
	Status       string     `json:"status"`
	Priority     string     `json:"priority"`
	WeightKg     *float64   `json:"weight_kg"`
	DueDate      *time.Time `json:"due_date"`
	Notes        string     `json:"notes"`
}

// Validate checks the input and fills defaults.
func (in *TaskInput) Validate() error {
	if err := required("description", in.Description); err != nil {
		return err
	}
	if in.DepartmentID <= 0 {
		return invalid("department_id", "department_id required")
	}
	if in.Status == "" {
		in.Status = TaskStatusPending
	}
	if !ValidTaskStatus(in.Status) {
		return invalid("status", "invalid status")
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if !ValidPriority(in.Priority) {
		return invalid("priority", "invalid priority")
	}
	if in.WeightKg != nil && *in.WeightKg < 0 {
		return invalid("weight_kg", "weight_kg must not be negative")
	}
	in.TaskID = strings.TrimSpace(in.TaskID)
	return nil
}

// TaskPatch holds optional task field updates. AssignedTo set to 0 clears the
// assignment. TaskID is immutable and not part of the patch.
type TaskPatch struct {
	Description  *string    `json:"description"`
	AssignedTo   *int64     `json:"assigned_to"`
	DepartmentID *int64     `json:"department_id"`
	Status       *string    `json:"status"`
	Priority     *string    `json:"priority"`
	WeightKg     *float64   `json:"weight_kg"`
	DueDate      *time.Time `json:"due_date"`
	Notes        *string    `json:"notes"`
}

// Validate checks the patch without applying it.
func (p *TaskPatch) Validate() error {
	if p.Description != nil {
		if err := required("description", *p.Description); err != nil {
			return err
		}
	}
	if p.DepartmentID != nil && *p.DepartmentID <= 0 {
		return invalid("department_id", "invalid department_id")
	}
	if p.Status != nil && !ValidTaskStatus(*p.Status) {
		return invalid("status", "invalid status")
	}
	if p.Priority != nil && !ValidPriority(*p.Priority) {
		return invalid("priority", "invalid priority")
	}
	if p.WeightKg != nil && *p.WeightKg < 0 {
		return invalid("weight_kg", "weight_kg must not be negative")
	}
	return nil
}

// Apply writes the patch into t, stamping completion at now when needed.
func (p *TaskPatch) Apply(t *Task, now time.Time) {
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.AssignedTo != nil {
		if *p.AssignedTo == 0 {
			t.AssignedTo = nil
		} else {
			id := *p.AssignedTo
			t.AssignedTo = &id
		}
	}
	if p.DepartmentID != nil {
		t.DepartmentID = *p.DepartmentID
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.WeightKg != nil {
		w := *p.WeightKg
		t.WeightKg = &w
	}
	if p.DueDate != nil {
		d := *p.DueDate
		t.DueDate = &d
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	if p.Status != nil {
		t.SetStatus(*p.Status, now)
	}
}

// ChangesAssignment reports whether applying the patch would change who the
// task is assigned to.
func (p *TaskPatch) ChangesAssignment(t *Task) bool {
	if p.AssignedTo == nil {
		return false
	}
	if *p.AssignedTo == 0 {
		return t.AssignedTo != nil
	}
	return t.AssignedTo == nil || *t.AssignedTo != *p.AssignedTo
}

// TaskFilter narrows task list queries. Zero values are ignored.
type TaskFilter struct {
	Status       string
	Priority     string
	DepartmentID int64
	AssignedTo   int64
	Page         Page
}

// UnknownDepartmentPrefix is used in generated task IDs when the department
// cannot be resolved.
const UnknownDepartmentPrefix = "XX"

// TaskIDPrefix returns the "{YY}-{DP}-" prefix shared by all generated task
// IDs of a department in a year.
func TaskIDPrefix(year int, departmentName string) string {
	return fmt.Sprintf("%02d-%s-", year%100, DepartmentPrefix(departmentName))
}

// DepartmentPrefix returns the first two letters or digits of name,
// upper-cased. Names with fewer than two are padded with X; an empty name
// yields XX.
func DepartmentPrefix(name string) string {
	var b strings.Builder
	n := 0
	for _, r := range name {
		if n == 2 {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
			n++
		}
	}
	for ; n < 2; n++ {
		b.WriteByte('X')
	}
	return b.String()
}

// FormatTaskID joins a prefix and a sequence number, zero-padding the
// sequence to four digits.
func FormatTaskID(prefix string, seq int) string {
	return fmt.Sprintf("%s%04d", prefix, seq)
}

// TaskIDSequence extracts the numeric suffix of id if it carries prefix.
func TaskIDSequence(id, prefix string) (int, bool) {
	suffix, ok := strings.CutPrefix(id, prefix)
	if !ok || suffix == "" {
		return 0, false
	}
	n, err := strconv.Atoi(suffix)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// NextTaskID returns the next free ID for prefix given the existing IDs.
func NextTaskID(prefix string, existing []string) string {
	last := 0
	for _, id := range existing {
		if n, ok := TaskIDSequence(id, prefix); ok && n > last {
			last = n
		}
	}
	return FormatTaskID(prefix, last+1)
}
