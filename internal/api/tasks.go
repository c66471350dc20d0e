package api

import (
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/pralnica/internal/model"
	"github.com/erazemk/pralnica/internal/store"
)

// TasksHandler handles laundry task endpoints.
type TasksHandler struct {
	DB *sqlx.DB
}

// List handles GET /api/tasks.
func (h *TasksHandler) List(w http.ResponseWriter, r *http.Request) {
	f, err := taskFilter(r)
	if err != nil {
		storeError(w, "list tasks", err)
		return
	}
	h.list(w, r, f)
}

// ListByDepartment handles GET /api/tasks/department/{id}.
func (h *TasksHandler) ListByDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid department id")
		return
	}
	f, err := taskFilter(r)
	if err != nil {
		storeError(w, "list tasks", err)
		return
	}
	f.DepartmentID = id
	h.list(w, r, f)
}

// ListAssigned handles GET /api/tasks/assigned/{userID}.
func (h *TasksHandler) ListAssigned(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "userID")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	f, err := taskFilter(r)
	if err != nil {
		storeError(w, "list tasks", err)
		return
	}
	f.AssignedTo = id
	h.list(w, r, f)
}

func (h *TasksHandler) list(w http.ResponseWriter, r *http.Request, f model.TaskFilter) {
	tasks, err := store.ListTasks(r.Context(), h.DB, f)
	if err != nil {
		storeError(w, "list tasks", err)
		return
	}
	jsonResponse(w, http.StatusOK, orEmpty(tasks))
}

func taskFilter(r *http.Request) (model.TaskFilter, error) {
	var f model.TaskFilter
	q := r.URL.Query()

	f.Status = q.Get("status")
	if f.Status != "" && !model.ValidTaskStatus(f.Status) {
		return f, &model.ValidationError{Field: "status", Message: "invalid status"}
	}
	f.Priority = q.Get("priority")
	if f.Priority != "" && !model.ValidPriority(f.Priority) {
		return f, &model.ValidationError{Field: "priority", Message: "invalid priority"}
	}

	var err error
	if f.DepartmentID, err = queryID(r, "department_id"); err != nil {
		return f, err
	}
	if f.AssignedTo, err = queryID(r, "assigned_to"); err != nil {
		return f, err
	}
	f.Page, err = parsePage(r)
	return f, err
}

// CountByStatus handles GET /api/tasks/count-by-status.
func (h *TasksHandler) CountByStatus(w http.ResponseWriter, r *http.Request) {
	counts, err := store.CountTasksByStatus(r.Context(), h.DB)
	if err != nil {
		storeError(w, "count tasks", err)
		return
	}
	jsonResponse(w, http.StatusOK, counts)
}

// Create handles POST /api/tasks. Users bound to a department create tasks
// for it unless they name another one.
func (h *TasksHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var in model.TaskInput
	if err := decodeJSON(w, r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if in.DepartmentID == 0 && claims.DepartmentID != nil {
		in.DepartmentID = *claims.DepartmentID
	}
	if err := in.Validate(); err != nil {
		storeError(w, "create task", err)
		return
	}
	if in.AssignedTo != nil && !model.CanAccess(claims.Role, model.FeatureTaskAssign) {
		jsonError(w, http.StatusForbidden, "insufficient permissions to assign tasks")
		return
	}

	task, err := store.CreateTask(r.Context(), h.DB, in, actorID(claims))
	if err != nil {
		storeError(w, "create task", err)
		return
	}

	slog.Info("task created", "user", claims.Username, "task_id", task.TaskID, "department", task.DepartmentName)
	jsonResponse(w, http.StatusCreated, task)
}

// Get handles GET /api/tasks/{id}.
func (h *TasksHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	task, err := store.GetTask(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, "get task", err)
		return
	}
	if task == nil {
		jsonError(w, http.StatusNotFound, "task not found")
		return
	}
	jsonResponse(w, http.StatusOK, task)
}

// Update handles PATCH and PUT /api/tasks/{id}. Changing the assignee
// requires the task_assign feature.
func (h *TasksHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	var patch model.TaskPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := patch.Validate(); err != nil {
		storeError(w, "update task", err)
		return
	}

	claims := GetClaims(r.Context())
	var before string
	task, err := store.UpdateTask(r.Context(), h.DB, id, patch, func(t *model.Task) error {
		if patch.ChangesAssignment(t) && !model.CanAccess(claims.Role, model.FeatureTaskAssign) {
			return errForbidden
		}
		before = t.Status
		return nil
	})
	if err != nil {
		storeError(w, "update task", err)
		return
	}

	if before != task.Status {
		slog.Info("task status changed", "user", claims.Username, "task_id", task.TaskID, "from", before, "to", task.Status)
	} else {
		slog.Info("task updated", "user", claims.Username, "task_id", task.TaskID)
	}
	jsonResponse(w, http.StatusOK, task)
}

// Delete handles DELETE /api/tasks/{id}.
func (h *TasksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	if err := store.DeleteTask(r.Context(), h.DB, id); err != nil {
		storeError(w, "delete task", err)
		return
	}

	slog.Info("task deleted", "user", GetClaims(r.Context()).Username, "id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "task deleted"})
}
