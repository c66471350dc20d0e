package api

import (
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/pralnica/internal/model"
	"github.com/erazemk/pralnica/internal/store"
)

// DepartmentsHandler handles department endpoints.
type DepartmentsHandler struct {
	DB *sqlx.DB
}

// List handles GET /api/departments.
func (h *DepartmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		storeError(w, "list departments", err)
		return
	}

	departments, err := store.ListDepartments(r.Context(), h.DB, page)
	if err != nil {
		storeError(w, "list departments", err)
		return
	}
	jsonResponse(w, http.StatusOK, orEmpty(departments))
}

// Create handles POST /api/departments.
func (h *DepartmentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in model.DepartmentInput
	if err := decodeJSON(w, r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := in.Validate(); err != nil {
		storeError(w, "create department", err)
		return
	}

	d, err := store.CreateDepartment(r.Context(), h.DB, in)
	if err != nil {
		storeError(w, "create department", err)
		return
	}

	slog.Info("department created", "user", GetClaims(r.Context()).Username, "department", d.Name)
	jsonResponse(w, http.StatusCreated, d)
}

// Get handles GET /api/departments/{id}.
func (h *DepartmentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid department id")
		return
	}

	d, err := store.GetDepartment(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, "get department", err)
		return
	}
	if d == nil {
		jsonError(w, http.StatusNotFound, "department not found")
		return
	}
	jsonResponse(w, http.StatusOK, d)
}

// Update handles PATCH and PUT /api/departments/{id}.
func (h *DepartmentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid department id")
		return
	}

	var patch model.DepartmentPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	d, err := store.UpdateDepartment(r.Context(), h.DB, id, patch)
	if err != nil {
		storeError(w, "update department", err)
		return
	}

	slog.Info("department updated", "user", GetClaims(r.Context()).Username, "department", d.Name)
	jsonResponse(w, http.StatusOK, d)
}

// Delete handles DELETE /api/departments/{id}.
func (h *DepartmentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid department id")
		return
	}

	if err := store.DeleteDepartment(r.Context(), h.DB, id); err != nil {
		storeError(w, "delete department", err)
		return
	}

	slog.Info("department deleted", "user", GetClaims(r.Context()).Username, "department_id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "department deleted"})
}
