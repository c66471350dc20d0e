package api

import (
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/pralnica/internal/model"
	"github.com/erazemk/pralnica/internal/store"
)

// ProcessesHandler handles laundry process endpoints.
type ProcessesHandler struct {
	DB *sqlx.DB
}

// List handles GET /api/laundry-processes.
func (h *ProcessesHandler) List(w http.ResponseWriter, r *http.Request) {
	active, err := queryBool(r, "active")
	if err != nil {
		storeError(w, "list processes", err)
		return
	}
	page, err := parsePage(r)
	if err != nil {
		storeError(w, "list processes", err)
		return
	}

	processes, err := store.ListProcesses(r.Context(), h.DB, active, page)
	if err != nil {
		storeError(w, "list processes", err)
		return
	}
	jsonResponse(w, http.StatusOK, orEmpty(processes))
}

// Create handles POST /api/laundry-processes.
func (h *ProcessesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in model.LaundryProcessInput
	if err := decodeJSON(w, r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := in.Validate(); err != nil {
		storeError(w, "create process", err)
		return
	}

	p, err := store.CreateProcess(r.Context(), h.DB, in)
	if err != nil {
		storeError(w, "create process", err)
		return
	}

	slog.Info("process created", "user", GetClaims(r.Context()).Username, "process", p.Name)
	jsonResponse(w, http.StatusCreated, p)
}

// Get handles GET /api/laundry-processes/{id}.
func (h *ProcessesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid process id")
		return
	}

	p, err := store.GetProcess(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, "get process", err)
		return
	}
	if p == nil {
		jsonError(w, http.StatusNotFound, "process not found")
		return
	}
	jsonResponse(w, http.StatusOK, p)
}

// Update handles PATCH and PUT /api/laundry-processes/{id}.
func (h *ProcessesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid process id")
		return
	}

	var patch model.LaundryProcessPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := patch.Validate(); err != nil {
		storeError(w, "update process", err)
		return
	}

	p, err := store.UpdateProcess(r.Context(), h.DB, id, patch)
	if err != nil {
		storeError(w, "update process", err)
		return
	}

	slog.Info("process updated", "user", GetClaims(r.Context()).Username, "process", p.Name, "active", p.IsActive)
	jsonResponse(w, http.StatusOK, p)
}

// Delete handles DELETE /api/laundry-processes/{id}.
func (h *ProcessesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid process id")
		return
	}

	if err := store.DeleteProcess(r.Context(), h.DB, id); err != nil {
		storeError(w, "delete process", err)
		return
	}

	slog.Info("process deleted", "user", GetClaims(r.Context()).Username, "id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "process deleted"})
}
