package api

import (
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/pralnica/internal/model"
	"github.com/erazemk/pralnica/internal/store"
)

// CostsHandler handles cost allocation endpoints.
type CostsHandler struct {
	DB *sqlx.DB
}

// List handles GET /api/cost-allocations.
func (h *CostsHandler) List(w http.ResponseWriter, r *http.Request) {
	f := model.CostFilter{Month: r.URL.Query().Get("month")}
	if f.Month != "" && !model.ValidMonth(f.Month) {
		jsonError(w, http.StatusBadRequest, "month must be YYYY-MM")
		return
	}

	var err error
	if f.DepartmentID, err = queryID(r, "department_id"); err != nil {
		storeError(w, "list cost allocations", err)
		return
	}
	if f.Page, err = parsePage(r); err != nil {
		storeError(w, "list cost allocations", err)
		return
	}

	list, err := store.ListCostAllocations(r.Context(), h.DB, f)
	if err != nil {
		storeError(w, "list cost allocations", err)
		return
	}
	jsonResponse(w, http.StatusOK, orEmpty(list))
}

// Create handles POST /api/cost-allocations. Any supplied cost_per_kg is
// ignored and recomputed from the totals.
func (h *CostsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in model.CostAllocationInput
	if err := decodeJSON(w, r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := in.Validate(); err != nil {
		storeError(w, "create cost allocation", err)
		return
	}

	c, err := store.CreateCostAllocation(r.Context(), h.DB, in)
	if err != nil {
		storeError(w, "create cost allocation", err)
		return
	}

	slog.Info("cost allocation created", "user", GetClaims(r.Context()).Username,
		"department", c.DepartmentName, "month", c.Month, "total_cost", c.TotalCost)
	jsonResponse(w, http.StatusCreated, c)
}

// Get handles GET /api/cost-allocations/{id}.
func (h *CostsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid cost allocation id")
		return
	}

	c, err := store.GetCostAllocation(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, "get cost allocation", err)
		return
	}
	if c == nil {
		jsonError(w, http.StatusNotFound, "cost allocation not found")
		return
	}
	jsonResponse(w, http.StatusOK, c)
}

// Update handles PATCH and PUT /api/cost-allocations/{id}.
func (h *CostsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid cost allocation id")
		return
	}

	var patch model.CostAllocationPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := patch.Validate(); err != nil {
		storeError(w, "update cost allocation", err)
		return
	}

	c, err := store.UpdateCostAllocation(r.Context(), h.DB, id, patch)
	if err != nil {
		storeError(w, "update cost allocation", err)
		return
	}

	slog.Info("cost allocation updated", "user", GetClaims(r.Context()).Username,
		"department", c.DepartmentName, "month", c.Month, "cost_per_kg", c.CostPerKg)
	jsonResponse(w, http.StatusOK, c)
}

// Delete handles DELETE /api/cost-allocations/{id}.
func (h *CostsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid cost allocation id")
		return
	}

	if err := store.DeleteCostAllocation(r.Context(), h.DB, id); err != nil {
		storeError(w, "delete cost allocation", err)
		return
	}

	slog.Info("cost allocation deleted", "user", GetClaims(r.Context()).Username, "id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "cost allocation deleted"})
}
