package api

import (
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/pralnica/internal/model"
	"github.com/erazemk/pralnica/internal/store"
)

// InventoryHandler handles inventory and stock alert endpoints.
type InventoryHandler struct {
	DB *sqlx.DB
}

// List handles GET /api/inventory.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		storeError(w, "list inventory", err)
		return
	}

	q := r.URL.Query()
	items, err := store.ListInventory(r.Context(), h.DB, model.InventoryFilter{
		Category: q.Get("category"),
		Status:   q.Get("status"),
		Page:     page,
	})
	if err != nil {
		storeError(w, "list inventory", err)
		return
	}
	jsonResponse(w, http.StatusOK, orEmpty(items))
}

// LowStock handles GET /api/inventory/low-stock.
func (h *InventoryHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		storeError(w, "list low stock", err)
		return
	}

	items, err := store.ListLowStock(r.Context(), h.DB, page)
	if err != nil {
		storeError(w, "list low stock", err)
		return
	}
	jsonResponse(w, http.StatusOK, orEmpty(items))
}

// Create handles POST /api/inventory.
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in model.InventoryItemInput
	if err := decodeJSON(w, r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := in.Validate(); err != nil {
		storeError(w, "create inventory item", err)
		return
	}

	item, err := store.CreateInventoryItem(r.Context(), h.DB, in)
	if err != nil {
		storeError(w, "create inventory item", err)
		return
	}

	slog.Info("inventory item created", "user", GetClaims(r.Context()).Username, "item", item.Name, "quantity", item.Quantity)
	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/inventory/{id}.
func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetInventoryItem(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, "get inventory item", err)
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Update handles PATCH and PUT /api/inventory/{id}. A quantity that drops to
// or below the minimum level raises a low-stock alert.
func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var patch model.InventoryItemPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := patch.Validate(); err != nil {
		storeError(w, "update inventory item", err)
		return
	}

	item, alert, err := store.UpdateInventoryItem(r.Context(), h.DB, id, patch)
	if err != nil {
		storeError(w, "update inventory item", err)
		return
	}

	user := GetClaims(r.Context()).Username
	slog.Info("inventory item updated", "user", user, "item", item.Name, "quantity", item.Quantity)
	if alert != nil {
		slog.Warn("low stock", "item", item.Name, "quantity", item.Quantity, "minimum", item.MinimumLevel, "alert_id", alert.ID)
	}
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/inventory/{id}.
func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := store.DeleteInventoryItem(r.Context(), h.DB, id); err != nil {
		storeError(w, "delete inventory item", err)
		return
	}

	slog.Info("inventory item deleted", "user", GetClaims(r.Context()).Username, "id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// ListAlerts handles GET /api/inventory/alerts.
func (h *InventoryHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	acknowledged, err := queryBool(r, "acknowledged")
	if err != nil {
		storeError(w, "list alerts", err)
		return
	}
	page, err := parsePage(r)
	if err != nil {
		storeError(w, "list alerts", err)
		return
	}

	alerts, err := store.ListAlerts(r.Context(), h.DB, acknowledged, page)
	if err != nil {
		storeError(w, "list alerts", err)
		return
	}
	jsonResponse(w, http.StatusOK, orEmpty(alerts))
}

// AcknowledgeAlert handles POST /api/inventory/alerts/{id}/acknowledge.
func (h *InventoryHandler) AcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid alert id")
		return
	}

	claims := GetClaims(r.Context())
	alert, err := store.AcknowledgeAlert(r.Context(), h.DB, id, actorID(claims))
	if err != nil {
		storeError(w, "acknowledge alert", err)
		return
	}

	slog.Info("alert acknowledged", "user", claims.Username, "alert_id", alert.ID, "item", alert.ItemName)
	jsonResponse(w, http.StatusOK, alert)
}
