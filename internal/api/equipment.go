package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/pralnica/internal/imaging"
	"github.com/erazemk/pralnica/internal/model"
	"github.com/erazemk/pralnica/internal/store"
)

// EquipmentHandler handles equipment endpoints.
type EquipmentHandler struct {
	DB *sqlx.DB
}

// List handles GET /api/equipment.
func (h *EquipmentHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		storeError(w, "list equipment", err)
		return
	}

	q := r.URL.Query()
	f := model.EquipmentFilter{
		Status:      q.Get("status"),
		Maintenance: q.Get("maintenance"),
		Page:        page,
	}
	if f.Status != "" && !model.ValidEquipmentStatus(f.Status) {
		jsonError(w, http.StatusBadRequest, "invalid status")
		return
	}
	switch f.Maintenance {
	case "", model.MaintenanceOverdue, model.MaintenanceUpcoming, model.MaintenanceOK, model.MaintenanceUnscheduled:
	default:
		jsonError(w, http.StatusBadRequest, "invalid maintenance status")
		return
	}

	equipment, err := store.ListEquipment(r.Context(), h.DB, f)
	if err != nil {
		storeError(w, "list equipment", err)
		return
	}
	jsonResponse(w, http.StatusOK, orEmpty(equipment))
}

// Create handles POST /api/equipment.
func (h *EquipmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in model.EquipmentInput
	if err := decodeJSON(w, r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := in.Validate(); err != nil {
		storeError(w, "create equipment", err)
		return
	}

	e, err := store.CreateEquipment(r.Context(), h.DB, in)
	if err != nil {
		storeError(w, "create equipment", err)
		return
	}

	slog.Info("equipment created", "user", GetClaims(r.Context()).Username, "equipment", e.Name, "type", e.Type)
	jsonResponse(w, http.StatusCreated, e)
}

// Get handles GET /api/equipment/{id}.
func (h *EquipmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid equipment id")
		return
	}

	e, err := store.GetEquipment(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, "get equipment", err)
		return
	}
	if e == nil {
		jsonError(w, http.StatusNotFound, "equipment not found")
		return
	}
	jsonResponse(w, http.StatusOK, e)
}

// Update handles PATCH and PUT /api/equipment/{id}.
func (h *EquipmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid equipment id")
		return
	}

	var patch model.EquipmentPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := patch.Validate(); err != nil {
		storeError(w, "update equipment", err)
		return
	}

	e, err := store.UpdateEquipment(r.Context(), h.DB, id, patch)
	if err != nil {
		storeError(w, "update equipment", err)
		return
	}

	slog.Info("equipment updated", "user", GetClaims(r.Context()).Username, "equipment", e.Name,
		"status", e.Status, "maintenance", e.MaintenanceStatus)
	jsonResponse(w, http.StatusOK, e)
}

// Delete handles DELETE /api/equipment/{id}.
func (h *EquipmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid equipment id")
		return
	}

	if err := store.DeleteEquipment(r.Context(), h.DB, id); err != nil {
		storeError(w, "delete equipment", err)
		return
	}

	slog.Info("equipment deleted", "user", GetClaims(r.Context()).Username, "id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "equipment deleted"})
}

// UploadImage handles PUT /api/equipment/{id}/image. The photo is re-encoded
// and downscaled before it is stored.
func (h *EquipmentHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid equipment id")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes)
	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	photo, err := imaging.ProcessPhoto(file, imaging.MaxDimension)
	if errors.Is(err, imaging.ErrUnsupported) {
		jsonError(w, http.StatusBadRequest, "image must be JPEG, PNG, or WebP")
		return
	}
	if err != nil {
		slog.Warn("processing equipment photo", "equipment_id", id, "error", err)
		jsonError(w, http.StatusBadRequest, "invalid image")
		return
	}

	if err := store.SetEquipmentImage(r.Context(), h.DB, id, photo.Data, photo.MIME); err != nil {
		storeError(w, "save image", err)
		return
	}

	slog.Info("equipment photo uploaded", "user", GetClaims(r.Context()).Username, "equipment_id", id,
		"width", photo.Width, "height", photo.Height, "bytes", len(photo.Data))
	jsonResponse(w, http.StatusOK, map[string]string{"message": "image uploaded"})
}

// GetImage handles GET /api/equipment/{id}/image.
func (h *EquipmentHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid equipment id")
		return
	}

	data, mime, err := store.GetEquipmentImage(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, "get image", err)
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if _, err := w.Write(data); err != nil {
		slog.Debug("writing image", "error", err)
	}
}
