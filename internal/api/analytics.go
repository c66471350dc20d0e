package api

import (
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/pralnica/internal/model"
	"github.com/erazemk/pralnica/internal/store"
)

// AnalyticsHandler handles dashboard and report endpoints.
type AnalyticsHandler struct {
	DB *sqlx.DB

	// Now returns the current time. Nil means time.Now.
	Now func() time.Time
}

func (h *AnalyticsHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

func period(r *http.Request, fallback string) string {
	if p := r.URL.Query().Get("period"); p != "" {
		return p
	}
	return fallback
}

// DashboardStats handles GET /api/analytics/dashboard-stats.
func (h *AnalyticsHandler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := store.DashboardStats(r.Context(), h.DB, h.now())
	if err != nil {
		storeError(w, "compute dashboard stats", err)
		return
	}
	jsonResponse(w, http.StatusOK, stats)
}

// DepartmentUsage handles GET /api/analytics/department-usage.
func (h *AnalyticsHandler) DepartmentUsage(w http.ResponseWriter, r *http.Request) {
	usage, err := store.DepartmentUsage(r.Context(), h.DB, period(r, model.PeriodMonthly), h.now())
	if err != nil {
		storeError(w, "compute department usage", err)
		return
	}
	jsonResponse(w, http.StatusOK, orEmpty(usage))
}

// TaskCompletion handles GET /api/analytics/task-completion.
func (h *AnalyticsHandler) TaskCompletion(w http.ResponseWriter, r *http.Request) {
	points, err := store.TaskCompletion(r.Context(), h.DB, period(r, model.PeriodWeekly), h.now())
	if err != nil {
		storeError(w, "compute task completion", err)
		return
	}
	jsonResponse(w, http.StatusOK, points)
}

// InventoryUsage handles GET /api/analytics/inventory-usage.
func (h *AnalyticsHandler) InventoryUsage(w http.ResponseWriter, r *http.Request) {
	usage, err := store.InventoryUsage(r.Context(), h.DB)
	if err != nil {
		storeError(w, "compute inventory usage", err)
		return
	}
	jsonResponse(w, http.StatusOK, usage)
}

// Health handles GET /healthz.
func Health(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			jsonError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
