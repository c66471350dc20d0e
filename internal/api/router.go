package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"

	"github.com/erazemk/pralnica/internal/auth"
	"github.com/erazemk/pralnica/internal/model"
)

// Options configures the API router.
type Options struct {
	// Signer issues and verifies session tokens. Required in jwt mode.
	Signer *auth.Signer

	// AuthMode is auth.ModeJWT or auth.ModeMock. Empty means jwt.
	AuthMode string
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sqlx.DB, opts Options) http.Handler {
	authHandler := &AuthHandler{DB: db, Signer: opts.Signer}
	usersHandler := &UsersHandler{DB: db}
	departmentsHandler := &DepartmentsHandler{DB: db}
	tasksHandler := &TasksHandler{DB: db}
	inventoryHandler := &InventoryHandler{DB: db}
	equipmentHandler := &EquipmentHandler{DB: db}
	processesHandler := &ProcessesHandler{DB: db}
	costsHandler := &CostsHandler{DB: db}
	analyticsHandler := &AnalyticsHandler{DB: db}

	authMW := AuthMiddleware(opts.Signer, db)
	if opts.AuthMode == auth.ModeMock {
		authMW = MockAuth
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/healthz", Health(db))

	r.Route("/api", func(r chi.Router) {
		// Public: login.
		r.Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(authMW)

			r.Post("/auth/logout", authHandler.Logout)
			r.Get("/auth/session", authHandler.Session)
			r.Put("/auth/password", authHandler.ChangePassword)

			// Users (admin only).
			r.Route("/users", func(r chi.Router) {
				r.Use(RequireFeature(model.FeatureUsers))
				r.Get("/", usersHandler.List)
				r.Post("/", usersHandler.Create)
				r.Get("/{id}", usersHandler.Get)
				r.Patch("/{id}", usersHandler.Update)
				r.Put("/{id}", usersHandler.Update)
				r.Put("/{id}/password", usersHandler.ResetPassword)
				r.Delete("/{id}", usersHandler.Delete)
			})

			// Departments: read (all roles), write (manager+).
			r.Route("/departments", func(r chi.Router) {
				r.Get("/", departmentsHandler.List)
				r.Get("/{id}", departmentsHandler.Get)
				r.Group(func(r chi.Router) {
					r.Use(RequireFeature(model.FeatureDepartments))
					r.Post("/", departmentsHandler.Create)
					r.Patch("/{id}", departmentsHandler.Update)
					r.Put("/{id}", departmentsHandler.Update)
					r.Delete("/{id}", departmentsHandler.Delete)
				})
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Use(RequireFeature(model.FeatureTasks))
				r.Get("/", tasksHandler.List)
				r.With(RequireFeature(model.FeatureTaskCreate)).Post("/", tasksHandler.Create)
				r.Get("/count-by-status", tasksHandler.CountByStatus)
				r.Get("/department/{id}", tasksHandler.ListByDepartment)
				r.Get("/assigned/{userID}", tasksHandler.ListAssigned)
				r.Get("/{id}", tasksHandler.Get)
				r.Patch("/{id}", tasksHandler.Update)
				r.Put("/{id}", tasksHandler.Update)
				r.With(RequireRole(model.RoleAdmin)).Delete("/{id}", tasksHandler.Delete)
			})

			r.Route("/inventory", func(r chi.Router) {
				r.Use(RequireFeature(model.FeatureInventory))
				r.Get("/", inventoryHandler.List)
				r.Post("/", inventoryHandler.Create)
				r.Get("/low-stock", inventoryHandler.LowStock)
				r.Get("/alerts", inventoryHandler.ListAlerts)
				r.Post("/alerts/{id}/acknowledge", inventoryHandler.AcknowledgeAlert)
				r.Get("/{id}", inventoryHandler.Get)
				r.Patch("/{id}", inventoryHandler.Update)
				r.Put("/{id}", inventoryHandler.Update)
				r.Delete("/{id}", inventoryHandler.Delete)
			})

			r.Route("/equipment", func(r chi.Router) {
				r.Use(RequireFeature(model.FeatureEquipment))
				r.Get("/", equipmentHandler.List)
				r.Post("/", equipmentHandler.Create)
				r.Get("/{id}", equipmentHandler.Get)
				r.Patch("/{id}", equipmentHandler.Update)
				r.Put("/{id}", equipmentHandler.Update)
				r.Delete("/{id}", equipmentHandler.Delete)
				r.Put("/{id}/image", equipmentHandler.UploadImage)
				r.Get("/{id}/image", equipmentHandler.GetImage)
			})

			r.Route("/laundry-processes", func(r chi.Router) {
				r.Use(RequireFeature(model.FeatureProcesses))
				r.Get("/", processesHandler.List)
				r.Post("/", processesHandler.Create)
				r.Get("/{id}", processesHandler.Get)
				r.Patch("/{id}", processesHandler.Update)
				r.Put("/{id}", processesHandler.Update)
				r.Delete("/{id}", processesHandler.Delete)
			})

			r.Route("/cost-allocations", func(r chi.Router) {
				r.Use(RequireFeature(model.FeatureBilling))
				r.Get("/", costsHandler.List)
				r.Post("/", costsHandler.Create)
				r.Get("/{id}", costsHandler.Get)
				r.Patch("/{id}", costsHandler.Update)
				r.Put("/{id}", costsHandler.Update)
				r.Delete("/{id}", costsHandler.Delete)
			})

			r.Route("/analytics", func(r chi.Router) {
				r.With(RequireFeature(model.FeatureDashboard)).Get("/dashboard-stats", analyticsHandler.DashboardStats)
				r.With(RequireFeature(model.FeatureDashboard)).Get("/task-completion", analyticsHandler.TaskCompletion)
				r.With(RequireFeature(model.FeatureReports)).Get("/department-usage", analyticsHandler.DepartmentUsage)
				r.With(RequireFeature(model.FeatureReports)).Get("/inventory-usage", analyticsHandler.InventoryUsage)
			})
		})
	})

	return r
}
