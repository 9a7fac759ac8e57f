package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	custommiddleware "github.com/AhmadRaza029/hostel-allotment-nexus/internal/middleware"
	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/model"
)

// SetupRouter настраивает HTTP-маршруты и middleware портала.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.StudentLogin)
		r.Post("/auth/logout", h.Logout)
		r.Post("/admin/login", h.AdminLogin)

		r.Get("/application-period", h.GetApplicationPeriod)

		r.Route("/student", func(r chi.Router) {
			r.Use(h.authMiddleware.Middleware)
			r.Use(custommiddleware.RequireRole(model.RoleStudent))

			r.Get("/dashboard", h.GetDashboard)
			r.Get("/hostels", h.GetStudentHostels)
			r.Post("/applications", h.SubmitApplication)
			r.Post("/allocation/pay", h.PayFee)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware.Middleware)
			r.Use(custommiddleware.RequireRole(model.RoleAdmin))

			r.Get("/admin/applications", h.ListApplications)
			r.Get("/admin/applications/{id}", h.GetApplication)
			r.Post("/admin/applications/{id}/decision", h.DecideApplication)

			r.Get("/admin/stats", h.GetStats)

			r.Get("/admin/hostels", h.ListHostels)
			r.Post("/admin/hostels", h.CreateHostel)

			r.Put("/admin/settings/fees", h.SetFees)
			r.Put("/admin/settings/application-period", h.SetApplicationPeriod)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
