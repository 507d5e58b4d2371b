package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/medpredict-be/internal/api/handlers"
	"github.com/isdelr/medpredict-be/internal/auth"
	"github.com/isdelr/medpredict-be/internal/services"
	"github.com/rs/zerolog/log"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(sessions *auth.Manager, userService services.UserServiceProvider, reportService services.ReportServiceProvider, classifier handlers.Classifier) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(recoverer)

	// CORS configuration for development
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"}, // Adjust for your frontend URL
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, sessions)
	reportHandler := handlers.NewReportHandler(reportService)
	predictHandler := handlers.NewPredictHandler(classifier, reportService)
	adminHandler := handlers.NewAdminHandler(userService, reportService)

	// Public routes
	r.Get("/", authHandler.Index)
	r.Get("/register", authHandler.ShowRegister)
	r.Post("/register", authHandler.Register)
	r.Get("/login", authHandler.ShowLogin)
	r.Post("/login", authHandler.Login)
	r.Get("/logout", authHandler.Logout)

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(sessions.RequireAuth)

		r.Get("/dashboard", reportHandler.Dashboard)
		r.Post("/predict", predictHandler.PredictForm)
		r.Post("/api/predict", predictHandler.PredictAPI)

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(sessions.RequireAdmin)

			r.Get("/admin/dashboard", adminHandler.Dashboard)
			r.Post("/admin/delete_user/{id}", adminHandler.DeleteUser)
			r.Post("/admin/delete_report/{id}", adminHandler.DeleteReport)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false,"error":"page not found"}`))
	})

	return r
}

// recoverer turns handler panics into the uniform JSON 500 body instead of
// chi's plain-text response.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				log.Error().Interface("panic", rvr).Str("path", r.URL.Path).Msg("Recovered from handler panic")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"success":false,"error":"internal server error"}`))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
