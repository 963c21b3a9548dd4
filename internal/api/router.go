package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/renthub-kz/renthub-be/internal/api/handlers"
	"github.com/renthub-kz/renthub-be/internal/api/respond"
	"github.com/renthub-kz/renthub-be/internal/auth"
	"github.com/renthub-kz/renthub-be/internal/models"
)

// Deps collects everything the router wires together.
type Deps struct {
	Authenticator *auth.Authenticator
	Auth          *handlers.AuthHandler
	Listings      *handlers.ListingHandler
	Bookings      *handlers.BookingHandler
	Uploads       *handlers.UploadHandler
	UploadDir     string
}

// NewRouter creates and configures a new Chi router.
func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration for development
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"}, // Adjust for your frontend URL
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Uniform JSON for unknown routes
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respond.Fail(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		respond.Fail(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		respond.Message(w, http.StatusOK, "ok")
	})

	// Stored listing images
	fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(d.UploadDir)))
	r.Get("/uploads/*", fileServer.ServeHTTP)

	requireAuth := d.Authenticator.RequireAuth
	requireOwner := auth.RequireRole(models.RoleOwner)
	requireAdmin := auth.RequireRole(models.RoleAdmin)

	// API versioning
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", d.Auth.Register)
			r.Post("/login", d.Auth.Login)
		})

		r.Route("/listings", func(r chi.Router) {
			r.Get("/", d.Listings.ListApproved)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth, requireOwner)
				r.Post("/", d.Listings.Create)
				r.Get("/my-listings", d.Listings.ListMine)
				r.Put("/{id}", d.Listings.Update)
				r.Delete("/{id}", d.Listings.Delete)
			})

			r.Group(func(r chi.Router) {
				r.Use(requireAuth, requireAdmin)
				r.Get("/admin/all", d.Listings.ListAll)
				r.Patch("/{id}/status", d.Listings.SetApproval)
			})

			// Keep the public single-get last so the fixed segments above
			// are matched first.
			r.Get("/{id}", d.Listings.Get)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth, requireOwner)
			r.Post("/upload/images", d.Uploads.Images)
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", d.Bookings.Create)
			})
			r.Group(func(r chi.Router) {
				r.Use(requireAuth, requireOwner)
				r.Get("/owner", d.Bookings.ListForOwner)
				r.Patch("/{id}/status", d.Bookings.UpdateStatus)
			})
		})
	})

	return r
}
