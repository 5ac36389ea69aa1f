// Package handler implements the HTTP handlers for the campground API.
// All handlers are methods on Server. Methods are split into files by
// resource but all share the same Server struct so they can access its
// dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mkarsten/campground-api/internal/domain"
	"github.com/mkarsten/campground-api/internal/middleware"
	"github.com/mkarsten/campground-api/internal/service"
)

// CampgroundServicer defines the business operations the campground handler
// depends on. Defining the interface here (in the consumer package) follows
// the Go convention: "accept interfaces, return concrete types". It lets
// handler tests inject a mock without touching the database or the external
// services.
type CampgroundServicer interface {
	List(ctx context.Context, search string) ([]domain.Campground, error)
	Create(ctx context.Context, in service.CreateInput) (domain.Campground, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Campground, []domain.Comment, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Campground, error)
	Update(ctx context.Context, in service.UpdateInput) (domain.Campground, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Server holds the dependencies shared by all handlers.
type Server struct {
	campgrounds CampgroundServicer
	validate    *validator.Validate
	logger      *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(campgrounds CampgroundServicer, logger *slog.Logger) *Server {
	return &Server{
		campgrounds: campgrounds,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		logger:      logger,
	}
}

// Routes returns the full route tree. The authenticator gates the mutating
// routes: login for create and the new-form, ownership (which implies
// login) for edit-form, update, and delete.
func (s *Server) Routes(auth *middleware.Authenticator) chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)

	r.Route("/campgrounds", func(r chi.Router) {
		r.Get("/", s.ListCampgrounds)
		r.With(auth.RequireLogin).Post("/", s.CreateCampground)
		r.With(auth.RequireLogin).Get("/new", s.GetNewForm)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetCampground)

			owner := r.With(auth.RequireLogin, auth.RequireOwnership(s.campgrounds))
			owner.Get("/edit", s.GetEditForm)
			owner.Put("/", s.UpdateCampground)
			owner.Delete("/", s.DeleteCampground)
		})
	})

	return r
}

// GetHealth handles GET /healthz.
// It returns HTTP 200 with {"status":"ok"} when the server is running.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
