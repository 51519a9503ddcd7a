package http

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/fitgrid/classbooking/internal/auth"
)

// Handler bundles the services behind the HTTP surface.
type Handler struct {
	schedule     ScheduleLister
	enrollments  SessionEnroller
	roster       RosterLister
	entitlements PackageLister
	parser       *auth.TokenParser
	logger       *log.Logger
}

func NewHandler(
	schedule ScheduleLister,
	enrollments SessionEnroller,
	roster RosterLister,
	entitlements PackageLister,
	parser *auth.TokenParser,
	logger *log.Logger,
) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{
		schedule:     schedule,
		enrollments:  enrollments,
		roster:       roster,
		entitlements: entitlements,
		parser:       parser,
		logger:       logger,
	}
}

// NewRouter wires routes and middleware.
func NewRouter(h *Handler, corsOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health)

	r.Route("/schedule", func(r chi.Router) {
		r.Get("/sessions", h.ListSessions)
		r.With(requireRole(h.parser, auth.RoleMember)).
			Post("/sessions/{sessionID}/enroll", h.Enroll)
		r.With(requireRole(h.parser, auth.RoleCoach, auth.RoleManager)).
			Get("/sessions/{sessionID}/roster", h.Roster)
	})

	r.With(requireRole(h.parser, auth.RoleMember)).
		Get("/me/packages", h.MyPackages)
	r.With(requireRole(h.parser, auth.RoleManager)).
		Get("/admin/memberships", h.Memberships)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "not found")
	})

	return r
}

// Health reports basic liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
