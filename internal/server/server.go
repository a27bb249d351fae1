// Package server exposes the teamhub services over a JSON HTTP API.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/wolfeidau/teamhub/internal/analytics"
	"github.com/wolfeidau/teamhub/internal/apikeys"
	"github.com/wolfeidau/teamhub/internal/archive"
	"github.com/wolfeidau/teamhub/internal/auth"
	"github.com/wolfeidau/teamhub/internal/billing"
	ihttp "github.com/wolfeidau/teamhub/internal/http"
	"github.com/wolfeidau/teamhub/internal/logger"
	"github.com/wolfeidau/teamhub/internal/members"
	"github.com/wolfeidau/teamhub/internal/notify"
	"github.com/wolfeidau/teamhub/internal/organizations"
	"github.com/wolfeidau/teamhub/internal/projects"
	"github.com/wolfeidau/teamhub/internal/store"
	"github.com/wolfeidau/teamhub/internal/tasks"
)

const (
	DefaultMaxBulkSize    = 50
	DefaultRequestTimeout = 30 * time.Second
)

// Config tunes the HTTP surface.
type Config struct {
	MaxBulkSize     int
	BulkConcurrency int
	RequestTimeout  time.Duration
	CORSOrigins     []string
	Tracing         bool
}

// Server wires the services behind the HTTP API.
type Server struct {
	cfg      Config
	verifier *auth.JWTVerifier

	orgs      *organizations.Service
	members   *members.Service
	projects  *projects.Service
	tasks     *tasks.Service
	billing   *billing.Policy
	archive   *archive.Engine
	apiKeys   *apikeys.Service
	analytics *analytics.Service
}

// NewServer builds every service over stores. Domain events go to events.
func NewServer(stores store.Stores, verifier *auth.JWTVerifier, events notify.Emitter, cfg Config) *Server {
	if cfg.MaxBulkSize <= 0 {
		cfg.MaxBulkSize = DefaultMaxBulkSize
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}

	policy := billing.NewPolicy(stores)
	memberService := members.NewService(stores.Members, policy, events)
	projectService := projects.NewService(stores.Projects, policy, memberService)

	return &Server{
		cfg:      cfg,
		verifier: verifier,
		orgs:      organizations.NewService(stores.Organizations),
		members:   memberService,
		projects:  projectService,
		tasks:     tasks.NewService(stores.Tasks, projectService, events),
		billing:   policy,
		archive:   archive.NewEngine(stores.Projects, cfg.BulkConcurrency),
		apiKeys:   apikeys.NewService(stores.APIKeys),
		analytics: analytics.NewService(stores),
	}
}

// Handler returns the HTTP handler for the server
func (s *Server) Handler(log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(ihttp.ClientIPMiddleware())
	r.Use(logger.RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(s.corsHandler())
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	// Health check endpoint for load balancer
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.DualAuthMiddleware(s.verifier, s.apiKeys))

		r.Post("/organizations", s.createOrganization)
		r.Route("/organizations/{id}", func(r chi.Router) {
			r.Get("/", s.getOrganization)
			r.Put("/", s.updateOrganization)
			r.Put("/settings", s.updateOrganizationSettings)
			r.Post("/bulk-invite", s.bulkInvite)
		})

		r.Route("/members", func(r chi.Router) {
			r.Get("/", s.listMembers)
			r.Post("/invite", s.inviteMember)
			r.Get("/{id}", s.getMember)
			r.Put("/{id}/role", s.updateMemberRole)
			r.Delete("/{id}", s.removeMember)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", s.listProjects)
			r.Post("/", s.createProject)
			r.Get("/archived", s.listArchivedProjects)
			r.Get("/archive-summary", s.archiveSummary)
			r.Post("/bulk-archive", s.bulkArchive)
			r.Post("/bulk-restore", s.bulkRestore)
			r.Get("/{id}", s.getProject)
			r.Put("/{id}", s.updateProject)
			r.Delete("/{id}", s.deleteProject)
			r.Post("/{id}/archive", s.archiveProject)
			r.Post("/{id}/unarchive", s.unarchiveProject)
			r.Post("/{id}/members", s.addProjectMember)
			r.Delete("/{id}/members/{memberId}", s.removeProjectMember)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", s.listTasks)
			r.Post("/", s.createTask)
			r.Get("/filter", s.filterTasks)
			r.Get("/{id}", s.getTask)
			r.Put("/{id}", s.updateTask)
			r.Delete("/{id}", s.deleteTask)
			r.Patch("/{id}/status", s.updateTaskStatus)
		})

		r.Route("/billing", func(r chi.Router) {
			r.Get("/plan", s.billingPlan)
			r.Get("/usage", s.billingUsage)
			r.Get("/upgrade-check", s.upgradeCheck)
			r.Get("/pricing/{tier}", s.pricing)
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/dashboard", s.analyticsDashboard)
			r.Get("/tasks", s.analyticsTasks)
			r.Get("/members", s.analyticsMembers)
		})

		r.Route("/api-keys", func(r chi.Router) {
			r.Get("/", s.listAPIKeys)
			r.Post("/", s.createAPIKey)
			r.Get("/{id}", s.getAPIKey)
			r.Delete("/{id}", s.revokeAPIKey)
		})
	})

	if s.cfg.Tracing {
		return otelhttp.NewHandler(r, "teamhub")
	}
	return r
}

func (s *Server) corsHandler() func(http.Handler) http.Handler {
	origins := s.cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-API-Key"},
		MaxAge:         300,
	}).Handler
}
