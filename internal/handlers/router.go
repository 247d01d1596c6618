package handlers

import (
	"net/http"
	"time"

	"github.com/benvon/life-tracker/internal/middleware"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"
)

// ServiceName names the API in traces
const ServiceName = "life-tracker-api"

// RouterConfig carries everything the API router serves. Jobs may be nil, in which case
// compile and recompute run inside the request. IngestLimit may be nil for no rate limit.
type RouterConfig struct {
	Pending    PendingService
	Compiler   DayCompiler
	Progress   ProgressService
	Checklists ChecklistCompleter
	Milestones MilestoneChecklist
	Jobs       JobEnqueuer
	Health     *HealthChecker
	OpenAPI    *OpenAPIHandler

	IngestLimit    func(http.Handler) http.Handler
	Location       *time.Location
	FrontendURL    string
	EnableHSTS     bool
	Tracing        bool
	RequestTimeout time.Duration
	Logger         *zap.Logger
}

// NewRouter builds the API router with its middleware chain.
// gorilla/mux runs middleware in registration order, so the first registered is outermost.
func NewRouter(cfg RouterConfig) *mux.Router {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := mux.NewRouter()
	if cfg.Tracing {
		r.Use(otelmux.Middleware(ServiceName))
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.CORS(cfg.FrontendURL))
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.ErrorHandler(logger))
	r.Use(middleware.Logging(logger))

	if cfg.Health != nil {
		r.HandleFunc("/healthz", cfg.Health.HealthCheck).Methods(http.MethodGet)
	}
	if cfg.OpenAPI != nil {
		cfg.OpenAPI.RegisterRoutes(r)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	if cfg.Pending != nil {
		NewPendingHandler(cfg.Pending, cfg.Location, logger).
			RegisterRoutes(api.PathPrefix("/pending").Subrouter(), cfg.IngestLimit)
	}
	if cfg.Compiler != nil {
		NewCompileHandler(cfg.Compiler, cfg.Progress, cfg.Jobs, cfg.Location, logger).RegisterRoutes(api)
	}
	if cfg.Progress != nil {
		NewProgressHandler(cfg.Progress, cfg.Jobs, cfg.Location, logger).
			RegisterRoutes(api.PathPrefix("/progress").Subrouter())
	}
	if cfg.Checklists != nil {
		NewChecklistHandler(cfg.Checklists, cfg.Location, logger).
			RegisterRoutes(api.PathPrefix("/checklist").Subrouter())
	}
	if cfg.Milestones != nil {
		NewMilestoneHandler(cfg.Milestones, cfg.Progress, cfg.Location, logger).
			RegisterRoutes(api.PathPrefix("/milestones").Subrouter())
	}

	// Preflight requests match no route method, so give them one for the CORS middleware to answer.
	// A matcher func rather than Methods keeps other unknown paths at 404 instead of 405.
	r.MatcherFunc(func(req *http.Request, _ *mux.RouteMatch) bool {
		return req.Method == http.MethodOptions
	}).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return r
}
