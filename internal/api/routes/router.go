package routes

import (
	"net/http"

	"github.com/Longevitate/carefinder/internal/api/handlers"
	"github.com/Longevitate/carefinder/internal/api/middleware"
	"github.com/Longevitate/carefinder/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	searchHandler  *handlers.SearchHandler
	catalogHandler *handlers.CatalogHandler
	mcpHandler     http.Handler

	allowedOrigins []string
	metrics        *observability.Metrics
}

// NewRouter creates a new router. mcpHandler may be nil when MCP is disabled.
func NewRouter(
	searchHandler *handlers.SearchHandler,
	catalogHandler *handlers.CatalogHandler,
	mcpHandler http.Handler,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:            http.NewServeMux(),
		searchHandler:  searchHandler,
		catalogHandler: catalogHandler,
		mcpHandler:     mcpHandler,
		allowedOrigins: allowedOrigins,
		metrics:        metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", r.catalogHandler.Health)

	// Search endpoints
	r.mux.HandleFunc("POST /api/care-locations/search", r.searchHandler.SearchCareLocations)
	r.mux.HandleFunc("POST /api/providers/search", r.searchHandler.SearchProviders)

	// Catalog endpoints
	r.mux.HandleFunc("GET /api/services", r.catalogHandler.ListServices)

	if r.mcpHandler != nil {
		r.mux.Handle("/mcp", r.mcpHandler)
	}

	// Apply middleware in reverse order (last middleware wraps first).
	// CORS is outermost so preflight never reaches the handlers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.Recoverer(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
