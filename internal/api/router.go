package api

import (
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/joestump/joe-share/docs/swagger"
	"github.com/joestump/joe-share/internal/access"
	"github.com/joestump/joe-share/internal/auth"
	"github.com/joestump/joe-share/internal/build"
	"github.com/joestump/joe-share/internal/notify"
	"github.com/joestump/joe-share/internal/store"
)

// Deps holds all dependencies required to build the HTTP router.
type Deps struct {
	SessionManager   *scs.SessionManager
	AuthHandlers     *auth.Handlers
	AuthMiddleware   *auth.Middleware
	BearerMiddleware *auth.BearerTokenMiddleware
	UserStore        *store.UserStore
	ConnectionStore  *store.ConnectionStore
	ShareStore       *store.ShareStore
	AccessLogStore   *store.AccessLogStore
	TokenStore       auth.TokenStore
	Resolver         *access.Resolver
	Notifier         notify.Notifier
	AccessCh         chan<- store.AccessEvent
}

// NewRouter assembles the full chi router with all middleware and routes.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(deps.SessionManager.LoadAndSave)

	// Auth routes (no auth required)
	r.Get("/auth/login", deps.AuthHandlers.Login)
	r.Get("/auth/callback", deps.AuthHandlers.Callback)
	r.Post("/auth/logout", deps.AuthHandlers.Logout)

	// Session-authenticated account surface, used to bootstrap the first
	// API token after an OIDC login.
	r.Route("/account", func(r chi.Router) {
		r.Use(deps.AuthMiddleware.RequireAuth)
		r.Use(jsonContentType)
		registerAccountRoutes(r, deps.TokenStore)
	})

	r.Get("/healthz", healthz)
	r.Handle("/metrics", promhttp.Handler())

	// Swagger UI, no auth required.
	r.Get("/api/docs/*", httpSwagger.WrapHandler)

	r.Mount("/api/v1", NewAPIRouter(deps))

	// Anonymous share link resolution. The token is the credential; no
	// session or bearer auth applies here.
	r.Post("/s/{token}", NewLinkHandler(deps.Resolver, deps.ShareStore, deps.AccessCh))

	return r
}

// NewAPIRouter creates the chi sub-router for /api/v1. All routes require
// Bearer token authentication and return application/json.
func NewAPIRouter(deps Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(jsonContentType)
	r.Use(deps.BearerMiddleware.Authenticate)

	registerConnectionRoutes(r, deps.ConnectionStore, deps.Notifier)
	registerShareRoutes(r, deps.ShareStore, deps.AccessLogStore, deps.Notifier)
	registerAccessRoutes(r, deps.Resolver, deps.ShareStore, deps.AccessCh)
	registerTokenRoutes(r, deps.TokenStore)
	registerUserRoutes(r, deps.UserStore)

	return r
}

// jsonContentType is a middleware that sets Content-Type: application/json on
// all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// healthz reports liveness and the running version.
// GET /healthz
func healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": build.Version,
	})
}
