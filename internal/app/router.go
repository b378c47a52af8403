package app

import (
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/artstock/console/internal/alerts"
	audithttp "github.com/artstock/console/internal/audit/http"
	"github.com/artstock/console/internal/auth"
	authhttp "github.com/artstock/console/internal/auth/http"
	"github.com/artstock/console/internal/billing"
	"github.com/artstock/console/internal/customers"
	"github.com/artstock/console/internal/dashboard"
	"github.com/artstock/console/internal/inventory"
	"github.com/artstock/console/internal/navigation"
	"github.com/artstock/console/internal/observability"
	"github.com/artstock/console/internal/payments"
	"github.com/artstock/console/internal/portal"
	"github.com/artstock/console/internal/products"
	"github.com/artstock/console/internal/profile"
	"github.com/artstock/console/internal/rbac"
	"github.com/artstock/console/internal/settings"
	"github.com/artstock/console/internal/shared"
	"github.com/artstock/console/internal/subscriptions"
	"github.com/artstock/console/internal/view"
	"github.com/artstock/console/jobs"
	"github.com/artstock/console/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Renderer       *view.Renderer
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Binder         auth.Binder
	Metrics        *observability.Metrics

	AuthHandler          *authhttp.Handler
	NavigationHandler    *navigation.Handler
	DashboardHandler     *dashboard.Handler
	SubscriptionsHandler *subscriptions.Handler
	CustomersHandler     *customers.Handler
	BillingHandler       *billing.Handler
	InventoryHandler     *inventory.Handler
	PaymentsHandler      *payments.Handler
	ProductsHandler      *products.Handler
	AlertsHandler        *alerts.Handler
	PortalHandler        *portal.Handler
	ProfileHandler       *profile.Handler
	SettingsHandler      *settings.Handler
	AuditHandler         *audithttp.Handler
	JobHandler           *jobs.Handler
}

// plannedPage is a navigation entry whose screen is not built yet. The
// operations shortcuts open flows that live on other pages.
type plannedPage struct {
	Path  string
	Title string
}

var plannedPages = []plannedPage{
	{"/ops/consultar", "Consultar"},
	{"/ops/nueva-venta", "Nueva Venta"},
	{"/ops/registrar-pago", "Registrar Pago"},
	{"/reports", "Reportes"},
	{"/system", "Sistema"},
}

// Guards returns the route gates rendering the loading page while the session
// store is unavailable.
func Guards(params RouterParams) rbac.Guards {
	return rbac.Guards{
		Logger:           params.Logger,
		LoginPath:        "/login",
		UnauthorizedPath: "/unauthorized",
		Loading: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "1")
			params.Renderer.Page(w, r, http.StatusServiceUnavailable, "pages/loading.html", "Cargando", nil)
		}),
		OnDeny: params.Metrics.ObserveDenial,
	}
}

// LoginLimiter throttles sign-in attempts per client address.
func LoginLimiter(cfg *Config) func(http.Handler) http.Handler {
	perMinute := 10
	if cfg != nil && cfg.LoginLimitPerMinute > 0 {
		perMinute = cfg.LoginLimitPerMinute
	}
	return httprate.Limit(perMinute, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP))
}

// NewRouter constructs the chi.Router with the console's routes.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Binder:         params.Binder,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	if !params.Config.IsProduction() {
		r.Use(chimw.Logger)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	guards := Guards(params)

	params.AuthHandler.MountRoutes(r)
	params.NavigationHandler.MountRoutes(r, guards)

	r.Group(func(r chi.Router) {
		r.Use(guards.RequireAuth)
		params.PortalHandler.MountRoutes(r)
		params.ProfileHandler.MountRoutes(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(guards.RequireAuth, guards.RequireRole(auth.AdminRoles...))
		params.DashboardHandler.MountRoutes(r)
		params.SubscriptionsHandler.MountRoutes(r)
		params.CustomersHandler.MountRoutes(r)
		params.BillingHandler.MountRoutes(r)
		params.InventoryHandler.MountRoutes(r)
		params.PaymentsHandler.MountRoutes(r)
		params.ProductsHandler.MountRoutes(r)
		params.AlertsHandler.MountRoutes(r)
		params.SettingsHandler.MountRoutes(r)
		for _, page := range plannedPages {
			r.Get(page.Path, comingSoon(params.Renderer, page.Title))
		}
	})

	r.Group(func(r chi.Router) {
		r.Use(guards.RequireAuth, guards.RequireRole(auth.RoleSuperAdmin))
		params.AuditHandler.MountRoutes(r)
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		params.Renderer.Page(w, r, http.StatusNotFound, "pages/not_found.html", "Página no encontrada", nil)
	})

	return r
}

func comingSoon(renderer *view.Renderer, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderer.Page(w, r, http.StatusOK, "pages/coming_soon.html", title, nil)
	}
}

// staticCacheHandler lets browsers keep embedded assets for an hour.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
