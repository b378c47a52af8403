package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/artstock/console/internal/alerts"
	audithttp "github.com/artstock/console/internal/audit/http"
	"github.com/artstock/console/internal/auth"
	authhttp "github.com/artstock/console/internal/auth/http"
	"github.com/artstock/console/internal/billing"
	"github.com/artstock/console/internal/customers"
	"github.com/artstock/console/internal/dashboard"
	"github.com/artstock/console/internal/fixtures"
	"github.com/artstock/console/internal/inventory"
	"github.com/artstock/console/internal/navigation"
	"github.com/artstock/console/internal/observability"
	"github.com/artstock/console/internal/payments"
	"github.com/artstock/console/internal/portal"
	"github.com/artstock/console/internal/products"
	"github.com/artstock/console/internal/profile"
	"github.com/artstock/console/internal/settings"
	"github.com/artstock/console/internal/shared"
	"github.com/artstock/console/internal/subscriptions"
	"github.com/artstock/console/internal/view"
	"github.com/artstock/console/jobs"
)

// Dependencies are the process-wide resources the console is built on.
type Dependencies struct {
	Redis    *redis.Client
	Accounts auth.Repository
	Catalog  *fixtures.Catalog
	Metrics  *observability.Metrics
	// Jobs enqueues background work; nil hides the manual refresh endpoint.
	Jobs      *jobs.Client
	Inspector jobs.QueueInspector
	Now       func() time.Time
}

// Server is the assembled console.
type Server struct {
	Handler http.Handler
	Badges  *navigation.BadgeCache
}

// NewServer wires every handler onto the router.
func NewServer(cfg *Config, logger *slog.Logger, deps Dependencies) (*Server, error) {
	if deps.Redis == nil || deps.Accounts == nil {
		return nil, fmt.Errorf("app: redis and accounts are required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	catalog := deps.Catalog
	if catalog == nil {
		var err error
		catalog, err = fixtures.Generate(cfg.FixtureSeed, now())
		if err != nil {
			return nil, fmt.Errorf("app: generate fixtures: %w", err)
		}
	}

	tree, err := navigation.DefaultTree()
	if err != nil {
		return nil, fmt.Errorf("app: navigation tree: %w", err)
	}
	badges := navigation.NewBadgeCache(deps.Redis, catalog, cfg.BadgeTTL)
	navService := navigation.NewService(tree, badges, logger)

	engine, err := view.NewEngine()
	if err != nil {
		return nil, fmt.Errorf("app: parse templates: %w", err)
	}
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	renderer := view.NewRenderer(engine, csrfManager, navService, logger)
	sessionManager := shared.NewSessionManager(deps.Redis, cfg.SessionCookie, cfg.SessionTTL, cfg.IsProduction())

	authService := auth.NewService(deps.Accounts)
	secureCookies := cfg.IsProduction()

	var jobHandler *jobs.Handler
	if deps.Jobs != nil || deps.Inspector != nil {
		jobHandler = jobs.NewHandler(deps.Inspector, deps.Jobs, logger)
	}

	router := NewRouter(RouterParams{
		Logger:         logger,
		Config:         cfg,
		Renderer:       renderer,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		Binder:         auth.Binder{Authenticator: authService, Logger: logger, Now: now},
		Metrics:        deps.Metrics,

		AuthHandler: authhttp.NewHandler(logger, authService, renderer, authhttp.Options{
			SecureCookies: secureCookies,
			DemoAccounts:  cfg.DemoAccounts,
			LoginLimiter:  LoginLimiter(cfg),
			ObserveLogin:  deps.Metrics.ObserveLogin,
		}),
		NavigationHandler:    navigation.NewHandler(navService, logger, secureCookies),
		DashboardHandler:     dashboard.NewHandler(logger, catalog, renderer),
		SubscriptionsHandler: subscriptions.NewHandler(logger, catalog, renderer),
		CustomersHandler:     customers.NewHandler(logger, catalog, renderer),
		BillingHandler:       billing.NewHandler(logger, catalog, renderer),
		InventoryHandler:     inventory.NewHandler(logger, catalog, renderer),
		PaymentsHandler:      payments.NewHandler(logger, catalog, renderer),
		ProductsHandler:      products.NewHandler(logger, catalog, renderer),
		AlertsHandler:        alerts.NewHandler(logger, catalog, renderer),
		PortalHandler:        portal.NewHandler(logger, catalog, renderer),
		ProfileHandler:       profile.NewHandler(logger, renderer),
		SettingsHandler:      settings.NewHandler(logger, renderer),
		AuditHandler:         audithttp.NewHandler(logger, renderer),
		JobHandler:           jobHandler,
	})
	return &Server{Handler: router, Badges: badges}, nil
}

// Inspector opens a queue inspector over the configured Redis.
func Inspector(cfg *Config) *asynq.Inspector {
	return asynq.NewInspector(cfg.AsynqRedis())
}

// WarmBadges fills the badge cache once so the first page view does not
// compute it.
func (s *Server) WarmBadges(ctx context.Context, logger *slog.Logger) {
	if s == nil || s.Badges == nil {
		return
	}
	if _, err := s.Badges.Refresh(ctx); err != nil {
		logger.Warn("warm badges", slog.Any("error", err))
	}
}
