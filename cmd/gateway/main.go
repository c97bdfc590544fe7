package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/casekit/case-gateway/internal/access"
	httptransport "github.com/casekit/case-gateway/internal/api/http"
	"github.com/casekit/case-gateway/internal/api/http/handlers"
	"github.com/casekit/case-gateway/internal/config"
	"github.com/casekit/case-gateway/internal/events"
	"github.com/casekit/case-gateway/internal/observability"
	"github.com/casekit/case-gateway/internal/persistence"
	"github.com/casekit/case-gateway/internal/service"
	"github.com/casekit/case-gateway/internal/session"
	"github.com/casekit/case-gateway/internal/token"
	"github.com/casekit/case-gateway/internal/upstream"
	"github.com/casekit/case-gateway/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	metrics := observability.NewMetrics()

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(dispatcher, logger, metrics)

	inspector := token.NewInspector()
	authAPI := upstream.New(cfg.Upstream.BaseURL, cfg.Upstream.Timeout(), logger)

	storeTTL := cfg.Session.StoreTTL()
	manager := session.NewManager(func(sessionID string) session.Store {
		return session.NewRedisStore(redis.Client, sessionID, storeTTL)
	}, authAPI, session.ManagerOptions{
		CheckInterval: cfg.Session.RefreshCheckInterval(),
		Logger:        logger,
		Dispatcher:    dispatcher,
		Inspector:     inspector,
	})
	defer manager.Shutdown()

	policy := access.NewEvaluator(access.DefaultGrants())
	caseService := service.NewCaseService(policy)
	dashboardService := service.NewDashboardService()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:      handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, redis, metrics),
		Auth:        handlers.NewAuthHandler(manager, inspector, cfg.Session.CookieName),
		Dashboard:   handlers.NewDashboardHandler(dashboardService, policy),
		Cases:       handlers.NewCasesHandler(caseService),
		Preferences: handlers.NewPreferencesHandler(),
		Session:     access.NewSessionMiddleware(manager, cfg.Session.CookieName),
		Policy:      policy,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
