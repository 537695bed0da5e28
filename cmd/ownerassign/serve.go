package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/ownerassign/ownerassign/internal/admin"
	"github.com/ownerassign/ownerassign/internal/app"
	"github.com/ownerassign/ownerassign/internal/auth"
	"github.com/ownerassign/ownerassign/internal/listings"
	listingshttp "github.com/ownerassign/ownerassign/internal/listings/http"
	"github.com/ownerassign/ownerassign/internal/observability"
	"github.com/ownerassign/ownerassign/internal/platform/cache"
	"github.com/ownerassign/ownerassign/internal/platform/db"
	"github.com/ownerassign/ownerassign/internal/provision"
	"github.com/ownerassign/ownerassign/internal/rbac"
	"github.com/ownerassign/ownerassign/internal/roles"
	"github.com/ownerassign/ownerassign/internal/shared"
	"github.com/ownerassign/ownerassign/internal/users"
	"github.com/ownerassign/ownerassign/internal/view"
	"github.com/ownerassign/ownerassign/jobs"
	"github.com/ownerassign/ownerassign/migrations"
)

func serve(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer dbpool.Close()

	if err := db.Migrate(ctx, dbpool, migrations.FS, logger); err != nil {
		return err
	}
	rolesService := roles.NewService(roles.NewRepository(dbpool), logger)
	if err := rolesService.Install(ctx); err != nil {
		return fmt.Errorf("install roles: %w", err)
	}

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "ownerassign_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret, cfg.NonceLifetime)

	templates, err := view.NewEngine()
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}

	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(dbpool)

	rbacService := rbac.NewService(dbpool)
	rbacMiddleware := rbac.Middleware{Source: rbacService, Logger: logger}

	authHandler := auth.NewHandler(logger, auth.NewService(auth.NewRepository(dbpool), auditLogger), templates, sessionManager, csrfManager)

	usersService := users.NewService(users.NewRepository(dbpool))
	listingsService := listings.NewService(listings.NewRepository(dbpool), rbacService)
	provisionService := provision.NewService(listingsService, usersService, logger,
		provision.WithRecorder(metrics),
		provision.WithAuditor(auditLogger),
	)
	assignHandler := listingshttp.NewHandler(logger, listingsService, provisionService, templates, csrfManager, cfg.SiteURL)

	menu := admin.NewMenu()
	menu.Register(admin.ListingUserAssignPage(assignHandler.MountRoutes))

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		AuthHandler:    authHandler,
		Menu:           menu,
		RBACMiddleware: rbacMiddleware,
		JobHandler:     jobs.NewHandler(inspector, logger),
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
