package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/JiaLiangChen99/robyn-admin/internal/admin"
	"github.com/JiaLiangChen99/robyn-admin/internal/app"
	"github.com/JiaLiangChen99/robyn-admin/internal/auth"
	"github.com/JiaLiangChen99/robyn-admin/internal/observability"
	"github.com/JiaLiangChen99/robyn-admin/internal/platform/cache"
	"github.com/JiaLiangChen99/robyn-admin/internal/platform/db"
	"github.com/JiaLiangChen99/robyn-admin/internal/rbac"
	"github.com/JiaLiangChen99/robyn-admin/internal/records"
	"github.com/JiaLiangChen99/robyn-admin/internal/session"
	"github.com/JiaLiangChen99/robyn-admin/internal/view"
	"github.com/JiaLiangChen99/robyn-admin/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		// The list cache degrades to building every payload without Redis.
		logger.Warn("redis unavailable, list cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := asynqClient.Close(); err != nil {
			logger.Warn("asynq close", slog.Any("error", err))
		}
	}()

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo)
	if cfg.BootstrapAdminPassword != "" {
		if err := authRepo.EnsureDefaultAdmin(ctx, cfg.BootstrapAdminUser, cfg.BootstrapAdminPassword); err != nil {
			logger.Error("bootstrap admin", slog.Any("error", err))
			os.Exit(1)
		}
	}

	permEngine := rbac.NewEngine(authRepo, logger)
	metrics := observability.NewMetrics()

	registry := admin.NewRegistry()
	registerDefaults(registry)

	menus := admin.NewMenuManager()
	menus.Register(admin.MenuItem{Name: "system", Label: "System", Icon: "settings"})
	menus.Register(admin.MenuItem{Name: "users", Label: "Users", Parent: "system", URL: "/" + cfg.AdminPrefix + "/AdminUserAdmin"})
	menus.Register(admin.MenuItem{Name: "roles", Label: "Roles", Parent: "system", URL: "/" + cfg.AdminPrefix + "/RoleAdmin"})

	repo := records.NewPostgresRepository(pool)
	auditSink := jobs.NewAuditEnqueuer(asynqClient, logger)
	service := admin.NewService(repo, logger, metrics, auditSink)

	cache := admin.NewListCache(redisClient, cfg.CacheTTL)
	codec := session.NewCodec(cfg.SessionCookie)

	handler := admin.NewHandler(logger, registry, service, authService, permEngine, codec, templates, cache, menus, admin.SiteConfig{
		Title:              cfg.SiteTitle,
		Prefix:             cfg.AdminPrefix,
		Copyright:          cfg.Copyright,
		DefaultLanguage:    cfg.DefaultLanguage,
		SupportedLanguages: cfg.Languages(),
		UploadDir:          cfg.UploadDir,
		UploadURLPrefix:    cfg.UploadURLPrefix,
	})

	router := app.NewRouter(app.RouterParams{
		Logger:       logger,
		Config:       cfg,
		AdminHandler: handler,
		Metrics:      metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error("server exit", slog.Any("error", err))
		os.Exit(1)
	}
}

// registerDefaults installs the built-in management pages for admin
// accounts and roles.
func registerDefaults(registry *admin.Registry) {
	registry.Register(&admin.Descriptor{
		Name:        "AdminUserAdmin",
		Model:       "admin_users",
		VerboseName: "Administrators",
		TableFields: []admin.Field{
			{Name: "username", Label: "Username", Sortable: true},
			{Name: "email", Label: "Email"},
			{Name: "is_superuser", Label: "Superuser", DisplayType: admin.DisplaySwitch, Process: admin.ProcessBool},
			{Name: "last_login", Label: "Last Login", DisplayType: admin.DisplayDatetime, Sortable: true},
		},
		FormFields: []admin.Field{
			{Name: "username", Label: "Username"},
			{Name: "email", Label: "Email"},
			{Name: "password_hash", Label: "Password", Process: admin.ProcessPassword(auth.HashPassword)},
			{Name: "is_superuser", Label: "Superuser", DisplayType: admin.DisplaySwitch, Process: admin.ProcessBool},
		},
		SearchFields: []admin.Field{
			{Name: "username", Label: "Username"},
			{Name: "email", Label: "Email"},
		},
		DefaultOrdering: []string{"-last_login"},
		EnableAdd:       true,
		EnableEdit:      true,
		EnableDelete:    true,
		Inlines: []*admin.InlineDescriptor{
			{
				Model:       "user_roles",
				VerboseName: "Assigned Roles",
				ForeignKey:  "user_id",
				TableFields: []admin.Field{
					{Name: "role_id", Label: "Role", Sortable: true},
				},
			},
		},
	})
	registry.Register(&admin.Descriptor{
		Name:        "RoleAdmin",
		Model:       "roles",
		VerboseName: "Roles",
		TableFields: []admin.Field{
			{Name: "name", Label: "Name", Sortable: true},
			{Name: "accessible_models", Label: "Accessible Models", DisplayType: admin.DisplayJSON},
		},
		FormFields: []admin.Field{
			{Name: "name", Label: "Name"},
			{Name: "accessible_models", Label: "Accessible Models"},
		},
		SearchFields: []admin.Field{
			{Name: "name", Label: "Name"},
		},
		EnableAdd:    true,
		EnableEdit:   true,
		EnableDelete: true,
	})
}
