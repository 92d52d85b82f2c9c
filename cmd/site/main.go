package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/customtruckbeds/site/internal/app"
	"github.com/customtruckbeds/site/internal/content"
	"github.com/customtruckbeds/site/internal/observability"
	"github.com/customtruckbeds/site/internal/platform/cache"
	"github.com/customtruckbeds/site/internal/quote"
	"github.com/customtruckbeds/site/internal/shared"
	"github.com/customtruckbeds/site/internal/site"
	"github.com/customtruckbeds/site/internal/view"
	"github.com/customtruckbeds/site/jobs"
)

const (
	sessionCookie      = "ctb_session"
	idempotencyWindow  = 24 * time.Hour
	shutdownGrace      = 10 * time.Second
	submitLockHeadroom = 5 * time.Second
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	if err := app.LoadDotEnv(); err != nil {
		slog.Default().Error("load .env", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, sessionCookie, cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	idempotencyStore := shared.NewIdempotencyStore(redisClient, idempotencyWindow)
	metrics := observability.NewMetrics()
	metrics.Registerer().MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var notifier quote.LeadNotifier
	if cfg.NotifiesLeads() {
		client := jobs.NewClient(asynq.NewClientFromRedisClient(redisClient))
		notifier = jobs.NewLeadNotifier(client, cfg.LeadNotifyTo)
	}

	service := quote.NewService(quote.ServiceParams{
		Guard:          shared.NewRedisGuard(redisClient, cfg.WebhookTimeout+submitLockHeadroom),
		Mode:           cfg.Mode(),
		Endpoint:       cfg.Endpoint(),
		Timeout:        cfg.WebhookTimeout,
		Logger:         logger,
		Recorder:       metrics,
		Notifier:       notifier,
		FingerprintKey: []byte(cfg.SessionSecret),
	})

	siteContent, err := content.Load()
	if err != nil {
		logger.Error("load site content", slog.Any("error", err))
		os.Exit(1)
	}
	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	siteHandler := site.NewHandler(site.HandlerParams{
		Logger:      logger,
		Service:     service,
		Content:     siteContent,
		Templates:   templates,
		CSRF:        csrfManager,
		Idempotency: idempotencyStore,
		QuoteLimit:  app.QuoteRateLimit(cfg.QuoteRateLimit),
	})

	inspector := asynq.NewInspectorFromRedisClient(redisClient)
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		SiteHandler:    siteHandler,
		JobHandler:     jobHandler,
		Metrics:        metrics,
		Health: func(r *http.Request) error {
			return cache.Ping(r.Context(), redisClient)
		},
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("starting http server",
			slog.String("addr", cfg.AppAddr),
			slog.String("webhook_mode", string(cfg.Mode())),
			slog.Bool("lead_notify", cfg.NotifiesLeads()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error("http server", slog.Any("error", err))
		os.Exit(1)
	}
}
