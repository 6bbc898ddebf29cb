// Package app wires configuration, storage, domain services, and the HTTP
// server into a running POS backend.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/dhabalabs/pos-server/internal/domain/auth"
	"github.com/dhabalabs/pos-server/internal/domain/order"
	"github.com/dhabalabs/pos-server/internal/events"
	"github.com/dhabalabs/pos-server/internal/handler"
	"github.com/dhabalabs/pos-server/internal/repository"
	"github.com/dhabalabs/pos-server/pkg/health"
	"github.com/dhabalabs/pos-server/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Event broadcast over Redis pub/sub, optional.
	var publisher events.Publisher = events.Nop{}
	if cfg.Redis.Addr != "" {
		redisPub, err := events.NewRedisPublisher(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return errors.Wrap(err, "connect redis")
		}
		defer func() {
			if err := redisPub.Close(); err != nil {
				lg.Warn("Close redis", zap.Error(err))
			}
		}()
		publisher = redisPub
		lg.Info("Event broadcast enabled", zap.String("redis", cfg.Redis.Addr))
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.AddLivenessCheck("gc-pause", time.Second, health.GCMaxPauseCheck(2*time.Second))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Repositories.
	pendingRepo := repository.NewPendingOrderRepository(pool)
	confirmedRepo := repository.NewConfirmedOrderRepository(pool)
	ruleRepo := repository.NewDiscountRuleRepository(pool)
	menuRepo := repository.NewMenuRepository(pool)
	deviceRepo := repository.NewDeviceKeyRepository(pool)
	reportRepo := repository.NewReportRepository(pool)

	// Domain services.
	orderService := order.NewService(pendingRepo, confirmedRepo, ruleRepo)
	tokenIssuer := auth.NewTokenIssuer([]byte(cfg.TokenSecret), cfg.TokenTTL)

	// HTTP surface.
	h := handler.NewHandler(
		handler.Config{
			DeviceKeyPepper:   []byte(cfg.DeviceKeyPepper),
			AdminPasswordHash: cfg.AdminPasswordHash,
		},
		orderService,
		confirmedRepo,
		menuRepo,
		ruleRepo,
		reportRepo,
		deviceRepo,
		tokenIssuer,
		publisher,
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", h.Routes())

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(
			otelhttp.NewHandler(mux, "pos-api",
				otelhttp.WithTracerProvider(m.TracerProvider()),
				otelhttp.WithMeterProvider(m.MeterProvider()),
			),
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization", "X-Device-Key"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
