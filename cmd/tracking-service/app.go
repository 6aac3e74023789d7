package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"ecomtag/internal/commerce"
	"ecomtag/internal/config"
	"ecomtag/internal/constants"
	"ecomtag/internal/logger"
	"ecomtag/internal/sink"
	"ecomtag/internal/tracking"
	"ecomtag/pkg/metrics"
	"ecomtag/pkg/middleware"
	"ecomtag/pkg/ratelimit"
)

type App struct {
	Config *config.Config
	Logger logger.Logger

	queue   *sink.Memory
	tracker *tracking.Tracker
	server  *http.Server
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	if sugaredLogger, ok := log.(*logger.SugaredLogger); ok {
		sugaredLogger.SetServiceName("tracking-service")
	}
	return &App{
		Config: cfg,
		Logger: log,
	}
}

func (a *App) Initialize(ctx context.Context) error {
	if err := a.initTracker(ctx); err != nil {
		return fmt.Errorf("failed to initialize tracker: %w", err)
	}

	metrics.RegisterTrackingMetrics()
	if a.Config.Tracking.RateLimit.Enabled {
		metrics.RegisterRateLimitMetrics()
	}

	if err := a.initHTTPServer(ctx); err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	return nil
}

func (a *App) initTracker(ctx context.Context) error {
	a.queue = sink.NewMemory()

	hooks := tracking.NewHooks()
	if steps := a.Config.Tracking.CheckoutSteps; len(steps) > 0 {
		// Checkout steps are tracked only when configured: the hook
		// supplies the event name, and unnamed checkout payloads are
		// dropped by the tracker.
		hooks.OnCheckoutStep(func(step int, _ commerce.Order, event *tracking.Event) {
			if name, ok := steps[step]; ok {
				event.Name = name
			}
		})
		a.Logger.InfowCtx(ctx, "Checkout step tracking enabled",
			"steps", len(steps),
		)
	}

	var calculator commerce.PriceCalculator = commerce.NewListPriceCalculator()
	if a.Config.CircuitBreaker.Enabled {
		calculator = commerce.WrapWithCircuitBreaker(calculator, "price-calculator", a.Config.CircuitBreaker)
	}

	currentStore := commerce.StaticStore(a.Config.Tracking.StoreName)

	a.tracker = tracking.NewTracker(
		a.queue,
		hooks,
		currentStore,
		commerce.AnonymousAccount{},
		calculator,
		a.Logger,
	)

	return nil
}

func (a *App) initHTTPServer(ctx context.Context) error {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(a.Logger))
	router.Use(middleware.RecoveryMiddleware(a.Logger))

	if rl := a.Config.Tracking.RateLimit; rl.Enabled {
		router.Use(ratelimit.RateLimitMiddleware(ctx, ratelimit.RateLimitConfig{
			RPS:             rl.RPS,
			Burst:           rl.Burst,
			CleanupInterval: time.Duration(rl.CleanupInterval) * time.Second,
			MaxAge:          time.Duration(rl.MaxAge) * time.Second,
		}))
	}

	handler := tracking.NewHandler(a.tracker, a.queue, a.Config.Tracking.DefaultListName, a.Logger)
	handler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(a.Config.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(a.Config.Server.WriteTimeoutSeconds) * time.Second,
	}

	return nil
}

func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.Infow("HTTP server listening", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()

		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.Logger.Errorw("HTTP server shutdown error", "error", err)
			return err
		}
		return gCtx.Err()
	})

	return g.Wait()
}
