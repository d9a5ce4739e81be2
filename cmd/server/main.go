package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	presaleapp "github.com/diecast/backoffice/internal/application/presale"
	"github.com/diecast/backoffice/internal/infrastructure/cache"
	"github.com/diecast/backoffice/internal/infrastructure/config"
	"github.com/diecast/backoffice/internal/infrastructure/event"
	"github.com/diecast/backoffice/internal/infrastructure/logger"
	"github.com/diecast/backoffice/internal/infrastructure/persistence"
	"github.com/diecast/backoffice/internal/infrastructure/telemetry"
	"github.com/diecast/backoffice/internal/interfaces/http/handler"
	"github.com/diecast/backoffice/internal/interfaces/http/middleware"
	"github.com/diecast/backoffice/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting diecast back office",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize tracing
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	lotRepo := persistence.NewGormLotRepository(db.DB)
	planRepo := persistence.NewGormPaymentPlanRepository(db.DB)
	deliveryRepo := persistence.NewGormDeliveryRepository(db.DB)
	inventoryItemRepo := persistence.NewGormInventoryItemRepository(db.DB)

	// Initialize application services
	lotService := presaleapp.NewLotService(lotRepo, deliveryRepo, inventoryItemRepo)
	planService := presaleapp.NewPaymentPlanService(planRepo, deliveryRepo)
	assignAndPlanWorkflow := presaleapp.NewAssignAndPlanWorkflow(lotService, planService)

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)

	planOverdueHandler := presaleapp.NewPlanOverdueHandler(log).
		WithNotifier(presaleapp.NewLoggingOverdueNotifier(log))
	eventBus.Subscribe(planOverdueHandler)

	log.Info("Event handlers registered",
		zap.Strings("plan_overdue_events", planOverdueHandler.EventTypes()),
	)

	eventBus.Start()
	defer eventBus.Stop()

	// Inject event bus into services that publish events
	lotService.SetEventPublisher(eventBus)
	planService.SetEventPublisher(eventBus)

	// Summary cache: Redis when reachable, in-memory fallback otherwise
	if cfg.Cache.Enabled {
		summaryCache, err := cache.NewSummaryCacheFactory(
			cache.RedisConfig{
				Host:     cfg.Redis.Host,
				Port:     cfg.Redis.Port,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			},
			cfg.Cache.SummaryTTL,
			cache.WithLogger(log),
			cache.WithInMemoryFallback(),
		).Create()
		if err != nil {
			log.Fatal("Failed to create summary cache", zap.Error(err))
		}
		lotService.SetSummaryCache(summaryCache)
		log.Info("Summary cache enabled", zap.Duration("ttl", cfg.Cache.SummaryTTL))
	}

	// Periodic overdue sweep
	sweepDone := make(chan struct{})
	if cfg.Sweep.Enabled {
		go runOverdueSweep(planService, cfg.Sweep.CheckInterval, sweepDone, log)
		log.Info("Overdue sweep started", zap.Duration("check_interval", cfg.Sweep.CheckInterval))
	}
	defer close(sweepDone)

	// Initialize HTTP handlers
	lotHandler := handler.NewLotHandler(lotService)
	planHandler := handler.NewPaymentPlanHandler(planService)
	workflowHandler := handler.NewWorkflowHandler(assignAndPlanWorkflow)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. Tracing - Record spans (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.Telemetry.Enabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	// Setup API routes
	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(lotHandler).
		Register(planHandler).
		Register(workflowHandler).
		Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// runOverdueSweep periodically re-evaluates active payment plans so plans
// whose installments lapsed without a payment request still flip to overdue.
func runOverdueSweep(planService *presaleapp.PaymentPlanService, interval time.Duration, done <-chan struct{}, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			result, err := planService.SweepOverdue(ctx, time.Now())
			cancel()
			if err != nil {
				log.Error("Overdue sweep failed", zap.Error(err))
				continue
			}
			log.Info("Overdue sweep completed",
				zap.Int("plans_checked", result.PlansChecked),
				zap.Int("plans_overdue", result.PlansOverdue),
			)
		}
	}
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
