package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"

	"github.com/convoly/chat-api/internal/config"
	"github.com/convoly/chat-api/internal/database"
	"github.com/convoly/chat-api/internal/handlers"
	"github.com/convoly/chat-api/internal/logger"
	"github.com/convoly/chat-api/internal/middleware"
	"github.com/convoly/chat-api/internal/models"
	"github.com/convoly/chat-api/internal/ratelimit"
	"github.com/convoly/chat-api/internal/services/token"
	"github.com/convoly/chat-api/internal/telemetry"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.Duration("rate_limit_window", cfg.RateLimitWindow),
		zap.Int("rate_limit_max", cfg.RateLimitMax),
		zap.Int("rate_limit_max_chat", cfg.RateLimitMaxChat),
		zap.String("telemetry_sink", cfg.TelemetrySink),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	// Initialize OpenTelemetry if enabled
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), "chat-api", cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := tp.Shutdown(shutdownCtx); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_database")

	// Admission counters are per-instance and in-memory. The sweeper GCs
	// expired windows for the life of the process.
	store := ratelimit.NewStore(ratelimit.Config{
		Window:          cfg.RateLimitWindow,
		MaxRequests:     cfg.RateLimitMax,
		MaxRequestsChat: cfg.RateLimitMaxChat,
		SweepInterval:   cfg.RateLimitSweepInterval,
	})
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go store.StartSweeper(sweepCtx)

	sink := buildSink(cfg, zapLogger)
	defer func() {
		if err := sink.Close(); err != nil {
			zapLogger.Warn("failed_to_close_telemetry_sink", zap.Error(err))
		}
	}()

	var keys *token.KeySetCache
	if cfg.JWKSURL != "" {
		keys = token.NewKeySetCache(cfg.JWKSURL, cfg.JWKSCacheMaxAge)
	}
	verifier := token.NewVerifier(cfg.JWTSecret, keys, cfg.JWTAudience, cfg.JWTIssuer)

	profileRepo := database.NewProfileRepository(db)

	healthChecker := handlers.NewHealthChecker(db, pingerOf(sink))
	statsHandler := handlers.NewStatsHandler(store)
	webhookHandler := handlers.NewWebhookHandler(profileRepo, zapLogger)

	r := mux.NewRouter()

	// Middleware executes in registration order, first registered outermost.
	if cfg.OTELEnabled {
		r.Use(otelmux.Middleware("chat-api"))
	}
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.CORS(cfg.FrontendURL))
	r.Use(middleware.RequestID())
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(middleware.DefaultRequestTimeout))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Audit(zapLogger))
	r.Use(middleware.Logging(zapLogger))
	// Verification runs before admission so counters key on identity.
	r.Use(middleware.Auth(verifier, profileRepo, zapLogger))
	r.Use(middleware.RateLimit(store, sink, zapLogger))

	// Public routes, excluded from verification and admission
	r.HandleFunc("/", handlers.Root).Methods("GET")
	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")
	r.HandleFunc("/version", handlers.GetVersion).Methods("GET")
	r.HandleFunc("/docs", handlers.Docs).Methods("GET")
	r.HandleFunc("/api/v1/webhooks/signup", webhookHandler.Signup).Methods("POST")

	// Protected routes
	r.HandleFunc("/api/v1/me", handlers.GetMe).Methods("GET")
	r.HandleFunc("/api/v1/ai/chat", handlers.PostChat).Methods("POST")
	r.Handle("/rate-limit/stats",
		middleware.RequireRole(models.RoleAdmin, zapLogger)(http.HandlerFunc(statsHandler.GetStats)),
	).Methods("GET")

	// Preflight for any route; CORS middleware fills in the headers
	r.PathPrefix("/").Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		zapLogger.Info("server_listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server_failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	zapLogger.Info("shutting_down", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("graceful_shutdown_failed", zap.Error(err))
	}
	zapLogger.Info("server_stopped")
}

// buildSink selects the decision telemetry sink. Sink failures never block
// startup; admission works without telemetry.
func buildSink(cfg *config.Config, zapLogger *zap.Logger) telemetry.Sink {
	switch cfg.TelemetrySink {
	case "redis":
		sink, err := telemetry.NewRedisSink(cfg.RedisURL, zapLogger)
		if err != nil {
			zapLogger.Warn("failed_to_connect_to_redis_sink", zap.Error(err))
			return telemetry.NoopSink{}
		}
		zapLogger.Info("connected_to_redis_sink")
		return sink
	case "rabbitmq":
		sink, err := telemetry.NewAMQPSink(cfg.RabbitMQURL, zapLogger)
		if err != nil {
			zapLogger.Warn("failed_to_connect_to_rabbitmq_sink", zap.Error(err))
			return telemetry.NoopSink{}
		}
		zapLogger.Info("connected_to_rabbitmq_sink")
		return sink
	default:
		return telemetry.NoopSink{}
	}
}

func pingerOf(sink telemetry.Sink) telemetry.Pinger {
	if p, ok := sink.(telemetry.Pinger); ok {
		return p
	}
	return nil
}
