package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"studiobook/internal/config"
	"studiobook/internal/db"
	"studiobook/internal/handlers"
	"studiobook/internal/httpx"
	"studiobook/internal/kafkax"
	"studiobook/internal/metrics"
	"studiobook/internal/notify"
	"studiobook/internal/otelx"
	"studiobook/internal/outbox"
	"studiobook/internal/runtime"
	"studiobook/internal/storage"
)

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func main() {
	_ = godotenv.Load()

	service := config.String("SERVICE_NAME", "studiobook")
	port, err := config.Port("PORT", "8080")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	loc, err := config.Location("BUSINESS_TIMEZONE", "UTC")
	if err != nil {
		logger.Error("invalid business timezone", "err", err)
		panic(err)
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		logger.Error("migrations failed", "err", err)
		panic(err)
	}

	appointments := storage.NewAppointments(pool)
	services := storage.NewServices(pool)
	clients := storage.NewClients(pool)
	schedule := storage.NewSchedule(pool)
	outboxRepo := outbox.NewRepository(pool)

	kafkaBrokers := config.String("KAFKA_BROKERS", "")
	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   kafkaBrokers,
		Topic:     config.String("KAFKA_TOPIC", "studiobook.appointments"),
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	sender := notify.NewSMTPSender(
		config.String("SMTP_HOST", ""),
		config.String("SMTP_PORT", "25"),
		config.String("SMTP_FROM", ""),
	)
	notifier := notify.NewDispatcher(sender, logger, config.String("STUDIO_EMAIL", ""))

	bookingHandler := handlers.NewBookingHandler(
		pool, appointments, services, clients, schedule,
		outboxRepo, notifier, logger, time.Now, loc,
	)
	catalogHandler := handlers.NewCatalogHandler(services, clients, logger)
	scheduleHandler := handlers.NewScheduleHandler(schedule, logger, time.Now, loc)

	readyChecks := []runtime.ReadyCheck{
		{Name: "db", Check: db.ReadyCheck(pool)},
	}
	if kafkaBrokers != "" {
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(kafkaBrokers)})
	}
	mux := runtime.NewBaseMux(readyChecks...)
	mux.Handle("/metrics", promhttp.Handler())
	metrics.Register()

	mux.HandleFunc("/api/v1/services", catalogHandler.ListPublic)
	mux.HandleFunc("/api/v1/services/{id}/availability", bookingHandler.Availability)
	mux.HandleFunc("/api/v1/business-hours", scheduleHandler.PublicHours)
	mux.HandleFunc("/api/v1/appointments", bookingHandler.Create)

	mux.HandleFunc("/api/v1/admin/services", catalogHandler.ListAdmin)
	mux.HandleFunc("/api/v1/admin/services/{id}", catalogHandler.Service)
	mux.HandleFunc("/api/v1/admin/clients", catalogHandler.ListClients)
	mux.HandleFunc("/api/v1/admin/clients/{id}", catalogHandler.Client)
	mux.HandleFunc("/api/v1/admin/appointments", bookingHandler.List)
	mux.HandleFunc("/api/v1/admin/appointments/{id}/confirm", bookingHandler.Confirm)
	mux.HandleFunc("/api/v1/admin/appointments/{id}/cancel", bookingHandler.Cancel)
	mux.HandleFunc("/api/v1/admin/business-hours", scheduleHandler.AdminHours)
	mux.HandleFunc("/api/v1/admin/blackouts", scheduleHandler.Blackouts)
	mux.HandleFunc("/api/v1/admin/blackouts/{date}", scheduleHandler.Blackout)

	rateLimit := config.Int("RATE_LIMIT_PER_MINUTE", 120)
	var limiterMiddleware httpx.Middleware
	if redisAddr := config.String("REDIS_ADDR", ""); redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
		limiterMiddleware = httpx.NewRedisRateLimiter(rdb, rateLimit, time.Minute, service).
			Middleware(logger, config.Bool("RATE_LIMIT_FAIL_OPEN", true))
	} else {
		limiterMiddleware = httpx.NewRateLimiter(rateLimit, time.Minute).Middleware()
	}

	cors := httpx.CORSPolicy{
		AllowedOrigins: splitList(config.String("CORS_ALLOWED_ORIGINS", "*")),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", "Authorization", httpx.RequestIDHeader},
	}

	httpHandler := httpx.Chain(mux,
		httpx.WithCORS(cors),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(1<<20),
		httpx.WithTimeout(15*time.Second),
		limiterMiddleware,
	)
	httpHandler = otelhttp.NewHandler(httpHandler, service)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
