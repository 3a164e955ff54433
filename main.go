package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"rental-cloud/internal/audit"
	"rental-cloud/internal/auth"
	"rental-cloud/internal/observability/metrics"
	partnerrepo "rental-cloud/internal/partner/infrastructure/postgres"
	partnerhttp "rental-cloud/internal/partner/interfaces"
	"rental-cloud/internal/settlement/adapters/bookings"
	settlementapp "rental-cloud/internal/settlement/application"
	settlementrepo "rental-cloud/internal/settlement/infrastructure/postgres"
	"rental-cloud/internal/settlement/infrastructure/rates"
	settlementinterfaces "rental-cloud/internal/settlement/interfaces"
	"rental-cloud/internal/settlement/notify"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	engineMetrics := metrics.New()
	auditRepo := audit.NewRepository(db)

	partnerDirectory := partnerrepo.NewPartnerDirectory(db)
	revenueReader := bookings.NewRevenueReader(db)
	settlementRepo := settlementrepo.NewSettlementRepository(db)

	rateProvider, err := rates.LoadProvider()
	if err != nil {
		logger.Fatalf("commission rates error: %v", err)
	}

	runOpts := []settlementapp.RunOption{
		settlementapp.WithMetrics(engineMetrics),
		settlementapp.WithConcurrency(cfg.Concurrency),
		settlementapp.WithPartnerTimeout(cfg.PartnerTimeout),
		settlementapp.WithCurrency(cfg.Currency),
	}
	if cfg.SMTPAddr != "" {
		notifier, err := notify.NewSMTPNotifier(cfg.SMTPAddr, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
		if err != nil {
			logger.Fatalf("smtp notifier error: %v", err)
		}
		runOpts = append(runOpts, settlementapp.WithNotifier(notifier))
	} else {
		logger.Printf("SMTP_ADDR not set, statement emails disabled")
	}

	runService, err := settlementapp.NewRunService(
		partnerDirectory,
		revenueReader,
		rateProvider,
		settlementRepo,
		settlementapp.SystemClock{},
		logger,
		runOpts...,
	)
	if err != nil {
		logger.Fatalf("run service error: %v", err)
	}

	if cfg.ScheduleDay > 0 {
		scheduler := settlementapp.NewScheduler(runService, cfg.ScheduleDay, cfg.ScheduleAt, logger)
		go scheduler.Start(context.Background())
	}

	runHandler, err := settlementinterfaces.NewRunHandler(runService, auditRepo)
	if err != nil {
		logger.Fatalf("run handler error: %v", err)
	}
	settlementHandler, err := settlementinterfaces.NewSettlementHandler(settlementRepo, partnerDirectory, engineMetrics, auditRepo)
	if err != nil {
		logger.Fatalf("settlement handler error: %v", err)
	}
	exportHandler, err := settlementinterfaces.NewExportHandler(settlementRepo, auditRepo)
	if err != nil {
		logger.Fatalf("export handler error: %v", err)
	}
	partnerHandler, err := partnerhttp.NewHandler(partnerDirectory)
	if err != nil {
		logger.Fatalf("partner handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics", "/api/v1/settlements/run"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)
	triggerAuth := auth.NewTriggerAuthMiddleware([]byte(cfg.CronSecret))

	mux := http.NewServeMux()
	mux.Handle("/api/v1/settlements/run", triggerAuth.Wrap(runHandler))
	mux.Handle("/api/v1/settlements", settlementHandler)
	mux.Handle("/api/v1/settlements/", settlementHandler)
	mux.Handle("/api/v1/partners", partnerHandler)
	mux.Handle("/api/v1/exports/settlements.csv", exportHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL    string
	HTTPAddr       string
	JWTSecret      string
	CronSecret     string
	Currency       string
	Concurrency    int
	PartnerTimeout time.Duration
	ScheduleDay    int
	ScheduleAt     string
	SMTPAddr       string
	SMTPUsername   string
	SMTPPassword   string
	SMTPFrom       string
}

func loadConfig() config {
	cfg := config{
		DatabaseURL:    getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:       getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:      getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		CronSecret:     getenvDefault("SETTLEMENT_CRON_SECRET", ""),
		Currency:       getenvDefault("CURRENCY", "DKK"),
		Concurrency:    getenvIntDefault("SETTLEMENT_CONCURRENCY", 4),
		PartnerTimeout: getenvDuration("SETTLEMENT_PARTNER_TIMEOUT", 30*time.Second),
		ScheduleDay:    getenvIntDefault("SETTLEMENT_SCHEDULE_DAY", 1),
		ScheduleAt:     getenvDefault("SETTLEMENT_SCHEDULE_AT", "03:30"),
		SMTPAddr:       getenvDefault("SMTP_ADDR", ""),
		SMTPUsername:   getenvDefault("SMTP_USERNAME", ""),
		SMTPPassword:   getenvDefault("SMTP_PASSWORD", ""),
		SMTPFrom:       getenvDefault("SMTP_FROM", "statements@rental-cloud.local"),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	if cfg.CronSecret == "" {
		log.Fatal("SETTLEMENT_CRON_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
