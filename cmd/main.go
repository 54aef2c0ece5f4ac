package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	confirmPaymentHandler "github.com/m04kA/SMC-SeatReservationService/internal/api/handlers/confirm_payment"
	createBookingHandler "github.com/m04kA/SMC-SeatReservationService/internal/api/handlers/create_booking"
	getOpenStatusHandler "github.com/m04kA/SMC-SeatReservationService/internal/api/handlers/get_open_status"
	getReservationHandler "github.com/m04kA/SMC-SeatReservationService/internal/api/handlers/get_reservation"
	getUserReservationsHandler "github.com/m04kA/SMC-SeatReservationService/internal/api/handlers/get_user_reservations"
	getVenueAvailabilityHandler "github.com/m04kA/SMC-SeatReservationService/internal/api/handlers/get_venue_availability"
	quoteBookingHandler "github.com/m04kA/SMC-SeatReservationService/internal/api/handlers/quote_booking"
	"github.com/m04kA/SMC-SeatReservationService/internal/api/middleware"
	"github.com/m04kA/SMC-SeatReservationService/internal/civiltime"
	"github.com/m04kA/SMC-SeatReservationService/internal/config"
	"github.com/m04kA/SMC-SeatReservationService/internal/hours"
	hoursCache "github.com/m04kA/SMC-SeatReservationService/internal/infra/cache/hours"
	notificationRepo "github.com/m04kA/SMC-SeatReservationService/internal/infra/storage/notification"
	reservationRepo "github.com/m04kA/SMC-SeatReservationService/internal/infra/storage/reservation"
	venueRepo "github.com/m04kA/SMC-SeatReservationService/internal/infra/storage/venue"
	"github.com/m04kA/SMC-SeatReservationService/internal/integrations/bookingpolicy"
	"github.com/m04kA/SMC-SeatReservationService/internal/pricing"
	hoursService "github.com/m04kA/SMC-SeatReservationService/internal/service/hours"
	reservationsService "github.com/m04kA/SMC-SeatReservationService/internal/service/reservations"
	confirmPaymentUC "github.com/m04kA/SMC-SeatReservationService/internal/usecase/confirm_payment"
	createBookingUC "github.com/m04kA/SMC-SeatReservationService/internal/usecase/create_booking"
	getOpenStatusUC "github.com/m04kA/SMC-SeatReservationService/internal/usecase/get_open_status"
	getVenueAvailabilityUC "github.com/m04kA/SMC-SeatReservationService/internal/usecase/get_venue_availability"
	"github.com/m04kA/SMC-SeatReservationService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SeatReservationService/pkg/logger"
	"github.com/m04kA/SMC-SeatReservationService/pkg/metrics"
	"github.com/m04kA/SMC-SeatReservationService/pkg/tracing"
	"github.com/m04kA/SMC-SeatReservationService/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load(configPath())
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-SeatReservationService...")

	// Трейсинг (no-op, если выключен)
	shutdownTracing, err := tracing.Setup(context.Background(), tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Metrics.ServiceName,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		log.Fatal("Failed to initialize tracing: %v", err)
	}

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var recorder dbmetrics.Recorder
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		recorder = metricsCollector
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	wrappedDB := dbmetrics.WrapWithDefault(db, recorder, stopMetricsCh)

	txOpts := []txmanager.Option{txmanager.WithMaxRetries(cfg.Booking.TxMaxRetries)}
	if metricsCollector != nil {
		txOpts = append(txOpts, txmanager.WithRetryObserver(metricsCollector))
	}
	txMgr := txmanager.NewTransactionManager(wrappedDB, txOpts...)

	// Кэш часов работы (Redis опционален)
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			// Без кэша сервис работает, часы читаются из БД
			log.Warn("Redis is unavailable, hours cache degrades to database reads: %v", err)
		} else {
			log.Info("Connected to Redis at %s", cfg.Redis.Addr)
		}
	}
	cache := hoursCache.NewCache(redisClient, time.Duration(cfg.Redis.HoursTTLSeconds)*time.Second)

	// Инициализируем репозитории
	venueRepository := venueRepo.NewRepository(wrappedDB)
	reservationRepository := reservationRepo.NewRepository(wrappedDB)
	notificationRepository := notificationRepo.NewRepository(wrappedDB)

	// Часовые пояса и часы работы
	zones := civiltime.NewZones(cfg.Booking.DefaultTimezone)
	// Предупреждения о качестве данных площадок помечены отдельным компонентом
	resolver := hours.NewResolver(zones, log.WithField("component", "hours"))
	hoursSvc := hoursService.NewService(venueRepository, cache, metricsCollector, log)

	// Политики бронирования: локальный дневной лимит и, при наличии, внешний сервис
	policy := bookingpolicy.Chain{
		bookingpolicy.NewDailyLimit(cfg.Booking.MaxBookingsPerUserPerDay, reservationRepository, hoursSvc, zones,
			&createBookingUC.RealTimeProvider{}),
	}
	if cfg.Booking.PolicyServiceURL != "" {
		policy = append(policy, bookingpolicy.NewClient(
			cfg.Booking.PolicyServiceURL,
			time.Duration(cfg.Booking.PolicyServiceTimeout)*time.Second,
			log,
		))
		log.Info("Booking policy service enabled (url=%s)", cfg.Booking.PolicyServiceURL)
	}

	// Ценообразование
	pricingPolicy, err := pricing.NewPolicy(
		cfg.Pricing.ProcessingFeePercent,
		cfg.Pricing.ProcessingFeeFixedCents,
		cfg.Pricing.CommissionRate,
	)
	if err != nil {
		log.Fatal("Invalid pricing policy: %v", err)
	}
	pricingEngine := pricing.NewEngine(pricingPolicy)

	// Инициализируем сервисы
	reservationSvc := reservationsService.NewService(reservationRepository, log)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		venueRepository,
		reservationRepository,
		notificationRepository,
		hoursSvc,
		resolver,
		policy,
		pricingEngine,
		txMgr,
		metricsCollector,
		createBookingUC.Config{PendingTTL: time.Duration(cfg.Booking.PendingTTLSeconds) * time.Second},
		log,
	)

	confirmPaymentUseCase := confirmPaymentUC.NewUseCase(
		reservationRepository,
		venueRepository,
		notificationRepository,
		zones,
		txMgr,
		log,
	)

	getOpenStatusUseCase := getOpenStatusUC.NewUseCase(hoursSvc, resolver, log)

	getVenueAvailabilityUseCase := getVenueAvailabilityUC.NewUseCase(
		venueRepository,
		reservationRepository,
		hoursSvc,
		resolver,
		log,
	)

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	quoteBooking := quoteBookingHandler.NewHandler(createBookingUseCase, log)
	confirmPayment := confirmPaymentHandler.NewHandler(confirmPaymentUseCase, log)
	getOpenStatus := getOpenStatusHandler.NewHandler(getOpenStatusUseCase, log)
	getVenueAvailability := getVenueAvailabilityHandler.NewHandler(getVenueAvailabilityUseCase, log)
	getReservation := getReservationHandler.NewHandler(reservationSvc, log)
	getUserReservations := getUserReservationsHandler.NewHandler(reservationSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.Tracing(cfg.Metrics.ServiceName))

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Разметка доступности для выдачи площадок
	api.HandleFunc("/venues/availability", getVenueAvailability.Handle).Methods(http.MethodGet)

	// Статус "открыто/закрыто"
	api.HandleFunc("/venues/{venueId}/open-status", getOpenStatus.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/quote", quoteBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/reservations/{reservationId}", getReservation.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/users/{userId}/reservations", getUserReservations.Handle).Methods(http.MethodGet)

	// ============================================================
	// INTERNAL ROUTES (сервис-сервис, закрыты на уровне сети)
	// ============================================================

	internalAPI := r.PathPrefix("/internal/v1").Subrouter()
	internalAPI.HandleFunc("/reservations/{reservationId}/confirm-payment", confirmPayment.Handle).Methods(http.MethodPost)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	close(stopMetricsCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("Failed to flush traces: %v", err)
	}

	log.Info("Server stopped gracefully")
}

// configPath путь к конфигурации: SRS_CONFIG или config.toml в рабочей директории
func configPath() string {
	if p := os.Getenv("SRS_CONFIG"); p != "" {
		return p
	}
	return "config.toml"
}
