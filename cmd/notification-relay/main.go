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

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/m04kA/SMC-SeatReservationService/internal/config"
	"github.com/m04kA/SMC-SeatReservationService/internal/domain"
	notificationRepo "github.com/m04kA/SMC-SeatReservationService/internal/infra/storage/notification"
	"github.com/m04kA/SMC-SeatReservationService/internal/integrations/rabbitmq"
	relay "github.com/m04kA/SMC-SeatReservationService/internal/worker/notification_relay"
	"github.com/m04kA/SMC-SeatReservationService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SeatReservationService/pkg/logger"
	"github.com/m04kA/SMC-SeatReservationService/pkg/metrics"
	"github.com/m04kA/SMC-SeatReservationService/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	path := os.Getenv("SRS_CONFIG")
	if path == "" {
		path = "config.toml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting notification relay...")

	// Метрики
	var metricsCollector *metrics.Metrics
	var recorder dbmetrics.Recorder
	stopMetricsCh := make(chan struct{})
	defer close(stopMetricsCh)

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName + "_relay")
		recorder = metricsCollector

		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, promhttp.Handler())
		metricsSrv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Relay.MetricsPort),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("Metrics server failed: %v", err)
			}
		}()
		defer metricsSrv.Close()
		log.Info("Metrics exposed at :%d%s", cfg.Relay.MetricsPort, cfg.Metrics.Path)
	}

	// База данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}

	wrappedDB := dbmetrics.WrapWithDefault(db, recorder, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Брокер
	publisher, err := rabbitmq.Dial(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
	if err != nil {
		log.Fatal("Failed to connect to RabbitMQ: %v", err)
	}
	defer publisher.Close()
	log.Info("Connected to RabbitMQ (exchange=%s)", cfg.RabbitMQ.Exchange)

	routingKeys := map[string]string{}
	if cfg.RabbitMQ.RoutingKey != "" {
		routingKeys[domain.EventBookingConfirmation] = cfg.RabbitMQ.RoutingKey
	}

	worker := relay.NewRelay(
		notificationRepo.NewRepository(wrappedDB),
		publisher,
		txMgr,
		metricsCollector,
		relay.Config{
			Interval:    time.Duration(cfg.Relay.PollIntervalSeconds) * time.Second,
			BatchSize:   cfg.Relay.BatchSize,
			MaxAttempts: cfg.Relay.MaxAttempts,
			RoutingKeys: routingKeys,
		},
		log.WithField("component", "notification_relay"),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker.Run(ctx)

	log.Info("Notification relay stopped")
}
