// Package notification_relay переносит уведомления из outbox в брокер сообщений.
// Доставка at-least-once: потребители дедуплицируют по MessageID (dedupe key записи).
package notification_relay

import (
	"context"
	"fmt"
	"time"
)

const (
	resultPublished = "published"
	resultFailed    = "failed"
)

// Config параметры релея
type Config struct {
	Interval    time.Duration
	BatchSize   int
	MaxAttempts int
	// RoutingKeys маршрутизация по типу события; если типа нет в карте, ключом служит сам тип
	RoutingKeys map[string]string
}

// Stats итог одного прохода
type Stats struct {
	Published int
	Failed    int
}

// Relay периодически публикует неотправленные уведомления
type Relay struct {
	repo         NotificationRepository
	publisher    Publisher
	txManager    TransactionManager
	metrics      Metrics
	cfg          Config
	timeProvider TimeProvider
	logger       Logger
}

// NewRelay создает релей. metrics может быть nil
func NewRelay(
	repo NotificationRepository,
	publisher Publisher,
	txManager TransactionManager,
	metrics Metrics,
	cfg Config,
	logger Logger,
) *Relay {
	return &Relay{
		repo:         repo,
		publisher:    publisher,
		txManager:    txManager,
		metrics:      metrics,
		cfg:          cfg,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени (для тестов)
func (r *Relay) WithTimeProvider(tp TimeProvider) *Relay {
	r.timeProvider = tp
	return r
}

// Run обрабатывает outbox до отмены ctx
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	r.logger.Info("NotificationRelay: started, interval=%s, batch=%d", r.cfg.Interval, r.cfg.BatchSize)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("NotificationRelay: stopped")
			return
		case <-ticker.C:
			r.drain(ctx)
		}
	}
}

// drain публикует пачку за пачкой, пока outbox не опустеет.
// После неудачной публикации остаток ждёт следующего тика: не больше одной попытки на запись за тик.
func (r *Relay) drain(ctx context.Context) {
	for ctx.Err() == nil {
		stats, err := r.RelayOnce(ctx)
		if err != nil {
			r.logger.Error("NotificationRelay: %v", err)
			return
		}
		if stats.Failed > 0 || stats.Published < r.cfg.BatchSize {
			return
		}
	}
}

// RelayOnce публикует одну пачку уведомлений в одной транзакции
// Строки остаются заблокированными до коммита, поэтому параллельные релеи их не видят.
func (r *Relay) RelayOnce(ctx context.Context) (Stats, error) {
	var stats Stats

	err := r.txManager.Do(ctx, func(ctx context.Context) error {
		// 1. Выбираем неотправленные записи
		pending, err := r.repo.FetchPending(ctx, r.cfg.BatchSize, r.cfg.MaxAttempts)
		if err != nil {
			return fmt.Errorf("fetch pending: %w", err)
		}

		for _, n := range pending {
			// 2. Публикуем в брокер
			pubErr := r.publisher.Publish(ctx, rabbitmqMessage(n, r.routingKey(n.EventType)))
			if pubErr != nil {
				r.logger.Warn("NotificationRelay: publish id=%s key=%s attempt=%d failed: %v",
					n.ID, n.DedupeKey, n.Attempts+1, pubErr)

				// 3. Запоминаем ошибку, запись будет выбрана снова
				if err := r.repo.MarkFailed(ctx, n.ID, pubErr.Error()); err != nil {
					return fmt.Errorf("mark failed id=%s: %w", n.ID, err)
				}
				stats.Failed++
				r.record(resultFailed)
				continue
			}

			// 3. Отмечаем запись отправленной
			if err := r.repo.MarkPublished(ctx, n.ID, r.timeProvider.Now()); err != nil {
				return fmt.Errorf("mark published id=%s: %w", n.ID, err)
			}
			stats.Published++
			r.record(resultPublished)
		}

		return nil
	})
	if err != nil {
		return Stats{}, fmt.Errorf("%w: %v", ErrRelay, err)
	}

	if stats.Published > 0 || stats.Failed > 0 {
		r.logger.Info("NotificationRelay: published=%d failed=%d", stats.Published, stats.Failed)
	}

	return stats, nil
}

func (r *Relay) routingKey(eventType string) string {
	if key, ok := r.cfg.RoutingKeys[eventType]; ok && key != "" {
		return key
	}
	return eventType
}

func (r *Relay) record(result string) {
	if r.metrics != nil {
		r.metrics.IncNotificationRelayed(result)
	}
}
