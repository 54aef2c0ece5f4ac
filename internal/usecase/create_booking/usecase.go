package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/m04kA/SMC-SeatReservationService/internal/domain"
	"github.com/m04kA/SMC-SeatReservationService/pkg/tracing"
)

const (
	outcomeActive   = "active"
	outcomePending  = "pending"
	outcomeConflict = "conflict"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

var tracer = tracing.Tracer("usecase/create_booking")

// Config параметры use case
type Config struct {
	PendingTTL time.Duration // Срок оплаты платного бронирования
}

// UseCase use case для создания бронирования
type UseCase struct {
	venueRepo        VenueRepository
	reservationRepo  ReservationRepository
	notificationRepo NotificationRepository
	hoursProvider    HoursProvider
	hours            HoursValidator
	policy           PolicyGuard
	pricing          PricingEngine
	txManager        TransactionManager
	metrics          Metrics
	timeProvider     TimeProvider
	newID            IDGenerator
	pendingTTL       time.Duration
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	venueRepo VenueRepository,
	reservationRepo ReservationRepository,
	notificationRepo NotificationRepository,
	hoursProvider HoursProvider,
	hours HoursValidator,
	policy PolicyGuard,
	pricing PricingEngine,
	txManager TransactionManager,
	metrics Metrics,
	cfg Config,
	logger Logger,
) *UseCase {
	return &UseCase{
		venueRepo:        venueRepo,
		reservationRepo:  reservationRepo,
		notificationRepo: notificationRepo,
		hoursProvider:    hoursProvider,
		hours:            hours,
		policy:           policy,
		pricing:          pricing,
		txManager:        txManager,
		metrics:          metrics,
		timeProvider:     &RealTimeProvider{},
		newID:            uuid.New,
		pendingTTL:       cfg.PendingTTL,
		logger:           logger,
	}
}

// WithTimeProvider подменяет источник времени (для тестов)
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case создания бронирования
// Проверки выполняются без блокировок, запись - в сериализуемой транзакции с повторной проверкой
func (uc *UseCase) Execute(ctx context.Context, req *Request) (resp *Response, err error) {
	ctx, span := tracer.Start(ctx, "CreateBooking")
	defer func() {
		uc.finish(span, req, resp, err)
	}()

	uc.logger.Info("CreateBooking: user=%d, venue=%d, mode=%s, seats=%v, table=%d, start=%s, end=%s",
		req.UserID, req.VenueID, req.Mode, req.SeatIDs, req.TableID,
		req.StartAt.UTC().Format(time.RFC3339), req.EndAt.UTC().Format(time.RFC3339))

	// 1. Получаем текущее время
	now := uc.timeProvider.Now()

	// 2. Строим контекст бронирования
	bc, err := uc.buildContext(ctx, req, now)
	if err != nil {
		return nil, err
	}

	// 3. Считаем стоимость
	price, err := uc.pricing.Quote(bc.RatePerHourCents, bc.Interval.Duration())
	if err != nil {
		uc.logger.Error("CreateBooking: pricing failed: %v", err)
		return nil, fmt.Errorf("%w: pricing failed: %v", ErrInternal, err)
	}

	// 4. Записываем бронирование
	res, err := uc.write(ctx, bc, price, now)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateBooking: successfully created reservation id=%s status=%s total=%d",
		res.ID, res.Status, res.TotalChargeCents)

	return toResponse(res, bc), nil
}

func (uc *UseCase) finish(span trace.Span, req *Request, resp *Response, err error) {
	outcome := outcomeError
	switch {
	case err == nil && resp != nil && resp.Status == string(domain.StatusPending):
		outcome = outcomePending
	case err == nil:
		outcome = outcomeActive
	case errors.Is(err, ErrConflict):
		outcome = outcomeConflict
	case !errors.Is(err, ErrInternal):
		outcome = outcomeRejected
	}

	if uc.metrics != nil {
		uc.metrics.IncBooking(string(req.Mode), outcome)
	}

	span.SetAttributes(
		attribute.Int64("venue.id", req.VenueID),
		attribute.String("booking.mode", string(req.Mode)),
		attribute.String("booking.outcome", outcome),
	)
	if err != nil && outcome == outcomeError {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
