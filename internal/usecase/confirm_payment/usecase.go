package confirm_payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SeatReservationService/internal/domain"
	reservationRepo "github.com/m04kA/SMC-SeatReservationService/internal/infra/storage/reservation"
)

// UseCase use case подтверждения оплаты бронирования
type UseCase struct {
	reservationRepo  ReservationRepository
	venueRepo        VenueRepository
	notificationRepo NotificationRepository
	zones            ZoneResolver
	txManager        TransactionManager
	timeProvider     TimeProvider
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepo ReservationRepository,
	venueRepo VenueRepository,
	notificationRepo NotificationRepository,
	zones ZoneResolver,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		reservationRepo:  reservationRepo,
		venueRepo:        venueRepo,
		notificationRepo: notificationRepo,
		zones:            zones,
		txManager:        txManager,
		timeProvider:     &RealTimeProvider{},
		logger:           logger,
	}
}

// WithTimeProvider подменяет источник времени (для тестов)
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute переводит pending-бронирование в active и ставит подтверждение в outbox
// Повторный вызов для активного бронирования идемпотентен: outbox дедуплицирует подтверждение
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("ConfirmPayment: reservation=%s", req.ReservationID)

	// 1. Валидация входных данных
	ref := strings.TrimSpace(req.PaymentRef)
	if req.ReservationID == uuid.Nil {
		return nil, fmt.Errorf("%w: reservationId is required", ErrInvalidInput)
	}
	if ref == "" || len(ref) > maxPaymentRefLength {
		return nil, fmt.Errorf("%w: paymentRef must be 1..%d characters", ErrInvalidInput, maxPaymentRefLength)
	}

	now := uc.timeProvider.Now()
	resp := &Response{ReservationID: req.ReservationID}

	// 2. Всё остальное - в одной транзакции под блокировкой строки бронирования
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		res, err := uc.reservationRepo.GetByID(txCtx, req.ReservationID)
		if err != nil {
			if errors.Is(err, reservationRepo.ErrReservationNotFound) {
				return ErrReservationNotFound
			}
			return fmt.Errorf("%w: failed to get reservation: %w", ErrInternal, err)
		}

		// 2.1. Проверяем статус
		switch {
		case res.IsCancelled():
			return ErrReservationCancelled
		case res.Status == domain.StatusActive:
			resp.AlreadyActive = true
		case res.IsExpired(now):
			return ErrReservationExpired
		default:
			// 2.2. Активируем
			if err := uc.reservationRepo.Activate(txCtx, res.ID, &ref); err != nil {
				return fmt.Errorf("%w: failed to activate reservation: %w", ErrInternal, err)
			}
			res.Status = domain.StatusActive
			res.ExpiresAt = nil
			res.PaymentRef = &ref
		}

		// 2.3. Ставим подтверждение в outbox
		n, err := uc.confirmation(txCtx, res)
		if err != nil {
			return err
		}
		if _, err := uc.notificationRepo.Enqueue(txCtx, n); err != nil {
			return fmt.Errorf("%w: failed to enqueue confirmation: %w", ErrInternal, err)
		}

		resp.Status = string(res.Status)
		resp.NotificationID = n.DedupeKey
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrInternal) {
			uc.logger.Error("ConfirmPayment: reservation=%s failed: %v", req.ReservationID, err)
		} else {
			uc.logger.Warn("ConfirmPayment: reservation=%s rejected: %v", req.ReservationID, err)
		}
		if errors.Is(err, ErrReservationNotFound) || errors.Is(err, ErrReservationCancelled) ||
			errors.Is(err, ErrReservationExpired) || errors.Is(err, ErrInternal) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	uc.logger.Info("ConfirmPayment: reservation=%s is active (already=%t)", req.ReservationID, resp.AlreadyActive)
	return resp, nil
}

func (uc *UseCase) confirmation(ctx context.Context, res *domain.Reservation) (*domain.Notification, error) {
	venue, err := uc.venueRepo.FindVenueByID(ctx, res.VenueID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get venue: %w", ErrInternal, err)
	}

	loc, ok := uc.zones.Resolve(venue.Timezone)
	if !ok {
		uc.logger.Warn("ConfirmPayment: venue=%d has unusable timezone %q, using %s", venue.ID, venue.Timezone, loc)
	}

	n, err := domain.NewBookingConfirmation(res, loc.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return n, nil
}
