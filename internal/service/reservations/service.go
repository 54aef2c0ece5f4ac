package reservations

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SeatReservationService/internal/domain"
	reservationRepo "github.com/m04kA/SMC-SeatReservationService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-SeatReservationService/internal/service/reservations/models"
)

// Service сервис чтения бронирований
type Service struct {
	reservationRepo ReservationRepository
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(reservationRepo ReservationRepository, logger Logger) *Service {
	return &Service{
		reservationRepo: reservationRepo,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник времени (для тестов)
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// GetByID получает бронирование по ID
// Пользователь может видеть только своё бронирование
func (s *Service) GetByID(ctx context.Context, id uuid.UUID, userID int64) (*models.ReservationResponse, error) {
	s.logger.Info("GetByID: fetching reservation id=%s for user=%d", id, userID)

	reservation, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			s.logger.Warn("GetByID: reservation id=%s not found", id)
			return nil, ErrReservationNotFound
		}
		s.logger.Error("GetByID: repository error for reservation id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	// Проверяем права доступа
	if reservation.UserID != userID {
		s.logger.Warn("GetByID: access denied for user=%d to reservation id=%s", userID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainReservation(reservation, s.timeProvider.Now()), nil
}

// GetUserReservations получает историю бронирований пользователя
// Опционально фильтрует по статусу
func (s *Service) GetUserReservations(ctx context.Context, req *models.GetUserReservationsRequest) (*models.ReservationListResponse, error) {
	s.logger.Info("GetUserReservations: fetching reservations for user=%d, status=%v", req.UserID, req.Status)

	if req.UserID <= 0 {
		return nil, fmt.Errorf("%w: userId must be positive", ErrInvalidInput)
	}

	// Конвертируем статус из строки в domain.ReservationStatus
	var domainStatus *domain.ReservationStatus
	if req.Status != nil {
		status, err := models.ToDomainReservationStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetUserReservations: invalid status=%s for user=%d", *req.Status, req.UserID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	reservations, err := s.reservationRepo.ListByUser(ctx, req.UserID, domainStatus)
	if err != nil {
		s.logger.Error("GetUserReservations: repository error for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetUserReservations - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetUserReservations: fetched %d reservations for user=%d", len(reservations), req.UserID)
	return models.FromDomainReservationList(reservations, s.timeProvider.Now()), nil
}
