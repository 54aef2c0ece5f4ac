package get_venue_availability

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/m04kA/SMC-SeatReservationService/internal/availability"
	"github.com/m04kA/SMC-SeatReservationService/internal/domain"
)

// UseCase use case разметки площадок в выдаче ("Available now", "Next available at ...")
type UseCase struct {
	venueRepo       VenueRepository
	reservationRepo ReservationRepository
	hoursService    HoursService
	hours           HoursResolver
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	venueRepo VenueRepository,
	reservationRepo ReservationRepository,
	hoursService HoursService,
	hours HoursResolver,
	logger Logger,
) *UseCase {
	return &UseCase{
		venueRepo:       venueRepo,
		reservationRepo: reservationRepo,
		hoursService:    hoursService,
		hours:           hours,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник времени (для тестов)
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetVenueAvailability: venues=%v, seats=%d", req.VenueIDs, req.RequiredSeats)

	// 1. Валидация входных данных
	venueIDs, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("GetVenueAvailability: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()
	scan := availability.ScanRange(now)

	// 3. Параллельно читаем вместимость, занятость и часы работы
	var (
		capacities map[int64]int
		occupied   []domain.OccupiedSlot
		hours      map[int64]domain.CanonicalHours
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		capacities, err = uc.venueRepo.GetCapacities(gctx, venueIDs)
		return err
	})
	g.Go(func() error {
		var err error
		occupied, err = uc.reservationRepo.ListOccupied(gctx, venueIDs, scan, now)
		return err
	})
	g.Go(func() error {
		var err error
		hours, err = uc.hoursService.BatchResolve(gctx, venueIDs)
		return err
	})

	if err := g.Wait(); err != nil {
		uc.logger.Error("GetVenueAvailability: failed to load venue data: %v", err)
		return nil, fmt.Errorf("%w: failed to load venue data: %v", ErrInternal, err)
	}

	// 4. Группируем занятость по площадкам
	byVenue := make(map[int64][]domain.OccupiedSlot, len(venueIDs))
	for _, slot := range occupied {
		byVenue[slot.VenueID] = append(byVenue[slot.VenueID], slot)
	}

	// 5. Считаем метки в порядке запроса
	resp := &Response{Items: make([]VenueAvailability, 0, len(venueIDs))}
	for _, id := range venueIDs {
		h, ok := hours[id]
		if !ok {
			uc.logger.Warn("GetVenueAvailability: venue id=%d not found, skipping", id)
			continue
		}

		label := availability.Compute(now, availability.Input{
			Capacity:      capacities[id],
			RequiredSeats: req.RequiredSeats,
			Reservations:  byVenue[id],
			Location:      uc.hours.Location(h),
			IsOpenAt: func(t time.Time) bool {
				return uc.hours.IsOpenAt(h, t)
			},
		})

		resp.Items = append(resp.Items, VenueAvailability{
			VenueID:         id,
			Capacity:        capacities[id],
			Kind:            label.Kind,
			Text:            label.Text,
			NextAvailableAt: label.NextAvailableAt,
		})
	}

	uc.logger.Info("GetVenueAvailability: labelled %d venues", len(resp.Items))
	return resp, nil
}
