package get_open_status

import (
	"context"
	"errors"
	"fmt"

	hoursService "github.com/m04kA/SMC-SeatReservationService/internal/service/hours"
)

// UseCase use case статуса "открыто/закрыто" для страницы площадки
type UseCase struct {
	hoursProvider HoursProvider
	hours         HoursResolver
	timeProvider  TimeProvider
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(hoursProvider HoursProvider, hours HoursResolver, logger Logger) *UseCase {
	return &UseCase{
		hoursProvider: hoursProvider,
		hours:         hours,
		timeProvider:  &RealTimeProvider{},
		logger:        logger,
	}
}

// WithTimeProvider подменяет источник времени (для тестов)
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case
func (uc *UseCase) Execute(ctx context.Context, venueID int64) (*Response, error) {
	// 1. Валидация входных данных
	if venueID <= 0 {
		return nil, fmt.Errorf("%w: venueId must be positive", ErrInvalidInput)
	}

	// 2. Получаем часы работы
	h, err := uc.hoursProvider.Get(ctx, venueID)
	if err != nil {
		if errors.Is(err, hoursService.ErrVenueNotFound) {
			return nil, fmt.Errorf("%w: venue=%d", ErrVenueNotFound, venueID)
		}
		uc.logger.Error("GetOpenStatus: failed to load hours for venue=%d: %v", venueID, err)
		return nil, fmt.Errorf("%w: failed to load hours: %v", ErrInternal, err)
	}

	// 3. Считаем статус в часовом поясе площадки
	status := uc.hours.OpenStatus(h, uc.timeProvider.Now())

	return &Response{
		VenueID:        venueID,
		Timezone:       uc.hours.Location(h).String(),
		IsOpen:         status.IsOpen,
		Status:         status.Status,
		TodayHoursText: status.TodayHoursText,
	}, nil
}
