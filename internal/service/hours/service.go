package hours

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-SeatReservationService/internal/domain"
)

const (
	cacheHit   = "hit"
	cacheMiss  = "miss"
	cacheError = "error"
)

// Service выдаёт канонические часы работы площадок, читая сначала из кэша
type Service struct {
	repo    HoursRepository
	cache   HoursCache
	metrics CacheMetrics
	logger  Logger
}

// NewService создает сервис часов работы. cache и metrics могут быть nil
func NewService(repo HoursRepository, cache HoursCache, metrics CacheMetrics, logger Logger) *Service {
	return &Service{
		repo:    repo,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

// Get возвращает часы работы одной площадки
func (s *Service) Get(ctx context.Context, venueID int64) (domain.CanonicalHours, error) {
	all, err := s.BatchResolve(ctx, []int64{venueID})
	if err != nil {
		return domain.CanonicalHours{}, err
	}

	h, ok := all[venueID]
	if !ok {
		return domain.CanonicalHours{}, fmt.Errorf("%w: venue=%d", ErrVenueNotFound, venueID)
	}

	return h, nil
}

// BatchResolve возвращает часы работы набора площадок
// Несуществующие площадки отсутствуют в результате.
// Ошибка кэша не прерывает запрос: недостающее читается из БД.
func (s *Service) BatchResolve(ctx context.Context, venueIDs []int64) (map[int64]domain.CanonicalHours, error) {
	result := make(map[int64]domain.CanonicalHours, len(venueIDs))
	if len(venueIDs) == 0 {
		return result, nil
	}

	missing := dedupe(venueIDs)

	// 1. Читаем из кэша
	if s.cache != nil {
		cached, rest, err := s.cache.GetMany(ctx, missing)
		if err != nil {
			s.logger.Warn("BatchResolve: cache read failed, falling back to repository: %v", err)
			s.record(cacheError, 1)
		} else {
			for id, h := range cached {
				result[id] = h
			}
			s.record(cacheHit, len(cached))
			s.record(cacheMiss, len(rest))
			missing = rest
		}
	}

	if len(missing) == 0 {
		return result, nil
	}

	// 2. Дочитываем недостающее из БД
	loaded, err := s.repo.GetCanonicalHours(ctx, missing)
	if err != nil {
		s.logger.Error("BatchResolve: repository error for %d venues: %v", len(missing), err)
		return nil, fmt.Errorf("%w: BatchResolve - repository error: %v", ErrInternal, err)
	}

	for id, h := range loaded {
		result[id] = h
	}

	// 3. Прогреваем кэш
	if s.cache != nil && len(loaded) > 0 {
		if err := s.cache.SetMany(ctx, loaded); err != nil {
			s.logger.Warn("BatchResolve: cache write failed: %v", err)
		}
	}

	return result, nil
}

func (s *Service) record(result string, n int) {
	if s.metrics == nil {
		return
	}
	for i := 0; i < n; i++ {
		s.metrics.IncHoursCache(result)
	}
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
