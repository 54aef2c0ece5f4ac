package create_booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SeatReservationService/internal/domain"
)

// Request модель запроса на создание бронирования
// Mode определяет, какие поля используются:
// individual - SeatIDs (SeatCount игнорируется), group - TableID и SeatCount
type Request struct {
	UserID    int64              // ID пользователя
	VenueID   int64              // ID площадки
	Mode      domain.BookingMode // Режим бронирования
	SeatIDs   []int64            // Места (individual)
	TableID   int64              // Стол (group)
	SeatCount int                // Число гостей (group)
	StartAt   time.Time          // Начало, абсолютное время
	EndAt     time.Time          // Конец (не включительно)
}

// BookingContext результат проверок, готовый к расчёту цены и записи
type BookingContext struct {
	UserID           int64
	Venue            *domain.Venue
	Hours            domain.CanonicalHours
	Location         *time.Location
	Mode             domain.BookingMode
	Table            *domain.Table  // group
	Seats            []*domain.Seat // individual, в порядке запроса
	Interval         domain.Interval
	SeatCount        int
	RatePerHourCents int64
}

// Selector возвращает ресурс для проверки пересечений
func (bc *BookingContext) Selector() domain.ResourceSelector {
	if bc.Mode == domain.ModeGroup {
		return domain.ResourceSelector{TableID: bc.Table.ID}
	}
	return domain.ResourceSelector{SeatIDs: bc.SeatIDs()}
}

// SeatIDs возвращает ID мест в порядке запроса
func (bc *BookingContext) SeatIDs() []int64 {
	ids := make([]int64, len(bc.Seats))
	for i, s := range bc.Seats {
		ids[i] = s.ID
	}
	return ids
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID        uuid.UUID  // ID бронирования
	VenueID   int64      // ID площадки
	TableID   *int64     // ID стола
	SeatIDs   []int64    // Места
	UserID    int64      // ID пользователя
	Mode      string     // Режим бронирования
	StartAt   time.Time  // Начало
	EndAt     time.Time  // Конец
	SeatCount int        // Число мест
	Status    string     // Статус бронирования
	ExpiresAt *time.Time // Срок оплаты (pending)
	Timezone  string     // Часовой пояс площадки

	Pricing domain.PricingResult

	// Денормализованные данные
	VenueName  string
	TableName  string
	SeatLabels []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// QuoteResponse расчёт стоимости без записи
type QuoteResponse struct {
	VenueID          int64
	Mode             string
	StartAt          time.Time
	EndAt            time.Time
	SeatCount        int
	RatePerHourCents int64
	Timezone         string
	Pricing          domain.PricingResult
}

func toResponse(res *domain.Reservation, bc *BookingContext) *Response {
	return &Response{
		ID:         res.ID,
		VenueID:    res.VenueID,
		TableID:    res.TableID,
		SeatIDs:    res.SeatIDs,
		UserID:     res.UserID,
		Mode:       string(bc.Mode),
		StartAt:    res.StartAt,
		EndAt:      res.EndAt,
		SeatCount:  res.SeatCount,
		Status:     string(res.Status),
		ExpiresAt:  res.ExpiresAt,
		Timezone:   bc.Location.String(),
		Pricing:    pricingOf(res),
		VenueName:  res.VenueName,
		TableName:  res.TableName,
		SeatLabels: res.SeatLabels,
		CreatedAt:  res.CreatedAt,
		UpdatedAt:  res.UpdatedAt,
	}
}

func pricingOf(res *domain.Reservation) domain.PricingResult {
	return domain.PricingResult{
		SubtotalCents:         res.SubtotalCents,
		ProcessingFeeCents:    res.ProcessingFeeCents,
		TotalChargeCents:      res.TotalChargeCents,
		CommissionCents:       res.CommissionCents,
		PlatformWithheldCents: res.TotalChargeCents - res.VenuePayoutCents,
		VenuePayoutCents:      res.VenuePayoutCents,
	}
}
