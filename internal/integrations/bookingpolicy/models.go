package bookingpolicy

import "time"

// CheckRequest запрос к сервису политик бронирования
type CheckRequest struct {
	VenueID int64     `json:"venue_id"`
	UserID  int64     `json:"user_id"`
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
}

// CheckResponse ответ сервиса политик бронирования
type CheckResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// ErrorResponse модель ошибки от сервиса политик
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
