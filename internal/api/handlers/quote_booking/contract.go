package quote_booking

import (
	"context"

	createBooking "github.com/m04kA/SMC-SeatReservationService/internal/usecase/create_booking"
)

type QuoteUseCase interface {
	Quote(ctx context.Context, req *createBooking.Request) (*createBooking.QuoteResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
