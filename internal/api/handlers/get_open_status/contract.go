package get_open_status

import (
	"context"

	getOpenStatus "github.com/m04kA/SMC-SeatReservationService/internal/usecase/get_open_status"
)

type GetOpenStatusUseCase interface {
	Execute(ctx context.Context, venueID int64) (*getOpenStatus.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
