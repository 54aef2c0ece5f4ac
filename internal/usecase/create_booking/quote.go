package create_booking

import (
	"context"
	"fmt"
)

// Quote проверяет запрос так же, как Execute, и считает стоимость без записи
func (uc *UseCase) Quote(ctx context.Context, req *Request) (*QuoteResponse, error) {
	ctx, span := tracer.Start(ctx, "QuoteBooking")
	defer span.End()

	uc.logger.Info("QuoteBooking: user=%d, venue=%d, mode=%s", req.UserID, req.VenueID, req.Mode)

	now := uc.timeProvider.Now()

	bc, err := uc.buildContext(ctx, req, now)
	if err != nil {
		return nil, err
	}

	price, err := uc.pricing.Quote(bc.RatePerHourCents, bc.Interval.Duration())
	if err != nil {
		uc.logger.Error("QuoteBooking: pricing failed: %v", err)
		return nil, fmt.Errorf("%w: pricing failed: %v", ErrInternal, err)
	}

	return &QuoteResponse{
		VenueID:          bc.Venue.ID,
		Mode:             string(bc.Mode),
		StartAt:          bc.Interval.Start.UTC(),
		EndAt:            bc.Interval.End.UTC(),
		SeatCount:        bc.SeatCount,
		RatePerHourCents: bc.RatePerHourCents,
		Timezone:         bc.Location.String(),
		Pricing:          price,
	}, nil
}
