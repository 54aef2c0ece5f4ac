package create_booking

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SeatReservationService/internal/api/middleware"
	"github.com/m04kA/SMC-SeatReservationService/internal/domain"
	createBooking "github.com/m04kA/SMC-SeatReservationService/internal/usecase/create_booking"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type stubUseCase struct {
	got  *createBooking.Request
	resp *createBooking.Response
	err  error
}

func (s *stubUseCase) Execute(_ context.Context, req *createBooking.Request) (*createBooking.Response, error) {
	s.got = req
	return s.resp, s.err
}

const body = `{"venueId":1,"mode":"individual","seatIds":[11,12],"startAt":"2025-02-10T19:00:00Z","endAt":"2025-02-10T21:00:00-00:00"}`

func serve(t *testing.T, uc *stubUseCase, payload string, userID int64) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(payload))
	if userID > 0 {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	}
	rec := httptest.NewRecorder()
	NewHandler(uc, nopLogger{}).Handle(rec, req)
	return rec
}

func TestHandle_Created(t *testing.T) {
	expires := time.Date(2025, 2, 10, 15, 15, 0, 0, time.UTC)
	uc := &stubUseCase{resp: &createBooking.Response{
		ID:        uuid.MustParse("6f1c2d7e-7a1b-4a55-9d0e-3c2b1a000001"),
		VenueID:   1,
		SeatIDs:   []int64{11, 12},
		UserID:    7,
		Mode:      "individual",
		StartAt:   time.Date(2025, 2, 10, 19, 0, 0, 0, time.UTC),
		EndAt:     time.Date(2025, 2, 10, 21, 0, 0, 0, time.UTC),
		SeatCount: 2,
		Status:    "pending",
		ExpiresAt: &expires,
		Timezone:  "America/New_York",
		Pricing:   domain.PricingResult{SubtotalCents: 2000, ProcessingFeeCents: 91, TotalChargeCents: 2091},
	}}

	rec := serve(t, uc, body, 7)
	require.Equal(t, http.StatusCreated, rec.Code)

	require.NotNil(t, uc.got)
	assert.Equal(t, int64(7), uc.got.UserID)
	assert.Equal(t, domain.ModeIndividual, uc.got.Mode)
	assert.Equal(t, []int64{11, 12}, uc.got.SeatIDs)
	assert.True(t, uc.got.EndAt.Equal(time.Date(2025, 2, 10, 21, 0, 0, 0, time.UTC)))

	var resp BookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "6f1c2d7e-7a1b-4a55-9d0e-3c2b1a000001", resp.ID)
	assert.Equal(t, int64(2091), resp.Pricing.TotalChargeCents)
	require.NotNil(t, resp.ExpiresAt)
	assert.Equal(t, "2025-02-10T15:15:00Z", *resp.ExpiresAt)
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{createBooking.ErrInvalidInput, http.StatusBadRequest},
		{createBooking.ErrPastTime, http.StatusBadRequest},
		{createBooking.ErrOutsideOperatingHours, http.StatusBadRequest},
		{createBooking.ErrNotFound, http.StatusNotFound},
		{createBooking.ErrPolicyDenied, http.StatusUnprocessableEntity},
		{createBooking.ErrVenueNotBookable, http.StatusUnprocessableEntity},
		{createBooking.ErrCrossVenueMismatch, http.StatusUnprocessableEntity},
		{createBooking.ErrInactiveResource, http.StatusUnprocessableEntity},
		{createBooking.ErrConflict, http.StatusConflict},
		{createBooking.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			uc := &stubUseCase{err: fmt.Errorf("%w: details", tt.err)}
			rec := serve(t, uc, body, 7)
			assert.Equal(t, tt.want, rec.Code)
			assert.NotContains(t, rec.Body.String(), "details")
		})
	}
}

func TestHandle_BadRequests(t *testing.T) {
	uc := &stubUseCase{}

	assert.Equal(t, http.StatusUnauthorized, serve(t, uc, body, 0).Code)
	assert.Equal(t, http.StatusBadRequest, serve(t, uc, `{"venueId":`, 7).Code)
	assert.Equal(t, http.StatusBadRequest, serve(t, uc, `{"venueId":1,"unknown":true}`, 7).Code)
	assert.Equal(t, http.StatusBadRequest, serve(t, uc, `{"venueId":1,"mode":"group","startAt":"2025-02-10 19:00","endAt":"2025-02-10T21:00:00Z"}`, 7).Code)
	assert.Nil(t, uc.got)
}
