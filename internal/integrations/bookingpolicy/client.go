package bookingpolicy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/m04kA/SMC-SeatReservationService/internal/domain"
)

// Client клиент внешнего сервиса политик бронирования
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента сервиса политик
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Check спрашивает сервис политик, разрешено ли бронирование
func (c *Client) Check(ctx context.Context, venueID, userID int64, interval domain.Interval) (domain.PolicyDecision, error) {
	url := fmt.Sprintf("%s/internal/v1/booking-policy/check", c.baseURL)

	body, err := json.Marshal(CheckRequest{
		VenueID: venueID,
		UserID:  userID,
		StartAt: interval.Start.UTC(),
		EndAt:   interval.End.UTC(),
	})
	if err != nil {
		return domain.PolicyDecision{}, fmt.Errorf("%w: failed to marshal request: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return domain.PolicyDecision{}, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.PolicyDecision{}, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	// Обработка статус-кодов
	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusBadRequest:
		return domain.PolicyDecision{}, fmt.Errorf("%w: request rejected by policy service", ErrInvalidResponse)
	default:
		raw, _ := io.ReadAll(resp.Body)
		return domain.PolicyDecision{}, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(raw))
	}

	// Парсим ответ
	var decision CheckResponse
	if err := json.NewDecoder(resp.Body).Decode(&decision); err != nil {
		return domain.PolicyDecision{}, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	if !decision.Allowed {
		return domain.Deny(decision.Reason), nil
	}
	return domain.Allow(), nil
}

// CheckAllowed проверяет бронирование с graceful degradation
// При недоступности сервиса бронирование разрешается, а ошибка возвращается как ErrServiceDegraded,
// чтобы вызывающий код мог её залогировать и продолжить
func (c *Client) CheckAllowed(ctx context.Context, venueID, userID int64, interval domain.Interval) (domain.PolicyDecision, error) {
	c.log.Info("Checking booking policy for venue=%d user=%d", venueID, userID)

	decision, err := c.Check(ctx, venueID, userID, interval)
	if err != nil {
		// Повышаем уровень логирования до ERROR, чтобы быстрее заметить проблему
		c.log.Error("Booking policy service unavailable, applying graceful degradation for venue=%d user=%d: %v",
			venueID, userID, err)
		return domain.Allow(), fmt.Errorf("%w: venue=%d, user=%d, error=%v", ErrServiceDegraded, venueID, userID, err)
	}

	if !decision.Allowed {
		c.log.Info("Booking policy denied venue=%d user=%d: %s", venueID, userID, decision.Reason)
	}

	return decision, nil
}
