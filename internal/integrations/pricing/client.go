// Package pricing клиент внешней функции расчета цены аренды.
package pricing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/m04kA/SMC-RentalService/internal/domain"
)

// Client клиент для работы с сервисом цен
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента сервиса цен
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// NewQuoteRequest параметры расчета для бронирования
func NewQuoteRequest(r domain.Reservation) QuoteRequest {
	return QuoteRequest{
		ResourceID:       r.ResourceID,
		StartDate:        r.StartDate.Format(domain.DateFormat),
		EndDate:          r.EndDate.Format(domain.DateFormat),
		PickupAt:         r.PickupAt,
		ReturnAt:         r.ReturnAt,
		Insurance:        string(r.Extras.Insurance),
		ChildSeats:       r.Extras.ChildSeats,
		AdditionalDriver: r.Extras.AdditionalDriver,
	}
}

// Quote рассчитывает цену и количество дней
func (c *Client) Quote(ctx context.Context, q QuoteRequest) (*Quote, error) {
	url := fmt.Sprintf("%s/internal/pricing/quote", c.baseURL)

	body, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal request: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("Pricing: request failed for resource_id=%d: %v", q.ResourceID, err)
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	// Обработка статус-кодов
	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		var e ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return nil, fmt.Errorf("%w: %s", ErrRejected, e.Message)
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	default:
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(raw))
	}

	var quote Quote
	if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}
	if quote.Price.IsNegative() || quote.Days <= 0 {
		return nil, fmt.Errorf("%w: price=%s days=%d", ErrInvalidResponse, quote.Price, quote.Days)
	}

	c.log.Info("Pricing: resource_id=%d %s..%s -> %s for %d days",
		q.ResourceID, q.StartDate, q.EndDate, quote.Price.StringFixed(2), quote.Days)
	return &quote, nil
}
