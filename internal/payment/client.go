// Package payment предоставляет клиент платёжного шлюза, подтверждающего оплату проживания.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Статусы платежа на стороне шлюза.
const (
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
)

// ErrNotConfigured возвращается, если адрес шлюза не задан.
var ErrNotConfigured = errors.New("payment client not configured")

// Client инкапсулирует HTTP-взаимодействие с платёжным шлюзом.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Status описывает ответ шлюза по одному заселению.
type Status struct {
	AllocationID string           `json:"allocation_id"`
	Status       string           `json:"status"`
	Amount       *decimal.Decimal `json:"amount,omitempty"`
}

// NewClient создаёт HTTP-клиент для обращения к платёжному шлюзу по указанному адресу.
func NewClient(baseURL string) *Client {
	base := strings.TrimRight(baseURL, "/")
	if base != "" && !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	return &Client{
		baseURL: base,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// GetPaymentStatus запрашивает состояние оплаты по идентификатору заселения.
// Возвращает ответ (nil для 204 и 429), код ответа и паузу из Retry-After.
func (c *Client) GetPaymentStatus(ctx context.Context, allocationID string) (*Status, int, time.Duration, error) {
	if c == nil || c.baseURL == "" {
		return nil, 0, 0, ErrNotConfigured
	}

	endpoint := fmt.Sprintf("%s/api/payments/%s", c.baseURL, url.PathEscape(allocationID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNoContent:
		return nil, resp.StatusCode, 0, nil
	case http.StatusTooManyRequests:
		return nil, resp.StatusCode, parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()), nil
	default:
		return nil, resp.StatusCode, 0, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result Status
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, resp.StatusCode, 0, fmt.Errorf("decode response: %w", err)
	}

	return &result, resp.StatusCode, 0, nil
}

// parseRetryAfter понимает оба формата заголовка: число секунд и HTTP-дату.
func parseRetryAfter(v string, now time.Time) time.Duration {
	if v == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(v); err == nil {
		if seconds < 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
