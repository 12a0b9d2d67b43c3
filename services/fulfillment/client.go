package fulfillment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jwtpizza/pizza-service/config"
	"github.com/jwtpizza/pizza-service/models"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// ErrNotConfigured is returned when no factory URL is set
var ErrNotConfigured = errors.New("pizza factory not configured")

// Error is a failed fulfillment. ReportURL is set when the factory supplied one.
type Error struct {
	StatusCode int
	Message    string
	ReportURL  string
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("factory request failed: %v", e.Err)
	}
	return fmt.Sprintf("factory rejected order: status %d: %s", e.StatusCode, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Diner identifies who placed the order
type Diner struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type orderRequest struct {
	Diner Diner         `json:"diner"`
	Order *models.Order `json:"order"`
}

type orderResponse struct {
	JWT       string `json:"jwt"`
	ReportURL string `json:"reportUrl"`
	Message   string `json:"message"`
}

// Client sends placed orders to the pizza factory
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a factory client. A nil transport uses http.DefaultTransport.
func NewClient(cfg config.FactoryConfig, transport http.RoundTripper, logger *zap.Logger) *Client {
	if transport == nil {
		transport = http.DefaultTransport
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(transport),
			Timeout:   timeout,
		},
		logger: logger,
	}
}

// URL returns the configured factory base URL
func (c *Client) URL() string {
	return c.baseURL
}

// Fulfill submits the order and returns the factory receipt
func (c *Client) Fulfill(ctx context.Context, diner Diner, order *models.Order) (*models.FulfillmentReceipt, error) {
	if c.baseURL == "" {
		return nil, &Error{Err: ErrNotConfigured}
	}

	payload, err := json.Marshal(orderRequest{Diner: diner, Order: order})
	if err != nil {
		return nil, &Error{Err: fmt.Errorf("encode order: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/order", bytes.NewReader(payload))
	if err != nil {
		return nil, &Error{Err: fmt.Errorf("create order request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("factory unreachable", zap.Int64("order_id", order.ID), zap.Error(err))
		return nil, &Error{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &Error{StatusCode: resp.StatusCode, Err: fmt.Errorf("read factory response: %w", err)}
	}

	var out orderResponse
	// failures may still carry a report url
	decodeErr := json.Unmarshal(body, &out)

	c.logger.Debug("factory responded",
		zap.Int64("order_id", order.ID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := out.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &Error{StatusCode: resp.StatusCode, Message: msg, ReportURL: out.ReportURL}
	}

	if decodeErr != nil {
		return nil, &Error{StatusCode: resp.StatusCode, Err: fmt.Errorf("parse factory response: %w", decodeErr)}
	}

	return &models.FulfillmentReceipt{JWT: out.JWT, ReportURL: out.ReportURL}, nil
}
