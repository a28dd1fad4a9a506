// Package payment talks to the payment processor's REST API (Stripe compatible):
// payment intents are looked up to confirm a checkout, refunds are created against them.
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"souvlaki/internal/core/ports"
	"souvlaki/internal/pkg/errs"
)

const (
	serviceName       = "payments"
	statusSucceeded   = "succeeded"
	defaultTimeout    = 15 * time.Second
	maxErrorBodyBytes = 64 << 10
)

// Client implements ports.PaymentGateway.
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(baseURL, secretKey string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger.With("component", "payment-client"),
	}
}

type paymentIntent struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type refund struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// PaymentSucceeded looks the intent up. An intent the provider does not know is
// reported as not succeeded.
func (c *Client) PaymentSucceeded(ctx context.Context, paymentRef string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/v1/payment_intents/"+url.PathEscape(paymentRef), nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}

	var intent paymentIntent
	status, err := c.do(req, &intent)
	if status == http.StatusNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return intent.Status == statusSucceeded, nil
}

// Refund creates a refund. The idempotency key makes a retried call return the refund
// created by the first one.
func (c *Client) Refund(ctx context.Context, r ports.RefundRequest) (ports.RefundResult, error) {
	form := url.Values{}
	form.Set("payment_intent", r.PaymentRef)
	form.Set("amount", strconv.FormatInt(r.Amount.Cents(), 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/refunds", strings.NewReader(form.Encode()))
	if err != nil {
		return ports.RefundResult{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if r.IdempotencyKey != "" {
		req.Header.Set("Idempotency-Key", r.IdempotencyKey)
	}

	var created refund
	if _, err = c.do(req, &created); err != nil {
		return ports.RefundResult{}, err
	}

	c.logger.InfoContext(ctx, "refund created",
		"payment_ref", r.PaymentRef,
		"refund_id", created.ID,
		"amount", r.Amount.String(),
		"status", created.Status,
	)

	return ports.RefundResult{RefundID: created.ID, Status: created.Status}, nil
}

// do sends req and decodes a 2xx body into out. Other statuses become an
// errs.UpstreamError carrying the provider's message.
func (c *Client) do(req *http.Request, out any) (int, error) {
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, errs.NewUpstreamErrorWithCause(serviceName, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		message := http.StatusText(resp.StatusCode)

		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			message = apiErr.Error.Message
		}
		return resp.StatusCode, errs.NewUpstreamError(serviceName, message)
	}

	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, errs.NewUpstreamErrorWithCause(serviceName, "failed to decode response", err)
	}

	return resp.StatusCode, nil
}
