package mollie

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"commerce-mollie/internal/logger"

	"go.uber.org/zap"
)

const mollieBaseURL = "https://api.mollie.com/v2"

// ErrRemote marks any transport or API-level failure from the mollie API.
// The response body is preserved in the wrapped message.
var ErrRemote = errors.New("mollie api error")

// Client is the outbound RPC surface against the mollie API. All operations
// are remote calls; none are retried here.
type Client interface {
	CreatePayment(ctx context.Context, req *PaymentRequest) (*Resource, error)
	GetPayment(ctx context.Context, id string, includeDetails bool) (*Resource, error)
	CancelPayment(ctx context.Context, id string) error
	CreateCapture(ctx context.Context, id string) error
	CreateRefund(ctx context.Context, id string, amount Amount) (*Refund, error)
	ListRefunds(ctx context.Context, id string) ([]Refund, error)
	GetOrder(ctx context.Context, id string) (*Resource, error)
}

type client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey string) Client {
	if apiKey == "" {
		logger.L().Warn("Mollie API key is empty")
	}

	return &client{
		apiKey:  apiKey,
		baseURL: mollieBaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *client) do(ctx context.Context, method, path string, body, out any) error {
	log := logger.L().With(
		zap.String("method", method),
		zap.String("path", path),
	)

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			log.Error("Failed to marshal mollie request", zap.Error(err))
			return err
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		log.Error("Failed creating request", zap.Error(err))
		return err
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("Mollie request failed", zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("Failed to read response body", zap.Error(err))
		return fmt.Errorf("failed to read mollie response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		log.Error("Mollie returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", bodyBytes),
		)
		return fmt.Errorf("%w: %s", ErrRemote, string(bodyBytes))
	}

	if out != nil && len(bodyBytes) > 0 {
		if err := json.Unmarshal(bodyBytes, out); err != nil {
			log.Error("Failed decoding mollie response", zap.Error(err))
			return err
		}
	}

	return nil
}

// CreatePayment creates a new payment resource. Not idempotent; call at most
// once per checkout attempt.
func (c *client) CreatePayment(ctx context.Context, req *PaymentRequest) (*Resource, error) {
	var res Resource
	if err := c.do(ctx, http.MethodPost, "/payments", req, &res); err != nil {
		return nil, err
	}

	logger.L().Info("Mollie payment created",
		zap.String("payment_id", res.ID),
		zap.String("status", res.Status),
		zap.String("description", req.Description),
	)

	return &res, nil
}

func (c *client) GetPayment(ctx context.Context, id string, includeDetails bool) (*Resource, error) {
	path := "/payments/" + id
	if includeDetails {
		path += "?include=details.remainderDetails"
	}

	var res Resource
	if err := c.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CancelPayment cancels the payment. Cancelling an already cancelled payment
// is a no-op upstream.
func (c *client) CancelPayment(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/payments/"+id, nil, nil)
}

// CreateCapture captures an authorized payment. Not idempotent; the caller
// must check the current status before calling.
func (c *client) CreateCapture(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/payments/"+id+"/captures", struct{}{}, nil)
}

// CreateRefund creates a refund for the given amount. The returned refund
// carries its own status; "failed" is a distinct outcome from success.
func (c *client) CreateRefund(ctx context.Context, id string, amount Amount) (*Refund, error) {
	req := struct {
		Amount Amount `json:"amount"`
	}{Amount: amount}

	var refund Refund
	if err := c.do(ctx, http.MethodPost, "/payments/"+id+"/refunds", req, &refund); err != nil {
		return nil, err
	}

	logger.L().Info("Mollie refund created",
		zap.String("payment_id", id),
		zap.String("refund_id", refund.ID),
		zap.String("status", refund.Status),
	)

	return &refund, nil
}

func (c *client) ListRefunds(ctx context.Context, id string) ([]Refund, error) {
	var list refundList
	if err := c.do(ctx, http.MethodGet, "/payments/"+id+"/refunds", nil, &list); err != nil {
		return nil, err
	}
	return list.Embedded.Refunds, nil
}

// GetOrder reads an order resource with its embedded payments. Only used for
// resources created through the legacy order API.
func (c *client) GetOrder(ctx context.Context, id string) (*Resource, error) {
	var res Resource
	if err := c.do(ctx, http.MethodGet, "/orders/"+id+"?embed=payments", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
