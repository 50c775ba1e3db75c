// Package braintree is a thin HTTP client for the external payment gateway.
// The gateway is the sole source of truth for whether money moved: every
// network error, timeout, or decline surfaces as an error here and the
// caller must treat them all as "sale failed".
package braintree

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"path"
	"time"

	"storefront/internal/domain"
)

// ErrUnavailable indicates the gateway could not be reached or answered
// with an unexpected status.
var ErrUnavailable = errors.New("payment gateway unavailable")

// DeclinedError is returned when the gateway processed the request but
// refused the sale (declined card, consumed nonce, validation failure).
// RawBody keeps the gateway's error payload verbatim for the HTTP response.
type DeclinedError struct {
	Status  string
	Message string
	RawBody []byte
}

func (e *DeclinedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("sale declined: %s", e.Message)
	}
	return "sale declined"
}

// SaleInput describes one sale attempt against the gateway.
type SaleInput struct {
	AmountCents int64
	Nonce       string
	Reference   string
}

// Client exposes the two gateway operations the checkout flow needs.
type Client interface {
	ClientToken(ctx context.Context) (string, error)
	Sale(ctx context.Context, in SaleInput) (*domain.Transaction, error)
}

// Config carries gateway connection settings.
type Config struct {
	BaseURL    string
	MerchantID string
	PublicKey  string
	PrivateKey string
	Timeout    time.Duration
}

// HTTPClient implements Client over the gateway's REST API.
type HTTPClient struct {
	baseURL    *url.URL
	merchantID string
	publicKey  string
	privateKey string
	httpClient *http.Client
	logger     *log.Logger
}

// NewHTTPClient builds an HTTPClient from config.
func NewHTTPClient(cfg Config, logger *log.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse gateway url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, errors.New("gateway url must be absolute")
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPClient{
		baseURL:    parsed,
		merchantID: cfg.MerchantID,
		publicKey:  cfg.PublicKey,
		privateKey: cfg.PrivateKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

type clientTokenResponse struct {
	ClientToken string `json:"clientToken"`
}

// ClientToken asks the gateway for a short-lived client token.
func (c *HTTPClient) ClientToken(ctx context.Context) (string, error) {
	resp, err := c.post(ctx, "client_token", nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		c.logger.Printf("gateway: client token status=%d body=%s", resp.StatusCode, body)
		return "", fmt.Errorf("%w: status %s", ErrUnavailable, resp.Status)
	}

	var data clientTokenResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return "", fmt.Errorf("%w: decode token: %v", ErrUnavailable, err)
	}
	if data.ClientToken == "" {
		return "", fmt.Errorf("%w: empty client token", ErrUnavailable)
	}
	return data.ClientToken, nil
}

type saleRequest struct {
	Amount             string      `json:"amount"`
	PaymentMethodNonce string      `json:"paymentMethodNonce"`
	OrderID            string      `json:"orderId,omitempty"`
	Options            saleOptions `json:"options"`
}

type saleOptions struct {
	SubmitForSettlement bool `json:"submitForSettlement"`
}

type saleResponse struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	AmountCents int64      `json:"amountCents"`
	SettledAt   *time.Time `json:"settledAt,omitempty"`
	Message     string     `json:"message,omitempty"`
}

// Sale submits a sale transaction for settlement. The nonce is single-use;
// the gateway declines a consumed nonce and that decline is never retried.
func (c *HTTPClient) Sale(ctx context.Context, in SaleInput) (*domain.Transaction, error) {
	payload := saleRequest{
		Amount:             formatAmount(in.AmountCents),
		PaymentMethodNonce: in.Nonce,
		OrderID:            in.Reference,
		Options:            saleOptions{SubmitForSettlement: true},
	}
	resp, err := c.post(ctx, "transactions", payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		var data saleResponse
		if err := json.Unmarshal(body, &data); err != nil {
			return nil, fmt.Errorf("%w: decode sale: %v", ErrUnavailable, err)
		}
		amount := data.AmountCents
		if amount == 0 {
			amount = in.AmountCents
		}
		return &domain.Transaction{
			ID:          data.ID,
			Status:      data.Status,
			AmountCents: amount,
			SettledAt:   data.SettledAt,
		}, nil
	case resp.StatusCode == http.StatusUnprocessableEntity || resp.StatusCode == http.StatusPaymentRequired:
		var data saleResponse
		_ = json.Unmarshal(body, &data)
		c.logger.Printf("gateway: sale declined ref=%s status=%s message=%s", in.Reference, data.Status, data.Message)
		return nil, &DeclinedError{Status: data.Status, Message: data.Message, RawBody: body}
	default:
		c.logger.Printf("gateway: sale failed ref=%s status=%d body=%s", in.Reference, resp.StatusCode, body)
		return nil, fmt.Errorf("%w: status %s", ErrUnavailable, resp.Status)
	}
}

func (c *HTTPClient) post(ctx context.Context, endpoint string, payload interface{}) (*http.Response, error) {
	target := *c.baseURL
	target.Path = path.Join(target.Path, "merchants", c.merchantID, endpoint)

	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.SetBasicAuth(c.publicKey, c.privateKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp, nil
}

func formatAmount(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
