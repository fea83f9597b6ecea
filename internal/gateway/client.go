package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/candleworks/storefront/internal/models"
)

// default time of retry after
const delaySeconds = 60

// payment status on the gateway side
const (
	PaymentStatusCaptured = "captured"
	PaymentStatusFailed   = "failed"
)

var errUnexpectedStatus = errors.New("unexpected gateway response status")

// Client talks to the payment gateway REST API using basic auth
// with the merchant key pair.
type Client struct {
	client    *http.Client
	baseURL   string
	keyID     string
	keySecret string
}

// NewClient creates new gateway Client instance
func NewClient(baseURL, keyID, keySecret string) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		baseURL:   baseURL,
		keyID:     keyID,
		keySecret: keySecret,
	}
}

type remoteOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type remoteOrderResponse struct {
	ID string `json:"id"`
}

// Payment is a payment attempt recorded by the gateway for a remote order
type Payment struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Amount int64  `json:"amount"`
}

type paymentsResponse struct {
	Items []Payment `json:"items"`
}

// CreateRemoteOrder mints an order on the gateway for the given amount in
// minor units. Returns the gateway order id.
func (c *Client) CreateRemoteOrder(ctx context.Context, amount int64, currency, receipt string) (string, error) {
	// POST /v1/orders
	url, err := url.JoinPath(c.baseURL, "v1", "orders")
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(remoteOrderRequest{
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.client.Do(req)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return "", models.NewUpstreamError(err, 0)
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		ordResp := remoteOrderResponse{}
		if err := json.NewDecoder(resp.Body).Decode(&ordResp); err != nil {
			return "", err
		}
		return ordResp.ID, nil
	case http.StatusTooManyRequests:
		return "", models.NewUpstreamError(errUnexpectedStatus, retryAfter(resp))
	default:
		return "", models.NewUpstreamError(errUnexpectedStatus, 0)
	}
}

// FetchPayments returns payment attempts the gateway recorded for
// a remote order. Used by the reconciler for orders whose client-side
// confirmation never arrived.
func (c *Client) FetchPayments(ctx context.Context, gatewayOrderID string) ([]Payment, error) {
	// GET /v1/orders/{id}/payments
	url, err := url.JoinPath(c.baseURL, "v1", "orders", gatewayOrderID, "payments")
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.client.Do(req)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return nil, models.NewUpstreamError(err, 0)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		payResp := paymentsResponse{}
		if err := json.NewDecoder(resp.Body).Decode(&payResp); err != nil {
			return nil, err
		}
		return payResp.Items, nil
	case http.StatusNotFound:
		return nil, models.ErrDataNotFound
	case http.StatusTooManyRequests:
		return nil, models.NewUpstreamError(errUnexpectedStatus, retryAfter(resp))
	default:
		return nil, models.NewUpstreamError(errUnexpectedStatus, 0)
	}
}

func retryAfter(resp *http.Response) time.Duration {
	t, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || t <= 0 {
		t = delaySeconds
	}
	return time.Duration(t) * time.Second
}
