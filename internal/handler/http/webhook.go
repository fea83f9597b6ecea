package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/candleworks/storefront/internal/gateway"
	"github.com/candleworks/storefront/internal/logger"
	"github.com/candleworks/storefront/internal/metrics"
	"github.com/candleworks/storefront/internal/models"
	"github.com/candleworks/storefront/internal/service"
	"go.uber.org/zap"
)

// SignatureHeader carries the webhook body HMAC
const SignatureHeader = "X-Gateway-Signature"

//go:generate mockgen -destination=mocks/mock_webhook_service.go -package=mocks . WebhookService

type WebhookService interface {
	// ApplyWebhookEvent processes a signature-checked gateway event
	ApplyWebhookEvent(ctx context.Context, event service.WebhookEvent) error
}

// WebhookHandler receives server-to-server events from the payment gateway
type WebhookHandler struct {
	svc    WebhookService
	secret string
}

// NewWebhookHandler creates new WebhookHandler instance
func NewWebhookHandler(svc WebhookService, secret string) *WebhookHandler {
	return &WebhookHandler{svc: svc, secret: secret}
}

type webhookPayload struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
}

type webhookRequest struct {
	ID      string         `json:"id"`
	Event   string         `json:"event"`
	Payload webhookPayload `json:"payload"`
}

// GatewayWebhook handles gateway event delivery. Delivery is at-least-once,
// so duplicates must be acknowledged without re-running side effects.
// 200 — event processed or already processed
// 400 — invalid signature or malformed body
// 409 — event conflicts with recorded capture
func (wh *WebhookHandler) GatewayWebhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil || len(body) == 0 {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		// the body signature is checked before any field is trusted
		if !gateway.VerifyWebhookSignature(body, r.Header.Get(SignatureHeader), wh.secret) {
			metrics.SignatureFailures.Inc()
			metrics.WebhookEvents.WithLabelValues("rejected").Inc()
			logger.Log.Warn("webhook signature rejected", zap.String("remote", r.RemoteAddr))
			http.Error(w, "invalid signature", http.StatusBadRequest)
			return
		}

		var req webhookRequest
		if err := json.Unmarshal(body, &req); err != nil {
			metrics.WebhookEvents.WithLabelValues("malformed").Inc()
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		err = wh.svc.ApplyWebhookEvent(r.Context(), service.WebhookEvent{
			EventID:          req.ID,
			EventType:        req.Event,
			GatewayOrderID:   req.Payload.OrderID,
			GatewayPaymentID: req.Payload.PaymentID,
		})
		if err != nil {
			switch {
			case errors.Is(err, models.ErrPaymentMismatch), errors.Is(err, models.ErrOrderFinalized):
				metrics.WebhookEvents.WithLabelValues("conflict").Inc()
				http.Error(w, "conflict", http.StatusConflict)
			default:
				// internal detail never leaks to the gateway
				metrics.WebhookEvents.WithLabelValues("error").Inc()
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		metrics.WebhookEvents.WithLabelValues("ok").Inc()
		w.WriteHeader(http.StatusOK)
	}
}
