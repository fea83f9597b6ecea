package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/candleworks/storefront/internal/gateway"
	"github.com/candleworks/storefront/internal/handler/http/mocks"
	"github.com/candleworks/storefront/internal/models"
	"github.com/candleworks/storefront/internal/service"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const webhookSecret = "whsec_test"

func serviceEvent(id, eventType, orderID, paymentID string) service.WebhookEvent {
	return service.WebhookEvent{
		EventID:          id,
		EventType:        eventType,
		GatewayOrderID:   orderID,
		GatewayPaymentID: paymentID,
	}
}

func TestWebhookHandler_GatewayWebhook(t *testing.T) {
	capturedBody := `{"id":"evt_1","event":"payment.captured","payload":{"order_id":"gw_order_1","payment_id":"pay_1"}}`

	tests := []struct {
		name           string
		body           string
		signature      string
		setup          func(t *testing.T) *mocks.MockWebhookService
		wantStatusCode int
	}{
		{
			name:      "valid_event_return_200",
			body:      capturedBody,
			signature: gateway.WebhookSignature([]byte(capturedBody), webhookSecret),
			setup: func(t *testing.T) *mocks.MockWebhookService {

				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockWebhookService(ctrl)
				svcMock.EXPECT().ApplyWebhookEvent(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusOK,
		},
		{
			// duplicate deliveries converge to success without side effects
			name:      "duplicate_event_return_200",
			body:      capturedBody,
			signature: gateway.WebhookSignature([]byte(capturedBody), webhookSecret),
			setup: func(t *testing.T) *mocks.MockWebhookService {

				ctrl := gomock.NewController(t)

				svcMock := mocks.NewMockWebhookService(ctrl)
				svcMock.EXPECT().ApplyWebhookEvent(gomock.Any(), gomock.Any()).Return(nil).Times(1)
				return svcMock
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:      "tampered_signature_return_400",
			body:      capturedBody,
			signature: gateway.WebhookSignature([]byte(capturedBody), "wrong_secret"),
			setup: func(t *testing.T) *mocks.MockWebhookService {

				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockWebhookService(ctrl)
				svcMock.EXPECT().ApplyWebhookEvent(gomock.Any(), gomock.Any()).Times(0)
				return svcMock
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:      "empty_body_return_400",
			body:      "",
			signature: "",
			setup: func(t *testing.T) *mocks.MockWebhookService {

				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockWebhookService(ctrl)
				svcMock.EXPECT().ApplyWebhookEvent(gomock.Any(), gomock.Any()).Times(0)
				return svcMock
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:      "conflicting_payment_return_409",
			body:      capturedBody,
			signature: gateway.WebhookSignature([]byte(capturedBody), webhookSecret),
			setup: func(t *testing.T) *mocks.MockWebhookService {

				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockWebhookService(ctrl)
				svcMock.EXPECT().ApplyWebhookEvent(gomock.Any(), gomock.Any()).Return(models.ErrPaymentMismatch).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusConflict,
		},
		{
			name:      "internal_error_return_500",
			body:      capturedBody,
			signature: gateway.WebhookSignature([]byte(capturedBody), webhookSecret),
			setup: func(t *testing.T) *mocks.MockWebhookService {

				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockWebhookService(ctrl)
				svcMock.EXPECT().ApplyWebhookEvent(gomock.Any(), gomock.Any()).Return(models.ErrInternalError).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodPost, "/api/webhook/gateway", strings.NewReader(tt.body))
			require.NoError(t, err)
			req.Header.Set(SignatureHeader, tt.signature)

			w := httptest.NewRecorder()
			st := tt.setup(t)

			handler := NewWebhookHandler(st, webhookSecret)
			h := handler.GatewayWebhook()
			h(w, req)

			res := w.Result()
			defer res.Body.Close()
			assert.Equal(t, tt.wantStatusCode, res.StatusCode)
		})
	}
}

func TestWebhookHandler_PassesParsedEvent(t *testing.T) {
	body := `{"id":"evt_9","event":"payment.failed","payload":{"order_id":"gw_order_9","payment_id":"pay_9"}}`

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svcMock := mocks.NewMockWebhookService(ctrl)
	svcMock.EXPECT().ApplyWebhookEvent(gomock.Any(), gomock.Eq(serviceEvent("evt_9", "payment.failed", "gw_order_9", "pay_9"))).Return(nil)

	req, err := http.NewRequest(http.MethodPost, "/api/webhook/gateway", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set(SignatureHeader, gateway.WebhookSignature([]byte(body), webhookSecret))

	w := httptest.NewRecorder()

	handler := NewWebhookHandler(svcMock, webhookSecret)
	handler.GatewayWebhook()(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}
