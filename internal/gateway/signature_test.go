package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifyPaymentSignature(t *testing.T) {
	secret := "key_secret_test"
	sig := PaymentSignature("gw_order_1", "pay_1", secret)

	tests := []struct {
		name      string
		orderID   string
		paymentID string
		signature string
		secret    string
		want      bool
	}{
		{"valid", "gw_order_1", "pay_1", sig, secret, true},
		{"tampered_signature", "gw_order_1", "pay_1", sig + "00", secret, false},
		{"different_payment", "gw_order_1", "pay_2", sig, secret, false},
		{"different_order", "gw_order_2", "pay_1", sig, secret, false},
		{"wrong_secret", "gw_order_1", "pay_1", sig, "other", false},
		{"empty_signature", "gw_order_1", "pay_1", "", secret, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VerifyPaymentSignature(tt.orderID, tt.paymentID, tt.signature, tt.secret)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVerifyWebhookSignature(t *testing.T) {
	secret := "whsec_test"
	body := []byte(`{"id":"evt_1","event":"payment.captured"}`)
	sig := WebhookSignature(body, secret)

	assert.True(t, VerifyWebhookSignature(body, sig, secret))
	assert.False(t, VerifyWebhookSignature([]byte(`{"id":"evt_2"}`), sig, secret))
	assert.False(t, VerifyWebhookSignature(body, sig, "other"))
	assert.False(t, VerifyWebhookSignature(body, "", secret))
}

func TestPaymentSignature_DelimitsFields(t *testing.T) {
	secret := "key_secret_test"
	// "ab"+"c" and "a"+"bc" must not collide
	assert.NotEqual(t,
		PaymentSignature("ab", "c", secret),
		PaymentSignature("a", "bc", secret))
}
