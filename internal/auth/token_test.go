package auth

import (
	"testing"

	"github.com/candleworks/storefront/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthToken_RoundTrip(t *testing.T) {
	at := NewAuthToken([]byte("0123456789abcdef"))

	token, err := at.CreateToken(&models.TokenPayload{
		CustomerID: 42,
		Email:      "asha@example.com",
		Role:       models.RoleCustomer,
	})
	require.NoError(t, err)

	payload, err := at.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), payload.CustomerID)
	assert.Equal(t, "asha@example.com", payload.Email)
	assert.Equal(t, models.RoleCustomer, payload.Role)
}

func TestAuthToken_RejectsForeignKey(t *testing.T) {
	at := NewAuthToken([]byte("0123456789abcdef"))
	other := NewAuthToken([]byte("fedcba9876543210"))

	token, err := other.CreateToken(&models.TokenPayload{Email: "admin@example.com", Role: models.RoleAdmin})
	require.NoError(t, err)

	_, err = at.VerifyToken(token)
	assert.Error(t, err)
}

func TestAuthToken_RejectsGarbage(t *testing.T) {
	at := NewAuthToken([]byte("0123456789abcdef"))

	_, err := at.VerifyToken("not.a.token")
	assert.Error(t, err)
}
