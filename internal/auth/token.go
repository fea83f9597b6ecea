package auth

import (
	"errors"
	"time"

	"github.com/candleworks/storefront/internal/models"
	"github.com/golang-jwt/jwt/v4"
)

const tokenTTL = 24 * time.Hour

var errInvalidToken = errors.New("invalid token")

type claims struct {
	jwt.RegisteredClaims
	CustomerID uint64 `json:"cid,omitempty"`
	Email      string `json:"email"`
	Role       string `json:"role"`
}

// AuthToken issues and verifies signed JWT tokens
type AuthToken struct {
	key []byte
}

// NewAuthToken creates new AuthToken instance with signing key
func NewAuthToken(key []byte) *AuthToken {
	return &AuthToken{key: key}
}

// CreateToken creates signed token for payload
func (at *AuthToken) CreateToken(payload *models.TokenPayload) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		CustomerID: payload.CustomerID,
		Email:      payload.Email,
		Role:       payload.Role,
	})

	return token.SignedString(at.key)
}

// VerifyToken parses token string and returns its payload
func (at *AuthToken) VerifyToken(tokenString string) (*models.TokenPayload, error) {
	c := claims{}
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return at.key, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errInvalidToken
	}

	return &models.TokenPayload{
		CustomerID: c.CustomerID,
		Email:      c.Email,
		Role:       c.Role,
	}, nil
}
