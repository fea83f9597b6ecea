package service

import (
	"crypto/subtle"

	"github.com/candleworks/storefront/internal/models"
)

// AdminService authenticates the store administrator against the
// configured credential and mints role-scoped tokens.
type AdminService struct {
	email    string
	password string
	token    TokenService
}

// NewAdminService creates new AdminService instance
func NewAdminService(email, password string, token TokenService) *AdminService {
	return &AdminService{email: email, password: password, token: token}
}

// Login checks admin credentials and returns signed auth token
func (as *AdminService) Login(email, password string) (string, error) {
	if as.email == "" || as.password == "" {
		return "", models.ErrInvalidCredentials
	}

	emailOK := subtle.ConstantTimeCompare([]byte(as.email), []byte(email)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(as.password), []byte(password)) == 1
	if !emailOK || !passOK {
		return "", models.ErrInvalidCredentials
	}

	return as.token.CreateToken(&models.TokenPayload{
		Email: email,
		Role:  models.RoleAdmin,
	})
}
