package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/candleworks/storefront/internal/models"
)

//go:generate mockgen -destination=mocks/mock_customer_service.go -package=mocks . CustomerService

type CustomerService interface {
	// Register creates customer account
	Register(ctx context.Context, name, email, phone, password string) (*models.Customer, error)
	// Login checks credentials and returns signed auth token
	Login(ctx context.Context, email, password string) (string, error)
	// GetCustomer returns customer by id
	GetCustomer(ctx context.Context, id uint64) (*models.Customer, error)
}

type AdminService interface {
	// Login checks admin credentials and returns signed auth token
	Login(email, password string) (string, error)
}

// CustomerHandler represents HTTP handler for customer-related requests
type CustomerHandler struct {
	svc   CustomerService
	admin AdminService
}

// NewCustomerHandler creates new CustomerHandler instance
func NewCustomerHandler(svc CustomerService, admin AdminService) *CustomerHandler {
	return &CustomerHandler{svc: svc, admin: admin}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// Register creates customer account
// 201 — account created
// 400 — malformed request
// 409 — email already registered
func (ch *CustomerHandler) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		_, err := ch.svc.Register(r.Context(), req.Name, req.Email, req.Phone, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrValidation):
				http.Error(w, "bad request", http.StatusBadRequest)
			case errors.Is(err, models.ErrConflictData):
				http.Error(w, "email already registered", http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.WriteHeader(http.StatusCreated)
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Login authenticates customer and sets auth cookie
// 200 — success
// 400 — malformed request
// 401 — invalid credentials
func (ch *CustomerHandler) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		token, err := ch.svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, models.ErrInvalidCredentials) {
				http.Error(w, "invalid login or password", http.StatusUnauthorized)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		setAuthCookie(w, token)
		w.WriteHeader(http.StatusOK)
	}
}

// AdminLogin authenticates the administrator and sets auth cookie
// 200 — success
// 400 — malformed request
// 401 — invalid credentials
func (ch *CustomerHandler) AdminLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		token, err := ch.admin.Login(req.Email, req.Password)
		if err != nil {
			if errors.Is(err, models.ErrInvalidCredentials) {
				http.Error(w, "invalid login or password", http.StatusUnauthorized)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		setAuthCookie(w, token)
		w.WriteHeader(http.StatusOK)
	}
}

type profileResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Profile returns the authenticated customer profile
// 200 — success
// 401 — unauthorized
func (ch *CustomerHandler) Profile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := getAuthPayload(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		customer, err := ch.svc.GetCustomer(r.Context(), payload.CustomerID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(profileResponse{
			Name:  customer.Name,
			Email: customer.Email,
			Phone: customer.Phone,
		}); err != nil {
			return
		}
	}
}
