package service

import (
	"context"
	"errors"

	"github.com/candleworks/storefront/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// CustomerRepository is interface for interacting with customer-related data
type CustomerRepository interface {
	// CreateCustomer inserts new customer to database
	CreateCustomer(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	// GetCustomerByEmail returns customer by email
	GetCustomerByEmail(ctx context.Context, email string) (*models.Customer, error)
	// GetCustomerByID returns customer by id
	GetCustomerByID(ctx context.Context, id uint64) (*models.Customer, error)
}

// CustomerService implements customer registration and authentication
type CustomerService struct {
	repo  CustomerRepository
	token TokenService
}

// NewCustomerService creates new CustomerService instance
func NewCustomerService(repo CustomerRepository, token TokenService) *CustomerService {
	return &CustomerService{repo: repo, token: token}
}

// Register creates customer account with bcrypt password hash
func (cs *CustomerService) Register(ctx context.Context, name, email, phone, password string) (*models.Customer, error) {
	if name == "" || email == "" || len(password) < 8 {
		return nil, models.ErrValidation
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	customer := &models.Customer{
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: string(hash),
	}

	return cs.repo.CreateCustomer(ctx, customer)
}

// Login checks credentials and returns signed auth token
func (cs *CustomerService) Login(ctx context.Context, email, password string) (string, error) {
	customer, err := cs.repo.GetCustomerByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrDataNotFound) {
			return "", models.ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(customer.PasswordHash), []byte(password)); err != nil {
		return "", models.ErrInvalidCredentials
	}

	return cs.token.CreateToken(&models.TokenPayload{
		CustomerID: customer.ID,
		Email:      customer.Email,
		Role:       models.RoleCustomer,
	})
}

// GetCustomer returns customer by id
func (cs *CustomerService) GetCustomer(ctx context.Context, id uint64) (*models.Customer, error) {
	return cs.repo.GetCustomerByID(ctx, id)
}
