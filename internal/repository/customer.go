package repository

import (
	"context"
	"errors"

	"github.com/candleworks/storefront/internal/models"
	"github.com/candleworks/storefront/internal/repository/postgres"
	"github.com/jackc/pgx/v5"
)

const (
	insertCustomerQuery = `
						INSERT INTO customers (name, email, phone, password_hash)
						VALUES ($1, $2, $3, $4)
						RETURNING id, created_at
`
	selectCustomerByEmailQuery = `
						SELECT id, name, email, phone, password_hash, created_at FROM customers
						WHERE email = $1
`
	selectCustomerByIDQuery = `
						SELECT id, name, email, phone, password_hash, created_at FROM customers
						WHERE id = $1
`
)

// CustomerRepository implements CustomerRepository interface
type CustomerRepository struct {
	db *postgres.DB
}

// NewCustomerRepository creates new CustomerRepository instance
func NewCustomerRepository(db *postgres.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// CreateCustomer inserts new customer to database
func (cr *CustomerRepository) CreateCustomer(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	err := cr.db.QueryRow(ctx, insertCustomerQuery,
		customer.Name, customer.Email, customer.Phone, customer.PasswordHash,
	).Scan(&customer.ID, &customer.CreatedAt)
	if err != nil {
		if errCode := cr.db.ErrorCode(err); errCode == pgErrUniqueViolationCode {
			return nil, models.ErrConflictData
		}
		return nil, err
	}

	return customer, nil
}

// GetCustomerByEmail returns customer by email
func (cr *CustomerRepository) GetCustomerByEmail(ctx context.Context, email string) (*models.Customer, error) {
	return cr.scanCustomer(cr.db.QueryRow(ctx, selectCustomerByEmailQuery, email))
}

// GetCustomerByID returns customer by id
func (cr *CustomerRepository) GetCustomerByID(ctx context.Context, id uint64) (*models.Customer, error) {
	return cr.scanCustomer(cr.db.QueryRow(ctx, selectCustomerByIDQuery, id))
}

func (cr *CustomerRepository) scanCustomer(row pgx.Row) (*models.Customer, error) {
	customer := models.Customer{}
	err := row.Scan(&customer.ID, &customer.Name, &customer.Email, &customer.Phone,
		&customer.PasswordHash, &customer.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}
	return &customer, nil
}
