package models

import "time"

// token roles
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// Customer is registered customer entity
type Customer struct {
	ID           uint64
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	CreatedAt    time.Time
}

// TokenPayload is authorization token payload
type TokenPayload struct {
	CustomerID uint64
	Email      string
	Role       string
}
