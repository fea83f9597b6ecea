package models

import "time"

// Product is catalog entity. Price is in minor units (paise).
type Product struct {
	ID          string
	Title       string
	Description string
	Price       int64
	Currency    string
	Stock       int64
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
