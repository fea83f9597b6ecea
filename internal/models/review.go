package models

import "time"

// Review is product review entity
type Review struct {
	ID         uint64
	ProductID  string
	CustomerID uint64
	Author     string
	Rating     int
	Comment    string
	CreatedAt  time.Time
}
