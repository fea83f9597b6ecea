package models

import "time"

// order status
const (
	// OrderStatusCreated - local order exists, gateway order minted, payment pending
	OrderStatusCreated = "created"
	// OrderStatusCaptured - payment confirmed, funds secured, stock committed
	OrderStatusCaptured = "captured"
	// OrderStatusFailed - payment failed or order expired unpaid
	OrderStatusFailed = "failed"
)

// Buyer is checkout contact info. It may or may not belong
// to a registered customer.
type Buyer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// OrderItem is a line item with the unit price snapshotted from the
// catalog at order creation time. Prices are in minor units (paise).
type OrderItem struct {
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	Quantity  int64  `json:"qty"`
	UnitPrice int64  `json:"price"`
}

// Order is order entity
type Order struct {
	ID               string
	CustomerID       *uint64
	Buyer            Buyer
	Items            []OrderItem
	Amount           int64
	Currency         string
	Status           string
	GatewayOrderID   string
	GatewayPaymentID string
	CreatedAt        time.Time
	CapturedAt       *time.Time
}

// IsTerminal reports whether the order may no longer change status.
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusCaptured || o.Status == OrderStatusFailed
}

// WebhookEvent is audit metadata for a signature-valid gateway delivery,
// recorded even for duplicate deliveries against terminal orders.
type WebhookEvent struct {
	ID               uint64
	EventID          string
	EventType        string
	GatewayOrderID   string
	GatewayPaymentID string
	Applied          bool
	ReceivedAt       time.Time
}

// webhook event types
const (
	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"
)
