package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/candleworks/storefront/internal/models"
	"github.com/candleworks/storefront/internal/repository/postgres"
	"github.com/jackc/pgx/v5"
)

const pgErrUniqueViolationCode = "23505"

const (
	insertOrderQuery = `
						INSERT INTO orders (id, customer_id, buyer_name, buyer_email, buyer_phone, items, amount, currency, status)
						VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
						RETURNING created_at
`
	setGatewayOrderIDQuery = `
						UPDATE orders
						SET gateway_order_id = $2
						WHERE id = $1 AND gateway_order_id IS NULL
`
	selectOrderQuery = `
						SELECT id, customer_id, buyer_name, buyer_email, buyer_phone, items, amount, currency, status, gateway_order_id, gateway_payment_id, created_at, captured_at
						FROM orders
`
	selectOrderByIDQuery        = selectOrderQuery + ` WHERE id = $1`
	selectOrderByGatewayIDQuery = selectOrderQuery + ` WHERE gateway_order_id = $1`

	selectOrdersByCustomerIDQuery = selectOrderQuery + `
						WHERE customer_id = $1
						ORDER BY created_at DESC
`
	selectAllOrdersQuery = selectOrderQuery + ` ORDER BY created_at DESC`

	selectPendingOrdersQuery = selectOrderQuery + `
						WHERE status = 'created' AND gateway_order_id IS NOT NULL AND created_at < $1
`
	deleteOrderQuery = `DELETE FROM orders WHERE id = $1 AND status = 'created'`

	// conditional transition: succeeds only while the order is still pending
	captureOrderQuery = `
						UPDATE orders
						SET status = 'captured', gateway_payment_id = $2, captured_at = now()
						WHERE id = $1 AND status = 'created'
`
	failOrderQuery = `
						UPDATE orders
						SET status = 'failed', gateway_payment_id = $2
						WHERE id = $1 AND status = 'created'
`
	decrementStockQuery = `
						UPDATE products
						SET stock = stock - $2, updated_at = now()
						WHERE id = $1 AND stock >= $2
`
	insertWebhookEventQuery = `
						INSERT INTO webhook_events (event_id, event_type, gateway_order_id, gateway_payment_id, applied)
						VALUES ($1, $2, $3, $4, $5)
`
)

// OrderRepository implements OrderRepository interface
type OrderRepository struct {
	db *postgres.DB
}

// NewOrderRepository creates new OrderRepository instance
func NewOrderRepository(db *postgres.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateOrder inserts new order to database
func (or *OrderRepository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return nil, err
	}

	err = or.db.QueryRow(ctx, insertOrderQuery,
		order.ID, order.CustomerID, order.Buyer.Name, order.Buyer.Email, order.Buyer.Phone,
		items, order.Amount, order.Currency, order.Status,
	).Scan(&order.CreatedAt)
	if err != nil {
		if errCode := or.db.ErrorCode(err); errCode == pgErrUniqueViolationCode {
			return nil, models.ErrConflictData
		}
		return nil, err
	}

	return order, nil
}

// SetGatewayOrderID assigns the minted gateway order id. The id is written
// at most once; a second assignment attempt is a conflict.
func (or *OrderRepository) SetGatewayOrderID(ctx context.Context, id, gatewayOrderID string) error {
	cmd, err := or.db.Exec(ctx, setGatewayOrderIDQuery, id, gatewayOrderID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return models.ErrConflictData
	}
	return nil
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	order := models.Order{}
	var items []byte
	var gatewayOrderID *string
	err := row.Scan(&order.ID, &order.CustomerID, &order.Buyer.Name, &order.Buyer.Email, &order.Buyer.Phone,
		&items, &order.Amount, &order.Currency, &order.Status, &gatewayOrderID, &order.GatewayPaymentID,
		&order.CreatedAt, &order.CapturedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(items, &order.Items); err != nil {
		return nil, err
	}
	if gatewayOrderID != nil {
		order.GatewayOrderID = *gatewayOrderID
	}
	return &order, nil
}

// GetOrderByID returns order by local id
func (or *OrderRepository) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	return scanOrder(or.db.QueryRow(ctx, selectOrderByIDQuery, id))
}

// GetOrderByGatewayOrderID returns order by gateway order id
func (or *OrderRepository) GetOrderByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Order, error) {
	return scanOrder(or.db.QueryRow(ctx, selectOrderByGatewayIDQuery, gatewayOrderID))
}

// DeleteOrder removes a pending order. Used to roll back intake when the
// gateway order could not be created.
func (or *OrderRepository) DeleteOrder(ctx context.Context, id string) error {
	cmd, err := or.db.Exec(ctx, deleteOrderQuery, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}
	return nil
}

// CaptureOrder transitions order to captured and commits stock in a single
// transaction. The status update is conditional on status 'created', so only
// one of the competing handlers (client confirmation, webhook, reconciler)
// can win; the losers get ErrOrderFinalized and must re-read the order.
func (or *OrderRepository) CaptureOrder(ctx context.Context, id, gatewayPaymentID string, items []models.OrderItem) error {
	tx, err := or.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, captureOrderQuery, id, gatewayPaymentID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return models.ErrOrderFinalized
	}

	for _, item := range items {
		cmd, err := tx.Exec(ctx, decrementStockQuery, item.ProductID, item.Quantity)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return models.ErrInsufficientStock
		}
	}

	return tx.Commit(ctx)
}

// FailOrder transitions order to failed if it is still pending
func (or *OrderRepository) FailOrder(ctx context.Context, id, gatewayPaymentID string) error {
	cmd, err := or.db.Exec(ctx, failOrderQuery, id, gatewayPaymentID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return models.ErrOrderFinalized
	}
	return nil
}

// GetOrdersByCustomerID gets customer orders
func (or *OrderRepository) GetOrdersByCustomerID(ctx context.Context, customerID uint64) ([]models.Order, error) {
	return or.queryOrders(ctx, selectOrdersByCustomerIDQuery, customerID)
}

// GetOrders returns all orders, newest first
func (or *OrderRepository) GetOrders(ctx context.Context) ([]models.Order, error) {
	return or.queryOrders(ctx, selectAllOrdersQuery)
}

// GetPendingOrders returns orders stuck in status created since before cutoff
func (or *OrderRepository) GetPendingOrders(ctx context.Context, cutoff time.Time) ([]models.Order, error) {
	return or.queryOrders(ctx, selectPendingOrdersQuery, cutoff)
}

func (or *OrderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]models.Order, error) {
	rows, err := or.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []models.Order{}

	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			continue
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

// RecordWebhookEvent stores audit metadata for a signature-valid delivery
func (or *OrderRepository) RecordWebhookEvent(ctx context.Context, event models.WebhookEvent) error {
	_, err := or.db.Exec(ctx, insertWebhookEventQuery,
		event.EventID, event.EventType, event.GatewayOrderID, event.GatewayPaymentID, event.Applied)
	return err
}
