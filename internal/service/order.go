package service

import (
	"context"
	"errors"
	"time"

	"github.com/candleworks/storefront/internal/gateway"
	"github.com/candleworks/storefront/internal/logger"
	"github.com/candleworks/storefront/internal/metrics"
	"github.com/candleworks/storefront/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderRepository is interface for interacting with order-related data
type OrderRepository interface {
	// CreateOrder inserts new order to database
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	// SetGatewayOrderID assigns the minted gateway order id exactly once
	SetGatewayOrderID(ctx context.Context, id, gatewayOrderID string) error
	// DeleteOrder removes a pending order
	DeleteOrder(ctx context.Context, id string) error
	// GetOrderByID returns order by local id
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	// GetOrderByGatewayOrderID returns order by gateway order id
	GetOrderByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Order, error)
	// CaptureOrder atomically transitions a pending order to captured and commits stock
	CaptureOrder(ctx context.Context, id, gatewayPaymentID string, items []models.OrderItem) error
	// FailOrder transitions a pending order to failed
	FailOrder(ctx context.Context, id, gatewayPaymentID string) error
	// GetOrdersByCustomerID gets customer orders
	GetOrdersByCustomerID(ctx context.Context, customerID uint64) ([]models.Order, error)
	// GetOrders returns all orders
	GetOrders(ctx context.Context) ([]models.Order, error)
	// GetPendingOrders returns orders stuck in status created since before cutoff
	GetPendingOrders(ctx context.Context, cutoff time.Time) ([]models.Order, error)
	// RecordWebhookEvent stores audit metadata for a delivery
	RecordWebhookEvent(ctx context.Context, event models.WebhookEvent) error
}

// ProductReader is the catalog boundary Order Intake depends on
type ProductReader interface {
	GetProductByID(ctx context.Context, id string) (*models.Product, error)
}

// GatewayClient is the payment gateway boundary
type GatewayClient interface {
	CreateRemoteOrder(ctx context.Context, amount int64, currency, receipt string) (string, error)
	FetchPayments(ctx context.Context, gatewayOrderID string) ([]gateway.Payment, error)
}

// CartItem is a client-supplied order line. Any price the client sends is
// ignored; unit prices always come from the catalog.
type CartItem struct {
	ProductID string
	Quantity  int64
}

// WebhookEvent is a parsed, signature-checked gateway event
type WebhookEvent struct {
	EventID          string
	EventType        string
	GatewayOrderID   string
	GatewayPaymentID string
}

// OrderService implements order intake, payment confirmation and
// webhook reconciliation over the order repository
type OrderService struct {
	repo      OrderRepository
	products  ProductReader
	gw        GatewayClient
	keySecret string
	currency  string
}

// NewOrderService creates new OrderService instance
func NewOrderService(repo OrderRepository, products ProductReader, gw GatewayClient, keySecret, currency string) *OrderService {
	return &OrderService{
		repo:      repo,
		products:  products,
		gw:        gw,
		keySecret: keySecret,
		currency:  currency,
	}
}

// CreateOrder validates the cart against the catalog, computes the total
// from server-side prices, persists the order and mints a gateway order.
// Stock is checked here but committed only at capture, so abandoned
// checkouts do not hold stock.
func (os *OrderService) CreateOrder(ctx context.Context, customerID *uint64, buyer models.Buyer, cart []CartItem) (*models.Order, error) {
	if len(cart) == 0 {
		return nil, models.ErrEmptyCart
	}
	if buyer.Name == "" || buyer.Email == "" {
		return nil, models.ErrValidation
	}

	var amount int64
	items := make([]models.OrderItem, 0, len(cart))

	for _, line := range cart {
		if line.Quantity <= 0 {
			return nil, models.ErrValidation
		}

		product, err := os.products.GetProductByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if !product.Active {
			return nil, models.ErrProductInactive
		}
		if product.Stock < line.Quantity {
			return nil, models.ErrInsufficientStock
		}

		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Title:     product.Title,
			Quantity:  line.Quantity,
			UnitPrice: product.Price,
		})
		amount += product.Price * line.Quantity
	}

	order := &models.Order{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		Buyer:      buyer,
		Items:      items,
		Amount:     amount,
		Currency:   os.currency,
		Status:     models.OrderStatusCreated,
	}

	order, err := os.repo.CreateOrder(ctx, order)
	if err != nil {
		return nil, err
	}

	gatewayOrderID, err := os.gw.CreateRemoteOrder(ctx, order.Amount, order.Currency, order.ID)
	if err != nil {
		// no payable local order may survive a failed mint
		if delErr := os.repo.DeleteOrder(ctx, order.ID); delErr != nil {
			logger.Log.Error("rollback of unpaid order failed",
				zap.String("order", order.ID), zap.Error(delErr))
		}
		return nil, err
	}

	if err := os.repo.SetGatewayOrderID(ctx, order.ID, gatewayOrderID); err != nil {
		if delErr := os.repo.DeleteOrder(ctx, order.ID); delErr != nil {
			logger.Log.Error("rollback of unpaid order failed",
				zap.String("order", order.ID), zap.Error(delErr))
		}
		return nil, err
	}
	order.GatewayOrderID = gatewayOrderID

	metrics.OrdersCreated.Inc()
	logger.Log.Info("order created",
		zap.String("order", order.ID),
		zap.String("gateway_order", gatewayOrderID),
		zap.Int64("amount", order.Amount))

	return order, nil
}

// ConfirmPayment verifies the client-side payment confirmation signature
// and captures the order. Repeat calls with the payment id already recorded
// on a captured order succeed without re-running side effects.
func (os *OrderService) ConfirmPayment(ctx context.Context, orderID, gatewayOrderID, gatewayPaymentID, signature string) (*models.Order, error) {
	order, err := os.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	// the stored id is authoritative, never corrected from client input
	if order.GatewayOrderID == "" || order.GatewayOrderID != gatewayOrderID {
		return nil, models.ErrOrderMismatch
	}

	if !gateway.VerifyPaymentSignature(gatewayOrderID, gatewayPaymentID, signature, os.keySecret) {
		metrics.SignatureFailures.Inc()
		logger.Log.Warn("payment signature rejected",
			zap.String("order", orderID),
			zap.String("gateway_order", gatewayOrderID))
		return nil, models.ErrSignatureInvalid
	}

	if err := os.capture(ctx, order, gatewayPaymentID, metrics.SourceConfirm); err != nil {
		return nil, err
	}

	return os.repo.GetOrderByID(ctx, orderID)
}

// capture applies the created->captured transition. When the conditional
// update loses to a concurrent handler, the order is re-read and checked
// for idempotent agreement on the payment id.
func (os *OrderService) capture(ctx context.Context, order *models.Order, gatewayPaymentID, source string) error {
	err := os.repo.CaptureOrder(ctx, order.ID, gatewayPaymentID, order.Items)
	if err == nil {
		metrics.PaymentsCaptured.WithLabelValues(source).Inc()
		logger.Log.Info("payment captured",
			zap.String("order", order.ID),
			zap.String("payment", gatewayPaymentID),
			zap.String("source", source))
		return nil
	}
	if !errors.Is(err, models.ErrOrderFinalized) {
		return err
	}

	current, err := os.repo.GetOrderByID(ctx, order.ID)
	if err != nil {
		return err
	}

	switch current.Status {
	case models.OrderStatusCaptured:
		if current.GatewayPaymentID == gatewayPaymentID {
			// the other handler won the race with the same payment
			return nil
		}
		return models.ErrPaymentMismatch
	default:
		return models.ErrOrderFinalized
	}
}

// fail applies the created->failed transition with the same convergence
// rules as capture.
func (os *OrderService) fail(ctx context.Context, order *models.Order, gatewayPaymentID string) error {
	err := os.repo.FailOrder(ctx, order.ID, gatewayPaymentID)
	if err == nil {
		metrics.PaymentsFailed.Inc()
		logger.Log.Info("payment failed",
			zap.String("order", order.ID),
			zap.String("payment", gatewayPaymentID))
		return nil
	}
	if !errors.Is(err, models.ErrOrderFinalized) {
		return err
	}

	current, err := os.repo.GetOrderByID(ctx, order.ID)
	if err != nil {
		return err
	}

	switch current.Status {
	case models.OrderStatusFailed:
		return nil
	default:
		// a capture already happened; a failed event must not undo it
		return models.ErrOrderFinalized
	}
}

// ApplyWebhookEvent processes a signature-checked gateway event. Deliveries
// are at-least-once, so repeats and races with the confirmation handler must
// converge. A nil return means the event is acknowledged.
func (os *OrderService) ApplyWebhookEvent(ctx context.Context, event WebhookEvent) error {
	record := models.WebhookEvent{
		EventID:          event.EventID,
		EventType:        event.EventType,
		GatewayOrderID:   event.GatewayOrderID,
		GatewayPaymentID: event.GatewayPaymentID,
	}

	order, err := os.repo.GetOrderByGatewayOrderID(ctx, event.GatewayOrderID)
	if err != nil {
		if errors.Is(err, models.ErrDataNotFound) {
			// acknowledge so the gateway stops retrying an event for an
			// order this store no longer knows
			logger.Log.Warn("webhook for unknown order",
				zap.String("gateway_order", event.GatewayOrderID),
				zap.String("event", event.EventType))
			os.recordEvent(ctx, record)
			return nil
		}
		return err
	}

	switch event.EventType {
	case models.EventPaymentCaptured:
		err = os.capture(ctx, order, event.GatewayPaymentID, metrics.SourceWebhook)
	case models.EventPaymentFailed:
		err = os.fail(ctx, order, event.GatewayPaymentID)
	default:
		logger.Log.Debug("ignoring webhook event type", zap.String("event", event.EventType))
		os.recordEvent(ctx, record)
		return nil
	}

	record.Applied = err == nil
	os.recordEvent(ctx, record)
	return err
}

func (os *OrderService) recordEvent(ctx context.Context, record models.WebhookEvent) {
	if err := os.repo.RecordWebhookEvent(ctx, record); err != nil {
		logger.Log.Error("record webhook event", zap.Error(err))
	}
}

// GetOrder returns order by id
func (os *OrderService) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	return os.repo.GetOrderByID(ctx, orderID)
}

// ListCustomerOrders returns orders of a customer
func (os *OrderService) ListCustomerOrders(ctx context.Context, customerID uint64) ([]models.Order, error) {
	return os.repo.GetOrdersByCustomerID(ctx, customerID)
}

// ListOrders returns all orders for the admin view
func (os *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	return os.repo.GetOrders(ctx)
}

// ReconcileOrder finalizes one stale pending order from the gateway's
// payment records. Used by the worker for orders whose client confirmation
// never arrived and whose webhook was lost.
func (os *OrderService) ReconcileOrder(ctx context.Context, order *models.Order) error {
	payments, err := os.gw.FetchPayments(ctx, order.GatewayOrderID)
	if err != nil {
		return err
	}

	for _, payment := range payments {
		if payment.Status == gateway.PaymentStatusCaptured {
			return os.capture(ctx, order, payment.ID, metrics.SourceReconcile)
		}
	}

	// past the cutoff with no captured payment the order is abandoned
	return os.fail(ctx, order, "")
}

// GetStaleOrders writes stale pending orders to orderCh for reconciliation
func (os *OrderService) GetStaleOrders(ctx context.Context, cutoff time.Time, orderCh chan<- models.Order) error {
	orders, err := os.repo.GetPendingOrders(ctx, cutoff)
	if err != nil {
		return err
	}

	for _, order := range orders {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case orderCh <- order:
		}
	}

	return nil
}
