package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/candleworks/storefront/internal/models"
	"github.com/candleworks/storefront/internal/service"
	"github.com/go-chi/chi/v5"
)

//go:generate mockgen -destination=mocks/mock_order_service.go -package=mocks . OrderService

type OrderService interface {
	// CreateOrder validates cart, persists order and mints a gateway order
	CreateOrder(ctx context.Context, customerID *uint64, buyer models.Buyer, cart []service.CartItem) (*models.Order, error)
	// ConfirmPayment verifies the client confirmation signature and captures the order
	ConfirmPayment(ctx context.Context, orderID, gatewayOrderID, gatewayPaymentID, signature string) (*models.Order, error)
	// GetOrder returns order by id
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
	// ListCustomerOrders returns orders of a customer
	ListCustomerOrders(ctx context.Context, customerID uint64) ([]models.Order, error)
	// ListOrders returns all orders
	ListOrders(ctx context.Context) ([]models.Order, error)
}

// OrderHandler represents HTTP handler for order-related requests
type OrderHandler struct {
	svc   OrderService
	keyID string
}

// NewOrderHandler creates new OrderHandler instance
func NewOrderHandler(svc OrderService, keyID string) *OrderHandler {
	return &OrderHandler{svc: svc, keyID: keyID}
}

type createOrderItem struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"qty"`
}

type createOrderRequest struct {
	Buyer models.Buyer      `json:"buyer"`
	Items []createOrderItem `json:"items"`
}

type createOrderResponse struct {
	OrderID        string `json:"order_id"`
	GatewayOrderID string `json:"gateway_order_id"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	KeyID          string `json:"key_id"`
}

// CreateOrder runs order intake for a checkout request
// 201 — order created and payable
// 400 — malformed request or empty cart
// 404 — unknown or inactive product
// 409 — insufficient stock
// 502 — gateway unavailable, client may retry
func (oh *OrderHandler) CreateOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		// buyer may be anonymous, attach customer id only when authenticated
		var customerID *uint64
		if payload, ok := getAuthPayload(r.Context()); ok && payload.CustomerID != 0 {
			customerID = &payload.CustomerID
		}

		cart := make([]service.CartItem, 0, len(req.Items))
		for _, item := range req.Items {
			cart = append(cart, service.CartItem{ProductID: item.ProductID, Quantity: item.Quantity})
		}

		order, err := oh.svc.CreateOrder(r.Context(), customerID, req.Buyer, cart)
		if err != nil {
			var upstream models.UpstreamError
			switch {
			case errors.Is(err, models.ErrEmptyCart), errors.Is(err, models.ErrValidation):
				http.Error(w, "bad request", http.StatusBadRequest)
			case errors.Is(err, models.ErrDataNotFound), errors.Is(err, models.ErrProductInactive):
				http.Error(w, "product not found", http.StatusNotFound)
			case errors.Is(err, models.ErrInsufficientStock):
				http.Error(w, "insufficient stock", http.StatusConflict)
			case errors.As(err, &upstream):
				http.Error(w, "payment gateway unavailable", http.StatusBadGateway)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)

		if err := json.NewEncoder(w).Encode(createOrderResponse{
			OrderID:        order.ID,
			GatewayOrderID: order.GatewayOrderID,
			Amount:         order.Amount,
			Currency:       order.Currency,
			KeyID:          oh.keyID,
		}); err != nil {
			return
		}
	}
}

type verifyPaymentRequest struct {
	OrderID          string `json:"order_id"`
	GatewayOrderID   string `json:"gateway_order_id"`
	GatewayPaymentID string `json:"gateway_payment_id"`
	Signature        string `json:"signature"`
}

type orderStatusResponse struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

// VerifyPayment handles the client-side payment confirmation
// 200 — payment captured (or already captured with the same payment id)
// 400 — malformed request
// 401 — signature verification failed
// 404 — unknown order
// 409 — gateway order mismatch or conflicting capture
func (oh *OrderHandler) VerifyPayment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req verifyPaymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		if req.OrderID == "" || req.GatewayOrderID == "" || req.GatewayPaymentID == "" || req.Signature == "" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		order, err := oh.svc.ConfirmPayment(r.Context(), req.OrderID, req.GatewayOrderID, req.GatewayPaymentID, req.Signature)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrSignatureInvalid):
				http.Error(w, "signature verification failed", http.StatusUnauthorized)
			case errors.Is(err, models.ErrDataNotFound):
				http.Error(w, "order not found", http.StatusNotFound)
			case errors.Is(err, models.ErrOrderMismatch),
				errors.Is(err, models.ErrPaymentMismatch),
				errors.Is(err, models.ErrOrderFinalized),
				errors.Is(err, models.ErrInsufficientStock):
				http.Error(w, "conflict", http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(orderStatusResponse{
			OrderID: order.ID,
			Status:  order.Status,
		}); err != nil {
			return
		}
	}
}

// GetOrder returns order status for client polling
// 200 — success
// 404 — order not found
func (oh *OrderHandler) GetOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := chi.URLParam(r, "id")

		order, err := oh.svc.GetOrder(r.Context(), orderID)
		if err != nil {
			if errors.Is(err, models.ErrDataNotFound) {
				http.Error(w, "order not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(orderStatusResponse{
			OrderID: order.ID,
			Status:  order.Status,
		}); err != nil {
			return
		}
	}
}

type listOrderItemResp struct {
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	Quantity  int64  `json:"qty"`
	UnitPrice int64  `json:"price"`
}

// ListOrdersResp is one order in a listing response
type ListOrdersResp struct {
	OrderID          string              `json:"order_id"`
	Buyer            models.Buyer        `json:"buyer"`
	Items            []listOrderItemResp `json:"items"`
	Amount           int64               `json:"amount"`
	Currency         string              `json:"currency"`
	Status           string              `json:"status"`
	GatewayOrderID   string              `json:"gateway_order_id"`
	GatewayPaymentID string              `json:"gateway_payment_id,omitempty"`
	CreatedAt        string              `json:"created_at"`
}

func toListOrdersResp(orders []models.Order) []ListOrdersResp {
	resp := make([]ListOrdersResp, 0, len(orders))
	for _, order := range orders {
		items := make([]listOrderItemResp, 0, len(order.Items))
		for _, item := range order.Items {
			items = append(items, listOrderItemResp{
				ProductID: item.ProductID,
				Title:     item.Title,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
			})
		}
		resp = append(resp, ListOrdersResp{
			OrderID:          order.ID,
			Buyer:            order.Buyer,
			Items:            items,
			Amount:           order.Amount,
			Currency:         order.Currency,
			Status:           order.Status,
			GatewayOrderID:   order.GatewayOrderID,
			GatewayPaymentID: order.GatewayPaymentID,
			CreatedAt:        order.CreatedAt.Format(time.RFC3339),
		})
	}
	return resp
}

// ListCustomerOrders returns orders of the authenticated customer
// 200 — success
// 204 — no orders
// 401 — unauthorized
func (oh *OrderHandler) ListCustomerOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := getAuthPayload(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orders, err := oh.svc.ListCustomerOrders(r.Context(), payload.CustomerID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		if len(orders) == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(toListOrdersResp(orders)); err != nil {
			return
		}
	}
}

// ListOrders returns all orders for the admin view
// 200 — success
func (oh *OrderHandler) ListOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orders, err := oh.svc.ListOrders(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(toListOrdersResp(orders)); err != nil {
			return
		}
	}
}
