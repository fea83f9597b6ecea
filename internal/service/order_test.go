package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/candleworks/storefront/internal/gateway"
	"github.com/candleworks/storefront/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeySecret = "key_secret_test"

type fakeCatalog struct {
	mu       sync.Mutex
	products map[string]*models.Product
}

func newFakeCatalog(products ...*models.Product) *fakeCatalog {
	fc := &fakeCatalog{products: map[string]*models.Product{}}
	for _, p := range products {
		fc.products[p.ID] = p
	}
	return fc
}

func (fc *fakeCatalog) GetProductByID(_ context.Context, id string) (*models.Product, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	p, ok := fc.products[id]
	if !ok {
		return nil, models.ErrDataNotFound
	}
	cp := *p
	return &cp, nil
}

func (fc *fakeCatalog) stock(id string) int64 {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.products[id].Stock
}

// fakeOrderRepo mimics the conditional-update semantics of the postgres
// repository: a capture or fail succeeds only while status is created.
type fakeOrderRepo struct {
	mu       sync.Mutex
	catalog  *fakeCatalog
	orders   map[string]*models.Order
	events   []models.WebhookEvent
	captures int
}

func newFakeOrderRepo(catalog *fakeCatalog) *fakeOrderRepo {
	return &fakeOrderRepo{catalog: catalog, orders: map[string]*models.Order{}}
}

func (fr *fakeOrderRepo) CreateOrder(_ context.Context, order *models.Order) (*models.Order, error) {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	order.CreatedAt = time.Now()
	cp := *order
	fr.orders[order.ID] = &cp
	return order, nil
}

func (fr *fakeOrderRepo) SetGatewayOrderID(_ context.Context, id, gatewayOrderID string) error {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	order, ok := fr.orders[id]
	if !ok {
		return models.ErrDataNotFound
	}
	if order.GatewayOrderID != "" {
		return models.ErrConflictData
	}
	order.GatewayOrderID = gatewayOrderID
	return nil
}

func (fr *fakeOrderRepo) DeleteOrder(_ context.Context, id string) error {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	if _, ok := fr.orders[id]; !ok {
		return models.ErrDataNotFound
	}
	delete(fr.orders, id)
	return nil
}

func (fr *fakeOrderRepo) GetOrderByID(_ context.Context, id string) (*models.Order, error) {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	order, ok := fr.orders[id]
	if !ok {
		return nil, models.ErrDataNotFound
	}
	cp := *order
	return &cp, nil
}

func (fr *fakeOrderRepo) GetOrderByGatewayOrderID(_ context.Context, gatewayOrderID string) (*models.Order, error) {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	for _, order := range fr.orders {
		if order.GatewayOrderID == gatewayOrderID {
			cp := *order
			return &cp, nil
		}
	}
	return nil, models.ErrDataNotFound
}

func (fr *fakeOrderRepo) CaptureOrder(_ context.Context, id, gatewayPaymentID string, items []models.OrderItem) error {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	order, ok := fr.orders[id]
	if !ok {
		return models.ErrDataNotFound
	}
	if order.Status != models.OrderStatusCreated {
		return models.ErrOrderFinalized
	}

	fr.catalog.mu.Lock()
	defer fr.catalog.mu.Unlock()
	for _, item := range items {
		if fr.catalog.products[item.ProductID].Stock < item.Quantity {
			return models.ErrInsufficientStock
		}
	}
	for _, item := range items {
		fr.catalog.products[item.ProductID].Stock -= item.Quantity
	}

	now := time.Now()
	order.Status = models.OrderStatusCaptured
	order.GatewayPaymentID = gatewayPaymentID
	order.CapturedAt = &now
	fr.captures++
	return nil
}

func (fr *fakeOrderRepo) FailOrder(_ context.Context, id, gatewayPaymentID string) error {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	order, ok := fr.orders[id]
	if !ok {
		return models.ErrDataNotFound
	}
	if order.Status != models.OrderStatusCreated {
		return models.ErrOrderFinalized
	}
	order.Status = models.OrderStatusFailed
	order.GatewayPaymentID = gatewayPaymentID
	return nil
}

func (fr *fakeOrderRepo) GetOrdersByCustomerID(context.Context, uint64) ([]models.Order, error) {
	return nil, nil
}

func (fr *fakeOrderRepo) GetOrders(context.Context) ([]models.Order, error) {
	return nil, nil
}

func (fr *fakeOrderRepo) GetPendingOrders(context.Context, time.Time) ([]models.Order, error) {
	return nil, nil
}

func (fr *fakeOrderRepo) RecordWebhookEvent(_ context.Context, event models.WebhookEvent) error {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	fr.events = append(fr.events, event)
	return nil
}

type fakeGateway struct {
	createErr error
	payments  []gateway.Payment
}

func (fg *fakeGateway) CreateRemoteOrder(_ context.Context, _ int64, _, receipt string) (string, error) {
	if fg.createErr != nil {
		return "", fg.createErr
	}
	return "gw_" + receipt, nil
}

func (fg *fakeGateway) FetchPayments(context.Context, string) ([]gateway.Payment, error) {
	return fg.payments, nil
}

func candleCatalog() *fakeCatalog {
	return newFakeCatalog(&models.Product{
		ID:       "candle-1",
		Title:    "Beeswax Pillar Candle",
		Price:    49900,
		Currency: "INR",
		Stock:    10,
		Active:   true,
	})
}

func newTestService(catalog *fakeCatalog, repo *fakeOrderRepo, gw GatewayClient) *OrderService {
	return NewOrderService(repo, catalog, gw, testKeySecret, "INR")
}

func TestOrderService_CreateOrder(t *testing.T) {
	buyer := models.Buyer{Name: "Asha", Email: "asha@example.com"}

	tests := []struct {
		name    string
		cart    []CartItem
		catalog *fakeCatalog
		wantErr error
	}{
		{
			name:    "empty_cart",
			cart:    nil,
			catalog: candleCatalog(),
			wantErr: models.ErrEmptyCart,
		},
		{
			name:    "zero_quantity",
			cart:    []CartItem{{ProductID: "candle-1", Quantity: 0}},
			catalog: candleCatalog(),
			wantErr: models.ErrValidation,
		},
		{
			name:    "unknown_product",
			cart:    []CartItem{{ProductID: "lamp-9", Quantity: 1}},
			catalog: candleCatalog(),
			wantErr: models.ErrDataNotFound,
		},
		{
			name: "inactive_product",
			cart: []CartItem{{ProductID: "candle-2", Quantity: 1}},
			catalog: newFakeCatalog(&models.Product{
				ID: "candle-2", Title: "Retired", Price: 100, Stock: 5, Active: false,
			}),
			wantErr: models.ErrProductInactive,
		},
		{
			name:    "insufficient_stock",
			cart:    []CartItem{{ProductID: "candle-1", Quantity: 11}},
			catalog: candleCatalog(),
			wantErr: models.ErrInsufficientStock,
		},
		{
			name:    "valid_cart",
			cart:    []CartItem{{ProductID: "candle-1", Quantity: 2}},
			catalog: candleCatalog(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeOrderRepo(tt.catalog)
			svc := newTestService(tt.catalog, repo, &fakeGateway{})

			order, err := svc.CreateOrder(context.Background(), nil, buyer, tt.cart)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, int64(99800), order.Amount)
			assert.Equal(t, models.OrderStatusCreated, order.Status)
			assert.Equal(t, "gw_"+order.ID, order.GatewayOrderID)
			// stock is only checked at intake, never decremented
			assert.Equal(t, int64(10), tt.catalog.stock("candle-1"))
		})
	}
}

func TestOrderService_CreateOrder_SnapshotsCatalogPrice(t *testing.T) {
	catalog := candleCatalog()
	repo := newFakeOrderRepo(catalog)
	svc := newTestService(catalog, repo, &fakeGateway{})

	order, err := svc.CreateOrder(context.Background(), nil,
		models.Buyer{Name: "Asha", Email: "asha@example.com"},
		[]CartItem{{ProductID: "candle-1", Quantity: 3}})
	require.NoError(t, err)

	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(49900), order.Items[0].UnitPrice)
	assert.Equal(t, int64(3*49900), order.Amount)
}

func TestOrderService_CreateOrder_GatewayFailureLeavesNoOrder(t *testing.T) {
	catalog := candleCatalog()
	repo := newFakeOrderRepo(catalog)
	svc := newTestService(catalog, repo, &fakeGateway{
		createErr: models.NewUpstreamError(errors.New("connection refused"), 0),
	})

	_, err := svc.CreateOrder(context.Background(), nil,
		models.Buyer{Name: "Asha", Email: "asha@example.com"},
		[]CartItem{{ProductID: "candle-1", Quantity: 1}})

	var upstream models.UpstreamError
	assert.ErrorAs(t, err, &upstream)
	assert.Empty(t, repo.orders)
}

// createPendingOrder creates an order and returns it with a valid
// confirmation signature for payment pay_1
func createPendingOrder(t *testing.T, svc *OrderService) (*models.Order, string) {
	t.Helper()
	order, err := svc.CreateOrder(context.Background(), nil,
		models.Buyer{Name: "Asha", Email: "asha@example.com"},
		[]CartItem{{ProductID: "candle-1", Quantity: 2}})
	require.NoError(t, err)

	return order, gateway.PaymentSignature(order.GatewayOrderID, "pay_1", testKeySecret)
}

func TestOrderService_ConfirmPayment_CapturesAndCommitsStock(t *testing.T) {
	catalog := candleCatalog()
	repo := newFakeOrderRepo(catalog)
	svc := newTestService(catalog, repo, &fakeGateway{})

	order, sig := createPendingOrder(t, svc)

	got, err := svc.ConfirmPayment(context.Background(), order.ID, order.GatewayOrderID, "pay_1", sig)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCaptured, got.Status)
	assert.Equal(t, "pay_1", got.GatewayPaymentID)
	assert.Equal(t, int64(8), catalog.stock("candle-1"))
	assert.Equal(t, 1, repo.captures)
}

func TestOrderService_ConfirmPayment_Idempotent(t *testing.T) {
	catalog := candleCatalog()
	repo := newFakeOrderRepo(catalog)
	svc := newTestService(catalog, repo, &fakeGateway{})

	order, sig := createPendingOrder(t, svc)

	_, err := svc.ConfirmPayment(context.Background(), order.ID, order.GatewayOrderID, "pay_1", sig)
	require.NoError(t, err)

	// repeat with identical arguments must succeed without a second decrement
	got, err := svc.ConfirmPayment(context.Background(), order.ID, order.GatewayOrderID, "pay_1", sig)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCaptured, got.Status)
	assert.Equal(t, int64(8), catalog.stock("candle-1"))
	assert.Equal(t, 1, repo.captures)
}

func TestOrderService_ConfirmPayment_TamperedSignature(t *testing.T) {
	catalog := candleCatalog()
	repo := newFakeOrderRepo(catalog)
	svc := newTestService(catalog, repo, &fakeGateway{})

	order, _ := createPendingOrder(t, svc)

	badSig := gateway.PaymentSignature(order.GatewayOrderID, "pay_1", "wrong_secret")
	_, err := svc.ConfirmPayment(context.Background(), order.ID, order.GatewayOrderID, "pay_1", badSig)
	assert.ErrorIs(t, err, models.ErrSignatureInvalid)

	// order untouched, stock untouched
	current, err := repo.GetOrderByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCreated, current.Status)
	assert.Equal(t, int64(10), catalog.stock("candle-1"))
}

func TestOrderService_ConfirmPayment_GatewayOrderMismatch(t *testing.T) {
	catalog := candleCatalog()
	repo := newFakeOrderRepo(catalog)
	svc := newTestService(catalog, repo, &fakeGateway{})

	order, _ := createPendingOrder(t, svc)

	sig := gateway.PaymentSignature("gw_other", "pay_1", testKeySecret)
	_, err := svc.ConfirmPayment(context.Background(), order.ID, "gw_other", "pay_1", sig)
	assert.ErrorIs(t, err, models.ErrOrderMismatch)
}

func TestOrderService_WebhookAfterConfirm_Converges(t *testing.T) {
	catalog := candleCatalog()
	repo := newFakeOrderRepo(catalog)
	svc := newTestService(catalog, repo, &fakeGateway{})

	order, sig := createPendingOrder(t, svc)

	_, err := svc.ConfirmPayment(context.Background(), order.ID, order.GatewayOrderID, "pay_1", sig)
	require.NoError(t, err)

	// same payment id arriving over the webhook is a no-op success
	err = svc.ApplyWebhookEvent(context.Background(), WebhookEvent{
		EventID:          "evt_1",
		EventType:        models.EventPaymentCaptured,
		GatewayOrderID:   order.GatewayOrderID,
		GatewayPaymentID: "pay_1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(8), catalog.stock("candle-1"))
	assert.Equal(t, 1, repo.captures)

	// a different payment id against the captured order is a conflict
	err = svc.ApplyWebhookEvent(context.Background(), WebhookEvent{
		EventID:          "evt_2",
		EventType:        models.EventPaymentCaptured,
		GatewayOrderID:   order.GatewayOrderID,
		GatewayPaymentID: "pay_2",
	})
	assert.ErrorIs(t, err, models.ErrPaymentMismatch)

	current, err := repo.GetOrderByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "pay_1", current.GatewayPaymentID)
}

func TestOrderService_ConfirmAfterWebhook_Converges(t *testing.T) {
	catalog := candleCatalog()
	repo := newFakeOrderRepo(catalog)
	svc := newTestService(catalog, repo, &fakeGateway{})

	order, sig := createPendingOrder(t, svc)

	err := svc.ApplyWebhookEvent(context.Background(), WebhookEvent{
		EventID:          "evt_1",
		EventType:        models.EventPaymentCaptured,
		GatewayOrderID:   order.GatewayOrderID,
		GatewayPaymentID: "pay_1",
	})
	require.NoError(t, err)

	got, err := svc.ConfirmPayment(context.Background(), order.ID, order.GatewayOrderID, "pay_1", sig)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCaptured, got.Status)
	assert.Equal(t, 1, repo.captures)
}

func TestOrderService_WebhookUnknownOrder_Acknowledged(t *testing.T) {
	catalog := candleCatalog()
	repo := newFakeOrderRepo(catalog)
	svc := newTestService(catalog, repo, &fakeGateway{})

	err := svc.ApplyWebhookEvent(context.Background(), WebhookEvent{
		EventID:          "evt_1",
		EventType:        models.EventPaymentCaptured,
		GatewayOrderID:   "gw_ghost",
		GatewayPaymentID: "pay_1",
	})
	require.NoError(t, err)
	require.Len(t, repo.events, 1)
	assert.False(t, repo.events[0].Applied)
}

func TestOrderService_WebhookPaymentFailed(t *testing.T) {
	catalog := candleCatalog()
	repo := newFakeOrderRepo(catalog)
	svc := newTestService(catalog, repo, &fakeGateway{})

	order, sig := createPendingOrder(t, svc)

	err := svc.ApplyWebhookEvent(context.Background(), WebhookEvent{
		EventID:          "evt_1",
		EventType:        models.EventPaymentFailed,
		GatewayOrderID:   order.GatewayOrderID,
		GatewayPaymentID: "pay_1",
	})
	require.NoError(t, err)

	current, err := repo.GetOrderByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusFailed, current.Status)
	assert.Equal(t, int64(10), catalog.stock("candle-1"))

	// duplicate failed delivery is a no-op
	err = svc.ApplyWebhookEvent(context.Background(), WebhookEvent{
		EventID:          "evt_1",
		EventType:        models.EventPaymentFailed,
		GatewayOrderID:   order.GatewayOrderID,
		GatewayPaymentID: "pay_1",
	})
	require.NoError(t, err)

	// a late confirmation of a failed order must not capture it
	_, err = svc.ConfirmPayment(context.Background(), order.ID, order.GatewayOrderID, "pay_1", sig)
	assert.ErrorIs(t, err, models.ErrOrderFinalized)
}

func TestOrderService_WebhookFailedAfterCapture_Rejected(t *testing.T) {
	catalog := candleCatalog()
	repo := newFakeOrderRepo(catalog)
	svc := newTestService(catalog, repo, &fakeGateway{})

	order, sig := createPendingOrder(t, svc)

	_, err := svc.ConfirmPayment(context.Background(), order.ID, order.GatewayOrderID, "pay_1", sig)
	require.NoError(t, err)

	err = svc.ApplyWebhookEvent(context.Background(), WebhookEvent{
		EventID:          "evt_1",
		EventType:        models.EventPaymentFailed,
		GatewayOrderID:   order.GatewayOrderID,
		GatewayPaymentID: "pay_1",
	})
	assert.ErrorIs(t, err, models.ErrOrderFinalized)

	current, err := repo.GetOrderByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCaptured, current.Status)
}

func TestOrderService_ConcurrentCapture_ExactlyOnce(t *testing.T) {
	catalog := candleCatalog()
	repo := newFakeOrderRepo(catalog)
	svc := newTestService(catalog, repo, &fakeGateway{})

	order, sig := createPendingOrder(t, svc)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.ConfirmPayment(context.Background(), order.ID, order.GatewayOrderID, "pay_1", sig)
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.ApplyWebhookEvent(context.Background(), WebhookEvent{
				EventID:          "evt_1",
				EventType:        models.EventPaymentCaptured,
				GatewayOrderID:   order.GatewayOrderID,
				GatewayPaymentID: "pay_1",
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, repo.captures)
	assert.Equal(t, int64(8), catalog.stock("candle-1"))
}

func TestOrderService_ReconcileOrder(t *testing.T) {
	t.Run("captured_payment_found", func(t *testing.T) {
		catalog := candleCatalog()
		repo := newFakeOrderRepo(catalog)
		gw := &fakeGateway{}
		svc := newTestService(catalog, repo, gw)

		order, _ := createPendingOrder(t, svc)
		gw.payments = []gateway.Payment{{ID: "pay_1", Status: gateway.PaymentStatusCaptured, Amount: order.Amount}}

		current, err := repo.GetOrderByID(context.Background(), order.ID)
		require.NoError(t, err)
		require.NoError(t, svc.ReconcileOrder(context.Background(), current))

		current, err = repo.GetOrderByID(context.Background(), order.ID)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusCaptured, current.Status)
		assert.Equal(t, "pay_1", current.GatewayPaymentID)
	})

	t.Run("no_payment_marks_failed", func(t *testing.T) {
		catalog := candleCatalog()
		repo := newFakeOrderRepo(catalog)
		svc := newTestService(catalog, repo, &fakeGateway{})

		order, _ := createPendingOrder(t, svc)

		current, err := repo.GetOrderByID(context.Background(), order.ID)
		require.NoError(t, err)
		require.NoError(t, svc.ReconcileOrder(context.Background(), current))

		current, err = repo.GetOrderByID(context.Background(), order.ID)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusFailed, current.Status)
	})
}
