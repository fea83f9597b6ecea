package worker

import (
	"context"
	"errors"
	"time"

	"github.com/candleworks/storefront/internal/logger"
	"github.com/candleworks/storefront/internal/models"
	"go.uber.org/zap"
)

type OrderService interface {
	// ReconcileOrder finalizes one stale pending order from gateway records
	ReconcileOrder(ctx context.Context, order *models.Order) error
	// GetStaleOrders writes stale pending orders to orderCh
	GetStaleOrders(ctx context.Context, cutoff time.Time, orderCh chan<- models.Order) error
}

// OrderReconciler finalizes orders whose client confirmation never arrived
// and whose webhook was not delivered
type OrderReconciler struct {
	svc      OrderService
	interval time.Duration
	cutoff   time.Duration
}

// NewOrderReconciler creates new order reconciler
func NewOrderReconciler(svc OrderService, interval, cutoff time.Duration) *OrderReconciler {
	return &OrderReconciler{svc: svc, interval: interval, cutoff: cutoff}
}

// Run polls for stale pending orders and reconciles them until ctx is done
func (or *OrderReconciler) Run(ctx context.Context) {
	orders := make(chan models.Order, 10)

	go or.reconcile(ctx, orders)

	ticker := time.NewTicker(or.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Log.Debug("order reconciler is done")
			return
		case <-ticker.C:
			if err := or.svc.GetStaleOrders(ctx, time.Now().Add(-or.cutoff), orders); err != nil {
				logger.Log.Error("error get stale orders", zap.Error(err))
			}
		}
	}
}

func (or *OrderReconciler) reconcile(ctx context.Context, orderCh <-chan models.Order) {
	for {
		var errUpstream models.UpstreamError
		select {
		case <-ctx.Done():
			logger.Log.Debug("reconcile is done")
			return
		case order, ok := <-orderCh:
			if !ok {
				return
			}

			logger.Log.Debug("reconciling stale order", zap.String("order", order.ID))
			if err := or.svc.ReconcileOrder(ctx, &order); err != nil {
				if errors.As(err, &errUpstream) && errUpstream.RetryAfter > 0 {
					logger.Log.Debug("gateway rate limited",
						zap.Duration("retry-after", errUpstream.RetryAfter))
					time.Sleep(errUpstream.RetryAfter)
					continue
				}
				logger.Log.Error("reconcile order", zap.String("order", order.ID), zap.Error(err))
			}
		}
	}
}
