package alerts

import (
	"context"

	domcatalog "github.com/marchworks/stockroom/internal/domain/catalog"
	domorder "github.com/marchworks/stockroom/internal/domain/order"
	domoutbox "github.com/marchworks/stockroom/internal/domain/outbox"
	"github.com/marchworks/stockroom/internal/observability"
	"github.com/marchworks/stockroom/internal/pkg/logging"
	"go.uber.org/zap"
)

// Worker turns catalog and order events into operator-facing log lines:
// low-stock warnings and stock-restoration notices.
type Worker struct {
	subscriber   domoutbox.Subscriber
	alertCounter observability.Counter
}

func New(subscriber domoutbox.Subscriber, alertCounter observability.Counter) *Worker {
	return &Worker{
		subscriber:   subscriber,
		alertCounter: alertCounter,
	}
}

func (w *Worker) Start() {
	w.subscriber.Subscribe(domcatalog.LowStockEvent{}.EventName(), w.handleLowStock)
	w.subscriber.Subscribe(domorder.OrderReleasedEvent{}.EventName(), w.handleOrderReleased)
}

func (w *Worker) handleLowStock(ctx context.Context, e domoutbox.Event) error {
	evt, ok := e.(domcatalog.LowStockEvent)
	if !ok {
		return nil
	}

	logger := logging.FromContext(ctx).With(zap.String("component", "alerts_worker"))
	logger.Warn("low_stock_alert",
		zap.String("product_id", evt.ProductID),
		zap.String("name", evt.Name),
		zap.Int("stock", evt.Stock),
		zap.Int("threshold", evt.Threshold),
	)
	if w.alertCounter != nil {
		w.alertCounter.Add(1, observability.L("product_id", evt.ProductID))
	}
	return nil
}

func (w *Worker) handleOrderReleased(ctx context.Context, e domoutbox.Event) error {
	evt, ok := e.(domorder.OrderReleasedEvent)
	if !ok {
		return nil
	}

	logger := logging.FromContext(ctx).With(zap.String("component", "alerts_worker"))
	for _, line := range evt.Lines {
		logger.Info("stock_restored",
			zap.Int64("order_id", evt.OrderID),
			zap.String("reason", evt.Reason),
			zap.String("product_id", line.ProductID),
			zap.Int("quantity", line.Quantity),
		)
	}
	return nil
}
