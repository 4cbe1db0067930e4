package middleware

import (
	"context"

	"go.uber.org/zap"

	"paperbroker/pkg/bus"
	"paperbroker/pkg/common"
)

type Telemetry struct {
	logger *zap.Logger

	barEventCounter            int64
	orderEventCounter          int64
	orderAcceptedEventCounter  int64
	orderRejectedEventCounter  int64
	orderCancelledEventCounter int64
	fillEventCounter           int64
	positionOpenEventCounter   int64
	positionUpdateEventCounter int64
	positionCloseEventCounter  int64
	balanceEventCounter        int64
	equityEventCounter         int64
}

func NewTelemetry(logger *zap.Logger) *Telemetry {
	return &Telemetry{
		logger: logger,
	}
}

func (t *Telemetry) WithBar(handler bus.BarEventHandler) bus.BarEventHandler {
	return func(ctx context.Context, bar common.Bar) {
		t.barEventCounter++
		handler(ctx, bar)
	}
}

func (t *Telemetry) WithOrder(handler bus.OrderEventHandler) bus.OrderEventHandler {
	return func(ctx context.Context, order common.Order) {
		t.orderEventCounter++
		handler(ctx, order)
	}
}

func (t *Telemetry) WithOrderAccepted(handler bus.OrderAcceptedEventHandler) bus.OrderAcceptedEventHandler {
	return func(ctx context.Context, accepted common.OrderAccepted) {
		t.orderAcceptedEventCounter++
		handler(ctx, accepted)
	}
}

func (t *Telemetry) WithOrderRejected(handler bus.OrderRejectedEventHandler) bus.OrderRejectedEventHandler {
	return func(ctx context.Context, rejected common.OrderRejected) {
		t.orderRejectedEventCounter++
		handler(ctx, rejected)
	}
}

func (t *Telemetry) WithOrderCancelled(handler bus.OrderCancelledEventHandler) bus.OrderCancelledEventHandler {
	return func(ctx context.Context, cancelled common.OrderCancelled) {
		t.orderCancelledEventCounter++
		handler(ctx, cancelled)
	}
}

func (t *Telemetry) WithFill(handler bus.FillEventHandler) bus.FillEventHandler {
	return func(ctx context.Context, fill common.Fill) {
		t.fillEventCounter++
		handler(ctx, fill)
	}
}

func (t *Telemetry) WithPositionOpen(handler bus.PositionOpenEventHandler) bus.PositionOpenEventHandler {
	return func(ctx context.Context, position common.Position) {
		t.positionOpenEventCounter++
		handler(ctx, position)
	}
}

func (t *Telemetry) WithPositionUpdate(handler bus.PositionUpdateEventHandler) bus.PositionUpdateEventHandler {
	return func(ctx context.Context, position common.Position) {
		t.positionUpdateEventCounter++
		handler(ctx, position)
	}
}

func (t *Telemetry) WithPositionClose(handler bus.PositionCloseEventHandler) bus.PositionCloseEventHandler {
	return func(ctx context.Context, position common.Position) {
		t.positionCloseEventCounter++
		handler(ctx, position)
	}
}

func (t *Telemetry) WithBalance(handler bus.BalanceEventHandler) bus.BalanceEventHandler {
	return func(ctx context.Context, balance common.Balance) {
		t.balanceEventCounter++
		handler(ctx, balance)
	}
}

func (t *Telemetry) WithEquity(handler bus.EquityEventHandler) bus.EquityEventHandler {
	return func(ctx context.Context, equity common.Equity) {
		t.equityEventCounter++
		handler(ctx, equity)
	}
}

func (t *Telemetry) PrintStatistics() {
	t.logger.Info("event statistics",
		zap.Int64("bar_events", t.barEventCounter),
		zap.Int64("order_events", t.orderEventCounter),
		zap.Int64("order_accepted_events", t.orderAcceptedEventCounter),
		zap.Int64("order_rejected_events", t.orderRejectedEventCounter),
		zap.Int64("order_cancelled_events", t.orderCancelledEventCounter),
		zap.Int64("fill_events", t.fillEventCounter),
		zap.Int64("position_open_events", t.positionOpenEventCounter),
		zap.Int64("position_update_events", t.positionUpdateEventCounter),
		zap.Int64("position_close_events", t.positionCloseEventCounter),
		zap.Int64("balance_events", t.balanceEventCounter),
		zap.Int64("equity_events", t.equityEventCounter))
}
