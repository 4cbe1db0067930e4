package middleware

import (
	"context"
	"time"

	"go.uber.org/zap"

	"paperbroker/pkg/bus"
	"paperbroker/pkg/common"
)

// Performance accumulates time spent inside downstream handlers. Pair it with
// a Telemetry on the same chain to get per-event averages.
type Performance struct {
	logger *zap.Logger

	totalBarHandlerDur     time.Duration
	totalOrderHandlerDur   time.Duration
	totalFillHandlerDur    time.Duration
	totalPosOpenHandlerDur time.Duration
	totalPosUpdtHandlerDur time.Duration
	totalPosClosHandlerDur time.Duration
	totalBalanceHandlerDur time.Duration
	totalEquityHandlerDur  time.Duration
}

func NewPerformance(logger *zap.Logger) *Performance {
	return &Performance{
		logger: logger,
	}
}

func (p *Performance) WithBar(handler bus.BarEventHandler) bus.BarEventHandler {
	return func(ctx context.Context, bar common.Bar) {
		startTime := time.Now()
		handler(ctx, bar)
		p.totalBarHandlerDur += time.Since(startTime)
	}
}

func (p *Performance) WithOrder(handler bus.OrderEventHandler) bus.OrderEventHandler {
	return func(ctx context.Context, order common.Order) {
		startTime := time.Now()
		handler(ctx, order)
		p.totalOrderHandlerDur += time.Since(startTime)
	}
}

func (p *Performance) WithFill(handler bus.FillEventHandler) bus.FillEventHandler {
	return func(ctx context.Context, fill common.Fill) {
		startTime := time.Now()
		handler(ctx, fill)
		p.totalFillHandlerDur += time.Since(startTime)
	}
}

func (p *Performance) WithPositionOpen(handler bus.PositionOpenEventHandler) bus.PositionOpenEventHandler {
	return func(ctx context.Context, position common.Position) {
		startTime := time.Now()
		handler(ctx, position)
		p.totalPosOpenHandlerDur += time.Since(startTime)
	}
}

func (p *Performance) WithPositionUpdate(handler bus.PositionUpdateEventHandler) bus.PositionUpdateEventHandler {
	return func(ctx context.Context, position common.Position) {
		startTime := time.Now()
		handler(ctx, position)
		p.totalPosUpdtHandlerDur += time.Since(startTime)
	}
}

func (p *Performance) WithPositionClose(handler bus.PositionCloseEventHandler) bus.PositionCloseEventHandler {
	return func(ctx context.Context, position common.Position) {
		startTime := time.Now()
		handler(ctx, position)
		p.totalPosClosHandlerDur += time.Since(startTime)
	}
}

func (p *Performance) WithBalance(handler bus.BalanceEventHandler) bus.BalanceEventHandler {
	return func(ctx context.Context, balance common.Balance) {
		startTime := time.Now()
		handler(ctx, balance)
		p.totalBalanceHandlerDur += time.Since(startTime)
	}
}

func (p *Performance) WithEquity(handler bus.EquityEventHandler) bus.EquityEventHandler {
	return func(ctx context.Context, equity common.Equity) {
		startTime := time.Now()
		handler(ctx, equity)
		p.totalEquityHandlerDur += time.Since(startTime)
	}
}

func (p *Performance) PrintStatistics(t *Telemetry) {
	if t == nil {
		p.logger.Warn("telemetry is nil; cannot compute performance statistics")
		return
	}

	var fields []zap.Field

	appendAvg := func(name string, total time.Duration, count int64) {
		if count <= 0 {
			return
		}
		avg := total / time.Duration(count)
		if avg > 0 {
			fields = append(fields,
				zap.Duration(name+"_avg_duration", avg),
				zap.Duration(name+"_total_duration", total))
		}
	}

	appendAvg("bar", p.totalBarHandlerDur, t.barEventCounter)
	appendAvg("order", p.totalOrderHandlerDur, t.orderEventCounter)
	appendAvg("fill", p.totalFillHandlerDur, t.fillEventCounter)
	appendAvg("position_open", p.totalPosOpenHandlerDur, t.positionOpenEventCounter)
	appendAvg("position_update", p.totalPosUpdtHandlerDur, t.positionUpdateEventCounter)
	appendAvg("position_close", p.totalPosClosHandlerDur, t.positionCloseEventCounter)
	appendAvg("balance", p.totalBalanceHandlerDur, t.balanceEventCounter)
	appendAvg("equity", p.totalEquityHandlerDur, t.equityEventCounter)

	p.logger.Info("performance statistics", fields...)
}
