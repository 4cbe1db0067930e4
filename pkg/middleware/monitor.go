package middleware

import (
	"context"
	"log/slog"

	"paperbroker/pkg/bus"
	"paperbroker/pkg/common"
)

type MonitorFlags uint16

//goland:noinspection GoUnusedConst
const (
	MonitorNone MonitorFlags = 1 << iota
	MonitorAll
	MonitorBars
	MonitorOrders
	MonitorOrdersAccepted
	MonitorOrdersRejected
	MonitorOrdersCancelled
	MonitorFills
	MonitorPositionsOpened
	MonitorPositionsUpdated
	MonitorPositionsClosed
	MonitorBalance
	MonitorEquity
	MonitorSnapshots
)

type Monitor struct {
	flags MonitorFlags
}

func NewMonitor(flags MonitorFlags) *Monitor {
	return &Monitor{
		flags: flags,
	}
}

func (m *Monitor) WithBar(handler bus.BarEventHandler) bus.BarEventHandler {
	return func(ctx context.Context, bar common.Bar) {
		if m.flags&MonitorBars != 0 || m.flags&MonitorAll != 0 {
			slog.Info("event", "bar", bar)
		}
		handler(ctx, bar)
	}
}

func (m *Monitor) WithOrder(handler bus.OrderEventHandler) bus.OrderEventHandler {
	return func(ctx context.Context, order common.Order) {
		if m.flags&MonitorOrders != 0 || m.flags&MonitorAll != 0 {
			slog.Info("event", "order", order)
		}
		handler(ctx, order)
	}
}

func (m *Monitor) WithOrderAccepted(handler bus.OrderAcceptedEventHandler) bus.OrderAcceptedEventHandler {
	return func(ctx context.Context, accepted common.OrderAccepted) {
		if m.flags&MonitorOrdersAccepted != 0 || m.flags&MonitorAll != 0 {
			slog.Info("event", "order_accepted", accepted)
		}
		handler(ctx, accepted)
	}
}

func (m *Monitor) WithOrderRejected(handler bus.OrderRejectedEventHandler) bus.OrderRejectedEventHandler {
	return func(ctx context.Context, rejected common.OrderRejected) {
		if m.flags&MonitorOrdersRejected != 0 || m.flags&MonitorAll != 0 {
			slog.Info("event", "order_rejected", rejected)
		}
		handler(ctx, rejected)
	}
}

func (m *Monitor) WithOrderCancelled(handler bus.OrderCancelledEventHandler) bus.OrderCancelledEventHandler {
	return func(ctx context.Context, cancelled common.OrderCancelled) {
		if m.flags&MonitorOrdersCancelled != 0 || m.flags&MonitorAll != 0 {
			slog.Info("event", "order_cancelled", cancelled)
		}
		handler(ctx, cancelled)
	}
}

func (m *Monitor) WithFill(handler bus.FillEventHandler) bus.FillEventHandler {
	return func(ctx context.Context, fill common.Fill) {
		if m.flags&MonitorFills != 0 || m.flags&MonitorAll != 0 {
			slog.Info("event", "fill", fill)
		}
		handler(ctx, fill)
	}
}

func (m *Monitor) WithPositionOpen(handler bus.PositionOpenEventHandler) bus.PositionOpenEventHandler {
	return func(ctx context.Context, position common.Position) {
		if m.flags&MonitorPositionsOpened != 0 || m.flags&MonitorAll != 0 {
			slog.Info("event", "position_open", position)
		}
		handler(ctx, position)
	}
}

func (m *Monitor) WithPositionUpdate(handler bus.PositionUpdateEventHandler) bus.PositionUpdateEventHandler {
	return func(ctx context.Context, position common.Position) {
		if m.flags&MonitorPositionsUpdated != 0 || m.flags&MonitorAll != 0 {
			slog.Info("event", "position_update", position)
		}
		handler(ctx, position)
	}
}

func (m *Monitor) WithPositionClose(handler bus.PositionCloseEventHandler) bus.PositionCloseEventHandler {
	return func(ctx context.Context, position common.Position) {
		if m.flags&MonitorPositionsClosed != 0 || m.flags&MonitorAll != 0 {
			slog.Info("event", "position_closed", position)
		}
		handler(ctx, position)
	}
}

func (m *Monitor) WithBalance(handler bus.BalanceEventHandler) bus.BalanceEventHandler {
	return func(ctx context.Context, balance common.Balance) {
		if m.flags&MonitorBalance != 0 || m.flags&MonitorAll != 0 {
			slog.Info("event", "balance", balance)
		}
		handler(ctx, balance)
	}
}

func (m *Monitor) WithEquity(handler bus.EquityEventHandler) bus.EquityEventHandler {
	return func(ctx context.Context, equity common.Equity) {
		if m.flags&MonitorEquity != 0 || m.flags&MonitorAll != 0 {
			slog.Info("event", "equity", equity)
		}
		handler(ctx, equity)
	}
}

func (m *Monitor) WithAccountSnapshot(handler bus.AccountSnapshotEventHandler) bus.AccountSnapshotEventHandler {
	return func(ctx context.Context, snapshot common.AccountSnapshot) {
		if m.flags&MonitorSnapshots != 0 || m.flags&MonitorAll != 0 {
			slog.Info("event", "account_snapshot", snapshot)
		}
		handler(ctx, snapshot)
	}
}
