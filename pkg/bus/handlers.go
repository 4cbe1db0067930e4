package bus

import (
	"context"

	"paperbroker/pkg/common"
)

type EventHandler[T any] = func(context.Context, T)

type BarEventHandler EventHandler[common.Bar]
type OrderEventHandler EventHandler[common.Order]
type OrderAcceptedEventHandler EventHandler[common.OrderAccepted]
type OrderRejectedEventHandler EventHandler[common.OrderRejected]
type OrderCancelledEventHandler EventHandler[common.OrderCancelled]
type FillEventHandler EventHandler[common.Fill]
type PositionOpenEventHandler EventHandler[common.Position]
type PositionUpdateEventHandler EventHandler[common.Position]
type PositionCloseEventHandler EventHandler[common.Position]
type BalanceEventHandler EventHandler[common.Balance]
type EquityEventHandler EventHandler[common.Equity]
type AccountSnapshotEventHandler EventHandler[common.AccountSnapshot]

func MergeHandlers[T any](handlers ...EventHandler[T]) EventHandler[T] {
	return func(ctx context.Context, event T) {
		for _, handler := range handlers {
			handler(ctx, event)
		}
	}
}
