package bus

type EventId uint8

const (
	BarEvent EventId = iota
	OrderEvent
	OrderAcceptedEvent
	OrderRejectedEvent
	OrderCancelledEvent
	FillEvent
	PositionOpenEvent
	PositionUpdateEvent
	PositionCloseEvent
	BalanceEvent
	EquityEvent
	AccountSnapshotEvent
)
