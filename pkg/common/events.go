package common

import (
	"time"

	"paperbroker/pkg/utility"
	"paperbroker/pkg/utility/fixed"
)

// Fill is the canonical execution record. The ledger consumes it through
// ApplyFill, reporting consumes it off the bus. Side and Asset are carried so
// the record is self-contained: Asset is the concrete contract, already
// resolved when the order was placed on a continuous future.
type Fill struct {
	OrderId  OrderId     `json:"order_id"`
	Asset    Asset       `json:"asset"`
	Side     OrderSide   `json:"side"`
	Price    fixed.Point `json:"price"`
	Quantity fixed.Point `json:"quantity"`
	Fees     fixed.Point `json:"fees"`
	Partial  bool        `json:"partial,omitempty"`

	Source      string              `json:"src,omitempty"`
	ExecutionId utility.ExecutionID `json:"eid,omitempty"`
	TraceID     utility.TraceID     `json:"tid,omitempty"`
	TimeStamp   time.Time           `json:"ts"`
}

type OrderAccepted struct {
	OriginalOrder Order `json:"original_order"`

	Source      string              `json:"src,omitempty"`
	ExecutionId utility.ExecutionID `json:"eid,omitempty"`
	TraceID     utility.TraceID     `json:"tid,omitempty"`
	TimeStamp   time.Time           `json:"ts"`
}

type OrderRejected struct {
	OriginalOrder Order  `json:"original_order"`
	Reason        string `json:"reason,omitempty"`

	Source      string              `json:"src,omitempty"`
	ExecutionId utility.ExecutionID `json:"eid,omitempty"`
	TraceID     utility.TraceID     `json:"tid,omitempty"`
	TimeStamp   time.Time           `json:"ts"`
}

type OrderCancelled struct {
	OriginalOrder  Order       `json:"original_order"`
	CancelledSize  fixed.Point `json:"cancelled_size"`
	SiblingOrderId OrderId     `json:"sibling_order_id,omitempty"`

	Source      string              `json:"src,omitempty"`
	ExecutionId utility.ExecutionID `json:"eid,omitempty"`
	TraceID     utility.TraceID     `json:"tid,omitempty"`
	TimeStamp   time.Time           `json:"ts"`
}

type Balance struct {
	Source      string              `json:"src,omitempty"`
	ExecutionId utility.ExecutionID `json:"eid,omitempty"`
	TraceID     utility.TraceID     `json:"tid,omitempty"`
	TimeStamp   time.Time           `json:"ts,omitempty"`
	Value       fixed.Point         `json:"value"`
}

type Equity struct {
	Source      string              `json:"src,omitempty"`
	ExecutionId utility.ExecutionID `json:"eid,omitempty"`
	TraceID     utility.TraceID     `json:"tid,omitempty"`
	TimeStamp   time.Time           `json:"ts,omitempty"`
	Value       fixed.Point         `json:"value"`
}

// AccountSnapshot is emitted once per bar after mark-to-market: cash, the
// open positions with fresh unrealized figures, and the portfolio value.
type AccountSnapshot struct {
	Cash           fixed.Point `json:"cash"`
	PortfolioValue fixed.Point `json:"portfolio_value"`
	Positions      []Position  `json:"positions"`

	Source      string              `json:"src,omitempty"`
	ExecutionId utility.ExecutionID `json:"eid,omitempty"`
	TraceID     utility.TraceID     `json:"tid,omitempty"`
	TimeStamp   time.Time           `json:"ts"`
}
