package common

import (
	"fmt"
	"time"

	"paperbroker/pkg/utility"
	"paperbroker/pkg/utility/fixed"
)

type OrderId = int64
type GroupId = int64

type OrderSide int
type OrderKind int
type OrderState string
type TimeInForce int

const (
	OrderSideBuy OrderSide = iota
	OrderSideSell
)

const (
	OrderKindMarket OrderKind = iota
	OrderKindLimit
	OrderKindStop
	OrderKindStopLimit
	OrderKindTrailingStop
)

const (
	OrderStateNew             OrderState = "new"
	OrderStateSubmitted       OrderState = "submitted"
	OrderStatePartiallyFilled OrderState = "partially_filled"
	OrderStateFilled          OrderState = "filled"
	OrderStateCancelled       OrderState = "cancelled"
	OrderStateExpired         OrderState = "expired"
	OrderStateError           OrderState = "error"
)

const (
	TimeInForceGoodTillCancel TimeInForce = iota
	TimeInForceImmediateOrCancel
	TimeInForceGoodTillDate
)

func (s OrderState) Terminal() bool {
	switch s {
	case OrderStateFilled, OrderStateCancelled, OrderStateExpired, OrderStateError:
		return true
	}
	return false
}

func (s OrderSide) String() string {
	if s == OrderSideBuy {
		return "buy"
	}
	return "sell"
}

func (k OrderKind) String() string {
	switch k {
	case OrderKindMarket:
		return "market"
	case OrderKindLimit:
		return "limit"
	case OrderKindStop:
		return "stop"
	case OrderKindStopLimit:
		return "stop_limit"
	case OrderKindTrailingStop:
		return "trailing_stop"
	default:
		return fmt.Sprintf("order_kind(%d)", int(k))
	}
}

// Order is the full lifecycle record of one order. Quantity is always
// positive; whether a fill opens, increases, reduces or reverses a position
// is inferred from the existing position sign, never from a long/short flag
// on the order itself.
type Order struct {
	Id       OrderId     `json:"id"`
	Asset    Asset       `json:"asset"`
	Side     OrderSide   `json:"side"`
	Quantity fixed.Point `json:"quantity"`
	Kind     OrderKind   `json:"kind"`

	LimitPrice    fixed.Point `json:"limit_price,omitempty"`
	StopPrice     fixed.Point `json:"stop_price,omitempty"`
	TrailDistance fixed.Point `json:"trail_distance,omitempty"`

	// Orders sharing a nonzero GroupId form a bracket/OCO group: when one of
	// them reaches the filled state, the rest are cancelled in the same tick.
	GroupId GroupId `json:"group_id,omitempty"`

	TimeInForce TimeInForce `json:"time_in_force"`
	ExpireTime  time.Time   `json:"expire_time,omitempty"`

	State          OrderState  `json:"state"`
	FilledQuantity fixed.Point `json:"filled_quantity"`

	// Armed and TrailMark are the fill engine's per-order evaluation state:
	// whether a stop trigger has been crossed, and the best price seen since
	// activation for a trailing stop.
	Armed     bool        `json:"armed,omitempty"`
	TrailMark fixed.Point `json:"trail_mark,omitempty"`

	Source      string              `json:"src,omitempty"`
	ExecutionId utility.ExecutionID `json:"eid,omitempty"`
	TraceID     utility.TraceID     `json:"tid,omitempty"`
	TimeStamp   time.Time           `json:"ts"`
}

func (o Order) Validate() error {
	if err := o.Asset.Validate(); err != nil {
		return err
	}
	if !o.Quantity.IsPos() {
		return fmt.Errorf("order: quantity must be positive, got %s", o.Quantity)
	}
	switch o.Kind {
	case OrderKindMarket:
	case OrderKindLimit:
		if !o.LimitPrice.IsPos() {
			return fmt.Errorf("order: limit order requires a positive limit price")
		}
	case OrderKindStop:
		if !o.StopPrice.IsPos() {
			return fmt.Errorf("order: stop order requires a positive stop price")
		}
	case OrderKindStopLimit:
		if !o.StopPrice.IsPos() || !o.LimitPrice.IsPos() {
			return fmt.Errorf("order: stop-limit order requires positive stop and limit prices")
		}
	case OrderKindTrailingStop:
		if !o.TrailDistance.IsPos() {
			return fmt.Errorf("order: trailing stop requires a positive trail distance")
		}
	default:
		return fmt.Errorf("order: unknown kind %d", int(o.Kind))
	}
	if o.TimeInForce == TimeInForceGoodTillDate && o.ExpireTime.IsZero() {
		return fmt.Errorf("order: good-till-date requires an expire time")
	}
	return nil
}

// Remaining is the unfilled part of the requested quantity.
func (o Order) Remaining() fixed.Point {
	return o.Quantity.Sub(o.FilledQuantity)
}
