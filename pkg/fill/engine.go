package fill

import (
	"paperbroker/pkg/common"
	"paperbroker/pkg/utility/fixed"
)

type Kind int

const (
	NoFill Kind = iota
	Partial
	Full
)

// Decision is the outcome of evaluating one resting order against one bar.
// Order carries the evaluation state written during the pass, so the caller
// must store it back even when nothing filled: a trailing stop ratchets its
// mark and a stop records its trigger on bars that produce no fill.
type Decision struct {
	Kind     Kind
	Price    fixed.Point
	Quantity fixed.Point
	Order    common.Order
}

type Option func(*Engine)

// WithMaxParticipation caps a single fill at the given fraction of the bar's
// volume. The remainder stays resting and produces a partial fill.
func WithMaxParticipation(fraction fixed.Point) Option {
	return func(e *Engine) {
		e.maxParticipation = fraction
	}
}

// Engine decides fills from bar data alone. It holds no account state and
// never mutates anything outside the order it is handed, which keeps a
// replay of the same bars bit-for-bit identical.
type Engine struct {
	maxParticipation fixed.Point
}

func NewEngine(options ...Option) *Engine {
	e := &Engine{}
	for _, option := range options {
		option(e)
	}
	return e
}

// Evaluate runs one order against one bar. A zero-volume bar means no
// trading activity at all: nothing fills and no trigger state advances.
func (e *Engine) Evaluate(order common.Order, bar common.Bar) Decision {
	if !bar.Volume.IsPos() {
		return Decision{Kind: NoFill, Order: order}
	}

	switch order.Kind {
	case common.OrderKindMarket:
		return e.fill(order, bar, bar.Open)
	case common.OrderKindLimit:
		return e.evaluateLimit(order, bar)
	case common.OrderKindStop:
		return e.evaluateStop(order, bar)
	case common.OrderKindStopLimit:
		return e.evaluateStopLimit(order, bar)
	case common.OrderKindTrailingStop:
		return e.evaluateTrailingStop(order, bar)
	default:
		return Decision{Kind: NoFill, Order: order}
	}
}

// limitPrice returns the execution price of a limit against the bar, or
// false when the bar never traded through the limit. An open already beyond
// the limit fills at the open: the gap is price improvement, never a worse
// fill than asked.
func limitPrice(side common.OrderSide, limit fixed.Point, bar common.Bar) (fixed.Point, bool) {
	if side == common.OrderSideBuy {
		if bar.Open.Lte(limit) {
			return bar.Open, true
		}
		if bar.Low.Lte(limit) {
			return limit, true
		}
		return fixed.Zero, false
	}
	if bar.Open.Gte(limit) {
		return bar.Open, true
	}
	if bar.High.Gte(limit) {
		return limit, true
	}
	return fixed.Zero, false
}

// stopTrigger returns the price at which a stop goes off against the bar, or
// false when the bar never reached it. An open already through the stop
// triggers at the open, which is the gap moving against the order.
func stopTrigger(side common.OrderSide, stop fixed.Point, bar common.Bar) (fixed.Point, bool) {
	if side == common.OrderSideBuy {
		if bar.Open.Gte(stop) {
			return bar.Open, true
		}
		if bar.High.Gte(stop) {
			return stop, true
		}
		return fixed.Zero, false
	}
	if bar.Open.Lte(stop) {
		return bar.Open, true
	}
	if bar.Low.Lte(stop) {
		return stop, true
	}
	return fixed.Zero, false
}

func (e *Engine) evaluateLimit(order common.Order, bar common.Bar) Decision {
	price, ok := limitPrice(order.Side, order.LimitPrice, bar)
	if !ok {
		return Decision{Kind: NoFill, Order: order}
	}
	return e.fill(order, bar, price)
}

func (e *Engine) evaluateStop(order common.Order, bar common.Bar) Decision {
	if order.Armed {
		// Triggered on an earlier bar: behaves as a market order now.
		return e.fill(order, bar, bar.Open)
	}
	trigger, ok := stopTrigger(order.Side, order.StopPrice, bar)
	if !ok {
		return Decision{Kind: NoFill, Order: order}
	}
	order.Armed = true
	return e.fill(order, bar, trigger)
}

func (e *Engine) evaluateStopLimit(order common.Order, bar common.Bar) Decision {
	if !order.Armed {
		trigger, ok := stopTrigger(order.Side, order.StopPrice, bar)
		if !ok {
			return Decision{Kind: NoFill, Order: order}
		}
		order.Armed = true

		// Armed on this bar. The limit can only be hit at or after the
		// trigger, so a limit on the favorable side of the trigger fills at
		// the trigger itself; otherwise the bar must trade back through the
		// limit.
		if order.Side == common.OrderSideBuy {
			if order.LimitPrice.Gte(trigger) {
				return e.fill(order, bar, trigger)
			}
			if bar.Low.Lte(order.LimitPrice) {
				return e.fill(order, bar, order.LimitPrice)
			}
		} else {
			if order.LimitPrice.Lte(trigger) {
				return e.fill(order, bar, trigger)
			}
			if bar.High.Gte(order.LimitPrice) {
				return e.fill(order, bar, order.LimitPrice)
			}
		}
		return Decision{Kind: NoFill, Order: order}
	}
	return e.evaluateLimit(order, bar)
}

func (e *Engine) evaluateTrailingStop(order common.Order, bar common.Bar) Decision {
	// First bar seen: anchor the trail at the open.
	if !order.Armed {
		order.Armed = true
		order.TrailMark = bar.Open
	}

	if order.Side == common.OrderSideSell {
		trigger := order.TrailMark.Sub(order.TrailDistance)
		if bar.Open.Lte(trigger) {
			return e.fill(order, bar, bar.Open)
		}
		if bar.Low.Lte(trigger) {
			return e.fill(order, bar, trigger)
		}
		order.TrailMark = order.TrailMark.Max(bar.High)
		return Decision{Kind: NoFill, Order: order}
	}

	trigger := order.TrailMark.Add(order.TrailDistance)
	if bar.Open.Gte(trigger) {
		return e.fill(order, bar, bar.Open)
	}
	if bar.High.Gte(trigger) {
		return e.fill(order, bar, trigger)
	}
	order.TrailMark = order.TrailMark.Min(bar.Low)
	return Decision{Kind: NoFill, Order: order}
}

func (e *Engine) fill(order common.Order, bar common.Bar, price fixed.Point) Decision {
	quantity := order.Remaining()
	if !quantity.IsPos() {
		return Decision{Kind: NoFill, Order: order}
	}

	if e.maxParticipation.IsPos() {
		available := bar.Volume.Mul(e.maxParticipation)
		if !available.IsPos() {
			return Decision{Kind: NoFill, Order: order}
		}
		if available.Lt(quantity) {
			return Decision{Kind: Partial, Price: price, Quantity: available, Order: order}
		}
	}
	return Decision{Kind: Full, Price: price, Quantity: quantity, Order: order}
}
