package common

import (
	"time"

	"paperbroker/pkg/utility"
	"paperbroker/pkg/utility/fixed"
)

// Bar is one OHLCV aggregate. TimeStamp marks the bar open. A bar with zero
// volume is treated as no trading activity: pending orders stay pending.
type Bar struct {
	Source      string              `json:"src,omitempty"`
	Symbol      string              `json:"symbol,omitempty"`
	ExecutionId utility.ExecutionID `json:"eid,omitempty"`
	TraceID     utility.TraceID     `json:"tid,omitempty"`
	TimeStamp   time.Time           `json:"ts"`
	Period      time.Duration       `json:"period"`
	Open        fixed.Point         `json:"open"`
	High        fixed.Point         `json:"high"`
	Low         fixed.Point         `json:"low"`
	Close       fixed.Point         `json:"close"`
	Volume      fixed.Point         `json:"volume"`
}

// PriceSnapshot carries the latest mark price per symbol at one point in
// simulated time. Valuation fails loudly when a symbol with an open position
// is missing, rather than silently substituting a stale price.
type PriceSnapshot struct {
	TimeStamp time.Time
	marks     map[string]fixed.Point
}

func NewPriceSnapshot(t time.Time) PriceSnapshot {
	return PriceSnapshot{
		TimeStamp: t,
		marks:     make(map[string]fixed.Point),
	}
}

func (s PriceSnapshot) Set(symbol string, price fixed.Point) {
	s.marks[symbol] = price
}

func (s PriceSnapshot) Mark(symbol string) (fixed.Point, bool) {
	price, ok := s.marks[symbol]
	return price, ok
}

func (s PriceSnapshot) Len() int {
	return len(s.marks)
}
