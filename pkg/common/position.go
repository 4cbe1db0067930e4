package common

import (
	"time"

	"paperbroker/pkg/utility"
	"paperbroker/pkg/utility/fixed"
)

// Position is the per-asset ledger state. Quantity is signed: positive is
// long, negative is short, zero means the position no longer exists.
// EntryPrice is the quantity-weighted average of the currently open lot and
// is meaningless while flat. MarginHeld is nonzero only for margin-eligible
// kinds while the position is open.
type Position struct {
	Asset         Asset       `json:"asset"`
	Quantity      fixed.Point `json:"quantity"`
	EntryPrice    fixed.Point `json:"entry_price"`
	MarginHeld    fixed.Point `json:"margin_held"`
	UnrealizedPnL fixed.Point `json:"unrealized_pnl"`
	RealizedPnL   fixed.Point `json:"realized_pnl,omitempty"`
	OpenTime      time.Time   `json:"open_time"`

	Source      string              `json:"src,omitempty"`
	ExecutionId utility.ExecutionID `json:"eid,omitempty"`
	TraceID     utility.TraceID     `json:"tid,omitempty"`
	TimeStamp   time.Time           `json:"ts"`
}

func (p Position) IsLong() bool  { return p.Quantity.IsPos() }
func (p Position) IsShort() bool { return p.Quantity.IsNeg() }
func (p Position) IsFlat() bool  { return p.Quantity.IsZero() }
