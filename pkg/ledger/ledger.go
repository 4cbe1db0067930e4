package ledger

import (
	"errors"
	"fmt"
	"sort"

	"paperbroker/pkg/common"
	"paperbroker/pkg/margin"
	"paperbroker/pkg/utility/fixed"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrStaleValuation    = errors.New("stale valuation")
	ErrInvariant         = errors.New("ledger invariant violated")
)

// Delta reports what one fill did to the account. Position is the post-fill
// state, with zero quantity when the fill closed the position out.
type Delta struct {
	Cash        fixed.Point
	CashDelta   fixed.Point
	RealizedPnL fixed.Point
	Fees        fixed.Point
	Position    common.Position
	Opened      bool
	Closed      bool
}

// Ledger holds cash and the open positions, keyed by symbol. All mutation
// goes through ApplyFill and MarkToMarket; both either commit completely or
// leave the ledger untouched.
//
// Cash moves only on fills. Futures hold margin, so a fill moves margin in or
// out of cash plus the realized profit on the closed part. Every other kind
// is paid in full, so a fill moves the whole notional. Mark-to-market updates
// unrealized figures and never touches cash.
type Ledger struct {
	marginTable margin.Table
	cash        fixed.Point
	positions   map[string]*common.Position
}

func NewLedger(startCash fixed.Point, table margin.Table) *Ledger {
	return &Ledger{
		marginTable: table,
		cash:        startCash,
		positions:   make(map[string]*common.Position),
	}
}

func (l *Ledger) Cash() fixed.Point {
	return l.cash
}

// Position returns a copy of the open position for the symbol.
func (l *Ledger) Position(symbol string) (common.Position, bool) {
	pos, ok := l.positions[symbol]
	if !ok {
		return common.Position{}, false
	}
	return *pos, true
}

// Positions returns copies of all open positions, sorted by symbol so that
// iteration order never depends on map internals.
func (l *Ledger) Positions() []common.Position {
	out := make([]common.Position, 0, len(l.positions))
	for _, pos := range l.positions {
		out = append(out, *pos)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Asset.Symbol < out[j].Asset.Symbol
	})
	return out
}

// ApplyFill books one execution. A fill against an opposite position is split
// into a closing leg and, on reversal, an opening leg for the excess. Both
// legs and the fee are computed before anything is written, so a rejection
// leaves cash and positions exactly as they were.
func (l *Ledger) ApplyFill(fill common.Fill) (Delta, error) {
	if err := fill.Asset.Validate(); err != nil {
		return Delta{}, fmt.Errorf("%w: %s", ErrInvariant, err)
	}
	if !fill.Quantity.IsPos() {
		return Delta{}, fmt.Errorf("%w: fill quantity must be positive, got %s", ErrInvariant, fill.Quantity)
	}
	if !fill.Price.IsPos() {
		return Delta{}, fmt.Errorf("%w: fill price must be positive, got %s", ErrInvariant, fill.Price)
	}
	if fill.Fees.IsNeg() {
		return Delta{}, fmt.Errorf("%w: fill fees must not be negative, got %s", ErrInvariant, fill.Fees)
	}

	symbol := fill.Asset.Symbol
	tradeSign := fixed.One
	if fill.Side == common.OrderSideSell {
		tradeSign = fixed.NegOne
	}
	signedQty := fill.Quantity.Mul(tradeSign)

	var oldQty, oldEntry, oldMargin fixed.Point
	existing, exists := l.positions[symbol]
	if exists {
		oldQty = existing.Quantity
		oldEntry = existing.EntryPrice
		oldMargin = existing.MarginHeld
	}

	// Split into a closing amount against the existing position and an
	// opening amount in the trade direction.
	closeAmt := fixed.Zero
	if (oldQty.IsPos() && signedQty.IsNeg()) || (oldQty.IsNeg() && signedQty.IsPos()) {
		closeAmt = fill.Quantity.Min(oldQty.Abs())
	}
	openAmt := fill.Quantity.Sub(closeAmt)

	closeFlow := fixed.Zero
	realized := fixed.Zero
	marginReleased := fixed.Zero
	if closeAmt.IsPos() {
		realized = margin.RealizedPnL(fill.Asset, oldEntry, fill.Price, closeAmt, oldQty.IsPos())
		if fill.Asset.MarginEligible() {
			if closeAmt.Eq(oldQty.Abs()) {
				marginReleased = oldMargin
			} else {
				marginReleased = oldMargin.Mul(closeAmt).Div(oldQty.Abs())
			}
			closeFlow = marginReleased.Add(realized)
		} else {
			// Unwinding a paid-in-full position moves the notional back; the
			// realized profit is already inside that flow.
			closeFlow = margin.Notional(fill.Asset, fill.Price, closeAmt).Mul(tradeSign).Neg()
		}
	}

	openFlow := fixed.Zero
	marginRequired := fixed.Zero
	if openAmt.IsPos() {
		if fill.Asset.MarginEligible() {
			required, err := margin.Required(l.marginTable, fill.Asset, openAmt)
			if err != nil {
				return Delta{}, err
			}
			marginRequired = required
			openFlow = required.Neg()
		} else {
			openFlow = margin.Notional(fill.Asset, fill.Price, openAmt).Mul(tradeSign).Neg()
		}
	}

	cashDelta := closeFlow.Add(openFlow).Sub(fill.Fees)
	newCash := l.cash.Add(cashDelta)

	// Only an opening leg that consumes cash can bounce. Closing always
	// settles, whatever it does to the balance.
	if openFlow.IsNeg() && newCash.IsNeg() {
		return Delta{}, fmt.Errorf("%w: need %s more to open %s x%s",
			ErrInsufficientFunds, newCash.Neg(), symbol, openAmt)
	}

	// Commit.
	l.cash = newCash

	delta := Delta{
		Cash:        newCash,
		CashDelta:   cashDelta,
		RealizedPnL: realized,
		Fees:        fill.Fees,
	}

	newQty := oldQty.Add(signedQty)
	switch {
	case newQty.IsZero():
		delete(l.positions, symbol)
		delta.Closed = true
		closed := common.Position{
			Asset:       fill.Asset,
			Quantity:    fixed.Zero,
			EntryPrice:  oldEntry,
			RealizedPnL: realized,
			TimeStamp:   fill.TimeStamp,
		}
		if exists {
			closed.OpenTime = existing.OpenTime
		}
		delta.Position = closed
	case !exists || oldQty.IsZero():
		pos := &common.Position{
			Asset:      fill.Asset,
			Quantity:   newQty,
			EntryPrice: fill.Price,
			MarginHeld: marginRequired,
			OpenTime:   fill.TimeStamp,
			TimeStamp:  fill.TimeStamp,
		}
		l.positions[symbol] = pos
		delta.Opened = true
		delta.Position = *pos
	case closeAmt.IsPos() && openAmt.IsPos():
		// Reversal: the surviving position is a fresh one on the other side.
		existing.Quantity = newQty
		existing.EntryPrice = fill.Price
		existing.MarginHeld = marginRequired
		existing.UnrealizedPnL = fixed.Zero
		existing.OpenTime = fill.TimeStamp
		existing.TimeStamp = fill.TimeStamp
		delta.Opened = true
		delta.Closed = true
		delta.Position = *existing
	case openAmt.IsPos():
		// Increase: entry price becomes the size-weighted average.
		totalCost := oldEntry.Mul(oldQty.Abs()).Add(fill.Price.Mul(openAmt))
		existing.EntryPrice = totalCost.Div(newQty.Abs())
		existing.Quantity = newQty
		existing.MarginHeld = oldMargin.Add(marginRequired)
		existing.TimeStamp = fill.TimeStamp
		delta.Position = *existing
	default:
		// Partial close: entry price is untouched, margin shrinks pro rata.
		existing.Quantity = newQty
		existing.MarginHeld = oldMargin.Sub(marginReleased)
		existing.TimeStamp = fill.TimeStamp
		delta.Position = *existing
	}

	return delta, nil
}

// MarkToMarket refreshes the unrealized figure of every open position from
// the snapshot. All marks are resolved before any position is written, so a
// missing mark leaves the ledger untouched. Marking is idempotent: applying
// the same snapshot twice yields the same state, and cash never moves here.
func (l *Ledger) MarkToMarket(snap common.PriceSnapshot) ([]common.Position, error) {
	symbols := make([]string, 0, len(l.positions))
	for symbol := range l.positions {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	marks := make(map[string]fixed.Point, len(symbols))
	for _, symbol := range symbols {
		mark, ok := snap.Mark(symbol)
		if !ok {
			return nil, fmt.Errorf("%w: no mark for %s at %s", ErrStaleValuation, symbol, snap.TimeStamp)
		}
		marks[symbol] = mark
	}

	updated := make([]common.Position, 0, len(symbols))
	for _, symbol := range symbols {
		pos := l.positions[symbol]
		pos.UnrealizedPnL = margin.UnrealizedPnL(pos.Asset, pos.EntryPrice, marks[symbol], pos.Quantity)
		pos.TimeStamp = snap.TimeStamp
		updated = append(updated, *pos)
	}
	return updated, nil
}

// CheckInvariants verifies the structural rules that must hold between
// fills: no flat position is retained and margin is held exactly when a
// margin-eligible position is open.
func (l *Ledger) CheckInvariants() error {
	for symbol, pos := range l.positions {
		if pos.Quantity.IsZero() {
			return fmt.Errorf("%w: flat position retained for %s", ErrInvariant, symbol)
		}
		if pos.Asset.MarginEligible() {
			if !pos.MarginHeld.IsPos() {
				return fmt.Errorf("%w: open margin position %s holds no margin", ErrInvariant, symbol)
			}
		} else if !pos.MarginHeld.IsZero() {
			return fmt.Errorf("%w: non-margin position %s holds margin %s", ErrInvariant, symbol, pos.MarginHeld)
		}
	}
	return nil
}
