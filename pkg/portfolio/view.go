package portfolio

import (
	"fmt"
	"time"

	"paperbroker/pkg/common"
	"paperbroker/pkg/ledger"
	"paperbroker/pkg/margin"
	"paperbroker/pkg/utility/fixed"
)

// Valuation is a point-in-time view of the account. Equity is cash plus
// margin held plus unrealized profit on margin positions plus the market
// value of everything paid in full.
type Valuation struct {
	Cash        fixed.Point
	MarginHeld  fixed.Point
	Unrealized  fixed.Point
	MarketValue fixed.Point
	Equity      fixed.Point
	TimeStamp   time.Time
}

// Value computes the account valuation against the snapshot. Every open
// position needs a mark; a missing one fails the whole valuation rather
// than pricing part of the book at a stale level.
func Value(l *ledger.Ledger, snap common.PriceSnapshot) (Valuation, error) {
	v := Valuation{
		Cash:      l.Cash(),
		TimeStamp: snap.TimeStamp,
	}

	for _, pos := range l.Positions() {
		mark, ok := snap.Mark(pos.Asset.Symbol)
		if !ok {
			return Valuation{}, fmt.Errorf("%w: no mark for %s at %s",
				ledger.ErrStaleValuation, pos.Asset.Symbol, snap.TimeStamp)
		}

		switch pos.Asset.Kind {
		case common.AssetFuture, common.AssetContinuousFuture:
			v.MarginHeld = v.MarginHeld.Add(pos.MarginHeld)
			v.Unrealized = v.Unrealized.Add(margin.UnrealizedPnL(pos.Asset, pos.EntryPrice, mark, pos.Quantity))
		case common.AssetStock, common.AssetOption, common.AssetCrypto, common.AssetForex:
			// Signed quantity: a short position is a liability here.
			v.MarketValue = v.MarketValue.Add(mark.Mul(pos.Quantity).Mul(pos.Asset.Multiplier))
		default:
			return Valuation{}, fmt.Errorf("portfolio: unknown asset kind %d for %s",
				uint8(pos.Asset.Kind), pos.Asset.Symbol)
		}
	}

	v.Equity = v.Cash.Add(v.MarginHeld).Add(v.Unrealized).Add(v.MarketValue)
	return v, nil
}

// BuyingPower is the cash available for new opening legs. Margin already
// held and open market value are committed and do not count.
func BuyingPower(l *ledger.Ledger) fixed.Point {
	return l.Cash()
}
