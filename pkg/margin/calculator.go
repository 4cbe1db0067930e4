package margin

import (
	"fmt"

	"paperbroker/pkg/common"
	"paperbroker/pkg/utility/fixed"
)

// Table maps a margin root to the initial margin held per contract. Futures
// and continuous futures are keyed by their underlying root, so every dated
// contract of the same root shares one rate.
type Table map[string]fixed.Point

// FeeSchedule is a flat commission model: a fixed charge per order plus a
// charge per contract traded.
type FeeSchedule struct {
	PerOrder    fixed.Point
	PerContract fixed.Point
}

// Fee returns the commission for one fill of the given size.
func (f FeeSchedule) Fee(quantity fixed.Point) fixed.Point {
	return f.PerOrder.Add(f.PerContract.Mul(quantity.Abs()))
}

// Notional is the full contract value of a quantity at a price.
func Notional(asset common.Asset, price, quantity fixed.Point) fixed.Point {
	return price.Mul(quantity.Abs()).Mul(asset.Multiplier)
}

// Required returns the margin held for a position of the given signed size.
// The result depends only on the magnitude: a short position holds exactly as
// much margin as a long position of the same size. Kinds that are paid in
// full hold no margin at all.
func Required(table Table, asset common.Asset, quantity fixed.Point) (fixed.Point, error) {
	switch asset.Kind {
	case common.AssetFuture, common.AssetContinuousFuture:
		rate, ok := table[asset.MarginRoot()]
		if !ok {
			return fixed.Zero, fmt.Errorf("margin: no rate for root %q", asset.MarginRoot())
		}
		if !rate.IsPos() {
			return fixed.Zero, fmt.Errorf("margin: rate for root %q must be positive, got %s", asset.MarginRoot(), rate)
		}
		return rate.Mul(quantity.Abs()), nil
	case common.AssetStock, common.AssetOption, common.AssetCrypto, common.AssetForex:
		return fixed.Zero, nil
	default:
		return fixed.Zero, fmt.Errorf("margin: unknown asset kind %d", uint8(asset.Kind))
	}
}

// RealizedPnL is the profit of closing quantity contracts that were opened at
// entry and closed at exit. Quantity is the positive close size; wasLong
// selects the direction, so a short profits when exit is below entry.
func RealizedPnL(asset common.Asset, entry, exit, quantity fixed.Point, wasLong bool) fixed.Point {
	diff := exit.Sub(entry)
	if !wasLong {
		diff = diff.Neg()
	}
	return diff.Mul(quantity.Abs()).Mul(asset.Multiplier)
}

// UnrealizedPnL marks an open position of signed quantity to the given price.
// The sign of quantity carries the direction, so the same expression covers
// long and short.
func UnrealizedPnL(asset common.Asset, entry, mark, quantity fixed.Point) fixed.Point {
	return mark.Sub(entry).Mul(quantity).Mul(asset.Multiplier)
}
