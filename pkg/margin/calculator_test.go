package margin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperbroker/pkg/common"
	"paperbroker/pkg/utility/fixed"
)

func future(symbol, root string, multiplier int64) common.Asset {
	return common.Asset{
		Symbol:         symbol,
		Kind:           common.AssetFuture,
		Multiplier:     fixed.FromInt64(multiplier, 0),
		UnderlyingRoot: root,
	}
}

func stock(symbol string) common.Asset {
	return common.Asset{
		Symbol:     symbol,
		Kind:       common.AssetStock,
		Multiplier: fixed.One,
	}
}

func TestMarginFeeSchedule_Fee(t *testing.T) {
	schedule := FeeSchedule{
		PerOrder:    fixed.FromInt64(150, 2),
		PerContract: fixed.FromInt64(65, 2),
	}

	fee := schedule.Fee(fixed.FromInt64(4, 0))
	assert.True(t, fee.Eq(fixed.FromInt64(410, 2)), "expected 4.10, got %s", fee)

	fee = schedule.Fee(fixed.FromInt64(-4, 0))
	assert.True(t, fee.Eq(fixed.FromInt64(410, 2)), "fees must not depend on sign, got %s", fee)
}

func TestMarginRequired_Symmetry(t *testing.T) {
	table := Table{"ES": fixed.FromInt64(12000, 0)}
	asset := future("ESZ5", "ES", 50)

	long, err := Required(table, asset, fixed.FromInt64(3, 0))
	require.NoError(t, err)

	short, err := Required(table, asset, fixed.FromInt64(-3, 0))
	require.NoError(t, err)

	assert.True(t, long.Eq(short), "long %s != short %s", long, short)
	assert.True(t, long.Eq(fixed.FromInt64(36000, 0)))
}

func TestMarginRequired_NonMarginKindsHoldNothing(t *testing.T) {
	table := Table{}

	for _, asset := range []common.Asset{
		stock("AAPL"),
		{Symbol: "BTC-USD", Kind: common.AssetCrypto, Multiplier: fixed.One},
		{Symbol: "EURUSD", Kind: common.AssetForex, Multiplier: fixed.One},
	} {
		held, err := Required(table, asset, fixed.FromInt64(10, 0))
		require.NoError(t, err, asset.Symbol)
		assert.True(t, held.IsZero(), "%s should hold no margin, got %s", asset.Symbol, held)
	}
}

func TestMarginRequired_MissingRate(t *testing.T) {
	table := Table{"ES": fixed.FromInt64(12000, 0)}
	asset := future("NQZ5", "NQ", 20)

	_, err := Required(table, asset, fixed.One)
	assert.Error(t, err)
}

func TestMarginRealizedPnL_ShortInversion(t *testing.T) {
	asset := future("ESZ5", "ES", 5)
	entry := fixed.FromInt64(100, 0)
	exit := fixed.FromInt64(90, 0)
	qty := fixed.One

	longPnL := RealizedPnL(asset, entry, exit, qty, true)
	shortPnL := RealizedPnL(asset, entry, exit, qty, false)

	assert.True(t, longPnL.Eq(fixed.FromInt64(-50, 0)), "long pnl %s", longPnL)
	assert.True(t, shortPnL.Eq(fixed.FromInt64(50, 0)), "short pnl %s", shortPnL)
	assert.True(t, longPnL.Eq(shortPnL.Neg()), "short must be exact inversion of long")
}

func TestMarginUnrealizedPnL_SignedQuantity(t *testing.T) {
	asset := stock("AAPL")
	entry := fixed.FromInt64(200, 0)
	mark := fixed.FromInt64(210, 0)

	long := UnrealizedPnL(asset, entry, mark, fixed.FromInt64(10, 0))
	short := UnrealizedPnL(asset, entry, mark, fixed.FromInt64(-10, 0))

	assert.True(t, long.Eq(fixed.FromInt64(100, 0)), "long %s", long)
	assert.True(t, short.Eq(fixed.FromInt64(-100, 0)), "short %s", short)
}

func TestMarginNotional(t *testing.T) {
	asset := future("ESZ5", "ES", 50)

	notional := Notional(asset, fixed.FromInt64(5000, 0), fixed.FromInt64(-2, 0))
	assert.True(t, notional.Eq(fixed.FromInt64(500000, 0)), "notional %s", notional)
}
