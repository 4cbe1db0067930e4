package broker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperbroker/pkg/common"
	"paperbroker/pkg/utility/fixed"
)

func position(symbol string, qty int64) common.Position {
	return common.Position{
		Asset:    common.Asset{Symbol: symbol, Kind: common.AssetStock, Multiplier: fixed.One},
		Quantity: fixed.FromInt64(qty, 0),
	}
}

func TestBrokerReportedState_Apply(t *testing.T) {
	asOf := time.Date(2025, 3, 14, 15, 30, 0, 0, time.UTC)

	s := NewReportedState(Report{
		Cash:      fixed.FromInt64(10000, 0),
		Equity:    fixed.FromInt64(10500, 0),
		Positions: []common.Position{position("AAPL", 10), position("MSFT", -5)},
		TimeStamp: asOf,
	})

	assert.True(t, s.Cash().Eq(fixed.FromInt64(10000, 0)))
	assert.True(t, s.Equity().Eq(fixed.FromInt64(10500, 0)))
	assert.Equal(t, asOf, s.AsOf())

	pos, ok := s.Position("MSFT")
	require.True(t, ok)
	assert.True(t, pos.IsShort())
}

func TestBrokerReportedState_FullReplacement(t *testing.T) {
	s := NewReportedState(Report{
		Positions: []common.Position{position("AAPL", 10)},
	})

	s.Apply(Report{
		Cash:      fixed.FromInt64(9000, 0),
		Positions: []common.Position{position("MSFT", 3)},
	})

	_, ok := s.Position("AAPL")
	assert.False(t, ok, "old position must not survive a new report")

	_, ok = s.Position("MSFT")
	assert.True(t, ok)
}

func TestBrokerReportedState_DropsFlatPositions(t *testing.T) {
	s := NewReportedState(Report{
		Positions: []common.Position{position("AAPL", 0), position("MSFT", 1)},
	})

	assert.Len(t, s.Positions(), 1)
}

func TestBrokerReportedState_PositionsSorted(t *testing.T) {
	s := NewReportedState(Report{
		Positions: []common.Position{position("MSFT", 1), position("AAPL", 1), position("GOOG", 1)},
	})

	positions := s.Positions()
	require.Len(t, positions, 3)
	assert.Equal(t, "AAPL", positions[0].Asset.Symbol)
	assert.Equal(t, "GOOG", positions[1].Asset.Symbol)
	assert.Equal(t, "MSFT", positions[2].Asset.Symbol)
}
