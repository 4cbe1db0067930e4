package synthetic

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperbroker/pkg/utility/fixed"
)

func newTestGenerator(seed int64, bars int64) *BarGenerator {
	rng := rand.New(rand.NewSource(seed))
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	return NewEquityBarGenerator("ACME", rng, start, bars, 100.0, 0.05, 0.2)
}

func TestBarGenerator_ProducesRequestedCount(t *testing.T) {
	g := newTestGenerator(42, 10)

	count := 0
	for {
		_, err := g.GetNext()
		if err != nil {
			require.ErrorIs(t, err, ErrEof)
			break
		}
		count++
	}
	assert.Equal(t, 10, count)
}

func TestBarGenerator_BarShapeInvariants(t *testing.T) {
	g := newTestGenerator(42, 50)

	prev := time.Time{}
	for {
		bar, err := g.GetNext()
		if err != nil {
			break
		}

		assert.True(t, bar.High.Gte(bar.Open), "high below open")
		assert.True(t, bar.High.Gte(bar.Close), "high below close")
		assert.True(t, bar.Low.Lte(bar.Open), "low above open")
		assert.True(t, bar.Low.Lte(bar.Close), "low above close")
		assert.True(t, bar.Volume.Gt(fixed.Zero), "non-positive volume")
		assert.True(t, bar.TimeStamp.After(prev), "timestamps not increasing")
		assert.Equal(t, "ACME", bar.Symbol)
		assert.Equal(t, barGeneratorComponentName, bar.Source)

		prev = bar.TimeStamp
	}
}

func TestBarGenerator_SeedDeterminism(t *testing.T) {
	a := newTestGenerator(7, 25)
	b := newTestGenerator(7, 25)

	for {
		barA, errA := a.GetNext()
		barB, errB := b.GetNext()
		require.Equal(t, errA, errB)
		if errA != nil {
			break
		}

		assert.True(t, barA.Open.Eq(barB.Open))
		assert.True(t, barA.High.Eq(barB.High))
		assert.True(t, barA.Low.Eq(barB.Low))
		assert.True(t, barA.Close.Eq(barB.Close))
		assert.True(t, barA.Volume.Eq(barB.Volume))
		assert.Equal(t, barA.TimeStamp, barB.TimeStamp)
	}
}

func TestBarGenerator_BarsChainOpenToClose(t *testing.T) {
	g := newTestGenerator(3, 20)

	prevClose := fixed.Point{}
	first := true
	for {
		bar, err := g.GetNext()
		if err != nil {
			break
		}
		if !first {
			assert.True(t, bar.Open.Eq(prevClose), "open does not continue previous close")
		}
		first = false
		prevClose = bar.Close
	}
}
