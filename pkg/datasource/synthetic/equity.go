package synthetic

import (
	"log/slog"
	"math/rand"
	"time"

	"paperbroker/pkg/utility/fixed"
)

// NewEquityBarGenerator builds a daily bar generator with parameters typical
// for a liquid large-cap stock. Annualized drift and volatility come in as
// plain floats.
func NewEquityBarGenerator(symbol string, rng *rand.Rand, startTime time.Time, days int64, startPrice, mu, sigma float64) *BarGenerator {

	const (
		tradingDaysPerYear = 252

		avgVolumeShares   = 1_000_000
		volumeVariability = 0.6 // 60% volume variance

		stepsPerBar = 13 // one step per half hour of a regular session

		normPriceDigits  = 2
		normVolumeDigits = 0
	)

	deltaT := fixed.FromFloat64(1.0 / tradingDaysPerYear)

	barGenerator := NewBarGenerator(
		symbol,
		rng,
		startTime,
		24*time.Hour,
		fixed.FromFloat64(startPrice),
		fixed.FromFloat64(mu),
		fixed.FromFloat64(sigma),
		deltaT,
		days,
	)

	barGenerator.SetVolumeParameters(fixed.FromInt(avgVolumeShares, 0), volumeVariability)
	barGenerator.SetStepsPerBar(stepsPerBar)
	barGenerator.SetPriceDigits(normPriceDigits)
	barGenerator.SetVolumeDigits(normVolumeDigits)

	slog.Debug("equity synthetic bar generator configuration",
		"symbol", symbol,
		"days", days,
		"mu_annual", mu,
		"sigma_annual", sigma,
		"start_price", startPrice,
		"start_time", startTime,
	)

	return barGenerator
}
