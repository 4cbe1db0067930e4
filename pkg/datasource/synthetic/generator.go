package synthetic

import (
	"errors"
	"math/rand"
	"time"

	"paperbroker/pkg/common"
	"paperbroker/pkg/utility"
	"paperbroker/pkg/utility/fixed"
)

const (
	barGeneratorComponentName = "datasource.synthetic.generator"
)

var ErrEof = errors.New("EOF")

// BarGenerator produces OHLCV bars from a geometric brownian motion path.
// Each bar aggregates several intra-bar GBM steps so high and low are not
// just max(open, close). All randomness comes from the injected rng, so a
// fixed seed reproduces the identical bar sequence.
type BarGenerator struct {
	symbol string
	rng    *rand.Rand

	startTime time.Time
	period    time.Duration
	bars      int64
	t         int64

	stepsPerBar int

	avgVolume      fixed.Point
	volumeVariance float64

	deltaLogPre1 fixed.Point
	deltaLogPre2 fixed.Point

	lastTime  time.Time
	lastPrice fixed.Point

	normPriceDigits  int
	normVolumeDigits int
}

func NewBarGenerator(
	symbol string,
	rng *rand.Rand,
	startTime time.Time,
	period time.Duration,
	startPrice, mu, sigma, deltaT fixed.Point,
	bars int64) *BarGenerator {

	return &BarGenerator{
		symbol: symbol,
		rng:    rng,

		startTime: startTime,
		period:    period,
		bars:      bars,

		stepsPerBar: 8,

		avgVolume:      fixed.FromInt64(1000, 0),
		volumeVariance: 0.5, // 50% variance in volume

		// Pre-calculated values for GBM
		deltaLogPre1: mu.Sub(sigma.Mul(sigma).Mul(fixed.PointFive)).Mul(deltaT),
		deltaLogPre2: sigma.Mul(deltaT.Sqrt()),

		lastTime:  startTime,
		lastPrice: startPrice,
	}
}

func (e *BarGenerator) SetVolumeParameters(avgVol fixed.Point, volVariance float64) {
	e.avgVolume = avgVol
	e.volumeVariance = volVariance
}

func (e *BarGenerator) SetStepsPerBar(steps int) {
	if steps > 0 {
		e.stepsPerBar = steps
	}
}

func (e *BarGenerator) SetPriceDigits(digits int) {
	e.normPriceDigits = digits
}

func (e *BarGenerator) SetVolumeDigits(digits int) {
	e.normVolumeDigits = digits
}

func (e *BarGenerator) GetNext() (common.Bar, error) {
	var bar common.Bar

	if e.t >= e.bars {
		return bar, ErrEof
	}

	open := e.lastPrice
	high := open
	low := open

	for i := 0; i < e.stepsPerBar; i++ {
		z := e.rng.NormFloat64()
		deltaLog := e.deltaLogPre1.Add(e.deltaLogPre2.Mul(fixed.FromFloat64(z)))
		e.lastPrice = e.lastPrice.Mul(deltaLog.Exp())

		if e.lastPrice.Gt(high) {
			high = e.lastPrice
		}
		if e.lastPrice.Lt(low) {
			low = e.lastPrice
		}
	}

	bar.Open = open.Rescale(e.normPriceDigits)
	bar.High = high.Rescale(e.normPriceDigits)
	bar.Low = low.Rescale(e.normPriceDigits)
	bar.Close = e.lastPrice.Rescale(e.normPriceDigits)
	bar.Volume = e.generateVolume().Rescale(e.normVolumeDigits)

	bar.TimeStamp = e.lastTime
	bar.Period = e.period
	e.lastTime = e.lastTime.Add(e.period)
	e.t++

	bar.Source = barGeneratorComponentName
	bar.Symbol = e.symbol
	bar.ExecutionId = utility.GetExecutionID()
	bar.TraceID = utility.CreateTraceID()

	return bar, nil
}

func (e *BarGenerator) generateVolume() fixed.Point {
	variation := e.rng.NormFloat64() * e.volumeVariance

	multiplier := fixed.FromFloat64(variation).Exp()
	volume := e.avgVolume.Mul(multiplier)

	// Ensure positive volume
	if volume.Lte(fixed.Zero) {
		volume = fixed.One
	}
	return volume
}
