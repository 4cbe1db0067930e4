package main

import (
	"context"

	"go.uber.org/zap"

	"paperbroker/pkg/bus"
	"paperbroker/pkg/common"
	"paperbroker/pkg/utility/circular"
	"paperbroker/pkg/utility/fixed"
)

var negTwo = fixed.Two.Neg()

// Strategy is a mean reversion demo: buy when the close falls two standard
// deviations under its rolling mean, flatten once it reverts to the mean.
// It exists to exercise the simulator; replace it with something real before
// drawing conclusions from the report.
type Strategy struct {
	logger *zap.Logger
	router *bus.Router

	asset    common.Asset
	quantity fixed.Point

	closes  *circular.Buffer[fixed.Point]
	posOpen bool
}

func NewStrategy(logger *zap.Logger, router *bus.Router, asset common.Asset, quantity fixed.Point, window uint) *Strategy {
	return &Strategy{
		logger:   logger,
		router:   router,
		asset:    asset,
		quantity: quantity,
		closes:   circular.NewBuffer[fixed.Point](window),
	}
}

func (s *Strategy) OnBar(_ context.Context, bar common.Bar) {
	s.closes.Push(bar.Close)

	if !s.closes.IsFull() {
		return
	}

	closes := s.closes.Data()
	mean := fixed.Mean(closes)
	stdDev := fixed.StdDev(closes, mean)
	if stdDev.IsZero() {
		return
	}

	z := bar.Close.Sub(mean).Div(stdDev)

	if !s.posOpen && z.Lte(negTwo) {
		s.submit(common.OrderSideBuy)
	} else if s.posOpen && z.Gte(fixed.Zero) {
		s.submit(common.OrderSideSell)
	}
}

func (s *Strategy) OnPositionOpen(_ context.Context, _ common.Position) {
	s.posOpen = true
}

func (s *Strategy) OnPositionClose(_ context.Context, _ common.Position) {
	s.posOpen = false
}

func (s *Strategy) submit(side common.OrderSide) {
	order := common.Order{
		Asset:    s.asset,
		Side:     side,
		Quantity: s.quantity,
		Kind:     common.OrderKindMarket,
	}
	if err := s.router.Post(bus.OrderEvent, order); err != nil {
		s.logger.Warn("unable to post order", zap.Error(err))
	}
}
