package sandbox

import (
	"paperbroker/pkg/margin"
	"paperbroker/pkg/utility/fixed"
)

type Option func(*Simulator)

func WithResolver(resolver ContractResolver) Option {
	return func(s *Simulator) {
		s.resolver = resolver
	}
}

func WithFeeSchedule(fees margin.FeeSchedule) Option {
	return func(s *Simulator) {
		s.fees = fees
	}
}

// WithSlippage worsens every execution price by a fixed amount: buys pay
// more, sells receive less.
func WithSlippage(slippage fixed.Point) Option {
	return func(s *Simulator) {
		s.slippage = slippage
	}
}

// WithMaxParticipation caps fills at a fraction of bar volume, producing
// partial fills for orders larger than the cap.
func WithMaxParticipation(fraction fixed.Point) Option {
	return func(s *Simulator) {
		s.maxParticipation = fraction
	}
}
