package broker

import (
	"sort"
	"time"

	"paperbroker/pkg/common"
	"paperbroker/pkg/utility/fixed"
)

// Report is one account statement as a live adapter receives it from the
// counterparty. Nothing in it is recomputed locally.
type Report struct {
	Cash      fixed.Point       `json:"cash"`
	Equity    fixed.Point       `json:"equity"`
	Positions []common.Position `json:"positions"`
	TimeStamp time.Time         `json:"ts"`
}

// ReportedState mirrors what a live broker last said about the account. It is
// the boundary between simulation and a real connection: consumers read the
// same shape of data either way, but here the broker's numbers are the truth
// and the local ledger math never runs.
type ReportedState struct {
	cash      fixed.Point
	equity    fixed.Point
	positions map[string]common.Position
	asOf      time.Time
}

func NewReportedState(report Report) *ReportedState {
	s := &ReportedState{
		positions: make(map[string]common.Position),
	}
	s.Apply(report)
	return s
}

// Apply replaces the whole state with a fresh report. A report is always a
// full statement, never an increment.
func (s *ReportedState) Apply(report Report) {
	s.cash = report.Cash
	s.equity = report.Equity
	s.asOf = report.TimeStamp

	clear(s.positions)
	for _, pos := range report.Positions {
		if !pos.Quantity.IsZero() {
			s.positions[pos.Asset.Symbol] = pos
		}
	}
}

func (s *ReportedState) Cash() fixed.Point   { return s.cash }
func (s *ReportedState) Equity() fixed.Point { return s.equity }
func (s *ReportedState) AsOf() time.Time     { return s.asOf }

func (s *ReportedState) Position(symbol string) (common.Position, bool) {
	pos, ok := s.positions[symbol]
	return pos, ok
}

func (s *ReportedState) Positions() []common.Position {
	out := make([]common.Position, 0, len(s.positions))
	for _, pos := range s.positions {
		out = append(out, pos)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Asset.Symbol < out[j].Asset.Symbol
	})
	return out
}
