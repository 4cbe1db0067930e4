package sandbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"paperbroker/pkg/bus"
	"paperbroker/pkg/common"
	"paperbroker/pkg/fill"
	"paperbroker/pkg/ledger"
	"paperbroker/pkg/margin"
	"paperbroker/pkg/portfolio"
	"paperbroker/pkg/utility"
	"paperbroker/pkg/utility/fixed"
)

const simulatorComponentName = "exchange.sandbox.simulator"

// Simulator executes orders against bar data and keeps the account through
// the ledger. Pending orders are evaluated on every bar of their symbol in
// three passes, stops first, then limits, then markets, each pass in
// submission order. The same bars always produce the same fills, the same
// events, the same final account.
type Simulator struct {
	router *bus.Router
	book   *ledger.Ledger
	engine *fill.Engine

	fees             margin.FeeSchedule
	slippage         fixed.Point
	maxParticipation fixed.Point
	resolver         ContractResolver

	firstPostDone  bool
	simulationTime time.Time
	lastBars       map[string]common.Bar

	lastBalance  fixed.Point
	lastEquity   fixed.Point
	valuationErr error

	orderIdCounter common.OrderId
	openOrders     []*common.Order
}

func NewSimulator(router *bus.Router, startCash fixed.Point, marginTable margin.Table, options ...Option) *Simulator {
	s := &Simulator{
		router:      router,
		book:        ledger.NewLedger(startCash, marginTable),
		lastBars:    make(map[string]common.Bar),
		lastBalance: startCash,
		lastEquity:  startCash,
	}

	for _, option := range options {
		option(s)
	}

	engineOptions := make([]fill.Option, 0, 1)
	if s.maxParticipation.IsPos() {
		engineOptions = append(engineOptions, fill.WithMaxParticipation(s.maxParticipation))
	}
	s.engine = fill.NewEngine(engineOptions...)

	return s
}

// Ledger exposes the account book, read-only by convention.
func (s *Simulator) Ledger() *ledger.Ledger {
	return s.book
}

// Err reports the first fatal valuation error of the run, nil while the
// account can still be valued. A host should end the run once it is non-nil:
// the bar that raised it produced no snapshot and later bars would value an
// account with unpriced positions.
func (s *Simulator) Err() error {
	return s.valuationErr
}

// OnOrder validates and admits an order. A continuous future is resolved to
// its front contract here, before the order rests; everything downstream
// only ever sees concrete contracts.
func (s *Simulator) OnOrder(_ context.Context, order common.Order) {
	if err := order.Validate(); err != nil {
		s.rejectOrder(order, err.Error())
		return
	}

	if order.Asset.Kind == common.AssetContinuousFuture {
		if s.resolver == nil {
			s.rejectOrder(order, "no contract resolver for continuous future")
			return
		}
		contract, err := s.resolver.ResolveContract(order.Asset.MarginRoot(), s.simulationTime)
		if err != nil {
			s.rejectOrder(order, err.Error())
			return
		}
		if contract.Kind != common.AssetFuture {
			s.rejectOrder(order, "resolver returned a non-future contract")
			return
		}
		order.Asset = contract
	}

	s.orderIdCounter++
	order.Id = s.orderIdCounter
	order.State = common.OrderStateSubmitted

	s.openOrders = append(s.openOrders, &order)

	if err := s.router.Post(bus.OrderAcceptedEvent, common.OrderAccepted{
		Source:        simulatorComponentName,
		ExecutionId:   utility.GetExecutionID(),
		TraceID:       utility.CreateTraceID(),
		TimeStamp:     s.simulationTime,
		OriginalOrder: order,
	}); err != nil {
		slog.Warn("unable to post order accepted event", "error", err)
	}
}

// OnBar advances simulated time by one bar: expirations, then the three
// execution passes, then mark-to-market and account events.
func (s *Simulator) OnBar(_ context.Context, bar common.Bar) {
	s.simulationTime = bar.TimeStamp
	s.lastBars[bar.Symbol] = bar

	if !s.firstPostDone {
		s.firstPostDone = true
		s.postBalance(s.book.Cash())
		s.postEquity(s.book.Cash())
	}

	s.expireOrders()

	// Stops act on the price path first, then resting limits, then anything
	// marketable at the open. Within a pass, submission order.
	s.runPass(bar, common.OrderKindStop, common.OrderKindStopLimit, common.OrderKindTrailingStop)
	s.runPass(bar, common.OrderKindLimit)
	s.runPass(bar, common.OrderKindMarket)

	s.cancelImmediateOrders(bar)
	s.markToMarket()
}

// CloseAllOpenPositions flattens the book at the last seen close of each
// symbol and cancels whatever is still resting. Called once at the end of a
// run.
func (s *Simulator) CloseAllOpenPositions() {
	for _, order := range s.openOrders {
		s.cancelRestingOrder(order, common.OrderStateCancelled, 0)
	}
	s.openOrders = nil

	for _, pos := range s.book.Positions() {
		last, ok := s.lastBars[pos.Asset.Symbol]
		if !ok {
			slog.Error("no bar seen for open position, cannot flatten", "symbol", pos.Asset.Symbol)
			continue
		}

		side := common.OrderSideSell
		if pos.IsShort() {
			side = common.OrderSideBuy
		}
		quantity := pos.Quantity.Abs()

		s.execute(common.Fill{
			Asset:       pos.Asset,
			Side:        side,
			Price:       last.Close,
			Quantity:    quantity,
			Fees:        s.fees.Fee(quantity),
			Source:      simulatorComponentName,
			ExecutionId: utility.GetExecutionID(),
			TraceID:     utility.CreateTraceID(),
			TimeStamp:   s.simulationTime,
		})
	}

	s.markToMarket()
}

// CancelOrder takes a resting order out of the book.
func (s *Simulator) CancelOrder(id common.OrderId) error {
	for idx, order := range s.openOrders {
		if order.Id == id {
			s.cancelRestingOrder(order, common.OrderStateCancelled, 0)
			s.openOrders = append(s.openOrders[:idx], s.openOrders[idx+1:]...)
			return nil
		}
	}
	return errors.New("order not found")
}

func (s *Simulator) runPass(bar common.Bar, kinds ...common.OrderKind) {
	keep := s.openOrders[:0]
	filledGroups := make(map[common.GroupId]common.OrderId)

	for _, order := range s.openOrders {
		if order.Asset.Symbol != bar.Symbol || !kindIn(order.Kind, kinds) {
			keep = append(keep, order)
			continue
		}

		decision := s.engine.Evaluate(*order, bar)
		*order = decision.Order

		switch decision.Kind {
		case fill.NoFill:
			keep = append(keep, order)
		case fill.Partial, fill.Full:
			if !s.settle(order, decision) {
				continue
			}
			if order.State == common.OrderStateFilled {
				if order.GroupId != 0 {
					filledGroups[order.GroupId] = order.Id
				}
			} else {
				keep = append(keep, order)
			}
		}
	}
	s.openOrders = keep

	s.cancelGroupSiblings(filledGroups)
}

// settle books one decision against the ledger. Returns false when the order
// left the book on an execution error.
func (s *Simulator) settle(order *common.Order, decision fill.Decision) bool {
	price := decision.Price
	if !s.slippage.IsZero() {
		if order.Side == common.OrderSideBuy {
			price = price.Add(s.slippage)
		} else {
			price = price.Sub(s.slippage)
		}
	}

	partial := decision.Quantity.Lt(order.Remaining())
	execution := common.Fill{
		OrderId:     order.Id,
		Asset:       order.Asset,
		Side:        order.Side,
		Price:       price,
		Quantity:    decision.Quantity,
		Fees:        s.fees.Fee(decision.Quantity),
		Partial:     partial,
		Source:      simulatorComponentName,
		ExecutionId: utility.GetExecutionID(),
		TraceID:     utility.CreateTraceID(),
		TimeStamp:   s.simulationTime,
	}

	if err := s.apply(execution); err != nil {
		if errors.Is(err, ledger.ErrInsufficientFunds) {
			order.State = common.OrderStateError
			s.rejectOrder(*order, err.Error())
			return false
		}
		slog.Error("unable to settle fill", "error", err, "order", order)
		order.State = common.OrderStateError
		s.rejectOrder(*order, err.Error())
		return false
	}

	order.FilledQuantity = order.FilledQuantity.Add(decision.Quantity)
	if partial {
		order.State = common.OrderStatePartiallyFilled
	} else {
		order.State = common.OrderStateFilled
	}
	return true
}

// execute books a synthetic fill that does not originate from a resting
// order, such as end-of-run flattening.
func (s *Simulator) execute(execution common.Fill) {
	if err := s.apply(execution); err != nil {
		slog.Error("unable to settle fill", "error", err, "fill", execution)
	}
}

func (s *Simulator) apply(execution common.Fill) error {
	delta, err := s.book.ApplyFill(execution)
	if err != nil {
		return err
	}

	if err := s.router.Post(bus.FillEvent, execution); err != nil {
		slog.Warn("unable to post fill event", "error", err)
	}

	position := delta.Position
	position.Source = simulatorComponentName
	position.ExecutionId = utility.GetExecutionID()
	position.TraceID = utility.CreateTraceID()

	switch {
	case delta.Opened && delta.Closed:
		closed := position
		closed.Quantity = fixed.Zero
		closed.MarginHeld = fixed.Zero
		closed.RealizedPnL = delta.RealizedPnL
		if err := s.router.Post(bus.PositionCloseEvent, closed); err != nil {
			slog.Warn("unable to post position closed event", "error", err)
		}
		if err := s.router.Post(bus.PositionOpenEvent, position); err != nil {
			slog.Warn("unable to post position opened event", "error", err)
		}
	case delta.Opened:
		if err := s.router.Post(bus.PositionOpenEvent, position); err != nil {
			slog.Warn("unable to post position opened event", "error", err)
		}
	case delta.Closed:
		if err := s.router.Post(bus.PositionCloseEvent, position); err != nil {
			slog.Warn("unable to post position closed event", "error", err)
		}
	default:
		if err := s.router.Post(bus.PositionUpdateEvent, position); err != nil {
			slog.Warn("unable to post position update event", "error", err)
		}
	}

	if !delta.Cash.Eq(s.lastBalance) {
		s.postBalance(delta.Cash)
	}
	return nil
}

// cancelGroupSiblings removes the remaining members of every bracket group
// that had a member reach the filled state this tick. A partial fill keeps
// the group alive.
func (s *Simulator) cancelGroupSiblings(filledGroups map[common.GroupId]common.OrderId) {
	if len(filledGroups) == 0 {
		return
	}

	keep := s.openOrders[:0]
	for _, order := range s.openOrders {
		if order.GroupId != 0 {
			if siblingId, hit := filledGroups[order.GroupId]; hit && order.Id != siblingId {
				s.cancelRestingOrder(order, common.OrderStateCancelled, siblingId)
				continue
			}
		}
		keep = append(keep, order)
	}
	s.openOrders = keep
}

func (s *Simulator) cancelImmediateOrders(bar common.Bar) {
	keep := s.openOrders[:0]
	for _, order := range s.openOrders {
		if order.Asset.Symbol == bar.Symbol &&
			order.TimeInForce == common.TimeInForceImmediateOrCancel &&
			!order.State.Terminal() {
			s.cancelRestingOrder(order, common.OrderStateCancelled, 0)
			continue
		}
		keep = append(keep, order)
	}
	s.openOrders = keep
}

func (s *Simulator) expireOrders() {
	keep := s.openOrders[:0]
	for _, order := range s.openOrders {
		if order.TimeInForce == common.TimeInForceGoodTillDate &&
			!order.ExpireTime.After(s.simulationTime) {
			s.cancelRestingOrder(order, common.OrderStateExpired, 0)
			continue
		}
		keep = append(keep, order)
	}
	s.openOrders = keep
}

func (s *Simulator) cancelRestingOrder(order *common.Order, state common.OrderState, siblingId common.OrderId) {
	order.State = state
	if err := s.router.Post(bus.OrderCancelledEvent, common.OrderCancelled{
		Source:         simulatorComponentName,
		ExecutionId:    utility.GetExecutionID(),
		TraceID:        utility.CreateTraceID(),
		TimeStamp:      s.simulationTime,
		OriginalOrder:  *order,
		CancelledSize:  order.Remaining(),
		SiblingOrderId: siblingId,
	}); err != nil {
		slog.Warn("unable to post order cancelled event", "error", err)
	}
}

func (s *Simulator) rejectOrder(order common.Order, reason string) {
	if err := s.router.Post(bus.OrderRejectedEvent, common.OrderRejected{
		Source:        simulatorComponentName,
		ExecutionId:   utility.GetExecutionID(),
		TraceID:       utility.CreateTraceID(),
		TimeStamp:     s.simulationTime,
		OriginalOrder: order,
		Reason:        reason,
	}); err != nil {
		slog.Warn("unable to post order rejected event", "error", err)
	}
}

func (s *Simulator) markToMarket() {
	snap := common.NewPriceSnapshot(s.simulationTime)
	for symbol, bar := range s.lastBars {
		snap.Set(symbol, bar.Close)
	}

	updated, err := s.book.MarkToMarket(snap)
	if err != nil {
		s.failValuation(fmt.Errorf("mark to market: %w", err))
		return
	}

	for _, pos := range updated {
		pos.Source = simulatorComponentName
		pos.ExecutionId = utility.GetExecutionID()
		pos.TraceID = utility.CreateTraceID()
		if err := s.router.Post(bus.PositionUpdateEvent, pos); err != nil {
			slog.Warn("unable to post position update event", "error", err)
		}
	}

	valuation, err := portfolio.Value(s.book, snap)
	if err != nil {
		s.failValuation(fmt.Errorf("portfolio valuation: %w", err))
		return
	}

	if !valuation.Equity.Eq(s.lastEquity) {
		s.postEquity(valuation.Equity)
	}

	if err := s.router.Post(bus.AccountSnapshotEvent, common.AccountSnapshot{
		Cash:           s.book.Cash(),
		PortfolioValue: valuation.Equity,
		Positions:      s.book.Positions(),
		Source:         simulatorComponentName,
		ExecutionId:    utility.GetExecutionID(),
		TraceID:        utility.CreateTraceID(),
		TimeStamp:      s.simulationTime,
	}); err != nil {
		slog.Warn("unable to post account snapshot event", "error", err)
	}
}

// failValuation aborts the bar's snapshot and records the first error so the
// host can stop the run. No partial or substituted figure is ever posted.
func (s *Simulator) failValuation(err error) {
	slog.Error("valuation failed", "error", err)
	if s.valuationErr == nil {
		s.valuationErr = err
	}
}

func (s *Simulator) postBalance(value fixed.Point) {
	s.lastBalance = value
	if err := s.router.Post(bus.BalanceEvent, common.Balance{
		Source:      simulatorComponentName,
		ExecutionId: utility.GetExecutionID(),
		TraceID:     utility.CreateTraceID(),
		TimeStamp:   s.simulationTime,
		Value:       value,
	}); err != nil {
		slog.Warn("unable to post balance event", "error", err)
	}
}

func (s *Simulator) postEquity(value fixed.Point) {
	s.lastEquity = value
	if err := s.router.Post(bus.EquityEvent, common.Equity{
		Source:      simulatorComponentName,
		ExecutionId: utility.GetExecutionID(),
		TraceID:     utility.CreateTraceID(),
		TimeStamp:   s.simulationTime,
		Value:       value,
	}); err != nil {
		slog.Warn("unable to post equity event", "error", err)
	}
}

func kindIn(kind common.OrderKind, kinds []common.OrderKind) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}
