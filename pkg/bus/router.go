package bus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"paperbroker/pkg/common"
)

type event struct {
	id   EventId
	data interface{}
}

// Router is the single dispatch point of a simulation. Events are dispatched
// from one goroutine in post order, which is what keeps a run deterministic:
// the engine never observes two orderings of the same event stream.
type Router struct {
	done   chan error
	events chan event

	BarHandler             BarEventHandler
	OrderHandler           OrderEventHandler
	OrderAcceptedHandler   OrderAcceptedEventHandler
	OrderRejectedHandler   OrderRejectedEventHandler
	OrderCancelledHandler  OrderCancelledEventHandler
	FillHandler            FillEventHandler
	PositionOpenHandler    PositionOpenEventHandler
	PositionUpdateHandler  PositionUpdateEventHandler
	PositionCloseHandler   PositionCloseEventHandler
	BalanceHandler         BalanceEventHandler
	EquityHandler          EquityEventHandler
	AccountSnapshotHandler AccountSnapshotEventHandler

	runTime       time.Duration
	postCount     uint64
	postFails     uint64
	dispatchCount uint64
	dispatchFails uint64
}

func NewRouter(eventCapacity int) *Router {
	return &Router{
		done:   make(chan error),
		events: make(chan event, eventCapacity),
	}
}

func (r *Router) Post(id EventId, data interface{}) error {
	select {
	case r.events <- event{id, data}:
		r.postCount++
		return nil
	default:
		r.postFails++
		return errors.New("event capacity reached")
	}
}

func (r *Router) Exec(ctx context.Context) {
	r.resetStatistics()

	start := time.Now()
	defer func() {
		r.runTime += time.Since(start)
	}()

	for {
		select {
		case <-ctx.Done():
			r.done <- ctx.Err()
			return
		case ev := <-r.events:
			r.dispatchCount++
			if err := r.dispatch(ctx, ev); err != nil {
				r.dispatchFails++
				slog.Warn("dispatch failed", "error", err, "event", ev)
			}
		}
	}
}

// ExecLoop drives a feed callback whenever the queue is drained. The callback
// typically posts the next bar; returning an error ends the run.
func (r *Router) ExecLoop(ctx context.Context, doOnceCb func() error) {
	r.resetStatistics()

	start := time.Now()
	defer func() {
		r.runTime += time.Since(start)
	}()

	for {
		select {
		case <-ctx.Done():
			r.done <- ctx.Err()
			return
		case ev := <-r.events:
			r.dispatchCount++
			if err := r.dispatch(ctx, ev); err != nil {
				r.dispatchFails++
				slog.Warn("dispatch failed", "error", err, "event", ev)
			}
		default:
			if err := doOnceCb(); err != nil {
				r.done <- err
				return
			}
		}
	}
}

func (r *Router) Done() <-chan error {
	return r.done
}

func (r *Router) PrintStatistics() {
	slog.Info("router statistics",
		"run_time", r.runTime,
		"post_count", r.postCount,
		"post_fails", r.postFails,
		"dispatch_count", r.dispatchCount,
		"dispatch_fails", r.dispatchFails,
		"throughput", float64(r.postCount)/r.runTime.Seconds())
}

func (r *Router) resetStatistics() {
	r.runTime = 0
	r.postCount = 0
	r.postFails = 0
	r.dispatchCount = 0
	r.dispatchFails = 0
}

func (r *Router) dispatch(ctx context.Context, ev event) error {
	switch ev.id {
	case BarEvent:
		bar, ok := ev.data.(common.Bar)
		if !ok {
			return errors.New("invalid type assertion for bar event")
		}
		if r.BarHandler != nil {
			r.BarHandler(ctx, bar)
		} else {
			slog.Debug("bar handler is nil")
		}
	case OrderEvent:
		order, ok := ev.data.(common.Order)
		if !ok {
			return errors.New("invalid type assertion for order event")
		}
		if r.OrderHandler != nil {
			r.OrderHandler(ctx, order)
		} else {
			slog.Debug("order handler is nil")
		}
	case OrderAcceptedEvent:
		accepted, ok := ev.data.(common.OrderAccepted)
		if !ok {
			return errors.New("invalid type assertion for order accepted event")
		}
		if r.OrderAcceptedHandler != nil {
			r.OrderAcceptedHandler(ctx, accepted)
		} else {
			slog.Debug("order accepted handler is nil")
		}
	case OrderRejectedEvent:
		rejected, ok := ev.data.(common.OrderRejected)
		if !ok {
			return errors.New("invalid type assertion for order rejected event")
		}
		if r.OrderRejectedHandler != nil {
			r.OrderRejectedHandler(ctx, rejected)
		} else {
			slog.Debug("order rejected handler is nil")
		}
	case OrderCancelledEvent:
		cancelled, ok := ev.data.(common.OrderCancelled)
		if !ok {
			return errors.New("invalid type assertion for order cancelled event")
		}
		if r.OrderCancelledHandler != nil {
			r.OrderCancelledHandler(ctx, cancelled)
		} else {
			slog.Debug("order cancelled handler is nil")
		}
	case FillEvent:
		fill, ok := ev.data.(common.Fill)
		if !ok {
			return errors.New("invalid type assertion for fill event")
		}
		if r.FillHandler != nil {
			r.FillHandler(ctx, fill)
		} else {
			slog.Debug("fill handler is nil")
		}
	case PositionOpenEvent:
		pos, ok := ev.data.(common.Position)
		if !ok {
			return errors.New("invalid type assertion for position open event")
		}
		if r.PositionOpenHandler != nil {
			r.PositionOpenHandler(ctx, pos)
		} else {
			slog.Debug("position open handler is nil")
		}
	case PositionUpdateEvent:
		pos, ok := ev.data.(common.Position)
		if !ok {
			return errors.New("invalid type assertion for position update event")
		}
		if r.PositionUpdateHandler != nil {
			r.PositionUpdateHandler(ctx, pos)
		} else {
			slog.Debug("position update handler is nil")
		}
	case PositionCloseEvent:
		pos, ok := ev.data.(common.Position)
		if !ok {
			return errors.New("invalid type assertion for position close event")
		}
		if r.PositionCloseHandler != nil {
			r.PositionCloseHandler(ctx, pos)
		} else {
			slog.Debug("position close handler is nil")
		}
	case BalanceEvent:
		balance, ok := ev.data.(common.Balance)
		if !ok {
			return errors.New("invalid type assertion for balance event")
		}
		if r.BalanceHandler != nil {
			r.BalanceHandler(ctx, balance)
		} else {
			slog.Debug("balance handler is nil")
		}
	case EquityEvent:
		equity, ok := ev.data.(common.Equity)
		if !ok {
			return errors.New("invalid type assertion for equity event")
		}
		if r.EquityHandler != nil {
			r.EquityHandler(ctx, equity)
		} else {
			slog.Debug("equity handler is nil")
		}
	case AccountSnapshotEvent:
		snapshot, ok := ev.data.(common.AccountSnapshot)
		if !ok {
			return errors.New("invalid type assertion for account snapshot event")
		}
		if r.AccountSnapshotHandler != nil {
			r.AccountSnapshotHandler(ctx, snapshot)
		} else {
			slog.Debug("account snapshot handler is nil")
		}
	default:
		return fmt.Errorf("unsupported event id: %v", ev.id)
	}
	return nil
}
