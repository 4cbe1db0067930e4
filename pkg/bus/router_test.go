package bus

import (
	"context"
	"errors"
	"testing"
	"time"

	"paperbroker/pkg/common"
)

func TestBusRouter_Post(t *testing.T) {
	r := NewRouter(10)

	err := r.Post(BarEvent, common.Bar{})
	if err != nil {
		t.Errorf("Post failed: %v", err)
	}

	if r.postCount != 1 {
		t.Errorf("Expected postCount=1, got %d", r.postCount)
	}
}

func TestBusRouter_PostCapacityReached(t *testing.T) {
	r := NewRouter(1)

	err := r.Post(BarEvent, common.Bar{})
	if err != nil {
		t.Errorf("First Post failed: %v", err)
	}

	err = r.Post(BarEvent, common.Bar{})
	if err == nil {
		t.Error("Expected error when capacity reached")
	}

	if r.postFails != 1 {
		t.Errorf("Expected postFails=1, got %d", r.postFails)
	}
}

func TestBusRouter_Exec(t *testing.T) {
	r := NewRouter(10)

	barHandled := make(chan struct{}, 1)
	r.BarHandler = func(ctx context.Context, bar common.Bar) {
		barHandled <- struct{}{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Exec(ctx)

	if err := r.Post(BarEvent, common.Bar{}); err != nil {
		t.Errorf("Post failed: %v", err)
	}

	select {
	case <-barHandled:
	case <-time.After(time.Second):
		t.Error("Bar handler not called")
	}

	cancel()
	err := <-r.Done()
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestBusRouter_ExecLoop(t *testing.T) {
	r := NewRouter(10)

	var barHandled bool
	r.BarHandler = func(ctx context.Context, bar common.Bar) {
		barHandled = true
	}

	doOnceCount := 0
	doOnceCb := func() error {
		doOnceCount++
		if doOnceCount > 5 {
			return errors.New("done")
		}
		return nil
	}

	if err := r.Post(BarEvent, common.Bar{}); err != nil {
		t.Errorf("Post failed: %v", err)
	}

	go r.ExecLoop(context.Background(), doOnceCb)

	err := <-r.Done()
	if err == nil || err.Error() != "done" {
		t.Errorf("Expected 'done' error, got %v", err)
	}

	if !barHandled {
		t.Error("Bar handler not called")
	}

	if doOnceCount <= 5 {
		t.Errorf("Expected doOnceCount>5, got %d", doOnceCount)
	}
}

func TestBusRouter_AllEventTypes(t *testing.T) {
	r := NewRouter(20)

	handled := map[EventId]bool{}

	r.BarHandler = func(ctx context.Context, bar common.Bar) {
		handled[BarEvent] = true
	}
	r.OrderHandler = func(ctx context.Context, order common.Order) {
		handled[OrderEvent] = true
	}
	r.OrderAcceptedHandler = func(ctx context.Context, a common.OrderAccepted) {
		handled[OrderAcceptedEvent] = true
	}
	r.OrderRejectedHandler = func(ctx context.Context, rej common.OrderRejected) {
		handled[OrderRejectedEvent] = true
	}
	r.OrderCancelledHandler = func(ctx context.Context, c common.OrderCancelled) {
		handled[OrderCancelledEvent] = true
	}
	r.FillHandler = func(ctx context.Context, fill common.Fill) {
		handled[FillEvent] = true
	}
	r.PositionOpenHandler = func(ctx context.Context, pos common.Position) {
		handled[PositionOpenEvent] = true
	}
	r.PositionUpdateHandler = func(ctx context.Context, pos common.Position) {
		handled[PositionUpdateEvent] = true
	}
	r.PositionCloseHandler = func(ctx context.Context, pos common.Position) {
		handled[PositionCloseEvent] = true
	}
	r.BalanceHandler = func(ctx context.Context, bal common.Balance) {
		handled[BalanceEvent] = true
	}
	r.EquityHandler = func(ctx context.Context, eq common.Equity) {
		handled[EquityEvent] = true
	}
	r.AccountSnapshotHandler = func(ctx context.Context, snap common.AccountSnapshot) {
		handled[AccountSnapshotEvent] = true
	}

	posts := []struct {
		id   EventId
		data interface{}
	}{
		{BarEvent, common.Bar{}},
		{OrderEvent, common.Order{}},
		{OrderAcceptedEvent, common.OrderAccepted{}},
		{OrderRejectedEvent, common.OrderRejected{}},
		{OrderCancelledEvent, common.OrderCancelled{}},
		{FillEvent, common.Fill{}},
		{PositionOpenEvent, common.Position{}},
		{PositionUpdateEvent, common.Position{}},
		{PositionCloseEvent, common.Position{}},
		{BalanceEvent, common.Balance{}},
		{EquityEvent, common.Equity{}},
		{AccountSnapshotEvent, common.AccountSnapshot{}},
	}

	for _, p := range posts {
		if err := r.Post(p.id, p.data); err != nil {
			t.Errorf("Post failed: %v", err)
		}
	}

	doOnceCb := func() error {
		return errors.New("done")
	}
	go r.ExecLoop(context.Background(), doOnceCb)
	<-r.Done()

	for _, p := range posts {
		if !handled[p.id] {
			t.Errorf("Event %d handler not called", p.id)
		}
	}

	if r.dispatchCount != uint64(len(posts)) {
		t.Errorf("Expected dispatchCount=%d, got %d", len(posts), r.dispatchCount)
	}
}

func TestBusRouter_InvalidTypeAssertion(t *testing.T) {
	r := NewRouter(10)

	r.BarHandler = func(ctx context.Context, bar common.Bar) {
		t.Error("Handler should not be called")
	}

	if err := r.Post(BarEvent, "invalid data type"); err != nil {
		t.Errorf("Post failed: %v", err)
	}

	go r.ExecLoop(context.Background(), func() error {
		return errors.New("done")
	})
	<-r.Done()

	if r.dispatchFails != 1 {
		t.Errorf("Expected dispatchFails=1, got %d", r.dispatchFails)
	}
}

func TestBusRouter_NilHandlers(t *testing.T) {
	r := NewRouter(10)

	if err := r.Post(BarEvent, common.Bar{}); err != nil {
		t.Errorf("Post failed: %v", err)
	}
	if err := r.Post(FillEvent, common.Fill{}); err != nil {
		t.Errorf("Post failed: %v", err)
	}

	go r.ExecLoop(context.Background(), func() error {
		return errors.New("done")
	})
	<-r.Done()

	if r.dispatchCount != 2 {
		t.Errorf("Expected dispatchCount=2, got %d", r.dispatchCount)
	}

	if r.dispatchFails != 0 {
		t.Errorf("Expected dispatchFails=0, got %d", r.dispatchFails)
	}
}

func TestBusRouter_UnsupportedEventId(t *testing.T) {
	r := NewRouter(10)

	if err := r.Post(EventId(99), struct{}{}); err != nil {
		t.Errorf("Post failed: %v", err)
	}

	go r.ExecLoop(context.Background(), func() error {
		return errors.New("done")
	})
	<-r.Done()

	if r.dispatchFails != 1 {
		t.Errorf("Expected dispatchFails=1, got %d", r.dispatchFails)
	}
}

func TestBusRouter_ContextCancellation(t *testing.T) {
	r := NewRouter(10)

	ctx, cancel := context.WithCancel(context.Background())
	go r.Exec(ctx)

	cancel()

	err := <-r.Done()
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func BenchmarkBusRouter_Post(b *testing.B) {
	r := NewRouter(b.N)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := r.Post(BarEvent, common.Bar{}); err != nil {
			b.Errorf("Post failed: %v", err)
		}
	}
}
