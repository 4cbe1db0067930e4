package middleware

import (
	"context"
	"testing"

	"paperbroker/pkg/common"
)

func TestMiddlewareMonitor_WithBar(t *testing.T) {
	m := NewMonitor(MonitorBars)

	called := false
	wrapped := m.WithBar(func(ctx context.Context, bar common.Bar) {
		called = true
	})

	wrapped(context.Background(), common.Bar{})

	if !called {
		t.Error("Wrapped handler not called")
	}
}

func TestMiddlewareMonitor_WithOrderPassthrough(t *testing.T) {
	m := NewMonitor(MonitorNone)

	var got common.Order
	wrapped := m.WithOrder(func(ctx context.Context, order common.Order) {
		got = order
	})

	order := common.Order{Id: 42, Asset: common.Asset{Symbol: "ES"}}
	wrapped(context.Background(), order)

	if got.Id != 42 || got.Asset.Symbol != "ES" {
		t.Errorf("Order not passed through, got %+v", got)
	}
}

func TestMiddlewareMonitor_FlagCombination(t *testing.T) {
	m := NewMonitor(MonitorFills | MonitorOrdersRejected)

	fillCalled := false
	wrappedFill := m.WithFill(func(ctx context.Context, fill common.Fill) {
		fillCalled = true
	})
	wrappedFill(context.Background(), common.Fill{})

	rejectCalled := false
	wrappedReject := m.WithOrderRejected(func(ctx context.Context, r common.OrderRejected) {
		rejectCalled = true
	})
	wrappedReject(context.Background(), common.OrderRejected{})

	if !fillCalled || !rejectCalled {
		t.Error("Wrapped handlers not called")
	}
}
