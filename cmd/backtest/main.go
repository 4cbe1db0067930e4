package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"paperbroker/internal/config"
	"paperbroker/internal/dbg"
	"paperbroker/internal/feed"
	"paperbroker/pkg/bus"
	"paperbroker/pkg/common"
	"paperbroker/pkg/exchange/sandbox"
	"paperbroker/pkg/middleware"
	"paperbroker/pkg/simulation"
	"paperbroker/pkg/utility/fixed"
)

const (
	routerEventCapacity = 1024
	strategyWindow      = 20
	monitorFlags        = middleware.MonitorOrdersRejected | middleware.MonitorPositionsOpened | middleware.MonitorPositionsClosed
)

func main() {
	configPath := flag.String("config", "backtest.yaml", "path to the backtest configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	var logger *zap.Logger
	if cfg.Logging.Dev {
		logger = dbg.NewDevLogger()
	} else {
		logger = dbg.NewProdLogger()
	}
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	defer logger.Info("done")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	dataFeed, err := feed.New(ctx, cfg)
	if err != nil {
		logger.Fatal("error opening data feed", zap.Error(err))
	}
	defer dataFeed.Close()

	// Create
	monitor := middleware.NewMonitor(monitorFlags)
	telemetry := middleware.NewTelemetry(logger)
	router := bus.NewRouter(routerEventCapacity)

	options := []sandbox.Option{
		sandbox.WithFeeSchedule(cfg.FeeSchedule()),
	}
	if cfg.Execution.Slippage > 0 {
		options = append(options, sandbox.WithSlippage(fixed.FromFloat64(cfg.Execution.Slippage)))
	}
	if cfg.Execution.MaxParticipation > 0 {
		options = append(options, sandbox.WithMaxParticipation(fixed.FromFloat64(cfg.Execution.MaxParticipation)))
	}

	simulator := sandbox.NewSimulator(router, cfg.StartCash(), cfg.MarginTable(), options...)
	audit := simulation.NewAudit(cfg.SnapshotInterval())

	asset := common.Asset{
		Symbol:     cfg.Data.Symbol,
		Kind:       common.AssetStock,
		Multiplier: fixed.One,
	}
	strategy := NewStrategy(logger, router, asset, fixed.FromInt(100, 0), strategyWindow)

	// Initialize
	router.BarHandler = telemetry.WithBar(monitor.WithBar(bus.MergeHandlers(simulator.OnBar, strategy.OnBar)))
	router.OrderHandler = telemetry.WithOrder(monitor.WithOrder(simulator.OnOrder))
	router.OrderAcceptedHandler = telemetry.WithOrderAccepted(monitor.WithOrderAccepted(middleware.NoopOrderAccHdl))
	router.OrderRejectedHandler = telemetry.WithOrderRejected(monitor.WithOrderRejected(middleware.NoopOrderRjctHdl))
	router.OrderCancelledHandler = telemetry.WithOrderCancelled(monitor.WithOrderCancelled(middleware.NoopOrderCnclHdl))
	router.FillHandler = telemetry.WithFill(monitor.WithFill(middleware.NoopFillHdl))
	router.PositionOpenHandler = telemetry.WithPositionOpen(monitor.WithPositionOpen(strategy.OnPositionOpen))
	router.PositionUpdateHandler = telemetry.WithPositionUpdate(monitor.WithPositionUpdate(middleware.NoopPosUpdHdl))
	router.PositionCloseHandler = telemetry.WithPositionClose(monitor.WithPositionClose(bus.MergeHandlers(audit.OnPositionClose, strategy.OnPositionClose)))
	router.BalanceHandler = telemetry.WithBalance(monitor.WithBalance(middleware.NoopBalanceHdl))
	router.EquityHandler = telemetry.WithEquity(monitor.WithEquity(middleware.NoopEquityHdl))
	router.AccountSnapshotHandler = monitor.WithAccountSnapshot(audit.OnAccountSnapshot)

	// Execute the simulation
	flattened := false
	go router.ExecLoop(ctx, func() error {
		if err := simulator.Err(); err != nil {
			return err
		}
		if flattened {
			return feed.ErrEndOfData
		}

		bar, err := dataFeed.Next()
		if err != nil {
			if errors.Is(err, feed.ErrEndOfData) {
				// Flatten and let one more drain pass deliver the close events.
				simulator.CloseAllOpenPositions()
				flattened = true
				return nil
			}
			return err
		}
		return router.Post(bus.BarEvent, bar)
	})

	defer router.PrintStatistics()
	defer telemetry.PrintStatistics()

	// Wait for the simulation to complete
	if err := <-router.Done(); err != nil {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, feed.ErrEndOfData) {
			logger.Error("error during simulation", zap.Error(err))
		}
	}

	audit.GenerateReport().Print(logger)
}
