package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"paperbroker/internal/config"
	"paperbroker/internal/dbg"
	"paperbroker/internal/feed"
	"paperbroker/pkg/datasource/stream"
)

// replay serves the configured bar source over a websocket endpoint, so a
// stream client can consume historical or synthetic data as if it were live.
func main() {
	configPath := flag.String("config", "backtest.yaml", "path to the configuration file")
	addr := flag.String("addr", ":8081", "listen address")
	interval := flag.Duration("interval", 100*time.Millisecond, "delay between bars")
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

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	upgrader := websocket.Upgrader{}

	mux := http.NewServeMux()
	mux.HandleFunc("/bars", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("upgrade failed", zap.Error(err))
			return
		}
		defer func() {
			_ = conn.Close()
		}()

		dataFeed, err := feed.New(r.Context(), cfg)
		if err != nil {
			logger.Error("error opening data feed", zap.Error(err))
			return
		}
		defer dataFeed.Close()

		logger.Info("client connected", zap.String("remote", r.RemoteAddr))

		for {
			bar, err := dataFeed.Next()
			if err != nil {
				if !errors.Is(err, feed.ErrEndOfData) {
					logger.Error("error reading bar", zap.Error(err))
				}
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			if err := conn.WriteJSON(stream.FromModelBar(bar)); err != nil {
				logger.Warn("client write failed", zap.Error(err))
				return
			}

			select {
			case <-r.Context().Done():
				return
			case <-time.After(*interval):
			}
		}
	})

	server := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("replay server listening", zap.String("addr", *addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}
