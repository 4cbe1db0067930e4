package stream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperbroker/pkg/common"
	"paperbroker/pkg/utility/fixed"
)

func newBarServer(t *testing.T, messages []Message) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		for _, msg := range messages {
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		}
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestClient_ReceivesBars(t *testing.T) {
	base := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	messages := []Message{
		{Symbol: "ACME", TimeStamp: base.UnixNano(), Period: time.Minute, Open: 100, High: 101, Low: 99, Close: 100.5, Volume: 1000},
		{Symbol: "ACME", TimeStamp: base.Add(time.Minute).UnixNano(), Period: time.Minute, Open: 100.5, High: 102, Low: 100, Close: 101.5, Volume: 1200},
	}

	srv := newBarServer(t, messages)
	defer srv.Close()

	client := NewClient(wsURL(srv))
	require.NoError(t, client.Connect(context.Background()))
	defer client.Close()

	var bars []common.Bar
	err := client.Run(context.Background(), func(bar common.Bar) error {
		bars = append(bars, bar)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, bars, 2)
	assert.Equal(t, "ACME", bars[0].Symbol)
	assert.Equal(t, clientComponentName, bars[0].Source)
	assert.Equal(t, base, bars[0].TimeStamp.UTC())
	assert.True(t, bars[0].Open.Eq(fixed.FromInt(100, 0)))
	assert.True(t, bars[1].Close.Eq(fixed.FromFloat64(101.5)))
}

func TestClient_HandlerErrorStopsRun(t *testing.T) {
	base := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	messages := []Message{
		{Symbol: "ACME", TimeStamp: base.UnixNano(), Period: time.Minute, Open: 100, High: 101, Low: 99, Close: 100.5, Volume: 1000},
	}

	srv := newBarServer(t, messages)
	defer srv.Close()

	client := NewClient(wsURL(srv))
	require.NoError(t, client.Connect(context.Background()))
	defer client.Close()

	boom := errors.New("boom")
	err := client.Run(context.Background(), func(common.Bar) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestMessage_RoundTrip(t *testing.T) {
	bar := common.Bar{
		Symbol:    "ESZ5",
		TimeStamp: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Period:    24 * time.Hour,
		Open:      fixed.FromFloat64(5100.25),
		High:      fixed.FromFloat64(5120.5),
		Low:       fixed.FromFloat64(5090.75),
		Close:     fixed.FromFloat64(5111.0),
		Volume:    fixed.FromInt(250000, 0),
	}

	var got common.Bar
	FromModelBar(bar).ToModelBar(&got)

	assert.Equal(t, bar.Symbol, got.Symbol)
	assert.Equal(t, bar.TimeStamp, got.TimeStamp.UTC())
	assert.Equal(t, bar.Period, got.Period)
	assert.True(t, got.Open.Eq(bar.Open))
	assert.True(t, got.Close.Eq(bar.Close))
}
