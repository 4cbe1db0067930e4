package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"paperbroker/pkg/common"
	"paperbroker/pkg/utility"
	"paperbroker/pkg/utility/fixed"
)

const clientComponentName = "datasource.stream.client"

// Message is the wire format of the bar feed, shared by the client and the
// replay server. Prices ride as float64 and timestamps as unix nanoseconds.
type Message struct {
	Symbol    string        `json:"symbol"`
	TimeStamp int64         `json:"ts"`
	Period    time.Duration `json:"period"`
	Open      float64       `json:"open"`
	High      float64       `json:"high"`
	Low       float64       `json:"low"`
	Close     float64       `json:"close"`
	Volume    float64       `json:"volume"`
}

func (m Message) ToModelBar(bar *common.Bar) {
	bar.Symbol = m.Symbol
	bar.TimeStamp = time.Unix(0, m.TimeStamp)
	bar.Period = m.Period
	bar.Open = fixed.FromFloat64(m.Open)
	bar.High = fixed.FromFloat64(m.High)
	bar.Low = fixed.FromFloat64(m.Low)
	bar.Close = fixed.FromFloat64(m.Close)
	bar.Volume = fixed.FromFloat64(m.Volume)
}

// FromModelBar converts a bar to the wire message, truncating the fixed-point
// prices to float64.
func FromModelBar(bar common.Bar) Message {
	toFloat := func(p fixed.Point) float64 {
		f, _ := p.Float64()
		return f
	}
	return Message{
		Symbol:    bar.Symbol,
		TimeStamp: bar.TimeStamp.UnixNano(),
		Period:    bar.Period,
		Open:      toFloat(bar.Open),
		High:      toFloat(bar.High),
		Low:       toFloat(bar.Low),
		Close:     toFloat(bar.Close),
		Volume:    toFloat(bar.Volume),
	}
}

// Client consumes a websocket bar feed and hands each bar to a callback.
type Client struct {
	url  string
	conn *websocket.Conn
}

func NewClient(url string) *Client {
	return &Client{
		url: url,
	}
}

func (c *Client) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("unable to dial %q: %w", c.url, err)
	}
	c.conn = conn
	return nil
}

func (c *Client) Close() {
	if c.conn == nil {
		return
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = c.conn.Close()
}

// Run blocks reading bars until the context is cancelled or the peer closes
// the connection.
func (c *Client) Run(ctx context.Context, handler func(bar common.Bar) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			_, message, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return nil
				}
				return fmt.Errorf("cannot read data: %w", err)
			}

			var msg Message
			if err := json.Unmarshal(message, &msg); err != nil {
				slog.Warn("unmarshal failed", "error", err)
				continue
			}

			var bar common.Bar
			msg.ToModelBar(&bar)
			bar.Source = clientComponentName
			bar.ExecutionId = utility.GetExecutionID()
			bar.TraceID = utility.CreateTraceID()

			if err := handler(bar); err != nil {
				return fmt.Errorf("error processing bar: %w", err)
			}
		}
	}
}
