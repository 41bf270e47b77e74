// Package websocket consumes the Polymarket live-data feed.
package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	HandshakeTimeout    = 30 * time.Second
	DefaultCloseTimeout = 5 * time.Second
	DefaultWriteTimeout = 10 * time.Second
	PingInterval        = 50 * time.Second
)

type Client struct {
	conn     *websocket.Conn
	log      *slog.Logger
	stopPing chan struct{}
}

func New(ctx context.Context, url string, log *slog.Logger) (*Client, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: HandshakeTimeout,
	}

	conn, resp, err := dialer.DialContext(ctx, url, http.Header{})
	if err != nil {
		return nil, err
	}

	c := &Client{
		conn:     conn,
		log:      log.With("component", "websocket"),
		stopPing: make(chan struct{}),
	}
	c.log.Info("connected to live-data feed", "url", url, "status", resp.Status)
	go c.pingLoop()

	return c, nil
}

func (c *Client) pingLoop() {
	ticker := time.NewTicker(PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopPing:
			return
		case <-ticker.C:
			deadline := time.Now().Add(DefaultWriteTimeout)
			if err := c.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				c.log.Warn("failed to send ping", "error", err)
				return
			}
		}
	}
}

func (c *Client) Close(ctx context.Context) error {
	close(c.stopPing)

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(DefaultCloseTimeout)
	}

	err := c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		deadline,
	)
	if err != nil {
		c.log.Warn("failed to send close message", "error", err)
	}

	return c.conn.Close()
}

type Subscription struct {
	Topic string `json:"topic"`
	Type  string `json:"type"`
}

type SubscribeRequest struct {
	Action        string         `json:"action"`
	Subscriptions []Subscription `json:"subscriptions"`
}

// SubscribeActivity asks the feed for the trade activity stream.
func (c *Client) SubscribeActivity(ctx context.Context) error {
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(DefaultWriteTimeout)
	}
	c.conn.SetWriteDeadline(deadline)

	req := SubscribeRequest{
		Action: "subscribe",
		Subscriptions: []Subscription{
			{Topic: "activity", Type: "trades"},
		},
	}
	return c.conn.WriteJSON(req)
}

type result struct {
	RawMessage []byte
	Error      error
}

// ReadMessage returns the next raw message from the feed, or an error when
// ctx is cancelled or the connection fails.
func (c *Client) ReadMessage(ctx context.Context) ([]byte, error) {
	resultCh := make(chan result, 1)

	go func() {
		_, msg, err := c.conn.ReadMessage()
		resultCh <- result{
			RawMessage: msg,
			Error:      err,
		}
	}()

	select {
	case <-ctx.Done():
		if err := c.conn.SetReadDeadline(time.Now()); err != nil {
			c.log.Warn("failed to set read deadline", "error", err)
		}
		return nil, fmt.Errorf("reading message: %w", ctx.Err())
	case result := <-resultCh:
		if result.Error != nil {
			return nil, fmt.Errorf("couldn't read message: %w", result.Error)
		}
		return result.RawMessage, nil
	}
}

// Trade is one executed trade decoded from the activity stream.
type Trade struct {
	Title         string
	Size          float64
	TraderAddress string
	ConditionID   string
}

type tradePayload struct {
	ConditionID string  `json:"conditionId"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Size        float64 `json:"size"`
	Side        string  `json:"side"`
	Outcome     string  `json:"outcome"`
	ProxyWallet string  `json:"proxyWallet"`
}

type envelope struct {
	Payload *tradePayload `json:"payload"`
}

// DecodeTrade decodes a raw feed message into a Trade. The feed carries
// message types other than trades, so anything that doesn't decode to a
// well-formed trade payload reports ok=false and is meant to be skipped.
func DecodeTrade(msg []byte) (Trade, bool) {
	var env envelope
	if err := json.Unmarshal(msg, &env); err != nil || env.Payload == nil {
		return Trade{}, false
	}

	p := env.Payload
	if p.Title == "" || p.ProxyWallet == "" {
		return Trade{}, false
	}
	if p.Size < 0 || math.IsNaN(p.Size) || math.IsInf(p.Size, 0) {
		return Trade{}, false
	}

	return Trade{
		Title:         p.Title,
		Size:          p.Size,
		TraderAddress: p.ProxyWallet,
		ConditionID:   p.ConditionID,
	}, true
}
