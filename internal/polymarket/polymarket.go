// Package polymarket adapts Polymarket's live-data feed and Gamma API to the
// Platform interface: it streams trade activity into the shared state and
// periodically refreshes the newly-listed markets side list.
package polymarket

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/daszybak/polyterm/internal/polymarket/gamma"
	"github.com/daszybak/polyterm/internal/polymarket/websocket"
	"github.com/daszybak/polyterm/internal/state"
	"github.com/daszybak/polyterm/pkg/hashset"
)

const platformName = "polymarket"

const (
	DefaultRefreshEvery    = 200
	DefaultNewMarketsLimit = 1000
)

type Config struct {
	WebsocketURL string
	GammaURL     string
	// RefreshEvery is the new-markets refresh cadence, counted in received
	// stream messages.
	RefreshEvery    int
	NewMarketsLimit int
}

type Polymarket struct {
	config Config
	state  *state.State
	log    *slog.Logger

	gamma *gamma.Client
	ws    *websocket.Client
}

// New creates a Polymarket adapter. Call Start() to connect.
func New(cfg Config, s *state.State, log *slog.Logger) *Polymarket {
	if cfg.RefreshEvery <= 0 {
		cfg.RefreshEvery = DefaultRefreshEvery
	}
	if cfg.NewMarketsLimit <= 0 {
		cfg.NewMarketsLimit = DefaultNewMarketsLimit
	}
	return &Polymarket{
		config: cfg,
		state:  s,
		log:    log.With("component", platformName),
		gamma:  gamma.New(cfg.GammaURL),
	}
}

// Start connects the websocket, subscribes to trade activity and applies
// every decoded trade to the state. It blocks until ctx is cancelled or the
// transport fails; it does not reconnect.
func (p *Polymarket) Start(ctx context.Context) error {
	p.log.Info("starting")

	ws, err := websocket.New(ctx, p.config.WebsocketURL, p.log)
	if err != nil {
		return fmt.Errorf("websocket connect: %w", err)
	}
	p.ws = ws

	if err := ws.SubscribeActivity(ctx); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	p.log.Info("subscribed to trade activity")

	messages := 0
	for {
		select {
		case <-ctx.Done():
			p.log.Info("stopping", "reason", ctx.Err())
			return ctx.Err()
		default:
		}

		msg, err := p.ws.ReadMessage(ctx)
		if err != nil {
			p.log.Error("read message failed", "error", err)
			return err
		}

		// The feed carries more than trades; everything else is skipped.
		if trade, ok := websocket.DecodeTrade(msg); ok {
			p.state.AddTrade(trade.Title, trade.Size, trade.TraderAddress, trade.ConditionID)
		}

		if messages%p.config.RefreshEvery == 0 {
			p.refreshNewMarkets(ctx)
		}
		messages++
	}
}

// Stop closes the websocket connection.
func (p *Polymarket) Stop(ctx context.Context) error {
	if p.ws != nil {
		return p.ws.Close(ctx)
	}
	return nil
}

// refreshNewMarkets polls Gamma for the newest open markets and swaps the
// side list in. A failed poll leaves the previous list untouched.
func (p *Polymarket) refreshNewMarkets(ctx context.Context) {
	markets, err := p.gamma.ListNew(ctx, p.config.NewMarketsLimit)
	if err != nil {
		p.log.Warn("new markets refresh failed", "error", err)
		return
	}

	seen := hashset.NewSet[string]()
	list := make([]state.NewMarket, 0, len(markets))
	for _, m := range markets {
		if m.Question == "" || seen.Has(m.Question) {
			continue
		}
		seen.Set(m.Question)
		list = append(list, state.NewMarket{Question: m.Question, Volume: m.Volume})
	}

	p.state.SetNewMarkets(list)
	p.log.Debug("refreshed new markets", "count", len(list))
}
