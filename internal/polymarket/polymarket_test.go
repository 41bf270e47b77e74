package polymarket

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/daszybak/polyterm/internal/state"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestFeed serves one websocket connection: it reads the subscribe
// request, then writes the given messages and closes.
func newTestFeed(t *testing.T, messages []string) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		if _, _, err := conn.ReadMessage(); err != nil {
			t.Errorf("server couldn't read subscribe request: %v", err)
			return
		}
		for _, msg := range messages {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				t.Errorf("server write: %v", err)
				return
			}
		}
		conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestStartAppliesTradesAndSkipsJunk(t *testing.T) {
	var gammaCalls atomic.Int64
	gammaSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gammaCalls.Add(1)
		w.Write([]byte(`[
			{"id":"1","question":"New Market A","volume":"1000"},
			{"id":"2","question":"New Market A","volume":"1000"},
			{"id":"3","question":"New Market B","volume":"500"}
		]`))
	}))
	defer gammaSrv.Close()

	feedURL := newTestFeed(t, []string{
		`{"payload":{"conditionId":"m1","title":"Will X happen?","size":100,"proxyWallet":"0xA"}}`,
		`{"type":"ping"}`,
		`{"payload":{"conditionId":"m1","title":"Will X happen?","size":50,"proxyWallet":"0xB"}}`,
		`not even json`,
		`{"payload":{"conditionId":"m2","title":"Will Y happen?","size":30,"proxyWallet":"0xA"}}`,
	})

	s := state.New()
	p := New(Config{
		WebsocketURL: feedURL,
		GammaURL:     gammaSrv.URL,
		RefreshEvery: 200,
	}, s, discardLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// The feed closes after the scripted messages, so Start returns a
	// transport error. That is the expected lifecycle.
	if err := p.Start(ctx); err == nil {
		t.Fatal("expected Start to return the transport error")
	}
	p.Stop(ctx)

	count, _, trades, totalVolume := s.GeneralStats()
	if trades != 3 {
		t.Errorf("eventsProcessed = %d, want 3 (junk must not count)", trades)
	}
	if count != 2 {
		t.Errorf("market count = %d, want 2", count)
	}
	if totalVolume != 180 {
		t.Errorf("total volume = %v, want 180", totalVolume)
	}

	traders := s.TopTraders(10)
	if len(traders) != 2 || traders[0].Address != "0xA" || traders[0].Volume != 130 {
		t.Errorf("traders = %+v", traders)
	}

	if got := gammaCalls.Load(); got != 1 {
		t.Errorf("gamma called %d times, want 1 (message 0 only)", got)
	}
	newMarkets := s.NewMarkets()
	if len(newMarkets) != 2 {
		t.Fatalf("new markets = %+v, want duplicates collapsed to 2", newMarkets)
	}
	if newMarkets[0].Question != "New Market A" || newMarkets[1].Question != "New Market B" {
		t.Errorf("new markets = %+v", newMarkets)
	}
	if s.NewMarketsAge() == "never" {
		t.Error("new markets age still \"never\" after a refresh")
	}
}

func TestFailedRefreshKeepsPreviousList(t *testing.T) {
	gammaSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
	}))
	defer gammaSrv.Close()

	feedURL := newTestFeed(t, []string{
		`{"payload":{"conditionId":"m1","title":"T","size":1,"proxyWallet":"0xA"}}`,
	})

	s := state.New()
	s.SetNewMarkets([]state.NewMarket{{Question: "kept", Volume: "1"}})

	p := New(Config{WebsocketURL: feedURL, GammaURL: gammaSrv.URL}, s, discardLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p.Start(ctx)
	p.Stop(ctx)

	markets := s.NewMarkets()
	if len(markets) != 1 || markets[0].Question != "kept" {
		t.Errorf("new markets = %+v, want the previous list untouched", markets)
	}
}

func TestConfigDefaults(t *testing.T) {
	p := New(Config{}, state.New(), discardLogger())
	if p.config.RefreshEvery != DefaultRefreshEvery {
		t.Errorf("RefreshEvery = %d, want %d", p.config.RefreshEvery, DefaultRefreshEvery)
	}
	if p.config.NewMarketsLimit != DefaultNewMarketsLimit {
		t.Errorf("NewMarketsLimit = %d, want %d", p.config.NewMarketsLimit, DefaultNewMarketsLimit)
	}
}
