// Package state holds the shared aggregation state behind the dashboard:
// running volume totals per market and per trader, fed by the websocket
// ingestion loop and read by the terminal UI.
package state

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/btree"
)

// Market is a per-market volume aggregate.
type Market struct {
	Name        string
	Volume      float64
	ConditionID string
}

// Trader is a per-address volume aggregate.
type Trader struct {
	Address string
	Volume  float64
}

// NewMarket is one entry of the newly-listed markets side list. Volume is
// kept as the string the API returned.
type NewMarket struct {
	Question string
	Volume   string
}

type marketEntry struct {
	name        string
	volume      float64
	conditionID string
	seq         uint64 // discovery order, breaks volume ties
}

// rankKey orders markets by volume descending, discovery order ascending.
// Title is carried along to look the entry back up; it does not participate
// in the ordering.
type rankKey struct {
	volume float64
	seq    uint64
	title  string
}

func rankLess(a, b rankKey) bool {
	if a.volume != b.volume {
		return a.volume > b.volume
	}
	return a.seq < b.seq
}

// State is mutated by exactly one writer (the ingestion loop) and read by
// the snapshot reader, which only ever uses TryRLock. No method performs
// I/O while holding the lock.
type State struct {
	mu sync.RWMutex

	markets    map[string]*marketEntry // keyed by market title
	ranking    *btree.BTreeG[rankKey]  // secondary index over markets
	traders    map[string]float64      // keyed by trader address
	traderSeqs map[string]uint64

	eventsProcessed   uint64
	marketsDiscovered uint64
	nextMarketSeq     uint64
	nextTraderSeq     uint64

	newMarkets          []NewMarket
	newMarketsUpdatedAt int64 // unix seconds, 0 = never refreshed

	startedAt time.Time
	now       func() time.Time
}

func New() *State {
	return &State{
		markets:    make(map[string]*marketEntry),
		ranking:    btree.NewG(32, rankLess),
		traders:    make(map[string]float64),
		traderSeqs: make(map[string]uint64),
		startedAt:  time.Now(),
		now:        time.Now,
	}
}

// AddTrade applies one trade to the aggregates. Size is assumed to be a
// finite non-negative number; the websocket decoder rejects everything else.
func (s *State) AddTrade(title string, size float64, trader string, conditionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.eventsProcessed++

	if _, ok := s.traders[trader]; !ok {
		s.traderSeqs[trader] = s.nextTraderSeq
		s.nextTraderSeq++
	}
	s.traders[trader] += size

	m, ok := s.markets[title]
	if !ok {
		s.marketsDiscovered++
		m = &marketEntry{
			name:        title,
			conditionID: conditionID,
			seq:         s.nextMarketSeq,
		}
		s.nextMarketSeq++
		s.markets[title] = m
	} else {
		s.ranking.Delete(rankKey{volume: m.volume, seq: m.seq})
	}
	m.volume += size
	s.ranking.ReplaceOrInsert(rankKey{volume: m.volume, seq: m.seq, title: title})
}

// TopMarkets returns up to limit markets ordered by volume descending, ties
// broken by discovery order, plus the total number of distinct markets seen.
func (s *State) TopMarkets(limit int) ([]Market, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.topMarketsLocked(limit), s.marketsDiscovered
}

func (s *State) topMarketsLocked(limit int) []Market {
	if limit <= 0 {
		return nil
	}

	markets := make([]Market, 0, min(limit, s.ranking.Len()))
	s.ranking.Ascend(func(k rankKey) bool {
		m := s.markets[k.title]
		markets = append(markets, Market{
			Name:        m.name,
			Volume:      m.volume,
			ConditionID: m.conditionID,
		})
		return len(markets) < limit
	})
	return markets
}

// TopTraders returns up to limit traders ordered by volume descending, ties
// broken by first-seen order.
func (s *State) TopTraders(limit int) []Trader {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.topTradersLocked(limit)
}

func (s *State) topTradersLocked(limit int) []Trader {
	if limit <= 0 {
		return nil
	}

	traders := make([]Trader, 0, len(s.traders))
	for addr, vol := range s.traders {
		traders = append(traders, Trader{Address: addr, Volume: vol})
	}
	sort.Slice(traders, func(i, j int) bool {
		if traders[i].Volume != traders[j].Volume {
			return traders[i].Volume > traders[j].Volume
		}
		return s.traderSeqs[traders[i].Address] < s.traderSeqs[traders[j].Address]
	})
	if len(traders) > limit {
		traders = traders[:limit]
	}
	return traders
}

// SetNewMarkets replaces the newly-listed markets list wholesale and stamps
// the refresh time.
func (s *State) SetNewMarkets(markets []NewMarket) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.newMarkets = markets
	s.newMarketsUpdatedAt = s.now().Unix()
}

// NewMarkets returns the most recently refreshed list.
func (s *State) NewMarkets() []NewMarket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.newMarketsLocked()
}

func (s *State) newMarketsLocked() []NewMarket {
	markets := make([]NewMarket, len(s.newMarkets))
	copy(markets, s.newMarkets)
	return markets
}

// NewMarketsAge reports how long ago the new-markets list was refreshed,
// as a "N secs" string, or "never".
func (s *State) NewMarketsAge() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.newMarketsAgeLocked()
}

func (s *State) newMarketsAgeLocked() string {
	if s.newMarketsUpdatedAt == 0 {
		return "never"
	}
	diff := s.now().Unix() - s.newMarketsUpdatedAt
	if diff < 0 {
		diff = 0
	}
	return fmt.Sprintf("%d secs", diff)
}

// GeneralStats returns the distinct market count, seconds since start, the
// number of trades processed, and the sum of all market volumes. The total
// volume is recomputed on each call; it is read at most once per UI frame.
func (s *State) GeneralStats() (int, uint64, uint64, float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generalStatsLocked()
}

func (s *State) generalStatsLocked() (int, uint64, uint64, float64) {
	seconds := uint64(s.now().Sub(s.startedAt) / time.Second)

	var totalVolume float64
	for _, m := range s.markets {
		totalVolume += m.volume
	}

	return len(s.markets), seconds, s.eventsProcessed, totalVolume
}
