package state

// Snapshot is an internally consistent bundle of everything one dashboard
// frame displays, captured under a single read lock.
type Snapshot struct {
	TopMarkets      []Market
	TopTraders      []Trader
	NewMarkets      []NewMarket
	NewMarketsAge   string
	MarketCount     int
	SecondsRunning  uint64
	TradesProcessed uint64
	TotalVolume     float64
}

// SnapshotReader is the UI-side read path. It never waits for the ingestion
// writer: Read tries the lock and falls back to the last snapshot it managed
// to capture. It is meant for a single reading goroutine.
type SnapshotReader struct {
	state *State
	limit int
	last  Snapshot
}

// NewSnapshotReader creates a reader producing snapshots with up to limit
// entries in each ranking.
func NewSnapshotReader(s *State, limit int) *SnapshotReader {
	return &SnapshotReader{
		state: s,
		limit: limit,
		last:  Snapshot{NewMarketsAge: "unknown"},
	}
}

// Read returns the current snapshot when the state lock is free, or the last
// captured snapshot when the writer holds it. The second return value is
// true for a fresh snapshot.
func (r *SnapshotReader) Read() (Snapshot, bool) {
	s := r.state
	if !s.mu.TryRLock() {
		return r.last, false
	}
	defer s.mu.RUnlock()

	marketCount, seconds, trades, totalVolume := s.generalStatsLocked()
	snap := Snapshot{
		TopMarkets:      s.topMarketsLocked(r.limit),
		TopTraders:      s.topTradersLocked(r.limit),
		NewMarkets:      s.newMarketsLocked(),
		NewMarketsAge:   s.newMarketsAgeLocked(),
		MarketCount:     marketCount,
		SecondsRunning:  seconds,
		TradesProcessed: trades,
		TotalVolume:     totalVolume,
	}
	r.last = snap
	return snap, true
}

// Last returns the most recently captured snapshot without touching the lock.
func (r *SnapshotReader) Last() Snapshot {
	return r.last
}
