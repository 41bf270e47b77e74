package state

import (
	"reflect"
	"testing"
	"time"
)

func TestSnapshotReaderFresh(t *testing.T) {
	s := New()
	s.AddTrade("m", 10, "0xA", "c")
	s.SetNewMarkets([]NewMarket{{Question: "q", Volume: "5"}})

	r := NewSnapshotReader(s, 50)
	snap, fresh := r.Read()
	if !fresh {
		t.Fatal("expected a fresh snapshot with the lock free")
	}
	if snap.TradesProcessed != 1 || snap.MarketCount != 1 || snap.TotalVolume != 10 {
		t.Errorf("snapshot stats = %+v", snap)
	}
	if len(snap.TopMarkets) != 1 || snap.TopMarkets[0].Name != "m" {
		t.Errorf("snapshot markets = %+v", snap.TopMarkets)
	}
	if len(snap.NewMarkets) != 1 || snap.NewMarketsAge == "never" {
		t.Errorf("snapshot new markets = %+v age %q", snap.NewMarkets, snap.NewMarketsAge)
	}
}

func TestSnapshotReaderIdempotentWithoutWrites(t *testing.T) {
	s := New()
	now := time.Now()
	s.now = func() time.Time { return now }
	s.AddTrade("m", 10, "0xA", "c")
	s.AddTrade("n", 4, "0xB", "c2")

	r := NewSnapshotReader(s, 50)
	first, _ := r.Read()
	second, _ := r.Read()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("snapshots differ without intervening writes:\n%+v\n%+v", first, second)
	}
}

func TestSnapshotReaderFallsBackUnderContention(t *testing.T) {
	s := New()
	s.AddTrade("m", 10, "0xA", "c")

	r := NewSnapshotReader(s, 50)
	cached, fresh := r.Read()
	if !fresh {
		t.Fatal("priming read should be fresh")
	}

	// Simulate the writer holding the exclusive lock.
	s.mu.Lock()

	done := make(chan Snapshot, 1)
	go func() {
		snap, fresh := r.Read()
		if fresh {
			t.Error("read during a write must not be fresh")
		}
		done <- snap
	}()

	select {
	case snap := <-done:
		if !reflect.DeepEqual(snap, cached) {
			t.Errorf("fallback snapshot = %+v, want cached %+v", snap, cached)
		}
	case <-time.After(time.Second):
		t.Fatal("read blocked while the writer held the lock")
	}
	s.mu.Unlock()
}

func TestSnapshotReaderEmptyDefault(t *testing.T) {
	r := NewSnapshotReader(New(), 50)

	// Contended before any successful read: the zero snapshot comes back.
	r.state.mu.Lock()
	snap, fresh := r.Read()
	r.state.mu.Unlock()

	if fresh {
		t.Fatal("expected a stale read")
	}
	if snap.NewMarketsAge != "unknown" || snap.TradesProcessed != 0 || len(snap.TopMarkets) != 0 {
		t.Errorf("default snapshot = %+v", snap)
	}
}

func TestSnapshotReaderLimit(t *testing.T) {
	s := New()
	for i := 0; i < 5; i++ {
		s.AddTrade(string(rune('a'+i)), float64(i+1), "0xA", "c")
	}

	r := NewSnapshotReader(s, 3)
	snap, _ := r.Read()
	if len(snap.TopMarkets) != 3 {
		t.Errorf("got %d markets, want 3", len(snap.TopMarkets))
	}
	if snap.MarketCount != 5 {
		t.Errorf("market count = %d, want 5", snap.MarketCount)
	}
}
