package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"cryptoquote/internal/domain"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestQuoteStoreHitWithinTTL(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1704067200, 0)}
	store := NewQuoteStore(time.Minute, clock.Now)

	store.Put("BTC/USDT", domain.Quote{Symbol: "BTC/USDT", LastPrice: 65000})
	clock.Advance(10 * time.Second)

	q, ok := store.Get("BTC/USDT")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if q.LastPrice != 65000 {
		t.Fatalf("expected 65000, got %v", q.LastPrice)
	}
}

func TestQuoteStoreExpiryBoundaryIsExclusive(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1704067200, 0)}
	store := NewQuoteStore(time.Minute, clock.Now)
	store.Put("BTC/USDT", domain.Quote{Symbol: "BTC/USDT"})

	clock.Advance(time.Minute - time.Nanosecond)
	if _, ok := store.Get("BTC/USDT"); !ok {
		t.Fatal("expected hit just before expiry")
	}

	clock.Advance(time.Nanosecond)
	if _, ok := store.Get("BTC/USDT"); ok {
		t.Fatal("expected miss exactly at expiry")
	}
}

func TestQuoteStoreReplaceAfterExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1704067200, 0)}
	store := NewQuoteStore(time.Minute, clock.Now)
	store.Put("ETH/USDT", domain.Quote{LastPrice: 1})

	clock.Advance(61 * time.Second)
	store.Put("ETH/USDT", domain.Quote{LastPrice: 2})

	q, ok := store.Get("ETH/USDT")
	if !ok || q.LastPrice != 2 {
		t.Fatalf("expected refreshed entry, got %+v ok=%v", q, ok)
	}
	if store.Len() != 1 {
		t.Fatalf("expected one entry, got %d", store.Len())
	}
}

func TestQuoteStoreDefaults(t *testing.T) {
	store := NewQuoteStore(0, nil)
	if store.TTL() != DefaultQuoteTTL {
		t.Fatalf("expected default ttl, got %v", store.TTL())
	}
	if _, ok := store.Get("BTC/USDT"); ok {
		t.Fatal("expected empty store")
	}
}

func TestQuoteStoreIsolatesSymbols(t *testing.T) {
	store := NewQuoteStore(time.Minute, nil)
	store.Put("BTC/USDT", domain.Quote{Symbol: "BTC/USDT", LastPrice: 45000})
	store.Put("ETH/USDT", domain.Quote{Symbol: "ETH/USDT", LastPrice: 3000})

	btc, _ := store.Get("BTC/USDT")
	eth, _ := store.Get("ETH/USDT")
	if btc.LastPrice != 45000 || eth.LastPrice != 3000 {
		t.Fatalf("unexpected entries: btc=%+v eth=%+v", btc, eth)
	}
}

func TestQuoteStoreConcurrentAccess(t *testing.T) {
	store := NewQuoteStore(time.Minute, nil)
	symbols := []domain.Symbol{"BTC/USDT", "ETH/USDT", "SOL/USDT"}

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			sym := symbols[i%len(symbols)]
			store.Put(sym, domain.Quote{Symbol: sym, LastPrice: float64(i), Bid: float64(i), Ask: float64(i)})
		}(i)
		go func(i int) {
			defer wg.Done()
			sym := symbols[i%len(symbols)]
			if q, ok := store.Get(sym); ok {
				if q.Symbol != sym || q.Bid != q.LastPrice || q.Ask != q.LastPrice {
					panic(fmt.Sprintf("torn entry observed: %+v", q))
				}
			}
		}(i)
	}
	wg.Wait()

	for _, sym := range symbols {
		if _, ok := store.Get(sym); !ok {
			t.Fatalf("expected entry for %s after concurrent puts", sym)
		}
	}
}
