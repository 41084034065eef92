package cache

import (
	"sync"
	"time"

	"cryptoquote/internal/domain"
)

const DefaultQuoteTTL = 60 * time.Second

type quoteEntry struct {
	quote     domain.Quote
	expiresAt time.Time
}

// QuoteStore keeps the last fetched quote per symbol until its TTL elapses.
// Entries are immutable once stored; a Put replaces the pointer for that key only.
type QuoteStore struct {
	ttl     time.Duration
	now     func() time.Time
	entries sync.Map // domain.Symbol -> *quoteEntry
}

func NewQuoteStore(ttl time.Duration, now func() time.Time) *QuoteStore {
	if ttl <= 0 {
		ttl = DefaultQuoteTTL
	}
	if now == nil {
		now = time.Now
	}
	return &QuoteStore{ttl: ttl, now: now}
}

func (s *QuoteStore) TTL() time.Duration { return s.ttl }

// Get returns the cached quote while now < expiresAt.
func (s *QuoteStore) Get(symbol domain.Symbol) (domain.Quote, bool) {
	v, ok := s.entries.Load(symbol)
	if !ok {
		return domain.Quote{}, false
	}
	entry := v.(*quoteEntry)
	if !s.now().Before(entry.expiresAt) {
		return domain.Quote{}, false
	}
	return entry.quote, true
}

func (s *QuoteStore) Put(symbol domain.Symbol, quote domain.Quote) {
	s.entries.Store(symbol, &quoteEntry{
		quote:     quote,
		expiresAt: s.now().Add(s.ttl),
	})
}

// Len counts stored entries, expired ones included.
func (s *QuoteStore) Len() int {
	n := 0
	s.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
