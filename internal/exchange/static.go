package exchange

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cryptoquote/internal/domain"
)

// StaticAdapter serves quotes and bars from memory. It backs the offline
// "static" exchange mode and the service tests.
type StaticAdapter struct {
	mu     sync.Mutex
	now    func() time.Time
	quotes map[domain.Symbol]domain.Quote
	bars   map[domain.Symbol][]domain.OHLCVBar

	quoteErr error
	ohlcvErr error

	quoteCalls int
	ohlcvCalls int
}

func NewStaticAdapter(now func() time.Time) *StaticAdapter {
	if now == nil {
		now = time.Now
	}
	return &StaticAdapter{
		now:    now,
		quotes: make(map[domain.Symbol]domain.Quote),
		bars:   make(map[domain.Symbol][]domain.OHLCVBar),
	}
}

// NewDemoAdapter seeds a few well-known pairs.
func NewDemoAdapter() *StaticAdapter {
	a := NewStaticAdapter(nil)
	a.SetQuote(domain.Quote{Symbol: "BTC/USDT", LastPrice: 65000, Bid: 64999.5, Ask: 65000.5, High24h: 66000, Low24h: 64000, Volume24h: 1234.56})
	a.SetQuote(domain.Quote{Symbol: "ETH/USDT", LastPrice: 3200, Bid: 3199.9, Ask: 3200.1, High24h: 3300, Low24h: 3100, Volume24h: 45678.9})
	a.SetQuote(domain.Quote{Symbol: "SOL/USDT", LastPrice: 150, Bid: 149.98, Ask: 150.02, High24h: 158, Low24h: 144, Volume24h: 987654.3})
	return a
}

func (a *StaticAdapter) SetQuote(q domain.Quote) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.quotes[q.Symbol] = q
}

func (a *StaticAdapter) SetBars(symbol domain.Symbol, bars []domain.OHLCVBar) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.bars[symbol] = append([]domain.OHLCVBar(nil), bars...)
}

// FailQuotes makes every FetchQuote return err until cleared with nil.
func (a *StaticAdapter) FailQuotes(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.quoteErr = err
}

func (a *StaticAdapter) FailOHLCV(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ohlcvErr = err
}

func (a *StaticAdapter) QuoteCalls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.quoteCalls
}

func (a *StaticAdapter) OHLCVCalls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ohlcvCalls
}

func (a *StaticAdapter) FetchQuote(ctx context.Context, symbol domain.Symbol) (domain.Quote, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.quoteCalls++

	if a.quoteErr != nil {
		return domain.Quote{}, &Error{Op: "fetch quote", Symbol: symbol, Err: a.quoteErr}
	}
	q, ok := a.quotes[symbol]
	if !ok {
		return domain.Quote{}, &Error{Op: "fetch quote", Symbol: symbol, Kind: ErrUnknownSymbol}
	}
	if q.FetchedAt.IsZero() {
		q.FetchedAt = a.now().UTC()
	}
	return q, nil
}

func (a *StaticAdapter) FetchOHLCV(ctx context.Context, symbol domain.Symbol, timeframe domain.Timeframe, limit int) ([]domain.OHLCVBar, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ohlcvCalls++

	if a.ohlcvErr != nil {
		return nil, &Error{Op: "fetch ohlcv", Symbol: symbol, Err: a.ohlcvErr}
	}
	if limit <= 0 {
		return nil, &Error{Op: "fetch ohlcv", Symbol: symbol, Err: fmt.Errorf("limit must be positive, got %d", limit)}
	}

	if bars, ok := a.bars[symbol]; ok {
		if len(bars) > limit {
			bars = bars[len(bars)-limit:]
		}
		return append([]domain.OHLCVBar(nil), bars...), nil
	}

	q, ok := a.quotes[symbol]
	if !ok {
		return nil, &Error{Op: "fetch ohlcv", Symbol: symbol, Kind: ErrUnknownSymbol}
	}
	return synthesizeBars(q, timeframe, limit, a.now()), nil
}

// synthesizeBars builds a deterministic series ending at the last closed bucket.
func synthesizeBars(q domain.Quote, timeframe domain.Timeframe, limit int, now time.Time) []domain.OHLCVBar {
	step := timeframe.Duration()
	if step <= 0 {
		step = time.Hour
	}
	last := now.UTC().Truncate(step)
	bars := make([]domain.OHLCVBar, limit)
	for i := 0; i < limit; i++ {
		offset := float64(limit-1-i) * 0.001
		open := q.LastPrice * (1 - offset)
		closePrice := q.LastPrice * (1 - offset + 0.0005)
		bars[i] = domain.OHLCVBar{
			OpenTime: last.Add(-time.Duration(limit-1-i) * step),
			Open:     open,
			High:     closePrice * 1.001,
			Low:      open * 0.999,
			Close:    closePrice,
			Volume:   q.Volume24h / 24,
		}
	}
	return bars
}
