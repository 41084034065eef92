package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"cryptoquote/internal/domain"
	"cryptoquote/internal/exchange"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

const (
	ToolGetCurrentPrice    = "get_current_price"
	ToolGetHistoricalPrice = "get_historical_price"
)

type QuoteCache interface {
	Get(symbol domain.Symbol) (domain.Quote, bool)
	Put(symbol domain.Symbol, quote domain.Quote)
}

// Recorder receives pipeline observations; metrics.Collector implements it.
type Recorder interface {
	CacheLookup(hit bool)
	ToolCall(tool string, kind domain.ErrorKind)
	AdapterLatency(op string, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) CacheLookup(bool)                     {}
func (nopRecorder) ToolCall(string, domain.ErrorKind)    {}
func (nopRecorder) AdapterLatency(string, time.Duration) {}

// MarketService runs the validate -> cache -> adapter -> classify pipeline
// behind both market data tools. Every failure leaves as a *domain.ToolError.
type MarketService struct {
	tracer  trace.Tracer
	adapter exchange.Adapter
	quotes  QuoteCache
	logger  zerolog.Logger
	metrics Recorder
	flights singleflight.Group
}

func NewMarketService(
	tracer trace.Tracer,
	adapter exchange.Adapter,
	quotes QuoteCache,
	logger zerolog.Logger,
	metrics Recorder,
) *MarketService {
	if tracer == nil {
		tracer = trace.NewNoopTracerProvider().Tracer("market-service")
	}
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &MarketService{
		tracer:  tracer,
		adapter: adapter,
		quotes:  quotes,
		logger:  logger,
		metrics: metrics,
	}
}

func (s *MarketService) SupportedTimeframes() []domain.Timeframe {
	return append([]domain.Timeframe(nil), domain.SupportedTimeframes...)
}

func (s *MarketService) GetCurrentPrice(ctx context.Context, rawSymbol string) (quote domain.Quote, toolErr *domain.ToolError) {
	ctx, span := s.tracer.Start(ctx, "market-service.get-current-price")
	defer span.End()
	defer s.recoverPanic(ToolGetCurrentPrice, span, &toolErr)

	symbol, err := ValidateQuoteRequest(rawSymbol)
	if err != nil {
		return domain.Quote{}, s.fail(ToolGetCurrentPrice, span, err)
	}
	span.SetAttributes(attribute.String("symbol", string(symbol)))

	if cached, ok := s.quotes.Get(symbol); ok {
		s.metrics.CacheLookup(true)
		s.metrics.ToolCall(ToolGetCurrentPrice, "")
		span.SetAttributes(attribute.Bool("cache.hit", true))
		s.logger.Debug().Str("symbol", string(symbol)).Msg("quote cache hit")
		return cached, nil
	}
	s.metrics.CacheLookup(false)
	span.SetAttributes(attribute.Bool("cache.hit", false))

	// Concurrent misses for one symbol share a single adapter call. The call
	// is detached from the first caller's cancellation so the other waiters
	// are not failed by it.
	flightCtx := context.WithoutCancel(ctx)
	v, err, _ := s.flights.Do(string(symbol), func() (any, error) {
		if cached, ok := s.quotes.Get(symbol); ok {
			return cached, nil
		}
		start := time.Now()
		fetched, err := s.adapter.FetchQuote(flightCtx, symbol)
		s.metrics.AdapterLatency("fetch_quote", time.Since(start))
		if err != nil {
			return nil, err
		}
		s.quotes.Put(symbol, fetched)
		return fetched, nil
	})
	if err != nil {
		return domain.Quote{}, s.fail(ToolGetCurrentPrice, span, err)
	}

	quote = v.(domain.Quote)
	s.metrics.ToolCall(ToolGetCurrentPrice, "")
	s.logger.Info().Str("symbol", string(symbol)).Float64("last_price", quote.LastPrice).Msg("fetched current price")
	return quote, nil
}

func (s *MarketService) GetHistoricalPrice(ctx context.Context, rawSymbol, rawTimeframe string, limit *int) (series domain.OHLCVSeries, toolErr *domain.ToolError) {
	ctx, span := s.tracer.Start(ctx, "market-service.get-historical-price")
	defer span.End()
	defer s.recoverPanic(ToolGetHistoricalPrice, span, &toolErr)

	symbol, timeframe, n, err := ValidateHistoricalRequest(rawSymbol, rawTimeframe, limit)
	if err != nil {
		return domain.OHLCVSeries{}, s.fail(ToolGetHistoricalPrice, span, err)
	}
	span.SetAttributes(
		attribute.String("symbol", string(symbol)),
		attribute.String("timeframe", string(timeframe)),
		attribute.Int("limit", n),
	)

	start := time.Now()
	bars, err := s.adapter.FetchOHLCV(ctx, symbol, timeframe, n)
	s.metrics.AdapterLatency("fetch_ohlcv", time.Since(start))
	if err != nil {
		return domain.OHLCVSeries{}, s.fail(ToolGetHistoricalPrice, span, err)
	}

	bars = orderBars(bars)
	if len(bars) > n {
		bars = bars[len(bars)-n:]
	}

	s.metrics.ToolCall(ToolGetHistoricalPrice, "")
	s.logger.Info().
		Str("symbol", string(symbol)).
		Str("timeframe", string(timeframe)).
		Int("count", len(bars)).
		Msg("fetched candles")
	return domain.OHLCVSeries{Symbol: symbol, Timeframe: timeframe, Bars: bars}, nil
}

func (s *MarketService) fail(tool string, span trace.Span, err error) *domain.ToolError {
	toolErr := Classify(err)
	s.metrics.ToolCall(tool, toolErr.Kind)
	span.RecordError(err)
	span.SetStatus(codes.Error, string(toolErr.Kind))

	event := s.logger.Error()
	if !toolErr.Retryable && toolErr.Kind != domain.ErrorKindUnknown {
		event = s.logger.Warn()
	}
	event.Err(err).Str("tool", tool).Str("kind", string(toolErr.Kind)).Msg("tool invocation failed")
	return toolErr
}

func (s *MarketService) recoverPanic(tool string, span trace.Span, out **domain.ToolError) {
	r := recover()
	if r == nil {
		return
	}
	*out = s.fail(tool, span, fmt.Errorf("panic: %v", r))
}

// orderBars sorts by open time and keeps the last bar seen for a timestamp.
func orderBars(bars []domain.OHLCVBar) []domain.OHLCVBar {
	out := append([]domain.OHLCVBar(nil), bars...)
	slices.SortStableFunc(out, func(a, b domain.OHLCVBar) int {
		return a.OpenTime.Compare(b.OpenTime)
	})

	deduped := out[:0]
	for _, bar := range out {
		if n := len(deduped); n > 0 && deduped[n-1].OpenTime.Equal(bar.OpenTime) {
			deduped[n-1] = bar
			continue
		}
		deduped = append(deduped, bar)
	}
	return deduped
}
