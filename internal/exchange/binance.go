package exchange

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"cryptoquote/internal/domain"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultBinanceTimeout = 10 * time.Second

// Binance API error codes relevant to classification.
const (
	binanceCodeTooManyRequests int64 = -1003
	binanceCodeTooManyOrders   int64 = -1015
	binanceCodeInvalidSymbol   int64 = -1121
)

type BinanceConfig struct {
	APIKey    string
	APISecret string
	BaseURL   string
	Timeout   time.Duration
}

type BinanceAdapter struct {
	client *binance.Client
	tracer trace.Tracer
	now    func() time.Time
}

func NewBinanceAdapter(tracer trace.Tracer, cfg BinanceConfig) *BinanceAdapter {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultBinanceTimeout
	}

	client := binance.NewClient(cfg.APIKey, cfg.APISecret)
	client.HTTPClient = &http.Client{Timeout: timeout, Transport: statusTransport{}}
	if base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); base != "" {
		client.BaseURL = base
	}

	return &BinanceAdapter{client: client, tracer: tracer, now: time.Now}
}

func (a *BinanceAdapter) FetchQuote(ctx context.Context, symbol domain.Symbol) (domain.Quote, error) {
	ctx, span := a.tracer.Start(ctx, "binance.fetch-quote")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", string(symbol)))

	ctx, status := withStatusRecorder(ctx)
	stats, err := a.client.NewListPriceChangeStatsService().Symbol(binanceSymbol(symbol)).Do(ctx)
	if err != nil {
		err = wrapBinanceError("fetch quote", symbol, status.code, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch quote failed")
		return domain.Quote{}, err
	}
	if len(stats) == 0 {
		return domain.Quote{}, &Error{Op: "fetch quote", Symbol: symbol, Kind: ErrUnknownSymbol}
	}

	quote, err := quoteFromStats(symbol, stats[0], a.now)
	if err != nil {
		return domain.Quote{}, &Error{Op: "fetch quote", Symbol: symbol, Err: err}
	}
	return quote, nil
}

func (a *BinanceAdapter) FetchOHLCV(ctx context.Context, symbol domain.Symbol, timeframe domain.Timeframe, limit int) ([]domain.OHLCVBar, error) {
	ctx, span := a.tracer.Start(ctx, "binance.fetch-ohlcv")
	defer span.End()
	span.SetAttributes(
		attribute.String("symbol", string(symbol)),
		attribute.String("timeframe", string(timeframe)),
		attribute.Int("limit", limit),
	)

	ctx, status := withStatusRecorder(ctx)
	klines, err := a.client.NewKlinesService().
		Symbol(binanceSymbol(symbol)).
		Interval(string(timeframe)).
		Limit(limit).
		Do(ctx)
	if err != nil {
		err = wrapBinanceError("fetch ohlcv", symbol, status.code, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch ohlcv failed")
		return nil, err
	}

	bars := make([]domain.OHLCVBar, 0, len(klines))
	for _, k := range klines {
		bar, err := barFromKline(k)
		if err != nil {
			return nil, &Error{Op: "fetch ohlcv", Symbol: symbol, Err: err}
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func binanceSymbol(symbol domain.Symbol) string {
	return strings.ReplaceAll(string(symbol), "/", "")
}

func quoteFromStats(symbol domain.Symbol, s *binance.PriceChangeStats, now func() time.Time) (domain.Quote, error) {
	var p amountParser
	q := domain.Quote{
		Symbol:           symbol,
		LastPrice:        p.parse("lastPrice", s.LastPrice),
		Bid:              p.parse("bidPrice", s.BidPrice),
		Ask:              p.parse("askPrice", s.AskPrice),
		High24h:          p.parse("highPrice", s.HighPrice),
		Low24h:           p.parse("lowPrice", s.LowPrice),
		Volume24h:        p.parse("volume", s.Volume),
		Change24h:        p.parse("priceChange", s.PriceChange),
		ChangePercent24h: p.parse("priceChangePercent", s.PriceChangePercent),
		FetchedAt:        now().UTC(),
	}
	if s.CloseTime > 0 {
		q.FetchedAt = time.UnixMilli(s.CloseTime).UTC()
	}
	return q, p.err
}

func barFromKline(k *binance.Kline) (domain.OHLCVBar, error) {
	var p amountParser
	bar := domain.OHLCVBar{
		OpenTime: time.UnixMilli(k.OpenTime).UTC(),
		Open:     p.parse("open", k.Open),
		High:     p.parse("high", k.High),
		Low:      p.parse("low", k.Low),
		Close:    p.parse("close", k.Close),
		Volume:   p.parse("volume", k.Volume),
	}
	return bar, p.err
}

// amountParser keeps the first parse failure so a row can be converted in one pass.
type amountParser struct {
	err error
}

func (p *amountParser) parse(field, raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		if p.err == nil {
			p.err = fmt.Errorf("parse %s %q: %w", field, raw, err)
		}
		return 0
	}
	return d.InexactFloat64()
}

func wrapBinanceError(op string, symbol domain.Symbol, status int, err error) error {
	return &Error{Op: op, Symbol: symbol, Kind: binanceErrorKind(err, status), Err: err}
}

// binanceErrorKind prefers the API error code and falls back to the HTTP
// status, since gateways and throttled responses often carry no JSON body.
func binanceErrorKind(err error, status int) error {
	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case binanceCodeInvalidSymbol:
			return ErrUnknownSymbol
		case binanceCodeTooManyRequests, binanceCodeTooManyOrders:
			return ErrRateLimited
		}
		return statusKind(status)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrNetwork
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrNetwork
	}
	return nil
}

// statusKind maps 418 (IP ban) and 429 to rate limiting and 5xx to a
// transport failure.
func statusKind(status int) error {
	switch {
	case status == http.StatusTooManyRequests, status == http.StatusTeapot:
		return ErrRateLimited
	case status >= http.StatusInternalServerError:
		return ErrNetwork
	}
	return nil
}

type statusKey struct{}

// statusRecorder holds the HTTP status of the last response seen for one call.
type statusRecorder struct {
	code int
}

func withStatusRecorder(ctx context.Context) (context.Context, *statusRecorder) {
	rec := &statusRecorder{}
	return context.WithValue(ctx, statusKey{}, rec), rec
}

// statusTransport copies response status codes into the request's recorder.
type statusTransport struct {
	base http.RoundTripper
}

func (t statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	res, err := base.RoundTrip(req)
	if res != nil {
		if rec, ok := req.Context().Value(statusKey{}).(*statusRecorder); ok {
			rec.code = res.StatusCode
		}
	}
	return res, err
}
