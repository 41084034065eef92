package exchange

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cryptoquote/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

func newTestBinance(t *testing.T, handler http.HandlerFunc) (*BinanceAdapter, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	a := NewBinanceAdapter(trace.NewNoopTracerProvider().Tracer("test"), BinanceConfig{BaseURL: srv.URL, Timeout: time.Second})
	return a, srv
}

func TestBinanceFetchQuote(t *testing.T) {
	var gotSymbol string
	a, _ := newTestBinance(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/ticker/24hr" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotSymbol = r.URL.Query().Get("symbol")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"symbol":"BTCUSDT","priceChange":"1000.00","priceChangePercent":"2.27",
			"lastPrice":"45000.00","bidPrice":"44999.50","askPrice":"45000.50","highPrice":"46000.00",
			"lowPrice":"44000.00","volume":"1234.56","openTime":1703980800000,"closeTime":1704067200000}]`))
	})

	q, err := a.FetchQuote(context.Background(), "BTC/USDT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotSymbol != "BTCUSDT" {
		t.Fatalf("expected exchange symbol BTCUSDT, got %s", gotSymbol)
	}
	if q.Symbol != "BTC/USDT" || q.LastPrice != 45000 || q.Bid != 44999.5 || q.Ask != 45000.5 {
		t.Fatalf("unexpected quote: %+v", q)
	}
	if q.High24h != 46000 || q.Low24h != 44000 || q.Volume24h != 1234.56 || q.ChangePercent24h != 2.27 {
		t.Fatalf("unexpected 24h fields: %+v", q)
	}
	if !q.FetchedAt.Equal(time.UnixMilli(1704067200000)) {
		t.Fatalf("unexpected fetched_at: %v", q.FetchedAt)
	}
}

func TestBinanceFetchOHLCV(t *testing.T) {
	a, _ := newTestBinance(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/api/v3/klines" || q.Get("interval") != "1h" || q.Get("limit") != "2" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		_, _ = w.Write([]byte(`[
			[1704067200000,"45000","45500","44500","45200","100.5",1704070799999,"0",1,"0","0","0"],
			[1704070800000,"45200","45800","45000","45600","120.3",1704074399999,"0",1,"0","0","0"]
		]`))
	})

	bars, err := a.FetchOHLCV(context.Background(), "BTC/USDT", domain.Timeframe1h, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if bars[0].Open != 45000 || bars[1].Close != 45600 || bars[1].Volume != 120.3 {
		t.Fatalf("unexpected bars: %+v", bars)
	}
	if !bars[0].OpenTime.Before(bars[1].OpenTime) {
		t.Fatal("expected ascending open times")
	}
}

func TestBinanceErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"invalid symbol", http.StatusBadRequest, `{"code":-1121,"msg":"Invalid symbol."}`, ErrUnknownSymbol},
		{"rate limited", http.StatusTooManyRequests, `{"code":-1003,"msg":"Too many requests."}`, ErrRateLimited},
		{"429 without body", http.StatusTooManyRequests, ``, ErrRateLimited},
		{"418 ip ban html", http.StatusTeapot, `<html>banned</html>`, ErrRateLimited},
		{"503 gateway", http.StatusServiceUnavailable, `<html>Service Unavailable</html>`, ErrNetwork},
		{"502 gateway", http.StatusBadGateway, ``, ErrNetwork},
		{"500 unknown code", http.StatusInternalServerError, `{"code":-1000,"msg":"An unknown error occurred."}`, ErrNetwork},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a, _ := newTestBinance(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := a.FetchQuote(context.Background(), "ZZZ/USDT")
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestBinanceUncategorizedStatus(t *testing.T) {
	a, _ := newTestBinance(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":-1100,"msg":"Illegal characters found in parameter."}`))
	})

	_, err := a.FetchOHLCV(context.Background(), "BTC/USDT", domain.Timeframe1h, 1)
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrNetwork) || errors.Is(err, ErrRateLimited) || errors.Is(err, ErrUnknownSymbol) {
		t.Fatalf("400 with an unmapped code must stay uncategorized, got %v", err)
	}
}

func TestBinanceStatusIsPerCall(t *testing.T) {
	var calls int
	a, _ := newTestBinance(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
	})

	if _, err := a.FetchQuote(context.Background(), "BTC/USDT"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected rate limit on first call, got %v", err)
	}
	if _, err := a.FetchQuote(context.Background(), "ZZZ/USDT"); !errors.Is(err, ErrUnknownSymbol) {
		t.Fatalf("expected unknown symbol on second call, got %v", err)
	}
}

func TestBinanceNetworkFailure(t *testing.T) {
	a, srv := newTestBinance(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	_, err := a.FetchOHLCV(context.Background(), "BTC/USDT", domain.Timeframe1h, 1)
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestBinanceMalformedAmount(t *testing.T) {
	a, _ := newTestBinance(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"symbol":"BTCUSDT","lastPrice":"not-a-number"}]`))
	})

	_, err := a.FetchQuote(context.Background(), "BTC/USDT")
	if err == nil {
		t.Fatal("expected parse error")
	}
	if errors.Is(err, ErrNetwork) || errors.Is(err, ErrUnknownSymbol) || errors.Is(err, ErrRateLimited) {
		t.Fatalf("parse failure must stay uncategorized, got %v", err)
	}
}
