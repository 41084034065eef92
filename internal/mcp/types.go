package mcp

import (
	"cryptoquote/internal/domain"
)

type currentPriceInput struct {
	Symbol string `json:"symbol,omitempty" jsonschema:"trading pair symbol, e.g. BTC/USDT, ETH/USDT, SOL/USDT"`
}

type currentPriceOutput struct {
	Quote *domain.Quote     `json:"quote,omitempty"`
	Error *domain.ToolError `json:"error,omitempty"`
}

type historicalPriceInput struct {
	Symbol    string `json:"symbol,omitempty" jsonschema:"trading pair symbol, e.g. BTC/USDT, ETH/USDT, SOL/USDT"`
	Timeframe string `json:"timeframe,omitempty" jsonschema:"candle timeframe: 1m, 3m, 5m, 15m, 30m, 1h, 2h, 4h, 6h, 8h, 12h, 1d, 3d, 1w, 1M (default 1h)"`
	Limit     *int   `json:"limit,omitempty" jsonschema:"number of candles to return, 1-500 (default 10); out of range values are clamped"`
}

type historicalPriceOutput struct {
	Symbol    string            `json:"symbol,omitempty"`
	Timeframe string            `json:"timeframe,omitempty"`
	Count     int               `json:"count"`
	Candles   []domain.OHLCVBar `json:"candles,omitempty"`
	Error     *domain.ToolError `json:"error,omitempty"`
}

type limitsOutput struct {
	MinLimit             int    `json:"min_limit"`
	MaxLimit             int    `json:"max_limit"`
	DefaultLimit         int    `json:"default_limit"`
	DefaultTimeframe     string `json:"default_timeframe"`
	QuoteCacheTTLSeconds int    `json:"quote_cache_ttl_seconds"`
}

func newHistoricalOutput(series domain.OHLCVSeries) historicalPriceOutput {
	return historicalPriceOutput{
		Symbol:    string(series.Symbol),
		Timeframe: string(series.Timeframe),
		Count:     len(series.Bars),
		Candles:   series.Bars,
	}
}
