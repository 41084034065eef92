package mcp

import (
	"context"

	"cryptoquote/internal/domain"
)

// MarketReader is the tool-facing side of service.MarketService.
type MarketReader interface {
	GetCurrentPrice(ctx context.Context, symbol string) (domain.Quote, *domain.ToolError)
	GetHistoricalPrice(ctx context.Context, symbol, timeframe string, limit *int) (domain.OHLCVSeries, *domain.ToolError)
	SupportedTimeframes() []domain.Timeframe
}
