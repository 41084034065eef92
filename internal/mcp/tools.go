package mcp

import (
	"context"
	"encoding/json"

	"cryptoquote/internal/domain"
	"cryptoquote/internal/service"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerTools(server *mcp.Server, market MarketReader) {
	mcp.AddTool(server, &mcp.Tool{
		Name: service.ToolGetCurrentPrice,
		Description: "Get the current real-time price of a cryptocurrency pair. " +
			"Results are cached for 60 seconds. Example symbols: BTC/USDT, ETH/USDT, SOL/USDT",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in currentPriceInput) (*mcp.CallToolResult, currentPriceOutput, error) {
		quote, toolErr := market.GetCurrentPrice(ctx, in.Symbol)
		if toolErr != nil {
			out := currentPriceOutput{Error: toolErr}
			return toolResult(out, true), out, nil
		}
		out := currentPriceOutput{Quote: &quote}
		return toolResult(out, false), out, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name: service.ToolGetHistoricalPrice,
		Description: "Get historical OHLCV (open, high, low, close, volume) candles for a cryptocurrency pair, " +
			"oldest first. Returns the most recent candles. Example symbols: BTC/USDT, ETH/USDT, SOL/USDT",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in historicalPriceInput) (*mcp.CallToolResult, historicalPriceOutput, error) {
		series, toolErr := market.GetHistoricalPrice(ctx, in.Symbol, in.Timeframe, in.Limit)
		if toolErr != nil {
			out := historicalPriceOutput{Error: toolErr}
			return toolResult(out, true), out, nil
		}
		out := newHistoricalOutput(series)
		return toolResult(out, false), out, nil
	})
}

// toolResult mirrors the structured output as a JSON text block for clients
// that only read content.
func toolResult(out any, isError bool) *mcp.CallToolResult {
	body, err := json.Marshal(out)
	if err != nil {
		fallback := &domain.ToolError{Kind: domain.ErrorKindUnknown, Message: "failed to encode tool result"}
		body, _ = json.Marshal(map[string]any{"error": fallback})
		isError = true
	}
	return &mcp.CallToolResult{
		IsError: isError,
		Content: []mcp.Content{&mcp.TextContent{Text: string(body)}},
	}
}
