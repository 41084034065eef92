package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"cryptoquote/internal/service"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerResources(server *mcp.Server, market MarketReader, quoteTTL time.Duration) {
	server.AddResource(&mcp.Resource{
		URI:         "market://supported-timeframes",
		Name:        "supported-timeframes",
		Description: "Candle timeframes accepted by get_historical_price",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		_ = ctx
		return jsonResource(req.Params.URI, market.SupportedTimeframes())
	})

	server.AddResource(&mcp.Resource{
		URI:         "market://limits",
		Name:        "limits",
		Description: "Candle limit bounds, defaults and quote cache TTL",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		_ = ctx
		return jsonResource(req.Params.URI, limitsOutput{
			MinLimit:             service.MinLimit,
			MaxLimit:             service.MaxLimit,
			DefaultLimit:         service.DefaultLimit,
			DefaultTimeframe:     string(service.DefaultTimeframe),
			QuoteCacheTTLSeconds: int(quoteTTL / time.Second),
		})
	})

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "quotes://{base}/{quote}",
		Name:        "quote-by-pair",
		Description: "Current quote for a trading pair, e.g. quotes://BTC/USDT",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		symbol, err := pairFromURI(req.Params.URI)
		if err != nil {
			return nil, err
		}
		quote, toolErr := market.GetCurrentPrice(ctx, symbol)
		if toolErr != nil {
			return nil, toolErr
		}
		return jsonResource(req.Params.URI, currentPriceOutput{Quote: &quote})
	})
}

// pairFromURI turns quotes://BASE/QUOTE into BASE/QUOTE.
func pairFromURI(uri string) (string, error) {
	parsed, err := url.Parse(uri)
	if err != nil || parsed.Scheme != "quotes" {
		return "", mcp.ResourceNotFoundError(uri)
	}
	base := strings.TrimSpace(parsed.Host)
	quote := strings.Trim(strings.TrimSpace(parsed.Path), "/")
	if base == "" || quote == "" || strings.Contains(quote, "/") {
		return "", mcp.ResourceNotFoundError(uri)
	}
	return fmt.Sprintf("%s/%s", base, quote), nil
}

func jsonResource(uri string, payload any) (*mcp.ReadResourceResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(body),
		}},
	}, nil
}
