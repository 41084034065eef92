package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"cryptoquote/internal/cache"
	"cryptoquote/internal/domain"
	"cryptoquote/internal/exchange"
	"cryptoquote/internal/service"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
)

func testServer() (*sdkmcp.Server, *exchange.StaticAdapter) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	adapter := exchange.NewStaticAdapter(clock)
	adapter.SetQuote(domain.Quote{Symbol: "BTC/USDT", LastPrice: 50000, Bid: 49999, Ask: 50001, Volume24h: 1000})
	adapter.SetBars("BTC/USDT", []domain.OHLCVBar{
		{OpenTime: now.Add(-2 * time.Hour), Open: 1, High: 2, Low: 1, Close: 2, Volume: 3},
		{OpenTime: now.Add(-time.Hour), Open: 2, High: 3, Low: 2, Close: 3, Volume: 4},
	})

	market := service.NewMarketService(nil, adapter, cache.NewQuoteStore(time.Minute, clock), zerolog.Nop(), nil)
	srv := NewServer(nil, market, ServerConfig{RequestTimeout: time.Second, QuoteCacheTTL: time.Minute})
	return srv, adapter
}

func connectInMemory(ctx context.Context, srv *sdkmcp.Server) (*sdkmcp.ClientSession, context.CancelFunc, error) {
	clientTransport, serverTransport := sdkmcp.NewInMemoryTransports()
	runCtx, cancel := context.WithCancel(ctx)
	go func() { _ = srv.Run(runCtx, serverTransport) }()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "mcp-test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	return session, cancel, nil
}

type authRoundTripper struct {
	token string
	base  http.RoundTripper
}

func (t *authRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if t.token != "" {
		clone.Header.Set("Authorization", "Bearer "+t.token)
	}
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}

func decodeResourceJSON(result *sdkmcp.ReadResourceResult, out any) error {
	if len(result.Contents) == 0 {
		return nil
	}
	return json.Unmarshal([]byte(result.Contents[0].Text), out)
}

func decodeToolJSON(result *sdkmcp.CallToolResult, out any) error {
	if len(result.Content) == 0 {
		return fmt.Errorf("tool result has no content")
	}
	text, ok := result.Content[0].(*sdkmcp.TextContent)
	if !ok {
		return fmt.Errorf("unexpected content type %T", result.Content[0])
	}
	return json.Unmarshal([]byte(text.Text), out)
}
