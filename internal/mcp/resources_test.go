package mcp

import (
	"context"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func TestResourcesStaticAndTemplated(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	srv, adapter := testServer()
	session, shutdown, err := connectInMemory(ctx, srv)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer shutdown()
	defer session.Close()

	list, err := session.ListResources(ctx, &sdkmcp.ListResourcesParams{})
	if err != nil {
		t.Fatalf("list resources failed: %v", err)
	}
	if len(list.Resources) != 2 {
		t.Fatalf("expected 2 static resources, got %d", len(list.Resources))
	}

	templates, err := session.ListResourceTemplates(ctx, &sdkmcp.ListResourceTemplatesParams{})
	if err != nil {
		t.Fatalf("list templates failed: %v", err)
	}
	if len(templates.ResourceTemplates) != 1 {
		t.Fatalf("expected 1 resource template, got %d", len(templates.ResourceTemplates))
	}

	readRes, err := session.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "market://supported-timeframes"})
	if err != nil {
		t.Fatalf("read timeframes failed: %v", err)
	}
	var timeframes []string
	if err := decodeResourceJSON(readRes, &timeframes); err != nil {
		t.Fatalf("decode timeframes failed: %v", err)
	}
	if len(timeframes) != 15 || timeframes[0] != "1m" || timeframes[14] != "1M" {
		t.Fatalf("unexpected timeframes: %v", timeframes)
	}

	readRes, err = session.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "market://limits"})
	if err != nil {
		t.Fatalf("read limits failed: %v", err)
	}
	var limits limitsOutput
	if err := decodeResourceJSON(readRes, &limits); err != nil {
		t.Fatalf("decode limits failed: %v", err)
	}
	if limits.MinLimit != 1 || limits.MaxLimit != 500 || limits.DefaultLimit != 10 || limits.DefaultTimeframe != "1h" || limits.QuoteCacheTTLSeconds != 60 {
		t.Fatalf("unexpected limits: %+v", limits)
	}

	readRes, err = session.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "quotes://BTC/USDT"})
	if err != nil {
		t.Fatalf("read quote resource failed: %v", err)
	}
	var out currentPriceOutput
	if err := decodeResourceJSON(readRes, &out); err != nil {
		t.Fatalf("decode quote failed: %v", err)
	}
	if out.Quote == nil || out.Quote.LastPrice != 50000 {
		t.Fatalf("unexpected quote payload: %+v", out)
	}
	if adapter.QuoteCalls() != 1 {
		t.Fatalf("expected one exchange fetch, got %d", adapter.QuoteCalls())
	}
}

func TestQuoteResourceUnknownPair(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	srv, _ := testServer()
	session, shutdown, err := connectInMemory(ctx, srv)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer shutdown()
	defer session.Close()

	if _, err := session.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "quotes://ZZZ/USDT"}); err == nil {
		t.Fatal("expected error for unknown pair")
	}
	if _, err := session.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "signal-image://2"}); err == nil {
		t.Fatal("expected resource not found error for unknown scheme")
	}
}
