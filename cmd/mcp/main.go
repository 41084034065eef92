package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	ossignal "os/signal"
	"strings"
	"syscall"
	"time"

	"cryptoquote/internal/cache"
	"cryptoquote/internal/config"
	"cryptoquote/internal/exchange"
	mcpserver "cryptoquote/internal/mcp"
	"cryptoquote/internal/metrics"
	"cryptoquote/internal/service"
	"cryptoquote/pkg/logger"
	"cryptoquote/pkg/tracing"

	"github.com/joho/godotenv"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
)

const defaultMCPHTTPMaxBodyBytes int64 = 1 << 20 // 1MiB

var (
	loadEnvFunc          = godotenv.Load
	loadConfigFunc       = config.Load
	newLoggerFunc        = logger.New
	initTracerFunc       = tracing.InitTracer
	newAdapterFunc       = exchange.New
	newMarketServiceFunc = service.NewMarketService
	newMCPServerFunc     = mcpserver.NewServer
	newMCPHandlerFunc    = mcpserver.NewHTTPTransportHandler
	newRedisClientFunc   = cache.NewRedisClient
	runStdioFunc         = func(ctx context.Context, server *sdkmcp.Server) error {
		return server.Run(ctx, &sdkmcp.StdioTransport{})
	}
	startHTTPServerFunc  = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFn = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
	setupSignalNotify    = ossignal.Notify
	waitForSignalFunc    = func(quit <-chan os.Signal) { <-quit }
)

func main() {
	_ = loadEnvFunc()
	cfg := loadConfigFunc()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	// stdout carries the stdio transport, so the logger writes to stderr.
	logr, err := newLoggerFunc(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		logr.Fatal().Err(err).Msg("failed to initialize tracer")
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			logr.Error().Err(err).Msg("error shutting down tracer provider")
		}
	}()

	adapter, err := newAdapterFunc(tracer, cfg.Exchange, exchange.BinanceConfig{
		APIKey:    cfg.ExchangeAPIKey,
		APISecret: cfg.ExchangeAPISecret,
		BaseURL:   cfg.ExchangeBaseURL,
		Timeout:   time.Duration(cfg.ExchangeTimeoutSec) * time.Second,
	})
	if err != nil {
		logr.Fatal().Err(err).Msg("failed to build exchange adapter")
	}

	quoteTTL := time.Duration(cfg.QuoteCacheTTLSecs) * time.Second
	collector := metrics.New()
	market := newMarketServiceFunc(tracer, adapter, cache.NewQuoteStore(quoteTTL, nil), logr, collector)

	mcpSrv := newMCPServerFunc(tracer, market, mcpserver.ServerConfig{
		RequestTimeout: time.Duration(cfg.MCPRequestTimeoutSecs) * time.Second,
		QuoteCacheTTL:  quoteTTL,
	})

	transport := strings.ToLower(strings.TrimSpace(cfg.MCPTransport))
	switch transport {
	case "", "stdio":
		logr.Info().Str("exchange", cfg.Exchange).Msg("mcp stdio server starting")
		if err := runStdioFunc(ctx, mcpSrv); err != nil {
			logr.Fatal().Err(err).Msg("mcp stdio server failed")
		}
	case "http":
		if err := runHTTPMode(ctx, cancel, cfg, mcpSrv, collector, logr); err != nil {
			logr.Fatal().Err(err).Msg("mcp http server failed")
		}
	default:
		logr.Fatal().Str("transport", cfg.MCPTransport).Msg("unsupported MCP_TRANSPORT")
	}
}

func runHTTPMode(
	ctx context.Context,
	cancel context.CancelFunc,
	cfg *config.Config,
	mcpSrv *sdkmcp.Server,
	collector *metrics.Collector,
	logr zerolog.Logger,
) error {
	if !cfg.MCPHTTPEnabled {
		return fmt.Errorf("MCP_HTTP_ENABLED must be true when MCP_TRANSPORT=http")
	}
	if strings.TrimSpace(cfg.MCPAuthToken) == "" {
		return fmt.Errorf("MCP_AUTH_TOKEN is required when MCP_TRANSPORT=http")
	}

	handlerCfg := mcpserver.HTTPHandlerConfig{
		AuthToken:       cfg.MCPAuthToken,
		RateLimitPerMin: cfg.MCPRateLimitPerMin,
		MaxBodyBytes:    defaultMCPHTTPMaxBodyBytes,
		Logger:          logr,
	}
	if cfg.RedisURL != "" {
		client, err := newRedisClientFunc(ctx, cfg.RedisURL)
		if err != nil {
			logr.Warn().Err(err).Msg("redis unavailable, using in-process rate limiting")
		} else {
			defer client.Close()
			handlerCfg.Limiter = cache.NewWindowLimiter(client, cfg.MCPRateLimitPerMin, time.Minute)
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	mux.Handle("/", newMCPHandlerFunc(mcpSrv, handlerCfg))

	addr := net.JoinHostPort(cfg.MCPHTTPBind, fmt.Sprintf("%d", cfg.MCPHTTPPort))
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			logr.Error().Err(err).Msg("mcp http server failed")
		}
	}()
	logr.Info().Str("addr", addr).Msg("mcp http server started")

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFn(srv, shutdownCtx); err != nil {
		return fmt.Errorf("mcp server forced to shutdown: %w", err)
	}
	return nil
}
