package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"cryptoquote/internal/cache"
	"cryptoquote/internal/config"
	"cryptoquote/internal/exchange"
	"cryptoquote/internal/handler"
	"cryptoquote/internal/metrics"
	"cryptoquote/internal/service"
	"cryptoquote/pkg/logger"
	"cryptoquote/pkg/tracing"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "cryptoquote/docs"
)

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	newLoggerFunc          = logger.New
	initTracerFunc         = tracing.InitTracer
	newAdapterFunc         = exchange.New
	newMarketServiceFunc   = service.NewMarketService
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = ossignal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           cryptoquote API
// @version         1.0
// @description     Current quotes and OHLCV candles for crypto trading pairs.

// @host      localhost:8080
// @BasePath  /
func main() {
	_ = loadEnvFunc()

	cfg := loadConfigFunc()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

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

	collector := metrics.New()
	quotes := cache.NewQuoteStore(time.Duration(cfg.QuoteCacheTTLSecs)*time.Second, nil)
	market := newMarketServiceFunc(tracer, adapter, quotes, logr, collector)

	h := newHandlerFunc(tracer, market, collector.Handler())

	r := newRouterFunc()
	r.Use(cors.Default())
	r.Use(otelgin.Middleware("cryptoquote"))
	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			logr.Fatal().Err(err).Msg("listen")
		}
	}()
	logr.Info().Str("addr", srv.Addr).Str("exchange", cfg.Exchange).Msg("http server started")

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	logr.Info().Msg("shutting down server")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		logr.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logr.Info().Msg("server exiting")
}
