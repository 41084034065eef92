package handler

import (
	"context"
	"net/http"

	"cryptoquote/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// MarketReader is satisfied by *service.MarketService.
type MarketReader interface {
	GetCurrentPrice(ctx context.Context, symbol string) (domain.Quote, *domain.ToolError)
	GetHistoricalPrice(ctx context.Context, symbol, timeframe string, limit *int) (domain.OHLCVSeries, *domain.ToolError)
}

type Handler struct {
	tracer  trace.Tracer
	market  MarketReader
	metrics http.Handler
}

// New builds the REST handler. metrics may be nil, in which case /metrics
// is not registered.
func New(tracer trace.Tracer, market MarketReader, metrics http.Handler) *Handler {
	if tracer == nil {
		tracer = trace.NewNoopTracerProvider().Tracer("handler")
	}
	return &Handler{
		tracer:  tracer,
		market:  market,
		metrics: metrics,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/api/price", h.GetPrice)
	r.GET("/api/ohlcv", h.GetOHLCV)
	if h.metrics != nil {
		r.GET("/metrics", gin.WrapH(h.metrics))
	}
}
