package handler

import (
	"net/http"
	"strconv"
	"strings"

	"cryptoquote/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Health godoc
// @Summary      Liveness probe
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetPrice godoc
// @Summary      Get the current quote for a trading pair
// @Description  Served from a 60 second cache when fresh
// @Tags         market
// @Produce      json
// @Param        symbol  query  string  true  "Trading pair (e.g., BTC/USDT)"
// @Success      200  {object}  domain.Quote
// @Failure      400  {object}  map[string]interface{}
// @Failure      429  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /api/price [get]
func (h *Handler) GetPrice(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-price")
	defer span.End()

	symbol := c.Query("symbol")
	span.SetAttributes(attribute.String("symbol", symbol))

	quote, toolErr := h.market.GetCurrentPrice(ctx, symbol)
	if toolErr != nil {
		span.SetStatus(codes.Error, string(toolErr.Kind))
		writeToolError(c, toolErr)
		return
	}
	c.JSON(http.StatusOK, quote)
}

// GetOHLCV godoc
// @Summary      Get historical OHLCV candles
// @Description  Returns up to limit candles, oldest first. Limits outside 1-500 are clamped.
// @Tags         market
// @Produce      json
// @Param        symbol     query  string  true   "Trading pair (e.g., BTC/USDT)"
// @Param        timeframe  query  string  false  "Candle timeframe"  default(1h)
// @Param        limit      query  int     false  "Number of candles"  default(10)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}
// @Failure      429  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /api/ohlcv [get]
func (h *Handler) GetOHLCV(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-ohlcv")
	defer span.End()

	symbol := c.Query("symbol")
	timeframe := c.Query("timeframe")
	span.SetAttributes(attribute.String("symbol", symbol), attribute.String("timeframe", timeframe))

	var limit *int
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeToolError(c, &domain.ToolError{
				Kind:    domain.ErrorKindInvalidParameter,
				Message: "limit must be an integer",
			})
			return
		}
		limit = &n
	}

	series, toolErr := h.market.GetHistoricalPrice(ctx, symbol, timeframe, limit)
	if toolErr != nil {
		span.SetStatus(codes.Error, string(toolErr.Kind))
		writeToolError(c, toolErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"symbol":    series.Symbol,
		"timeframe": series.Timeframe,
		"count":     len(series.Bars),
		"candles":   series.Bars,
	})
}

func writeToolError(c *gin.Context, toolErr *domain.ToolError) {
	c.JSON(statusForKind(toolErr.Kind), gin.H{"error": toolErr})
}

func statusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.ErrorKindInvalidParameter, domain.ErrorKindInvalidSymbol:
		return http.StatusBadRequest
	case domain.ErrorKindRateLimited:
		return http.StatusTooManyRequests
	case domain.ErrorKindNetwork:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
