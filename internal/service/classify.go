package service

import (
	"context"
	"errors"
	"fmt"

	"cryptoquote/internal/domain"
	"cryptoquote/internal/exchange"
)

const (
	msgNetwork     = "exchange is unreachable, try again later"
	msgRateLimited = "exchange rate limit reached, try again later"
	msgUnknown     = "unexpected error while fetching market data"
)

// Classify maps any failure to the closed ToolError taxonomy. Messages are
// fixed per kind so that library error text never reaches the caller.
func Classify(err error) *domain.ToolError {
	if err == nil {
		return nil
	}

	var toolErr *domain.ToolError
	if errors.As(err, &toolErr) {
		copied := *toolErr
		return &copied
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return &domain.ToolError{Kind: domain.ErrorKindInvalidParameter, Message: validationErr.Reason}
	}

	switch {
	case errors.Is(err, exchange.ErrUnknownSymbol):
		return &domain.ToolError{Kind: domain.ErrorKindInvalidSymbol, Message: unknownSymbolMessage(err)}
	case errors.Is(err, exchange.ErrRateLimited):
		return &domain.ToolError{Kind: domain.ErrorKindRateLimited, Message: msgRateLimited, Retryable: true}
	case errors.Is(err, exchange.ErrNetwork), errors.Is(err, context.DeadlineExceeded):
		return &domain.ToolError{Kind: domain.ErrorKindNetwork, Message: msgNetwork, Retryable: true}
	default:
		return &domain.ToolError{Kind: domain.ErrorKindUnknown, Message: msgUnknown}
	}
}

func unknownSymbolMessage(err error) string {
	var exErr *exchange.Error
	if errors.As(err, &exErr) && exErr.Symbol != "" {
		return fmt.Sprintf("symbol %q is not listed on the exchange, use a pair like BTC/USDT or ETH/USDT", string(exErr.Symbol))
	}
	return "symbol is not listed on the exchange, use a pair like BTC/USDT or ETH/USDT"
}
