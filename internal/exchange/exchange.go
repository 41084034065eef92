package exchange

import (
	"context"
	"errors"

	"cryptoquote/internal/domain"
)

// Adapter is the capability set the market service needs from a venue.
// Implementations perform a single attempt per call and never retry.
type Adapter interface {
	FetchQuote(ctx context.Context, symbol domain.Symbol) (domain.Quote, error)
	FetchOHLCV(ctx context.Context, symbol domain.Symbol, timeframe domain.Timeframe, limit int) ([]domain.OHLCVBar, error)
}

var (
	ErrUnknownSymbol = errors.New("unknown symbol")
	ErrRateLimited   = errors.New("rate limited")
	ErrNetwork       = errors.New("network failure")
)

// Error records which adapter operation failed. Kind is one of the sentinel
// errors above, or nil when the failure could not be categorized.
type Error struct {
	Op     string
	Symbol domain.Symbol
	Kind   error
	Err    error
}

func (e *Error) Error() string {
	msg := e.Op + " " + string(e.Symbol)
	if e.Kind != nil {
		msg += ": " + e.Kind.Error()
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}
