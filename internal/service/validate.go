package service

import (
	"fmt"
	"regexp"
	"strings"

	"cryptoquote/internal/domain"
)

const (
	MinLimit         = 1
	MaxLimit         = 500
	DefaultLimit     = 10
	DefaultTimeframe = domain.Timeframe1h
)

var symbolPattern = regexp.MustCompile(`^[A-Z0-9]{1,20}/[A-Z0-9]{1,20}$`)

// ValidationError reports a tool argument that cannot be used as given.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

func ValidateQuoteRequest(symbol string) (domain.Symbol, error) {
	return normalizeSymbol(symbol)
}

// ValidateHistoricalRequest normalizes the OHLCV arguments. An omitted
// timeframe means 1h and an omitted limit means 10; a limit outside
// [MinLimit, MaxLimit] is clamped to the nearest bound instead of rejected.
func ValidateHistoricalRequest(symbol, timeframe string, limit *int) (domain.Symbol, domain.Timeframe, int, error) {
	sym, err := normalizeSymbol(symbol)
	if err != nil {
		return "", "", 0, err
	}
	tf, err := normalizeTimeframe(timeframe)
	if err != nil {
		return "", "", 0, err
	}
	return sym, tf, clampLimit(limit), nil
}

func normalizeSymbol(raw string) (domain.Symbol, error) {
	symbol := strings.ToUpper(strings.TrimSpace(raw))
	if symbol == "" {
		return "", &ValidationError{Field: "symbol", Reason: "symbol is required"}
	}
	if !symbolPattern.MatchString(symbol) {
		return "", &ValidationError{
			Field:  "symbol",
			Reason: fmt.Sprintf("invalid symbol format %q, use BASE/QUOTE such as BTC/USDT", strings.TrimSpace(raw)),
		}
	}
	return domain.Symbol(symbol), nil
}

func normalizeTimeframe(raw string) (domain.Timeframe, error) {
	tf := domain.Timeframe(strings.TrimSpace(raw))
	if tf == "" {
		return DefaultTimeframe, nil
	}
	if !tf.IsValid() {
		return "", &ValidationError{
			Field:  "timeframe",
			Reason: fmt.Sprintf("unsupported timeframe %q, use one of %s", string(tf), timeframeList()),
		}
	}
	return tf, nil
}

func clampLimit(limit *int) int {
	if limit == nil {
		return DefaultLimit
	}
	switch {
	case *limit < MinLimit:
		return MinLimit
	case *limit > MaxLimit:
		return MaxLimit
	default:
		return *limit
	}
}

func timeframeList() string {
	parts := make([]string, len(domain.SupportedTimeframes))
	for i, tf := range domain.SupportedTimeframes {
		parts[i] = string(tf)
	}
	return strings.Join(parts, ", ")
}
