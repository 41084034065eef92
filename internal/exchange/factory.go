package exchange

import (
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

const (
	NameBinance = "binance"
	NameStatic  = "static"
)

// New selects an adapter by name. "static" serves the demo pairs from memory.
func New(tracer trace.Tracer, name string, cfg BinanceConfig) (Adapter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameBinance:
		return NewBinanceAdapter(tracer, cfg), nil
	case NameStatic:
		return NewDemoAdapter(), nil
	default:
		return nil, fmt.Errorf("unsupported exchange %q", name)
	}
}
