package domain

import "time"

// Symbol is a normalized trading pair such as "BTC/USDT".
type Symbol string

func (s Symbol) String() string { return string(s) }

type Timeframe string

const (
	Timeframe1m  Timeframe = "1m"
	Timeframe3m  Timeframe = "3m"
	Timeframe5m  Timeframe = "5m"
	Timeframe15m Timeframe = "15m"
	Timeframe30m Timeframe = "30m"
	Timeframe1h  Timeframe = "1h"
	Timeframe2h  Timeframe = "2h"
	Timeframe4h  Timeframe = "4h"
	Timeframe6h  Timeframe = "6h"
	Timeframe8h  Timeframe = "8h"
	Timeframe12h Timeframe = "12h"
	Timeframe1d  Timeframe = "1d"
	Timeframe3d  Timeframe = "3d"
	Timeframe1w  Timeframe = "1w"
	Timeframe1M  Timeframe = "1M"
)

// SupportedTimeframes is ordered from the shortest bucket to the longest.
var SupportedTimeframes = []Timeframe{
	Timeframe1m, Timeframe3m, Timeframe5m, Timeframe15m, Timeframe30m,
	Timeframe1h, Timeframe2h, Timeframe4h, Timeframe6h, Timeframe8h, Timeframe12h,
	Timeframe1d, Timeframe3d, Timeframe1w, Timeframe1M,
}

func (t Timeframe) IsValid() bool {
	for _, supported := range SupportedTimeframes {
		if t == supported {
			return true
		}
	}
	return false
}

type Quote struct {
	Symbol           Symbol    `json:"symbol"`
	LastPrice        float64   `json:"last_price"`
	Bid              float64   `json:"bid"`
	Ask              float64   `json:"ask"`
	High24h          float64   `json:"high_24h"`
	Low24h           float64   `json:"low_24h"`
	Volume24h        float64   `json:"volume_24h"`
	Change24h        float64   `json:"change_24h"`
	ChangePercent24h float64   `json:"change_percent_24h"`
	FetchedAt        time.Time `json:"fetched_at"`
}

type OHLCVBar struct {
	OpenTime time.Time `json:"open_time"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   float64   `json:"volume"`
}

type OHLCVSeries struct {
	Symbol    Symbol     `json:"symbol"`
	Timeframe Timeframe  `json:"timeframe"`
	Bars      []OHLCVBar `json:"candles"`
}

type ErrorKind string

const (
	ErrorKindInvalidSymbol    ErrorKind = "InvalidSymbol"
	ErrorKindInvalidParameter ErrorKind = "InvalidParameter"
	ErrorKindNetwork          ErrorKind = "NetworkError"
	ErrorKindRateLimited      ErrorKind = "RateLimited"
	ErrorKindUnknown          ErrorKind = "Unknown"
)

// ToolError is the only failure shape that leaves a tool invocation.
type ToolError struct {
	Kind      ErrorKind `json:"kind"`
	Message   string    `json:"message"`
	Retryable bool      `json:"retryable"`
}

func (e *ToolError) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// Duration is the bucket width of the timeframe; 1M is approximated as 30 days.
func (t Timeframe) Duration() time.Duration {
	switch t {
	case Timeframe1m:
		return time.Minute
	case Timeframe3m:
		return 3 * time.Minute
	case Timeframe5m:
		return 5 * time.Minute
	case Timeframe15m:
		return 15 * time.Minute
	case Timeframe30m:
		return 30 * time.Minute
	case Timeframe1h:
		return time.Hour
	case Timeframe2h:
		return 2 * time.Hour
	case Timeframe4h:
		return 4 * time.Hour
	case Timeframe6h:
		return 6 * time.Hour
	case Timeframe8h:
		return 8 * time.Hour
	case Timeframe12h:
		return 12 * time.Hour
	case Timeframe1d:
		return 24 * time.Hour
	case Timeframe3d:
		return 72 * time.Hour
	case Timeframe1w:
		return 7 * 24 * time.Hour
	case Timeframe1M:
		return 30 * 24 * time.Hour
	default:
		return 0
	}
}
