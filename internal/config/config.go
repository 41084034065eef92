package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Exchange           string `validate:"oneof=binance static"`
	ExchangeAPIKey     string
	ExchangeAPISecret  string
	ExchangeBaseURL    string `validate:"omitempty,url"`
	ExchangeTimeoutSec int    `validate:"gt=0"`

	QuoteCacheTTLSecs int `validate:"gt=0"`

	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=json console"`

	RedisURL string
	HTTPPort int `validate:"gt=0,lte=65535"`

	MCPTransport          string `validate:"oneof=stdio http"`
	MCPHTTPEnabled        bool
	MCPHTTPBind           string `validate:"required"`
	MCPHTTPPort           int    `validate:"gt=0,lte=65535"`
	MCPAuthToken          string
	MCPRequestTimeoutSecs int `validate:"gt=0"`
	MCPRateLimitPerMin    int `validate:"gt=0"`
}

var validate = validator.New()

func Load() *Config {
	cfg := &Config{
		ExchangeAPIKey:    os.Getenv("EXCHANGE_API_KEY"),
		ExchangeAPISecret: os.Getenv("EXCHANGE_API_SECRET"),
		ExchangeBaseURL:   strings.TrimSpace(os.Getenv("EXCHANGE_BASE_URL")),
		RedisURL:          strings.TrimSpace(os.Getenv("REDIS_URL")),
		MCPAuthToken:      os.Getenv("MCP_AUTH_TOKEN"),
	}

	cfg.Exchange = strings.ToLower(strings.TrimSpace(os.Getenv("EXCHANGE")))
	if cfg.Exchange == "" {
		cfg.Exchange = "binance"
	}
	if cfg.Exchange != "binance" && cfg.Exchange != "static" {
		log.Printf("Warning: unsupported EXCHANGE=%q, defaulting to binance", cfg.Exchange)
		cfg.Exchange = "binance"
	}

	cfg.ExchangeTimeoutSec = positiveInt("EXCHANGE_TIMEOUT_SECS", 10)
	cfg.QuoteCacheTTLSecs = positiveInt("QUOTE_CACHE_TTL_SECS", 60)

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(os.Getenv("LOG_FORMAT")))
	if cfg.LogFormat == "" {
		cfg.LogFormat = "json"
	}

	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, MCP HTTP rate limiting stays in-process")
	}

	cfg.HTTPPort = positiveInt("HTTP_PORT", 8080)

	cfg.MCPTransport = strings.ToLower(strings.TrimSpace(os.Getenv("MCP_TRANSPORT")))
	if cfg.MCPTransport == "" {
		cfg.MCPTransport = "stdio"
	}
	if cfg.MCPTransport != "stdio" && cfg.MCPTransport != "http" {
		log.Printf("Warning: unsupported MCP_TRANSPORT=%q, defaulting to stdio", cfg.MCPTransport)
		cfg.MCPTransport = "stdio"
	}

	cfg.MCPHTTPEnabled = strings.EqualFold(strings.TrimSpace(os.Getenv("MCP_HTTP_ENABLED")), "true")

	cfg.MCPHTTPBind = strings.TrimSpace(os.Getenv("MCP_HTTP_BIND"))
	if cfg.MCPHTTPBind == "" {
		cfg.MCPHTTPBind = "127.0.0.1"
	}

	cfg.MCPHTTPPort = positiveInt("MCP_HTTP_PORT", 8090)
	cfg.MCPRequestTimeoutSecs = positiveInt("MCP_REQUEST_TIMEOUT_SECS", 15)
	cfg.MCPRateLimitPerMin = positiveInt("MCP_RATE_LIMIT_PER_MIN", 60)

	return cfg
}

// Validate checks value ranges that Load cannot repair with a default.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func positiveInt(key string, fallback int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
