package config

import (
	"time"
)

type Config struct {
	Server         ServerConfig
	Logging        LoggingConfig
	Tracking       TrackingConfig
	CircuitBreaker CircuitBreakerConfig
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
	// Timeouts are plain second counts, not duration strings.
	ReadTimeoutSeconds  int `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds int `mapstructure:"write_timeout_seconds"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TrackingConfig struct {
	// StoreName is reported as the purchase affiliation when the order
	// itself carries no store.
	StoreName string `mapstructure:"store_name"`

	DefaultListName string `mapstructure:"default_list_name"`

	// CheckoutSteps maps a 1-based checkout step index to the analytics
	// event name emitted for that step (e.g. 1 -> begin_checkout,
	// 2 -> add_shipping_info). Steps without an entry are not tracked.
	// Populated by Load: YAML map keys reach viper as strings, so the
	// int-keyed form is parsed explicitly rather than via mapstructure.
	CheckoutSteps map[int]string `mapstructure:"-"`

	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	Enabled         bool    `mapstructure:"enabled"`
	RPS             float64 `mapstructure:"rps"`
	Burst           int     `mapstructure:"burst"`
	CleanupInterval int     `mapstructure:"cleanup_interval"`
	MaxAge          int     `mapstructure:"max_age"`
}

type CircuitBreakerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
	MinRequests  uint32        `mapstructure:"min_requests"`
}
