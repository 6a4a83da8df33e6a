package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	Logging     LogConfig
	RateLimit   RateLimitConfig
	Autofill    AutofillConfig
	PlusAddress PlusAddressConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// AutofillConfig holds the engine's feature switches and tuned constants.
type AutofillConfig struct {
	ProfileEnabled  bool `envconfig:"AUTOFILL_PROFILE_ENABLED" default:"true"`
	PaymentsEnabled bool `envconfig:"AUTOFILL_PAYMENTS_ENABLED" default:"true"`
	Ablation        bool `envconfig:"AUTOFILL_ABLATION" default:"false"` // disables every suggestion and fill
	SkipPrefilled   bool `envconfig:"AUTOFILL_SKIP_PREFILLED" default:"true"`
	UndoEnabled     bool `envconfig:"AUTOFILL_UNDO_ENABLED" default:"true"`
	FillPhone       bool `envconfig:"AUTOFILL_FILL_PHONE" default:"true"`
	HistoryEntries  int  `envconfig:"AUTOFILL_HISTORY_ENTRIES" default:"64"`

	RefillLimit       time.Duration `envconfig:"AUTOFILL_REFILL_LIMIT" default:"1s"`
	RefillDelay       time.Duration `envconfig:"AUTOFILL_REFILL_DELAY" default:"200ms"`
	DisusedCardWindow time.Duration `envconfig:"AUTOFILL_DISUSED_CARD_WINDOW" default:"4320h"`
	ObfuscationLength int           `envconfig:"AUTOFILL_OBFUSCATION_LENGTH" default:"4"`
	NameBeforeDigits  bool          `envconfig:"AUTOFILL_NAME_BEFORE_DIGITS" default:"true"`
	StoreFile         string        `envconfig:"AUTOFILL_STORE_FILE" default:""`
	Locale            string        `envconfig:"AUTOFILL_LOCALE" default:"en-US"`
}

// PlusAddressConfig holds the plus-address delegate endpoint.
type PlusAddressConfig struct {
	URL     string        `envconfig:"PLUS_ADDRESS_URL" default:""`
	Timeout time.Duration `envconfig:"PLUS_ADDRESS_TIMEOUT" default:"500ms"`
}

// Enabled reports whether a delegate endpoint is configured.
func (c PlusAddressConfig) Enabled() bool {
	return c.URL != ""
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Autofill: DefaultAutofill(),
		PlusAddress: PlusAddressConfig{
			Timeout: 500 * time.Millisecond,
		},
	}
}

// DefaultAutofill returns the engine defaults.
func DefaultAutofill() AutofillConfig {
	return AutofillConfig{
		ProfileEnabled:    true,
		PaymentsEnabled:   true,
		SkipPrefilled:     true,
		UndoEnabled:       true,
		FillPhone:         true,
		HistoryEntries:    64,
		RefillLimit:       time.Second,
		RefillDelay:       200 * time.Millisecond,
		DisusedCardWindow: 180 * 24 * time.Hour,
		ObfuscationLength: 4,
		NameBeforeDigits:  true,
		Locale:            "en-US",
	}
}
