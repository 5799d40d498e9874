package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all application configuration
type Config struct {
	Symbol   string `yaml:"symbol" validate:"required"`
	Interval string `yaml:"interval" validate:"required"`
	Days     int    `yaml:"days" validate:"min=1"`
	Source   string `yaml:"source" validate:"oneof=binance twelvedata postgres"`

	BBWindow      int     `yaml:"bb_window" validate:"min=2"`
	BBDeviation   float64 `yaml:"bb_deviation" validate:"gt=0"`
	TakeProfitPct float64 `yaml:"take_profit_pct" validate:"gte=0"`

	DisplayTimezone string `yaml:"display_timezone" validate:"required"`
	LogLevel        string `yaml:"log_level" validate:"oneof=trace debug info warn error"`
	RequestTimeout  int    `yaml:"request_timeout" validate:"min=1"` // seconds
	RequestsPerSec  int    `yaml:"requests_per_sec" validate:"min=1"`
	MaxRetries      int    `yaml:"max_retries" validate:"min=0"`

	BinanceBaseURL string `yaml:"binance_base_url" validate:"omitempty,url"`
	TwelveAPIKey   string `yaml:"twelve_api_key" validate:"required_if=Source twelvedata"`

	DBHost     string `yaml:"db_host" validate:"required_if=Source postgres"`
	DBPort     string `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name"`
	DBSSLMode  string `yaml:"db_sslmode" validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
	DBTable    string `yaml:"db_table"`

	TelegramBotToken string `yaml:"telegram_bot_token"`
	TelegramChatID   int64  `yaml:"telegram_chat_id" validate:"required_with=TelegramBotToken"`
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		Symbol:          "BTCUSDT",
		Interval:        "5m",
		Days:            7,
		Source:          "binance",
		BBWindow:        20,
		BBDeviation:     3,
		TakeProfitPct:   0.5,
		DisplayTimezone: "America/Bogota",
		LogLevel:        "info",
		RequestTimeout:  30,
		RequestsPerSec:  5,
		MaxRetries:      3,
		DBHost:          "localhost",
		DBPort:          "5432",
		DBUser:          "postgres",
		DBName:          "breakout",
		DBSSLMode:       "disable",
		DBTable:         "candles",
	}
}

// Load initializes configuration from defaults, an optional YAML file named by
// CONFIG_PATH and environment variables, in that order.
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, relying on actual environment variables")
	}

	cfg := Default()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.Symbol = getEnvWithDefault("SYMBOL", cfg.Symbol)
	cfg.Interval = getEnvWithDefault("INTERVAL", cfg.Interval)
	cfg.Days = getEnvIntWithDefault("DAYS", cfg.Days)
	cfg.Source = getEnvWithDefault("SOURCE", cfg.Source)
	cfg.BBWindow = getEnvIntWithDefault("BB_WINDOW", cfg.BBWindow)
	cfg.BBDeviation = getEnvFloatWithDefault("BB_DEVIATION", cfg.BBDeviation)
	cfg.TakeProfitPct = getEnvFloatWithDefault("TAKE_PROFIT_PCT", cfg.TakeProfitPct)
	cfg.DisplayTimezone = getEnvWithDefault("DISPLAY_TIMEZONE", cfg.DisplayTimezone)
	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.RequestTimeout = getEnvIntWithDefault("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.RequestsPerSec = getEnvIntWithDefault("REQUESTS_PER_SEC", cfg.RequestsPerSec)
	cfg.MaxRetries = getEnvIntWithDefault("MAX_RETRIES", cfg.MaxRetries)
	cfg.BinanceBaseURL = getEnvWithDefault("BINANCE_BASE_URL", cfg.BinanceBaseURL)
	cfg.TwelveAPIKey = getEnvWithDefault("TWELVE_API_KEY", cfg.TwelveAPIKey)
	cfg.DBHost = getEnvWithDefault("DB_HOST", cfg.DBHost)
	cfg.DBPort = getEnvWithDefault("DB_PORT", cfg.DBPort)
	cfg.DBUser = getEnvWithDefault("DB_USER", cfg.DBUser)
	cfg.DBPassword = getEnvWithDefault("DB_PASSWORD", cfg.DBPassword)
	cfg.DBName = getEnvWithDefault("DB_NAME", cfg.DBName)
	cfg.DBSSLMode = getEnvWithDefault("DB_SSLMODE", cfg.DBSSLMode)
	cfg.DBTable = getEnvWithDefault("DB_TABLE", cfg.DBTable)
	cfg.TelegramBotToken = getEnvWithDefault("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken)
	cfg.TelegramChatID = getEnvInt64WithDefault("TELEGRAM_CHAT_ID", cfg.TelegramChatID)

	return &cfg, nil
}

var validate = validator.New()

// Validate checks field constraints and that the display timezone exists.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("%w: display timezone %q: %v", ErrInvalidConfig, c.DisplayTimezone, err)
	}
	return nil
}

// Location resolves DisplayTimezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.DisplayTimezone)
}

// Timeout returns RequestTimeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// TelegramEnabled reports whether results should also be sent to Telegram.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring non-integer environment value")
	}
	return defaultValue
}

func getEnvInt64WithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring non-integer environment value")
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring non-numeric environment value")
	}
	return defaultValue
}
