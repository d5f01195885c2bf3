// Package config provides configuration loading and validation for the API server.
// It uses koanf to merge environment variables with optional file overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration values for the API server.
type Config struct {
	// Server settings
	Port int    `koanf:"port"`
	Env  string `koanf:"env"`

	// Database. Optional: the server falls back to in-memory stores when
	// unset, which suits local development.
	DatabaseURL string `koanf:"database_url"`

	// Redis. Optional: payment statuses live in process memory when unset.
	RedisURL string `koanf:"redis_url"`

	// JWT Authentication
	JWTSecret string `koanf:"jwt_secret"`

	// Kelpay (mobile money)
	KelpayEndpoint     string `koanf:"kelpay_endpoint"`
	KelpayToken        string `koanf:"kelpay_token"`
	KelpayMerchantCode string `koanf:"kelpay_merchant_code"`
	KelpayCallbackURL  string `koanf:"kelpay_callback_url"`

	// Stripe (card payments)
	StripeAPIKey string `koanf:"stripe_api_key"`

	// LiveKit (live premieres). Optional: premiere endpoints are disabled
	// when unset.
	LiveKitURL       string `koanf:"livekit_url"`
	LiveKitAPIKey    string `koanf:"livekit_api_key"`
	LiveKitAPISecret string `koanf:"livekit_api_secret"`

	// OpenTelemetry OTLP endpoint. Optional: tracing exports are disabled
	// when unset.
	OTLPEndpoint string `koanf:"otlp_endpoint"`
}

// Configuration validation errors.
var (
	ErrMissingJWTSecret          = errors.New("JWT_SECRET is required")
	ErrMissingKelpayEndpoint     = errors.New("KELPAY_ENDPOINT is required")
	ErrMissingKelpayToken        = errors.New("KELPAY_TOKEN is required")
	ErrMissingKelpayMerchantCode = errors.New("KELPAY_MERCHANT_CODE is required")
	ErrMissingKelpayCallbackURL  = errors.New("KELPAY_CALLBACK_URL is required")
	ErrMissingStripeAPIKey       = errors.New("STRIPE_API_KEY is required")
	ErrMissingLiveKitAPIKey      = errors.New("LIVEKIT_API_KEY is required when LIVEKIT_URL is set")
	ErrMissingLiveKitAPISecret   = errors.New("LIVEKIT_API_SECRET is required when LIVEKIT_URL is set")
	ErrInvalidPort               = errors.New("PORT must be a valid integer")
)

// Default values for non-secret configuration.
const (
	DefaultPort = 8080
	DefaultEnv  = "development"
)

// Load reads configuration from environment variables and an optional config file.
// Environment variables take precedence over file values.
// Returns the loaded config and a slice of validation errors (empty if valid).
// If a config file path is provided and the file cannot be loaded, an error is returned.
func Load(configFilePath string) (*Config, []error) {
	k := koanf.New(".")
	var loadErrs []error

	// Load from YAML file first if provided (lower precedence)
	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, []error{fmt.Errorf("failed to load config file %s: %w", configFilePath, err)}
		}
	}

	port, portErr := getEnvIntOrDefault("PORT", k.Int("port"), DefaultPort)
	if portErr != nil {
		loadErrs = append(loadErrs, portErr)
	}

	cfg := &Config{
		Port:               port,
		Env:                getEnvOrDefault("ENV", k.String("env"), DefaultEnv),
		DatabaseURL:        getEnvOrKoanf("DATABASE_URL", k, "database_url"),
		RedisURL:           getEnvOrKoanf("REDIS_URL", k, "redis_url"),
		JWTSecret:          getEnvOrKoanf("JWT_SECRET", k, "jwt_secret"),
		KelpayEndpoint:     getEnvOrKoanf("KELPAY_ENDPOINT", k, "kelpay_endpoint"),
		KelpayToken:        getEnvOrKoanf("KELPAY_TOKEN", k, "kelpay_token"),
		KelpayMerchantCode: getEnvOrKoanf("KELPAY_MERCHANT_CODE", k, "kelpay_merchant_code"),
		KelpayCallbackURL:  getEnvOrKoanf("KELPAY_CALLBACK_URL", k, "kelpay_callback_url"),
		StripeAPIKey:       getEnvOrKoanf("STRIPE_API_KEY", k, "stripe_api_key"),
		LiveKitURL:         getEnvOrKoanf("LIVEKIT_URL", k, "livekit_url"),
		LiveKitAPIKey:      getEnvOrKoanf("LIVEKIT_API_KEY", k, "livekit_api_key"),
		LiveKitAPISecret:   getEnvOrKoanf("LIVEKIT_API_SECRET", k, "livekit_api_secret"),
		OTLPEndpoint:       getEnvOrKoanf("OTLP_ENDPOINT", k, "otlp_endpoint"),
	}

	errs := cfg.Validate()
	errs = append(loadErrs, errs...)

	return cfg, errs
}

// getEnvOrKoanf returns the environment variable value if set, otherwise the koanf value.
func getEnvOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	return k.String(koanfKey)
}

// getEnvOrDefault returns the environment variable value if set, otherwise the koanf value, or default.
func getEnvOrDefault(envKey string, koanfVal string, defaultVal string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// getEnvIntOrDefault returns the environment variable as int if set, otherwise the koanf value, or default.
// Returns an error if the environment variable is set but cannot be parsed as an integer.
func getEnvIntOrDefault(envKey string, koanfVal int, defaultVal int) (int, error) {
	if val := os.Getenv(envKey); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid integer: %w", envKey, ErrInvalidPort)
		}
		return i, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// Validate checks that all required configuration values are present.
// Returns a slice of validation errors (empty if valid).
func (c *Config) Validate() []error {
	var errs []error

	if c.JWTSecret == "" {
		errs = append(errs, ErrMissingJWTSecret)
	}
	if c.KelpayEndpoint == "" {
		errs = append(errs, ErrMissingKelpayEndpoint)
	}
	if c.KelpayToken == "" {
		errs = append(errs, ErrMissingKelpayToken)
	}
	if c.KelpayMerchantCode == "" {
		errs = append(errs, ErrMissingKelpayMerchantCode)
	}
	if c.KelpayCallbackURL == "" {
		errs = append(errs, ErrMissingKelpayCallbackURL)
	}
	if c.StripeAPIKey == "" {
		errs = append(errs, ErrMissingStripeAPIKey)
	}

	// LiveKit configuration is optional, but must be complete when the URL
	// is set.
	if c.LiveKitURL != "" {
		if c.LiveKitAPIKey == "" {
			errs = append(errs, ErrMissingLiveKitAPIKey)
		}
		if c.LiveKitAPISecret == "" {
			errs = append(errs, ErrMissingLiveKitAPISecret)
		}
	}

	return errs
}

// LogSummary returns a summary of the configuration suitable for logging.
// All secrets are masked to prevent accidental exposure.
func (c *Config) LogSummary() map[string]string {
	return map[string]string{
		"port":                 fmt.Sprintf("%d", c.Port),
		"env":                  c.Env,
		"database_url":         maskDatabaseURL(c.DatabaseURL),
		"redis_url":            maskDatabaseURL(c.RedisURL),
		"jwt_secret":           maskSecret(c.JWTSecret),
		"kelpay_endpoint":      c.KelpayEndpoint,
		"kelpay_token":         maskSecret(c.KelpayToken),
		"kelpay_merchant_code": c.KelpayMerchantCode,
		"kelpay_callback_url":  c.KelpayCallbackURL,
		"stripe_api_key":       maskStripeKey(c.StripeAPIKey),
		"livekit_url":          c.LiveKitURL,
		"livekit_api_key":      maskSecret(c.LiveKitAPIKey),
		"livekit_api_secret":   maskSecret(c.LiveKitAPISecret),
		"otlp_endpoint":        c.OTLPEndpoint,
	}
}

// maskSecret masks a secret value, showing only the first 4 characters followed by ****
// If the secret is shorter than 8 characters, it's fully masked.
func maskSecret(s string) string {
	if s == "" {
		return "<not set>"
	}
	if len(s) < 8 {
		return "****"
	}
	return s[:4] + "****"
}

// maskStripeKey masks a Stripe API key, preserving the prefix (sk_live_, sk_test_, etc.)
func maskStripeKey(s string) string {
	if s == "" {
		return "<not set>"
	}

	parts := strings.SplitN(s, "_", 3)
	if len(parts) == 3 {
		return parts[0] + "_" + parts[1] + "_****"
	}

	return maskSecret(s)
}

// maskDatabaseURL masks the password in a connection URL.
func maskDatabaseURL(s string) string {
	if s == "" {
		return "<not set>"
	}

	schemeEnd := strings.Index(s, "://")
	if schemeEnd == -1 {
		return maskSecret(s)
	}

	rest := s[schemeEnd+3:]
	atIndex := strings.Index(rest, "@")
	if atIndex == -1 {
		return s // No credentials in URL
	}

	colonIndex := strings.Index(rest[:atIndex], ":")
	if colonIndex == -1 {
		return s // No password (only username)
	}

	scheme := s[:schemeEnd+3]
	user := rest[:colonIndex]
	hostAndPath := rest[atIndex:]

	return scheme + user + ":****" + hostAndPath
}
