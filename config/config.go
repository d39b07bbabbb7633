package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	// ProviderResend selects the Resend transactional email API
	ProviderResend = "resend"
	// ProviderMailgun selects the Mailgun transactional email API
	ProviderMailgun = "mailgun"
)

type Config struct {
	ServerPort  string
	Environment string
	AppURL      string
	LogLevel    string
	// Email dispatch
	EmailProvider string
	ResendAPIKey  string
	MailgunDomain string
	MailgunAPIKey string
	EmailFrom     string
	EmailFromName string
	EmailTestMode bool // When true, lead emails are logged instead of sent
	// Overrides every service recipient from forms.yaml when set
	LeadRecipient string
	// Zero means the provider call is not bounded by the application
	DispatchTimeout time.Duration
	// Analytics
	GA4MeasurementID   string
	GA4APISecret       string
	GA4Endpoint        string
	AdsConversionURL   string
	AdsConversionLabel string
	LeadCurrency       string
	// Cloudflare Turnstile
	TurnstileSiteKey   string
	TurnstileSecretKey string
	// Visitor form state older than this is swept from memory
	SessionIdleTTL time.Duration
}

func Load() *Config {
	// Load .env file (ignore error if not present - use system env vars)
	if err := godotenv.Load(); err != nil {
		zap.L().Info("no .env file found, using system environment variables")
	}

	return &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		Environment:        getEnv("ENVIRONMENT", "development"),
		AppURL:             strings.TrimRight(getEnv("APP_URL", "http://localhost:8080"), "/"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		EmailProvider:      strings.ToLower(getEnv("EMAIL_PROVIDER", ProviderResend)),
		ResendAPIKey:       getEnv("RESEND_API_KEY", ""),
		MailgunDomain:      getEnv("MAILGUN_DOMAIN", ""),
		MailgunAPIKey:      getEnv("MAILGUN_API_KEY", ""),
		EmailFrom:          getEnv("EMAIL_FROM", "noreply@aisajt.rs"),
		EmailFromName:      getEnv("EMAIL_FROM_NAME", "AiSajt"),
		EmailTestMode:      getEnvBool("EMAIL_TEST_MODE", true), // Default true for safety
		LeadRecipient:      getEnv("LEAD_RECIPIENT", ""),
		DispatchTimeout:    getEnvDuration("LEAD_DISPATCH_TIMEOUT", 0),
		GA4MeasurementID:   getEnv("GA4_MEASUREMENT_ID", ""),
		GA4APISecret:       getEnv("GA4_API_SECRET", ""),
		GA4Endpoint:        getEnv("GA4_ENDPOINT", "https://www.google-analytics.com/mp/collect"),
		AdsConversionURL:   getEnv("ADS_CONVERSION_URL", ""),
		AdsConversionLabel: getEnv("ADS_CONVERSION_LABEL", ""),
		LeadCurrency:       getEnv("LEAD_CURRENCY", "RSD"),
		TurnstileSiteKey:   getEnv("TURNSTILE_SITE_KEY", ""),
		TurnstileSecretKey: getEnv("TURNSTILE_SECRET_KEY", ""),
		SessionIdleTTL:     getEnvDuration("SESSION_IDLE_TTL", 2*time.Hour),
	}
}

// IsProduction reports whether the server runs with production settings
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		zap.L().Debug("using default value", zap.String("key", key), zap.String("default", defaultValue))
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Accept common boolean representations
	switch strings.ToLower(value) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return defaultValue
	}
}

// getEnvDuration accepts Go duration strings ("15s") or a bare number of seconds
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	zap.L().Warn("invalid duration, using default", zap.String("key", key), zap.String("value", value))
	return defaultValue
}
