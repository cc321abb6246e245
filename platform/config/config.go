// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// CookieConfig provides settings for the session cookie.
type CookieConfig interface {
	GetSessionCookieName() string
	GetSessionCookieDomain() string
	GetSessionCookieSecure() bool
	GetSessionCookieSameSite() http.SameSite
}

// SessionConfig provides everything the session layer needs.
type SessionConfig interface {
	JWTConfig
	CookieConfig
	GetAccessTokenTTL() time.Duration
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// SchedulerConfig provides Redis/asynq settings.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetTimezone() *time.Location
}

// LeadWorkflowConfig provides lock and stuck-lead thresholds.
type LeadWorkflowConfig interface {
	GetLeadLockTimeout() time.Duration
	GetStuckLeadDefaultHours() int
	GetPhoneDefaultRegion() string
}

// AnalyticsConfig provides settings for the read-side analytics.
type AnalyticsConfig interface {
	GetStreakGap() time.Duration
	GetTimezone() *time.Location
	GetInsightRulesPath() string
	GetAnalyticsCacheTTL() time.Duration
}

// AIConfig provides settings for the LLM integration.
type AIConfig interface {
	GetGeminiAPIKey() string
	GetGeminiModel() string
	IsAIEnabled() bool
}

// SMSConfig provides settings for the SMS gateway.
type SMSConfig interface {
	GetSMSGatewayURL() string
	GetSMSGatewayKey() string
	GetSMSSender() string
	GetSMSRatePerSecond() float64
	GetPhoneDefaultRegion() string
	IsSMSEnabled() bool
}

// EmailConfig provides SMTP settings for report delivery.
type EmailConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
	IsEmailEnabled() bool
}

// StorageConfig provides settings for MinIO S3-compatible storage.
type StorageConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOBucketUploads() string
	GetMaxUploadSize() int64
	IsMinIOEnabled() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                   string
	HTTPAddr              string
	DatabaseURL           string
	JWTAccessSecret       string
	AccessTokenTTL        time.Duration
	SessionCookieName     string
	SessionCookieDomain   string
	SessionCookieSecure   bool
	SessionCookieSameSite http.SameSite
	CORSAllowAll          bool
	CORSOrigins           []string
	CORSAllowCreds        bool
	RedisURL              string
	RedisTLSInsecure      bool
	AsynqQueueName        string
	AsynqConcurrency      int
	Timezone              *time.Location
	LeadLockTimeout       time.Duration
	StuckLeadDefaultHours int
	PhoneDefaultRegion    string
	StreakGap             time.Duration
	InsightRulesPath      string
	AnalyticsCacheTTL     time.Duration
	GeminiAPIKey          string
	GeminiModel           string
	SMSGatewayURL         string
	SMSGatewayKey         string
	SMSSender             string
	SMSRatePerSecond      float64
	SMTPHost              string
	SMTPPort              int
	SMTPUsername          string
	SMTPPassword          string
	EmailFromName         string
	EmailFromAddress      string
	MinIOEndpoint         string
	MinIOAccessKey        string
	MinIOSecretKey        string
	MinIOUseSSL           bool
	MinIOBucketUploads    string
	MaxUploadSize         int64
}

// =============================================================================
// Interface Implementations
// =============================================================================

func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

func (c *Config) GetAccessTokenTTL() time.Duration { return c.AccessTokenTTL }

func (c *Config) GetSessionCookieName() string            { return c.SessionCookieName }
func (c *Config) GetSessionCookieDomain() string          { return c.SessionCookieDomain }
func (c *Config) GetSessionCookieSecure() bool            { return c.SessionCookieSecure }
func (c *Config) GetSessionCookieSameSite() http.SameSite { return c.SessionCookieSameSite }

func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

func (c *Config) GetRedisURL() string         { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool   { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string   { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int    { return c.AsynqConcurrency }
func (c *Config) GetTimezone() *time.Location { return c.Timezone }

func (c *Config) GetLeadLockTimeout() time.Duration { return c.LeadLockTimeout }
func (c *Config) GetStuckLeadDefaultHours() int     { return c.StuckLeadDefaultHours }
func (c *Config) GetPhoneDefaultRegion() string     { return c.PhoneDefaultRegion }

func (c *Config) GetStreakGap() time.Duration         { return c.StreakGap }
func (c *Config) GetInsightRulesPath() string         { return c.InsightRulesPath }
func (c *Config) GetAnalyticsCacheTTL() time.Duration { return c.AnalyticsCacheTTL }

func (c *Config) GetGeminiAPIKey() string { return c.GeminiAPIKey }
func (c *Config) GetGeminiModel() string  { return c.GeminiModel }
func (c *Config) IsAIEnabled() bool       { return c.GeminiAPIKey != "" }

func (c *Config) GetSMSGatewayURL() string      { return c.SMSGatewayURL }
func (c *Config) GetSMSGatewayKey() string      { return c.SMSGatewayKey }
func (c *Config) GetSMSSender() string          { return c.SMSSender }
func (c *Config) GetSMSRatePerSecond() float64  { return c.SMSRatePerSecond }
func (c *Config) IsSMSEnabled() bool            { return c.SMSGatewayURL != "" }

func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }
func (c *Config) IsEmailEnabled() bool        { return c.SMTPHost != "" && c.EmailFromAddress != "" }

func (c *Config) GetMinIOEndpoint() string      { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string     { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string     { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool          { return c.MinIOUseSSL }
func (c *Config) GetMinIOBucketUploads() string { return c.MinIOBucketUploads }
func (c *Config) GetMaxUploadSize() int64       { return c.MaxUploadSize }
func (c *Config) IsMinIOEnabled() bool          { return c.MinIOEndpoint != "" }

// Load reads configuration from environment variables (and a .env file when present).
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from the given lookup function.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	getEnv := func(key, fallback string) string {
		if val, ok := lookup(key); ok {
			return val
		}
		return fallback
	}

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	env := getEnv("APP_ENV", "development")
	cookieSecure := strings.EqualFold(getEnv("SESSION_COOKIE_SECURE", ""), "true")
	if getEnv("SESSION_COOKIE_SECURE", "") == "" {
		cookieSecure = strings.EqualFold(env, "production")
	}

	tzName := getEnv("APP_TIMEZONE", "Europe/Amsterdam")
	location, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", tzName, err)
	}

	cfg := &Config{
		Env:                   env,
		HTTPAddr:              getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		JWTAccessSecret:       getEnv("JWT_ACCESS_SECRET", ""),
		AccessTokenTTL:        mustDuration(getEnv("JWT_ACCESS_TTL", "12h"), 12*time.Hour),
		SessionCookieName:     getEnv("SESSION_COOKIE_NAME", "leaddesk_session"),
		SessionCookieDomain:   getEnv("SESSION_COOKIE_DOMAIN", ""),
		SessionCookieSecure:   cookieSecure,
		SessionCookieSameSite: parseSameSite(getEnv("SESSION_COOKIE_SAMESITE", "Lax")),
		CORSAllowAll:          corsAllowAll,
		CORSOrigins:           corsOrigins,
		CORSAllowCreds:        strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		RedisURL:              getEnv("REDIS_URL", ""),
		RedisTLSInsecure:      strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:        getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:      mustInt(getEnv("ASYNQ_CONCURRENCY", "10"), 10),
		Timezone:              location,
		LeadLockTimeout:       mustDuration(getEnv("LEAD_LOCK_TIMEOUT", "10m"), 10*time.Minute),
		StuckLeadDefaultHours: mustInt(getEnv("STUCK_LEAD_DEFAULT_HOURS", "24"), 24),
		PhoneDefaultRegion:    strings.ToUpper(getEnv("PHONE_DEFAULT_REGION", "NL")),
		StreakGap:             mustDuration(getEnv("STREAK_GAP", "5m"), 5*time.Minute),
		InsightRulesPath:      getEnv("INSIGHT_RULES_PATH", ""),
		AnalyticsCacheTTL:     mustDuration(getEnv("ANALYTICS_CACHE_TTL", "30s"), 30*time.Second),
		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		GeminiModel:           getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		SMSGatewayURL:         strings.TrimRight(getEnv("SMS_GATEWAY_URL", ""), "/"),
		SMSGatewayKey:         getEnv("SMS_GATEWAY_KEY", ""),
		SMSSender:             getEnv("SMS_SENDER", "LeadDesk"),
		SMSRatePerSecond:      mustFloat(getEnv("SMS_RATE_PER_SECOND", "5"), 5),
		SMTPHost:              getEnv("SMTP_HOST", ""),
		SMTPPort:              mustInt(getEnv("SMTP_PORT", "587"), 587),
		SMTPUsername:          getEnv("SMTP_USERNAME", ""),
		SMTPPassword:          getEnv("SMTP_PASSWORD", ""),
		EmailFromName:         getEnv("EMAIL_FROM_NAME", "LeadDesk"),
		EmailFromAddress:      getEnv("EMAIL_FROM_ADDRESS", ""),
		MinIOEndpoint:         getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:        getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:        getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:           strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinIOBucketUploads:    getEnv("MINIO_BUCKET_UPLOADS", "lead-uploads"),
		MaxUploadSize:         mustInt64(getEnv("MAX_UPLOAD_SIZE", "20971520"), 20<<20),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.LeadLockTimeout <= 0 {
		return nil, fmt.Errorf("LEAD_LOCK_TIMEOUT must be positive")
	}
	if cfg.StuckLeadDefaultHours <= 0 {
		return nil, fmt.Errorf("STUCK_LEAD_DEFAULT_HOURS must be positive")
	}

	return cfg, nil
}

func mustDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func mustInt(value string, fallback int) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return result
}

func mustInt64(value string, fallback int64) int64 {
	result, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return fallback
	}
	return result
}

func mustFloat(value string, fallback float64) float64 {
	result, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || result <= 0 {
		return fallback
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}

func parseSameSite(value string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "none":
		return http.SameSiteNoneMode
	case "strict":
		return http.SameSiteStrictMode
	default:
		return http.SameSiteLaxMode
	}
}
