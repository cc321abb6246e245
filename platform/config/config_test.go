package config

import (
	"net/http"
	"testing"
	"time"
)

func lookupFrom(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(map[string]string{
		"DATABASE_URL":      "postgres://localhost/leaddesk",
		"JWT_ACCESS_SECRET": "secret",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.LeadLockTimeout != 10*time.Minute {
		t.Fatalf("expected default lock timeout of 10m, got %s", cfg.LeadLockTimeout)
	}
	if cfg.StreakGap != 5*time.Minute {
		t.Fatalf("expected default streak gap of 5m, got %s", cfg.StreakGap)
	}
	if cfg.StuckLeadDefaultHours != 24 {
		t.Fatalf("expected default stuck threshold of 24h, got %d", cfg.StuckLeadDefaultHours)
	}
	if cfg.SessionCookieSecure {
		t.Fatalf("expected insecure cookie outside production")
	}
	if cfg.SessionCookieSameSite != http.SameSiteLaxMode {
		t.Fatalf("expected Lax same-site default")
	}
	if cfg.IsAIEnabled() || cfg.IsSMSEnabled() || cfg.IsEmailEnabled() || cfg.IsMinIOEnabled() {
		t.Fatalf("expected optional integrations to be disabled by default")
	}
}

func TestFromEnvRequiresDatabaseAndSecret(t *testing.T) {
	if _, err := FromEnv(lookupFrom(map[string]string{"JWT_ACCESS_SECRET": "x"})); err == nil {
		t.Fatalf("expected error without DATABASE_URL")
	}
	if _, err := FromEnv(lookupFrom(map[string]string{"DATABASE_URL": "postgres://x"})); err == nil {
		t.Fatalf("expected error without JWT_ACCESS_SECRET")
	}
}

func TestFromEnvRejectsWildcardCORSWithCredentials(t *testing.T) {
	_, err := FromEnv(lookupFrom(map[string]string{
		"DATABASE_URL":      "postgres://x",
		"JWT_ACCESS_SECRET": "x",
		"CORS_ORIGINS":      "*",
	}))
	if err == nil {
		t.Fatalf("expected wildcard CORS with credentials to be rejected")
	}
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(map[string]string{
		"DATABASE_URL":         "postgres://x",
		"JWT_ACCESS_SECRET":    "x",
		"APP_ENV":              "production",
		"LEAD_LOCK_TIMEOUT":    "15m",
		"APP_TIMEZONE":         "Europe/Stockholm",
		"PHONE_DEFAULT_REGION": "se",
		"SMS_GATEWAY_URL":      "https://sms.example.com/",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LeadLockTimeout != 15*time.Minute {
		t.Fatalf("expected 15m lock timeout, got %s", cfg.LeadLockTimeout)
	}
	if !cfg.SessionCookieSecure {
		t.Fatalf("expected secure cookie in production")
	}
	if cfg.Timezone.String() != "Europe/Stockholm" {
		t.Fatalf("unexpected timezone %s", cfg.Timezone)
	}
	if cfg.PhoneDefaultRegion != "SE" {
		t.Fatalf("expected upper-cased region, got %s", cfg.PhoneDefaultRegion)
	}
	if cfg.SMSGatewayURL != "https://sms.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %s", cfg.SMSGatewayURL)
	}
}

func TestFromEnvRejectsBadTimezone(t *testing.T) {
	_, err := FromEnv(lookupFrom(map[string]string{
		"DATABASE_URL":      "postgres://x",
		"JWT_ACCESS_SECRET": "x",
		"APP_TIMEZONE":      "Mars/Olympus",
	}))
	if err == nil {
		t.Fatalf("expected invalid timezone to fail")
	}
}
