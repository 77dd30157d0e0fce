// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
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

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// EmailConfig provides settings for SMTP notification delivery.
type EmailConfig interface {
	GetEmailEnabled() bool
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
}

// NotificationConfig provides settings for the notification module.
type NotificationConfig interface {
	GetAppBaseURL() string
}

// SchedulerConfig provides settings for the asynq task queue and sweep.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetExpirySweepInterval() time.Duration
}

// RoutingConfig provides the tunable parameters of the assignment engine.
// Scoring weights are exposed here so the matcher's scoring logic can be
// unit-tested in isolation from configuration loading.
type RoutingConfig interface {
	GetOfferTTL() time.Duration
	GetMaxAttempts() int
	GetCandidateLimit() int
	GetDeclineReasonMinLen() int
	GetScoreBase() int
	GetCorridorBonus() int
	GetSuccessRateBonus() int
	GetSuccessRateThreshold() int
	GetLoadPenalty() int
	GetIndependentBonus() int
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env             string
	HTTPAddr        string
	DatabaseURL     string
	JWTAccessSecret string
	AccessTokenTTL  time.Duration
	CORSAllowAll    bool
	CORSOrigins     []string
	CORSAllowCreds  bool
	AppBaseURL      string

	EmailEnabled     bool
	SMTPHost         string
	SMTPPort         int
	SMTPUsername     string
	SMTPPassword     string
	EmailFromName    string
	EmailFromAddress string

	RedisURL            string
	RedisTLSInsecure    bool
	AsynqQueueName      string
	AsynqConcurrency    int
	ExpirySweepInterval time.Duration

	OfferTTL             time.Duration
	MaxAttempts          int
	CandidateLimit       int
	DeclineReasonMinLen  int
	ScoreBase            int
	CorridorBonus        int
	SuccessRateBonus     int
	SuccessRateThreshold int
	LoadPenalty          int
	IndependentBonus     int
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// EmailConfig implementation
func (c *Config) GetEmailEnabled() bool       { return c.EmailEnabled }
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }

// NotificationConfig implementation
func (c *Config) GetAppBaseURL() string { return c.AppBaseURL }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string                     { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool               { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string               { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int                { return c.AsynqConcurrency }
func (c *Config) GetExpirySweepInterval() time.Duration   { return c.ExpirySweepInterval }

// RoutingConfig implementation
func (c *Config) GetOfferTTL() time.Duration    { return c.OfferTTL }
func (c *Config) GetMaxAttempts() int           { return c.MaxAttempts }
func (c *Config) GetCandidateLimit() int        { return c.CandidateLimit }
func (c *Config) GetDeclineReasonMinLen() int   { return c.DeclineReasonMinLen }
func (c *Config) GetScoreBase() int             { return c.ScoreBase }
func (c *Config) GetCorridorBonus() int         { return c.CorridorBonus }
func (c *Config) GetSuccessRateBonus() int      { return c.SuccessRateBonus }
func (c *Config) GetSuccessRateThreshold() int  { return c.SuccessRateThreshold }
func (c *Config) GetLoadPenalty() int           { return c.LoadPenalty }
func (c *Config) GetIndependentBonus() int      { return c.IndependentBonus }

// Load reads configuration from the environment, with .env support for
// local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	smtpHost := getEnv("SMTP_HOST", "")
	emailEnabled := strings.EqualFold(getEnv("EMAIL_ENABLED", "true"), "true")

	cfg := &Config{
		Env:             getEnv("APP_ENV", "development"),
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		JWTAccessSecret: getEnv("JWT_ACCESS_SECRET", ""),
		AccessTokenTTL:  mustDuration(getEnv("JWT_ACCESS_TTL", "15m")),
		CORSAllowAll:    corsAllowAll,
		CORSOrigins:     corsOrigins,
		CORSAllowCreds:  strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		AppBaseURL:      getEnv("APP_BASE_URL", "http://localhost:4200"),

		EmailEnabled:     emailEnabled && smtpHost != "",
		SMTPHost:         smtpHost,
		SMTPPort:         mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:     getEnv("SMTP_USERNAME", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),
		EmailFromName:    getEnv("EMAIL_FROM_NAME", "Immigration Portal"),
		EmailFromAddress: getEnv("EMAIL_FROM_ADDRESS", ""),

		RedisURL:            getEnv("REDIS_URL", ""),
		RedisTLSInsecure:    strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:      getEnv("ASYNQ_QUEUE", "routing"),
		AsynqConcurrency:    mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
		ExpirySweepInterval: mustDuration(getEnv("EXPIRY_SWEEP_INTERVAL", "10m")),

		OfferTTL:             mustDuration(getEnv("ROUTING_OFFER_TTL", "48h")),
		MaxAttempts:          mustInt(getEnv("ROUTING_MAX_ATTEMPTS", "5")),
		CandidateLimit:       mustInt(getEnv("ROUTING_CANDIDATE_LIMIT", "5")),
		DeclineReasonMinLen:  mustInt(getEnv("ROUTING_DECLINE_REASON_MIN_LEN", "10")),
		ScoreBase:            mustInt(getEnv("ROUTING_SCORE_BASE", "100")),
		CorridorBonus:        mustInt(getEnv("ROUTING_CORRIDOR_BONUS", "30")),
		SuccessRateBonus:     mustInt(getEnv("ROUTING_SUCCESS_RATE_BONUS", "20")),
		SuccessRateThreshold: mustInt(getEnv("ROUTING_SUCCESS_RATE_THRESHOLD", "80")),
		LoadPenalty:          mustInt(getEnv("ROUTING_LOAD_PENALTY", "5")),
		IndependentBonus:     mustInt(getEnv("ROUTING_INDEPENDENT_BONUS", "15")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if emailEnabled && cfg.SMTPHost != "" && cfg.EmailFromAddress == "" {
		return nil, fmt.Errorf("EMAIL_FROM_ADDRESS is required when email is enabled")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.MaxAttempts < 1 {
		return nil, fmt.Errorf("ROUTING_MAX_ATTEMPTS must be at least 1")
	}
	if cfg.OfferTTL <= 0 {
		return nil, fmt.Errorf("ROUTING_OFFER_TTL must be a positive duration")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
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
