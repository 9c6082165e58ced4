package config

import (
	"os"
	"strconv"
	"time"
)

// Config carries everything main needs to wire the service. Values come
// from the environment so deployments stay twelve-factor.
type Config struct {
	Addr        string
	DatabaseURL string
	RedisAddr   string
	JWTSecret   string

	GeocodeBaseURL string
	GeocodeCountry string

	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string

	RegistrationChargePercent float64

	OutboxSweepInterval time.Duration
	ViewFlushInterval   time.Duration

	LogLevel string
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	cfg := Config{
		Addr:                      getenv("ESTATELY_ADDR", ":8080"),
		DatabaseURL:               os.Getenv("DATABASE_URL"),
		RedisAddr:                 getenv("REDIS_ADDR", "127.0.0.1:6379"),
		JWTSecret:                 getenv("JWT_SECRET", "dev-secret-change-in-production"),
		GeocodeBaseURL:            getenv("GEOCODE_BASE_URL", "https://nominatim.openstreetmap.org"),
		GeocodeCountry:            getenv("GEOCODE_COUNTRY", "India"),
		LLMBaseURL:                getenv("LLM_BASE_URL", "https://api.groq.com/openai/v1"),
		LLMAPIKey:                 os.Getenv("LLM_API_KEY"),
		LLMModel:                  getenv("LLM_MODEL", "llama-3.3-70b-versatile"),
		RegistrationChargePercent: getfloat("REGISTRATION_CHARGE_PERCENT", 7.0),
		OutboxSweepInterval:       getduration("OUTBOX_SWEEP_INTERVAL", 15*time.Second),
		ViewFlushInterval:         getduration("VIEW_FLUSH_INTERVAL", 30*time.Second),
		LogLevel:                  getenv("LOG_LEVEL", "info"),
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getfloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
