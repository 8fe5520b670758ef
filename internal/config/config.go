package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port              int
	LogLevel          string
	EmotionsPath      string
	ProgressSource    string
	WritePolicy       string
	ProgressPath      string
	AdvanceOnNavigate bool
	InputPath         string
	OutputPath        string
	DatabaseURL       string
	NatsURL           string
	NatsToken         string
}

func Load() Config {
	return Config{
		Port:              envInt("ANNOTATOR_PORT", 8760),
		LogLevel:          envStr("LOG_LEVEL", "info"),
		EmotionsPath:      envStr("EMOTIONS_PATH", "emotions.json"),
		ProgressSource:    envStr("PROGRESS_SOURCE", "sidecar"),
		WritePolicy:       envStr("WRITE_POLICY", "upsert"),
		ProgressPath:      envStr("PROGRESS_PATH", ""),
		AdvanceOnNavigate: envBool("ADVANCE_ON_NAVIGATE", false),
		InputPath:         envStr("INPUT_PATH", ""),
		OutputPath:        envStr("OUTPUT_PATH", ""),
		DatabaseURL:       envStr("DATABASE_URL", ""),
		NatsURL:           envStr("NATS_URL", ""),
		NatsToken:         envStr("NATS_TOKEN", ""),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
