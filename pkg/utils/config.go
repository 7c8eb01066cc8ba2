package utils

import (
	"os"
	"strconv"
	"time"
)

// AppConfig is built once at startup and passed around as a value.
// Nothing mutates it after construction.
type AppConfig struct {
	Host string
	Port string

	StudentEmail      string
	StudentSecret     string
	StudentSecretHash string

	QuizTimeout       time.Duration
	MaxChainSteps     int
	MaxAnswerAttempts int
	FetchRetries      int
	LLMRetries        int
	SubmitRetries     int
	SubmitBackoff     time.Duration
	SubmitTimeout     time.Duration
	BrowserTimeout    time.Duration
	RenderSettle      time.Duration
	StepPause         time.Duration
}

// GetEnvWithDefault returns environment variable or default value
func GetEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvIntWithDefault returns the variable parsed as int, or the default
// when unset or unparseable.
func GetEnvIntWithDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
