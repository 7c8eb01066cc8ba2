package config_fx

import (
	"log"
	"os"
	"time"

	"go.uber.org/fx"

	"quizsolver/pkg/utils"
)

var Module = fx.Provide(ProvideAppConfig)

// ProvideAppConfig reads the environment once and hands out an immutable
// config value. Missing credentials are fatal at startup, not at request
// time.
func ProvideAppConfig() utils.AppConfig {
	cfg := utils.AppConfig{
		Host: utils.GetEnvWithDefault("HOST", "127.0.0.1"),
		Port: utils.GetEnvWithDefault("PORT", "8000"),

		StudentEmail:      os.Getenv("STUDENT_EMAIL"),
		StudentSecret:     os.Getenv("STUDENT_SECRET"),
		StudentSecretHash: os.Getenv("STUDENT_SECRET_HASH"),

		QuizTimeout:       time.Duration(utils.GetEnvIntWithDefault("QUIZ_TIMEOUT_SECONDS", 180)) * time.Second,
		MaxChainSteps:     utils.GetEnvIntWithDefault("MAX_CHAIN_STEPS", 10),
		MaxAnswerAttempts: utils.GetEnvIntWithDefault("MAX_ANSWER_ATTEMPTS", 3),
		FetchRetries:      utils.GetEnvIntWithDefault("FETCH_RETRIES", 2),
		LLMRetries:        utils.GetEnvIntWithDefault("LLM_RETRIES", 3),
		SubmitRetries:     utils.GetEnvIntWithDefault("SUBMIT_RETRIES", 3),
		SubmitBackoff:     time.Duration(utils.GetEnvIntWithDefault("SUBMIT_BACKOFF_MS", 2000)) * time.Millisecond,
		SubmitTimeout:     time.Duration(utils.GetEnvIntWithDefault("SUBMIT_TIMEOUT_SECONDS", 30)) * time.Second,
		BrowserTimeout:    time.Duration(utils.GetEnvIntWithDefault("BROWSER_TIMEOUT_MS", 30000)) * time.Millisecond,
		RenderSettle:      time.Duration(utils.GetEnvIntWithDefault("RENDER_SETTLE_MS", 1500)) * time.Millisecond,
		StepPause:         time.Duration(utils.GetEnvIntWithDefault("STEP_PAUSE_MS", 1000)) * time.Millisecond,
	}

	if cfg.StudentEmail == "" {
		log.Fatal("STUDENT_EMAIL is required")
	}
	if cfg.StudentSecret == "" && cfg.StudentSecretHash == "" {
		log.Fatal("STUDENT_SECRET or STUDENT_SECRET_HASH is required")
	}

	return cfg
}
