package config

import (
	"log"

	"github.com/caarlos0/env/v6"
)

type LLMProvider string

const (
	ProviderOpenAI LLMProvider = "openai"
	ProviderYandex LLMProvider = "yandex"
)

type Config struct {
	Port int `env:"PORT" envDefault:"8080"`

	// LINE Messaging API
	LineChannelSecret string `env:"LINE_CHANNEL_SECRET"`
	LineChannelToken  string `env:"LINE_CHANNEL_ACCESS_TOKEN"`
	// When true a bad webhook signature is rejected with 401. When false
	// (default) the request is acknowledged with 200 and dropped, so the
	// LINE console verification stays green even on a misconfigured secret.
	LineStrictSignature bool `env:"LINE_STRICT_SIGNATURE" envDefault:"false"`

	// Dashboard API
	AdminAPIKey  string   `env:"ADMIN_API_KEY"`
	AllowOrigins []string `env:"ALLOW_ORIGINS" envSeparator:"," envDefault:"*"`

	// LLM settings
	LLMProvider      LLMProvider `env:"LLM_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey     string      `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string      `env:"OPENAI_BASE_URL"`
	OpenAIModel      string      `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	YandexOAuthToken string      `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string      `env:"YANDEX_FOLDER_ID"`

	// Google Sheets log store
	GoogleSheetID      string `env:"GOOGLE_SHEET_ID"`
	GoogleServiceEmail string `env:"GOOGLE_SERVICE_EMAIL"`
	GooglePrivateKey   string `env:"GOOGLE_PRIVATE_KEY"`
	SheetMasterTab     string `env:"SHEET_MASTER_TAB"`

	// Operator alerting
	AlertCategories   []string `env:"ALERT_CATEGORIES" envSeparator:","`
	AdminLineUserID   string   `env:"ADMIN_LINE_USERID"`
	TelegramBotToken  string   `env:"TELEGRAM_BOT_TOKEN"`
	TelegramAdminChat int64    `env:"TELEGRAM_ADMIN_CHAT_ID"`

	// Cron spec for the daily stats digest; empty disables it.
	DigestCron string `env:"DIGEST_CRON"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}
