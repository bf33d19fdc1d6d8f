package config

import (
	"log"
	"os"
)

type Config struct {
	Port string

	TelegramBotToken string
	WebhookURL       string

	DreamAPIURL string
	DreamAPIKey string

	SupabaseURL     string
	SupabaseAnonKey string
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("missing required env %s", k)
	}
	return v
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Load reads the environment once at startup. Missing client key or
// identity-provider config only warns: the bot still starts, the affected
// calls degrade (rejected by the backend / login disabled).
func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "8080"),

		TelegramBotToken: mustEnv("TELEGRAM_BOT_TOKEN"),
		WebhookURL:       os.Getenv("WEBHOOK_URL"),

		DreamAPIURL: getEnv("DREAM_API_URL", "http://localhost:8000"),
		DreamAPIKey: os.Getenv("DREAM_API_KEY"),

		SupabaseURL:     os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey: os.Getenv("SUPABASE_ANON_KEY"),
	}
	// An empty DREAM_API_KEY is warned about by the API client constructor.
	if cfg.SupabaseURL == "" || cfg.SupabaseAnonKey == "" {
		log.Printf("warning: SUPABASE_URL / SUPABASE_ANON_KEY not set, login disabled")
	}
	return cfg
}
