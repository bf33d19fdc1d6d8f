package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok")
	t.Setenv("DREAM_API_URL", "")
	t.Setenv("DREAM_API_KEY", "")
	t.Setenv("PORT", "")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "http://localhost:8000", cfg.DreamAPIURL)
	assert.Empty(t, cfg.DreamAPIKey)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok")
	t.Setenv("DREAM_API_URL", "https://api.example.com")
	t.Setenv("DREAM_API_KEY", "k")
	t.Setenv("SUPABASE_URL", "https://x.supabase.co")
	t.Setenv("SUPABASE_ANON_KEY", "anon")

	cfg := Load()
	assert.Equal(t, "https://api.example.com", cfg.DreamAPIURL)
	assert.Equal(t, "k", cfg.DreamAPIKey)
	assert.Equal(t, "https://x.supabase.co", cfg.SupabaseURL)
}
