package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWithEnvSecrets(t *testing.T) {
	t.Setenv("MUSICSYNC_TELEGRAM_BOT_TOKEN", "123:abc")

	cfg, err := LoadFile("")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if cfg.Telegram.BotToken != "123:abc" {
		t.Errorf("BotToken = %q", cfg.Telegram.BotToken)
	}
	if cfg.Telegram.ChannelUsername != "neyrozvuki" {
		t.Errorf("ChannelUsername = %q", cfg.Telegram.ChannelUsername)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
	if cfg.Sync.FirstRunBound != 300 || cfg.Sync.IncrementalBound != 50 {
		t.Errorf("scan bounds = %d/%d", cfg.Sync.FirstRunBound, cfg.Sync.IncrementalBound)
	}
	if cfg.ImageGenEnabled() {
		t.Error("image generation should be disabled without an API key")
	}
}

func TestLoadFileLayer(t *testing.T) {
	t.Setenv("MUSICSYNC_TELEGRAM_BOT_TOKEN", "123:abc")

	path := filepath.Join(t.TempDir(), "musicsync.yaml")
	yaml := `
telegram:
  channel_username: otherchannel
  probe_chat_id: 777
server:
  port: 9090
  base_url: https://music.example.com
sync:
  step_delay: 100ms
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if cfg.Telegram.ChannelUsername != "otherchannel" {
		t.Errorf("ChannelUsername = %q", cfg.Telegram.ChannelUsername)
	}
	if cfg.Telegram.ProbeChatID != 777 {
		t.Errorf("ProbeChatID = %d", cfg.Telegram.ProbeChatID)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
	if cfg.Sync.StepDelay != 100*time.Millisecond {
		t.Errorf("StepDelay = %v", cfg.Sync.StepDelay)
	}
	// File does not override unrelated defaults.
	if cfg.Server.SyncRateLimit != 5 || cfg.Server.CoverRateLimit != 10 {
		t.Errorf("rate limits = %d/%d", cfg.Server.SyncRateLimit, cfg.Server.CoverRateLimit)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("MUSICSYNC_TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("MUSICSYNC_SERVER_PORT", "7070")
	t.Setenv("MUSICSYNC_IMAGEGEN_API_KEY", "kie-key")
	t.Setenv("MUSICSYNC_SERVER_CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	path := filepath.Join(t.TempDir(), "musicsync.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("Port = %d, env should beat file", cfg.Server.Port)
	}
	if !cfg.ImageGenEnabled() {
		t.Error("image generation should be enabled with an API key")
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[0] != want[0] || cfg.Server.CORSOrigins[1] != want[1] {
		t.Errorf("CORSOrigins = %v, want %v", cfg.Server.CORSOrigins, want)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}, wantErr: false},
		{name: "missing token", mutate: func(c *Config) { c.Telegram.BotToken = "" }, wantErr: true},
		{name: "missing channel", mutate: func(c *Config) { c.Telegram.ChannelUsername = "" }, wantErr: true},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: true},
		{name: "bad bounds", mutate: func(c *Config) { c.Sync.FirstRunBound = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Telegram.BotToken = "123:abc"
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
