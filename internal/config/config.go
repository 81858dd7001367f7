package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where a config file is searched, in order.
// The first file found wins.
var DefaultConfigPaths = []string{
	"musicsync.yaml",
	"musicsync.yml",
	"/etc/musicsync/config.yaml",
	"/etc/musicsync/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "MUSICSYNC_CONFIG"

// envPrefix namespaces every environment override.
const envPrefix = "MUSICSYNC_"

// Config is the full service configuration.
type Config struct {
	Telegram TelegramConfig `koanf:"telegram"`
	ImageGen ImageGenConfig `koanf:"imagegen"`
	Server   ServerConfig   `koanf:"server"`
	Sync     SyncConfig     `koanf:"sync"`
	Storage  StorageConfig  `koanf:"storage"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// TelegramConfig covers the source channel and bot credentials.
type TelegramConfig struct {
	// BotToken authenticates against the Bot API. Required.
	BotToken string `koanf:"bot_token"`

	// ChannelUsername is the public channel to scan, without the @.
	ChannelUsername string `koanf:"channel_username"`

	// ProbeChatID is the chat message probes are forwarded into. The
	// bot must be able to post and delete there.
	ProbeChatID int64 `koanf:"probe_chat_id"`
}

// ImageGenConfig covers the cover-art generation API. Optional: with
// no API key the cover pipeline is skipped.
type ImageGenConfig struct {
	APIKey string `koanf:"api_key"`
	Model  string `koanf:"model"`
}

// ServerConfig covers the HTTP listener.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`

	// BaseURL is the externally visible origin, used in generated
	// playlists.
	BaseURL string `koanf:"base_url"`

	// CORSOrigins lists allowed cross-origin callers.
	CORSOrigins []string `koanf:"cors_origins"`

	// SyncRateLimit and CoverRateLimit are request quotas per
	// RateWindow for the expensive trigger endpoints.
	SyncRateLimit  int           `koanf:"sync_rate_limit"`
	CoverRateLimit int           `koanf:"cover_rate_limit"`
	RateWindow     time.Duration `koanf:"rate_window"`
}

// SyncConfig bounds one scan-and-resolve pass.
type SyncConfig struct {
	FirstRunBound    int           `koanf:"first_run_bound"`
	IncrementalBound int           `koanf:"incremental_bound"`
	StepDelay        time.Duration `koanf:"step_delay"`
	CheckpointEvery  int           `koanf:"checkpoint_every"`
	PollInterval     time.Duration `koanf:"poll_interval"`
	MaxPollRounds    int           `koanf:"max_poll_rounds"`
}

// StorageConfig covers on-disk locations.
type StorageConfig struct {
	CatalogPath string `koanf:"catalog_path"`
	CoversDir   string `koanf:"covers_dir"`

	// MaxCoverBytes is the compression target per cover file.
	MaxCoverBytes int `koanf:"max_cover_bytes"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json or console
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Telegram: TelegramConfig{
			ChannelUsername: "neyrozvuki",
		},
		ImageGen: ImageGenConfig{
			Model: "z-image",
		},
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			CORSOrigins:    []string{"*"},
			SyncRateLimit:  5,
			CoverRateLimit: 10,
			RateWindow:     15 * time.Minute,
		},
		Sync: SyncConfig{
			FirstRunBound:    300,
			IncrementalBound: 50,
			StepDelay:        350 * time.Millisecond,
			CheckpointEvery:  10,
			PollInterval:     5 * time.Second,
			MaxPollRounds:    12,
		},
		Storage: StorageConfig{
			CatalogPath:   "data/music-catalog.json",
			CoversDir:     "data/covers",
			MaxCoverBytes: 512 << 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, an optional config
// file, and environment variables, in that order of precedence.
func Load() (*Config, error) {
	return load(findConfigFile())
}

// LoadFile is Load with an explicit config file path. An empty path
// skips the file layer.
func LoadFile(path string) (*Config, error) {
	return load(path)
}

func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configPath, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", func(key string) string {
		// MUSICSYNC_TELEGRAM_BOT_TOKEN -> telegram.bot_token
		key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
		return strings.Replace(key, "_", ".", 1)
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	// Comma-separated env values for the one slice field.
	if raw, ok := k.Get("server.cors_origins").(string); ok {
		parts := strings.Split(raw, ",")
		origins := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				origins = append(origins, p)
			}
		}
		if err := k.Set("server.cors_origins", origins); err != nil {
			return nil, fmt.Errorf("set cors origins: %w", err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return errors.New("telegram bot token is required (MUSICSYNC_TELEGRAM_BOT_TOKEN)")
	}
	if c.Telegram.ChannelUsername == "" {
		return errors.New("telegram channel username is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Sync.FirstRunBound <= 0 || c.Sync.IncrementalBound <= 0 {
		return errors.New("scan bounds must be positive")
	}
	return nil
}

// ImageGenEnabled reports whether the cover pipeline has credentials.
func (c *Config) ImageGenEnabled() bool {
	return c.ImageGen.APIKey != ""
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
