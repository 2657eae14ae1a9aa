package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/yuriiter/freccia/pkg/providers"
	"github.com/yuriiter/freccia/pkg/search"
	"gopkg.in/yaml.v3"
)

const (
	EnvBotToken  = "TELEGRAM_BOT_TOKEN"
	EnvRedisAddr = "FRECCIA_REDIS_ADDR"
)

// DefaultPaths are tried in order when no explicit path is given.
var DefaultPaths = []string{"freccia.yml", "config.yml"}

func Default() AppConfig {
	return AppConfig{
		Provider: ProviderConfig{
			BaseURL: providers.DefaultBaseURL,
			Timeout: 30 * time.Second,
		},
		Search: SearchConfig{
			MaxPrice:      35,
			DiscountOffer: search.DefaultDiscountOffer,
			MaxDays:       5,
		},
		Log:      LogConfig{Level: "info"},
		Server:   ServerConfig{Addr: ":8080"},
		Sessions: SessionsConfig{Backend: "memory"},
	}
}

// Load reads the configuration at path over the defaults, applies the
// environment overrides and validates the result. An empty path tries
// DefaultPaths and falls back to the defaults when none exists; an explicit
// path must exist.
func Load(path string) (AppConfig, error) {
	cfg := Default()

	data, err := readConfig(path)
	if err != nil {
		return AppConfig{}, err
	}
	if data != nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return AppConfig{}, fmt.Errorf("parse config: %w", err)
		}
	}

	if token := os.Getenv(EnvBotToken); token != "" {
		cfg.Bot.Token = token
	}
	if addr := os.Getenv(EnvRedisAddr); addr != "" {
		cfg.Sessions.RedisAddr = addr
	}

	if err := validator.New().Struct(cfg); err != nil {
		return AppConfig{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func readConfig(path string) ([]byte, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		return data, nil
	}
	for _, p := range DefaultPaths {
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return nil, nil
}
