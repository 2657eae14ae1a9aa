package config

import "time"

type ProviderConfig struct {
	BaseURL string        `yaml:"base_url" validate:"required,url"`
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`
}

type SearchConfig struct {
	// MaxPrice is the ceiling of the cheap-fare filter, in euro.
	MaxPrice      float64 `yaml:"max_price" validate:"gt=0"`
	DiscountOffer string  `yaml:"discount_offer" validate:"required"`
	// MaxDays bounds the days before/after the chat-bot offers and accepts.
	MaxDays int `yaml:"max_days" validate:"gte=1,lte=30"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

type BotConfig struct {
	Token string `yaml:"token"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required"`
}

type SessionsConfig struct {
	Backend       string        `yaml:"backend" validate:"oneof=memory redis"`
	RedisAddr     string        `yaml:"redis_addr" validate:"required_if=Backend redis"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db" validate:"gte=0"`
	TTL           time.Duration `yaml:"ttl" validate:"gte=0"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Provider ProviderConfig `yaml:"provider"`
	Search   SearchConfig   `yaml:"search"`
	Log      LogConfig      `yaml:"log"`
	Bot      BotConfig      `yaml:"bot"`
	Server   ServerConfig   `yaml:"server"`
	Sessions SessionsConfig `yaml:"sessions"`
}
