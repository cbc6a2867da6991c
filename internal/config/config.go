// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
)

// insecureDefaultSecret guards the webhook path when WEBHOOK_SECRET is
// unset. It is a development convenience only; production deployments
// must override it.
const insecureDefaultSecret = "supersecret"

type Config struct {
	// BotToken authenticates against the Telegram Bot API.
	BotToken string `env:"BOT_TOKEN,required"`

	// ChannelID is the private channel join requests are approved into.
	ChannelID int64 `env:"CHANNEL_ID,required"`

	// AffiliateLink is the signup URL base; campaign parameters are
	// appended, so it should end in "?" or "&".
	AffiliateLink string `env:"AFFILIATE_LINK,required"`

	// WebhookSecret is the shared secret embedded in the webhook path.
	WebhookSecret string `env:"WEBHOOK_SECRET" envDefault:"supersecret"`

	// PublicURL, when set, is registered with Telegram as the webhook
	// base at startup. When empty the bot long-polls instead.
	PublicURL string `env:"PUBLIC_URL"`

	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`

	// DBPath enables the SQLite store; empty keeps state in memory.
	DBPath string `env:"DB_PATH"`

	// HandlerTimeout bounds the processing of a single update.
	HandlerTimeout time.Duration `env:"HANDLER_TIMEOUT" envDefault:"25s"`
}

// Load parses and validates the environment. Any missing required value
// or malformed URL is fatal to startup.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if _, err := url.ParseRequestURI(cfg.AffiliateLink); err != nil {
		return nil, fmt.Errorf("AFFILIATE_LINK is not a valid URL: %w", err)
	}
	if cfg.PublicURL != "" {
		if _, err := url.ParseRequestURI(cfg.PublicURL); err != nil {
			return nil, fmt.Errorf("PUBLIC_URL is not a valid URL: %w", err)
		}
	}
	if cfg.HandlerTimeout <= 0 {
		return nil, fmt.Errorf("HANDLER_TIMEOUT must be positive")
	}
	return &cfg, nil
}

// UsingDefaultSecret reports whether the insecure built-in webhook
// secret is in effect.
func (c *Config) UsingDefaultSecret() bool {
	return c.WebhookSecret == insecureDefaultSecret
}
