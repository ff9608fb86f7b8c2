// Package config loads the gamegate application configuration: the core
// bot settings plus the channels, links and storage the access flow needs.
package config

import (
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/gamegate/core/config"
	coredatabase "github.com/m3rciful/gamegate/core/database"
)

// ChannelsConfig names the gating chats: numeric ids or @usernames.
type ChannelsConfig struct {
	Main         string `yaml:"main" envconfig:"CHANNEL_ID"`
	Verification string `yaml:"verification" envconfig:"VERIF_CHANNEL_ID"`
}

// LinksConfig holds the addresses shown on reply buttons.
type LinksConfig struct {
	StartWebApp    string `yaml:"start_webapp_url" envconfig:"START_WEBAPP_URL"`
	GameSlotWebApp string `yaml:"gameslot_webapp_url" envconfig:"GAMESLOT_WEBAPP_URL"`
	Subscribe      string `yaml:"subscribe_url" envconfig:"SUBSCRIBE_URL"`
	Support        string `yaml:"support_url" envconfig:"SUPPORT_LINK"`
}

// RedisConfig enables the status cache when Addr is set.
type RedisConfig struct {
	Addr     string        `yaml:"addr" envconfig:"REDIS_ADDR"`
	Password string        `yaml:"password" envconfig:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" envconfig:"REDIS_DB"`
	TTL      time.Duration `yaml:"ttl" envconfig:"REDIS_TTL"`
}

// OpsConfig enables the metrics/health listener when Listen is set.
type OpsConfig struct {
	Listen string `yaml:"listen" envconfig:"OPS_LISTEN"`
}

// Config is the full application configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Channels ChannelsConfig      `yaml:"channels"`
	Links    LinksConfig         `yaml:"links"`
	Database coredatabase.Config `yaml:"database"`
	Redis    RedisConfig         `yaml:"redis"`
	Ops      OpsConfig           `yaml:"ops"`
}

// CoreConfig implements cmd.ConfigCarrier.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// Load reads path, overlays the environment and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate normalizes every section and reports the first problem.
func (c *Config) Validate() error {
	if err := coreconfig.Normalize(&c.Config); err != nil {
		return err
	}
	c.Channels.Main = strings.TrimSpace(c.Channels.Main)
	c.Channels.Verification = strings.TrimSpace(c.Channels.Verification)
	if c.Channels.Main == "" {
		return fmt.Errorf("channels.main is required")
	}
	if c.Channels.Verification == "" {
		return fmt.Errorf("channels.verification is required")
	}
	if c.Telegram.AdminID < 0 {
		return fmt.Errorf("telegram.admin_id must be >= 0")
	}
	if err := c.Database.Normalize(); err != nil {
		return err
	}
	if c.Redis.TTL < 0 {
		return fmt.Errorf("redis.ttl must be >= 0")
	}
	return nil
}
