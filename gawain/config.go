package gawain

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/sergawain/gawain/gawain/database"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if token := os.Getenv("GAWAIN_TOKEN"); token != "" {
		cfg.Bot.Token = token
	}
	cfg.applyDefaults()
	return &cfg, nil
}

type Config struct {
	Log      LogConfig         `toml:"log"`
	Bot      BotConfig         `toml:"bot"`
	DB       database.DBConfig `toml:"db"`
	Ops      OpsConfig         `toml:"ops"`
	Crafting CraftingConfig    `toml:"crafting"`
	Spaces   SpacesConfig      `toml:"spaces"`
}

type BotConfig struct {
	DevGuilds []snowflake.ID `toml:"dev_guilds"`
	Token     string         `toml:"token"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

type OpsConfig struct {
	// Addr serves /healthz and /metrics; empty disables the server.
	Addr string `toml:"addr"`
}

type CraftingConfig struct {
	ButtonTimeout     int  `toml:"button_timeout"` // seconds
	MentionSkillRoles bool `toml:"mention_skill_roles"`
	ListPageSize      int  `toml:"list_page_size"`
}

func (c CraftingConfig) ButtonTimeoutDuration() time.Duration {
	return time.Duration(c.ButtonTimeout) * time.Second
}

type SpacesConfig struct {
	Key    string `toml:"key"`
	Secret string `toml:"secret"`
	Region string `toml:"region"`
	Bucket string `toml:"bucket"`
	Prefix string `toml:"prefix"`
}

func (c *Config) applyDefaults() {
	if c.Crafting.ButtonTimeout <= 0 {
		c.Crafting.ButtonTimeout = 30
	}
	if c.Crafting.ListPageSize <= 0 {
		c.Crafting.ListPageSize = 10
	}
	if c.Spaces.Prefix == "" {
		c.Spaces.Prefix = "backups"
	}
}
