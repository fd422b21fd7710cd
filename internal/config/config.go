package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var validate = validator.New(validator.WithRequiredStructEnabled()) //nolint:gochecknoglobals // skip

type Config struct {
	App      App
	Postgres Postgres
	Redis    Redis
	Season   Season
	Snapshot Snapshot
	Bot      Bot
	Worker   Worker
}

type App struct {
	Name     string `env:"APP_NAME" envDefault:"fantasy-trades" validate:"required"`
	Version  string `env:"APP_VERSION" envDefault:"dev"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn warning error"`
	NoColor  bool   `env:"LOG_NO_COLOR"`
}

// Bot is the optional Telegram chat that receives run reports. An empty
// token disables notifications.
type Bot struct {
	Token  string `env:"BOT_TOKEN" json:"-"`
	ChatID int64  `env:"BOT_CHAT_ID" validate:"required_with=Token"`
}

func (b Bot) Enabled() bool {
	return b.Token != ""
}

type Snapshot struct {
	Path      string `env:"SNAPSHOT_PATH" envDefault:"data/team_rounds.json"`
	RoundsKey string `env:"SNAPSHOT_ROUNDS_KEY" envDefault:"rounds" validate:"required"`
}

func Load() (Config, error) {
	_ = godotenv.Load()

	var config Config

	if err := env.Parse(&config); err != nil {
		return Config{}, fmt.Errorf("env.Parse: %w", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validate.Struct: %w", err)
	}

	if err := c.Season.Phases.Check(c.Season.Length); err != nil {
		return fmt.Errorf("season phases: %w", err)
	}

	return nil
}
