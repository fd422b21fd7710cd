package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"fantasy_trades/internal/config"
	"fantasy_trades/internal/domain/entity"
)

func TestLoadDefaults(t *testing.T) {
	rq := require.New(t)

	cfg, err := config.Load()
	rq.NoError(err)

	rq.Equal(24, cfg.Season.Length)
	rq.Equal(entity.TradePhases{
		{From: 2, To: 11, Expected: 2},
		{From: 12, To: 18, Expected: 3},
		{From: 19, To: 23, Expected: 2},
	}, cfg.Season.Phases)
	rq.Equal("rounds", cfg.Snapshot.RoundsKey)
	rq.Equal(5*time.Minute, cfg.Postgres.ConnMaxLifetime)
	rq.Equal(15*time.Minute, cfg.Worker.UniqueTTL)
	rq.False(cfg.Redis.Enabled())
	rq.False(cfg.Bot.Enabled())

	policy := cfg.Season.Policy()
	rq.Equal(24, policy.Length)
	rq.Len(policy.Phases, 3)
}

func TestLoadOverrides(t *testing.T) {
	rq := require.New(t)

	t.Setenv("SEASON_LENGTH", "18")
	t.Setenv("TRADE_PHASES", "2-9:1,10-17:2")
	t.Setenv("SNAPSHOT_PATH", "/srv/data/season.json")
	t.Setenv("REDIS_ADDRESS", "localhost:6379")
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("BOT_CHAT_ID", "42")

	cfg, err := config.Load()
	rq.NoError(err)

	rq.Equal(18, cfg.Season.Length)
	rq.Equal(entity.TradePhases{{From: 2, To: 9, Expected: 1}, {From: 10, To: 17, Expected: 2}}, cfg.Season.Phases)
	rq.Equal("/srv/data/season.json", cfg.Snapshot.Path)
	rq.True(cfg.Redis.Enabled())
	rq.True(cfg.Bot.Enabled())
	rq.Equal(int64(42), cfg.Bot.ChatID)
}

func TestLoadInvalid(t *testing.T) {
	testCases := []struct {
		name   string
		env    map[string]string
		errMsg string
	}{
		{
			name:   "Unparsable phases",
			env:    map[string]string{"TRADE_PHASES": "2-11"},
			errMsg: "env.Parse",
		},
		{
			name:   "Phase past season end",
			env:    map[string]string{"SEASON_LENGTH": "10"},
			errMsg: "ends after round 10",
		},
		{
			name:   "Bot token without chat",
			env:    map[string]string{"BOT_TOKEN": "123:abc"},
			errMsg: "ChatID",
		},
		{
			name:   "Unknown log level",
			env:    map[string]string{"LOG_LEVEL": "loud"},
			errMsg: "LogLevel",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			_, err := config.Load()
			rq.ErrorContains(err, tc.errMsg)
		})
	}
}
