package config

import "time"

// Postgres is only needed by price reconciliation, so the DSN is not
// required at load time.
type Postgres struct {
	DSN             string        `env:"PG_DSN" json:"-"`
	MaxIdleConns    int           `env:"PG_MAX_IDLE_CONNS" envDefault:"5" validate:"gte=0"`
	MaxOpenConns    int           `env:"PG_MAX_OPEN_CONNS" envDefault:"5" validate:"gte=1"`
	ConnMaxLifetime time.Duration `env:"PG_CONN_MAX_LIFETIME" envDefault:"5m"`
}
