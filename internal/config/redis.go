package config

import "time"

// Redis backs the distributed run lock and the task queue. With no address
// configured runs are guarded in-process only and the worker is unavailable.
type Redis struct {
	Address            string        `env:"REDIS_ADDRESS"`
	Username           string        `env:"REDIS_USERNAME"`
	Password           string        `env:"REDIS_PASSWORD" json:"-"`
	DatabaseNumber     int           `env:"REDIS_DB" envDefault:"0" validate:"gte=0"`
	PoolSize           int           `env:"REDIS_POOL_SIZE" envDefault:"10" validate:"gte=1"`
	MinIdleConnections int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"1" validate:"gte=0"`
	MaxIdleConnections int           `env:"REDIS_MAX_IDLE_CONNS" envDefault:"5" validate:"gte=0"`
	LockTTL            time.Duration `env:"REDIS_LOCK_TTL" envDefault:"10m"`
}

func (r Redis) Enabled() bool {
	return r.Address != ""
}
