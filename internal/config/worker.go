package config

import "time"

type Worker struct {
	Queue           string        `env:"WORKER_QUEUE" envDefault:"reconcile" validate:"required"`
	Concurrency     int           `env:"WORKER_CONCURRENCY" envDefault:"1" validate:"gte=1"`
	UniqueTTL       time.Duration `env:"WORKER_UNIQUE_TTL" envDefault:"15m"`
	MaxRetry        int           `env:"WORKER_MAX_RETRY" envDefault:"3" validate:"gte=0"`
	ShutdownTimeout time.Duration `env:"WORKER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	MetricsAddress  string        `env:"WORKER_METRICS_ADDRESS" envDefault:":9090"`
	ProbeAddress    string        `env:"WORKER_PROBE_ADDRESS" envDefault:":8081"`
}
