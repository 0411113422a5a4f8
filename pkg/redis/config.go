package redis

import "time"

type Config struct {
	ConnectionString string        `env:"REDIS_URL,required"`                     // ConnectionString is the redis connection URL.
	RetryAttempts    int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`    // RetryAttempts is the number of connection attempts on startup.
	RetryInterval    time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`   // RetryInterval is the base interval between attempts.
	ConnectTimeout   time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"` // ConnectTimeout bounds the whole connect loop.
}
