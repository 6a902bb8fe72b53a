package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del cliente.
type Config struct {
	APIBaseURL     string        `env:"API_BASE_URL" envDefault:"http://127.0.0.1:8000/api/"`
	SessionBackend string        `env:"SESSION_BACKEND" envDefault:"file"`
	SessionDir     string        `env:"SESSION_DIR"`
	RedisAddr      string        `env:"REDIS_ADDR"`
	RedisPassword  string        `env:"REDIS_PASSWORD"`
	RedisDB        int           `env:"REDIS_DB" envDefault:"0"`
	HTTPTimeout    time.Duration `env:"HTTP_TIMEOUT" envDefault:"0s"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"warn"`
}

// ServerConfig configura el backend de desarrollo (cmd/devserver).
type ServerConfig struct {
	HTTPPort             string  `env:"HTTP_PORT" envDefault:"8000"`
	JWTSecret            string  `env:"JWT_SECRET" envDefault:"allowance-dev-secret"`
	JWTAccessTTLMinutes  int     `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"60"`
	JWTRefreshTTLMinutes int     `env:"JWT_REFRESH_TTL_MINUTES" envDefault:"1440"`
	LoginRatePerMinute   int     `env:"LOGIN_RATE_PER_MINUTE" envDefault:"10"`
	LoginBurst           int     `env:"LOGIN_BURST" envDefault:"5"`
	RateGBP              float64 `env:"RATE_GBP" envDefault:"0.74"`
	RateZAR              float64 `env:"RATE_ZAR" envDefault:"17.75"`
	RedisAddr            string  `env:"REDIS_ADDR"`
	RedisPassword        string  `env:"REDIS_PASSWORD"`
	RedisDB              int     `env:"REDIS_DB" envDefault:"0"`
}

// LoadConfig carga la configuración del cliente desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadServerConfig carga la configuración del backend de desarrollo.
func LoadServerConfig() (*ServerConfig, error) {
	var cfg ServerConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
