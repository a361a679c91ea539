package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort       string        `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL    string        `env:"DATABASE_URL,required,notEmpty"`
	AutoMigrate    bool          `env:"AUTO_MIGRATE" envDefault:"false"`
	JWTSecret      string        `env:"JWT_SECRET,required,notEmpty"`
	CORSOrigin     string        `env:"CORS_ORIGIN" envDefault:"http://localhost:5173"`
	RedisAddr      string        `env:"REDIS_ADDR"`
	RedisPassword  string        `env:"REDIS_PASSWORD"`
	RedisDB        int           `env:"REDIS_DB" envDefault:"0"`
	SendRateLimit  int           `env:"SEND_RATE_LIMIT" envDefault:"30"`
	SendRateWindow time.Duration `env:"SEND_RATE_WINDOW" envDefault:"1m"`
	WSSendBuffer   int           `env:"WS_SEND_BUFFER" envDefault:"64"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
