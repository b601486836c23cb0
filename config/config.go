package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	AppName      string `env:"APP_NAME" envDefault:"ms-go-community"`
	AppEnv       string `env:"APP_ENV" envDefault:"local"`
	HTTPHost     string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	HTTPPort     string `env:"SERVER_PORT" envDefault:"3000"`
	HTTPBasePath string `env:"HTTP_BASE_PATH" envDefault:"/community"`

	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"app"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"app_password"`
	DBName     string `env:"DB_NAME" envDefault:"community"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	AccessTokenSecret  string        `env:"ACCESS_TOKEN_SECRET_KEY"`
	RefreshTokenSecret string        `env:"REFRESH_TOKEN_SECRET"`
	AccessTTL          time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"12h"`
	RefreshTTL         time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`

	NATSURL                 string `env:"NATS_URL" envDefault:"nats://localhost:4222"`
	NATSUserCreatedSubject  string `env:"NATS_SUBJECT_USER_CREATED" envDefault:"community.user.created"`
	NATSResumeStatusSubject string `env:"NATS_SUBJECT_RESUME_STATUS" envDefault:"community.resume.status-changed"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}
