package config

import (
	"github.com/ilyakaznacheev/cleanenv"
	_ "github.com/joho/godotenv/autoload" // Load .env before reading the environment
)

// Config holds the application configuration.
type Config struct {
	ServerPort        int      `env:"PORT" env-default:"8080"`
	DatabasePath      string   `env:"DATABASE_PATH" env-default:"./taskdeck.db"`
	JWTSecret         string   `env:"JWT_SECRET" env-default:"dev-secret-change-me"`
	PasswordMinLength int      `env:"PASSWORD_MIN_LENGTH" env-default:"8"`
	DueScanCron       string   `env:"DUE_SCAN_CRON" env-default:"*/5 * * * *"`
	AllowedOrigins    []string `env:"ALLOWED_ORIGINS" env-default:"http://localhost:3000"`
}

// Load reads configuration from environment variables, falling back to defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
