package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// envFile is loaded if present; real environment variables win over it.
var envFile = ".env"

// parseEnv overlays PARKING_* environment variables. PORT and DATABASE_URL
// are honoured too, as most hosting platforms set them.
func parseEnv(config *Config) {
	_ = godotenv.Load(envFile)

	if v := os.Getenv("PORT"); v != "" {
		config.ListenAddr = ":" + v
	}
	if v := os.Getenv("PARKING_ADDR"); v != "" {
		config.ListenAddr = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		config.DatabaseDSN = v
	}
	if v := os.Getenv("PARKING_DATABASE_DSN"); v != "" {
		config.DatabaseDSN = v
	}
	if v := os.Getenv("PARKING_STORAGE"); v != "" {
		config.Storage = v
	}
	if v := os.Getenv("PARKING_SECRET_KEY"); v != "" {
		config.SecretKey = v
	}
	if v := os.Getenv("PARKING_TIMEZONE"); v != "" {
		config.TimeZone = v
	}
	if v := os.Getenv("PARKING_LOG_LEVEL"); v != "" {
		config.LogLevel = v
	}
	if v := os.Getenv("PARKING_RUN_MIGRATIONS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.RunMigration = b
		}
	}
}
