package internal

import (
	"errors"
	"os"
	"time"
)

// Config holds the values main reads from the environment (.env is loaded first).
type Config struct {
	MongoURI  string
	DB        string
	JWTSecret string
	Listen    string
	TokenTTL  time.Duration
	LogLevel  string
	LogDir    string
	Debug     bool
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		MongoURI:  getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017")),
		DB:        getEnv("MAIN_DB", "meal-managements"),
		JWTSecret: getEnv("JWT_SECRET", os.Getenv("KEY")),
		Listen:    getEnv("LISTEN", ":"+getEnv("PORT", "5000")),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogDir:    os.Getenv("LOG_DIR"),
		Debug:     os.Getenv("DEBUG") == "true",
	}

	ttl, err := time.ParseDuration(getEnv("TOKEN_TTL", "168h"))
	if err != nil {
		return nil, errors.New("TOKEN_TTL must be a duration such as 168h")
	}
	cfg.TokenTTL = ttl

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
