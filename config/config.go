package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	DefaultPort              = "8080"
	DefaultRedisAddr         = "localhost:6379"
	DefaultRedisDB           = 0
	DefaultSessionTTLSeconds = 600
)

type Config struct {
	Env               string
	Port              string
	DBURL             string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	SessionTTLSeconds int
}

// Load reads configuration from the environment, layered over an optional
// config/.env.<env> file. Explicit environment variables win over the file.
func Load() *Config {
	env := getEnv("ENV", "development")

	suffix := "dev"
	if env == "production" {
		suffix = "prod"
	}
	// Missing env files are fine, e.g. in CI everything comes from the
	// environment directly.
	_ = godotenv.Load(fmt.Sprintf("config/.env.%s", suffix))

	return &Config{
		Env:               env,
		Port:              getEnv("PORT", DefaultPort),
		DBURL:             mustGetEnv("DB_URL"),
		RedisAddr:         getEnv("REDIS_ADDR", DefaultRedisAddr),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getEnvAsInt("REDIS_DB", DefaultRedisDB),
		SessionTTLSeconds: getEnvAsInt("SESSION_TTL_SECONDS", DefaultSessionTTLSeconds),
	}
}

func getEnv(key string, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func mustGetEnv(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	log.Fatalf("Missing required config: %s", key)
	return ""
}

func getEnvAsInt(key string, defaultVal int) int {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		log.Printf("Invalid value for %s, using default %d", key, defaultVal)
		return defaultVal
	}
	return val
}
