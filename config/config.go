package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is loaded once at startup and treated as immutable afterwards.
type Config struct {
	Env    string
	Port   string
	DBURL  string
	Log    LogConfig
	JWT    JWTConfig
	Bcrypt BcryptConfig
	Login  LoginConfig
}

type LogConfig struct {
	Level string
}

type JWTConfig struct {
	SecretKey          string
	Issuer             string
	Audience           string
	AccessTokenMinutes int
	RefreshTokenDays   int
}

type BcryptConfig struct {
	WorkFactor int
}

type LoginConfig struct {
	MaxAttempts    int
	LockoutMinutes int
}

func Load() *Config {
	// Best effort: ignore a missing .env, real env vars win either way.
	_ = godotenv.Load("config/.env")

	return &Config{
		Env:   getEnv("ENV", "development"),
		Port:  getEnv("PORT", "8080"),
		DBURL: mustGetEnv("DB_URL"),
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		JWT: JWTConfig{
			SecretKey:          mustGetEnv("JWT_SECRET_KEY"),
			Issuer:             getEnv("JWT_ISSUER", "cobblestone-api"),
			Audience:           getEnv("JWT_AUDIENCE", "cobblestone-clients"),
			AccessTokenMinutes: getEnvAsInt("JWT_ACCESS_TOKEN_MINUTES", 30),
			RefreshTokenDays:   getEnvAsInt("JWT_REFRESH_TOKEN_DAYS", 7),
		},
		Bcrypt: BcryptConfig{
			WorkFactor: getEnvAsInt("BCRYPT_WORK_FACTOR", 12),
		},
		Login: LoginConfig{
			MaxAttempts:    getEnvAsInt("LOGIN_MAX_ATTEMPTS", 5),
			LockoutMinutes: getEnvAsInt("LOGIN_LOCKOUT_MINUTES", 15),
		},
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
	log.Fatalf("Missing required environment variable: %s", key)
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
