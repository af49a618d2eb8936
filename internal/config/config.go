package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	PostRequiresAuth bool // нужен ли логин для мутации post
}

// Load читает .env (если есть) и собирает настройки сервера
func Load() *Config {
	LoadEnv()

	return &Config{
		Port:             GetEnvDefault("PORT", "8080"),
		PostRequiresAuth: GetBoolDefault("POST_REQUIRES_AUTH", true),
	}
}

func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println(".env file not found")
	}
}

// GetEnv возвращает обязательную переменную окружения
func GetEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatalf("environment variable %s is not set", key)
	}
	return value
}

func GetEnvDefault(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func GetBoolDefault(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("invalid value %q for %s, using %v", value, key, fallback)
		return fallback
	}
	return b
}
