// Package config loads server configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Config holds everything the server needs to start.
type Config struct {
	Port       int
	DBPath     string
	JWTSecret  string
	BcryptCost int
	Minio      MinioConfig
}

// MinioConfig configures the object storage backend for vehicle photos.
// Leave Endpoint empty to run without photo uploads.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Enabled reports whether object storage is configured at all.
func (m MinioConfig) Enabled() bool {
	return m.Endpoint != ""
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first, if present; real environment variables win.
func Load() (Config, error) {
	godotenv.Load()

	cfg := Config{
		Port:       getEnvInt("PORT", 8080),
		DBPath:     getEnv("DB_PATH", "servicebook.db"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		BcryptCost: getEnvInt("BCRYPT_COST", bcrypt.DefaultCost),
		Minio: MinioConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "servicebook"),
			UseSSL:    getEnv("MINIO_USE_SSL", "false") == "true",
		},
	}

	// The token signing secret has no sane default. Refusing to start beats
	// signing tokens with a guessable value.
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("config: JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		if _, err := fmt.Sscanf(valueStr, "%d", &value); err == nil {
			return value
		}
	}
	return defaultValue
}
