package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisURL string

	JWTSecret        string
	SessionMaxAgeSec int

	StorageAccountID       string
	StorageAccessKeyID     string
	StorageSecretAccessKey string
	StorageBucketName      string
	StoragePublicURL       string

	DefaultAvatarURL string
}

func Load() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables")
	}

	sessionMaxAge, err := strconv.Atoi(os.Getenv("SESSION_MAX_AGE"))
	if err != nil || sessionMaxAge <= 0 {
		sessionMaxAge = 2592000 // 30 days
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	return &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),

		RedisURL: redisURL,

		JWTSecret:        os.Getenv("JWT_SECRET"),
		SessionMaxAgeSec: sessionMaxAge,

		StorageAccountID:       os.Getenv("STORAGE_ACCOUNT_ID"),
		StorageAccessKeyID:     os.Getenv("STORAGE_ACCESS_KEY_ID"),
		StorageSecretAccessKey: os.Getenv("STORAGE_SECRET_ACCESS_KEY"),
		StorageBucketName:      os.Getenv("STORAGE_BUCKET_NAME"),
		StoragePublicURL:       os.Getenv("STORAGE_PUBLIC_URL"),

		DefaultAvatarURL: os.Getenv("DEFAULT_AVATAR_URL"),
	}, nil
}
