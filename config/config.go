package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config is read from the environment, after an optional .env file.
type Config struct {
	ListenAddress    string `env:"LISTEN_ADDRESS" envDefault:":3002"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	StorageType      string `env:"STORAGE_TYPE" envDefault:"memory"`
	LocalStoragePath string `env:"LOCAL_STORAGE_PATH" envDefault:"./data"`
	DataSourceName   string `env:"DATA_SOURCE_NAME" envDefault:"emojiart.db"`
	S3BucketName     string `env:"S3_BUCKET_NAME"`
	JWTSecret        string `env:"JWT_SECRET"`
}

// Load reads files (default ".env") into the environment without overriding
// variables already set, then parses Config.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil {
		logrus.Info("No .env file found")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
