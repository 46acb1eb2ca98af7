// Package config содержит логику чтения конфигурации клиента платформы розыгрышей.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// Config содержит параметры конфигурации клиента платформы розыгрышей.
type Config struct {
	APIURL            string `env:"RAFFLE_API_URL,required"`
	CDNURL            string `env:"RAFFLE_CDN_URL,required"`
	CognitoRegion     string `env:"COGNITO_REGION,required"`
	CognitoUserPoolID string `env:"COGNITO_USER_POOL_ID,required"`
	CognitoClientID   string `env:"COGNITO_CLIENT_ID,required"`

	RunAddress string `env:"RUN_ADDRESS"`
	TokenFile  string `env:"RAFFLE_TOKEN_FILE"`
	AdminGroup string `env:"RAFFLE_ADMIN_GROUP"`
}

// Parse считывает конфигурацию из переменных окружения. Отсутствие
// обязательной переменной приводит к ошибке на старте.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}
	if cfg.AdminGroup == "" {
		cfg.AdminGroup = "Admin"
	}
	if cfg.TokenFile == "" {
		cfg.TokenFile = defaultTokenFile()
	}

	return cfg, nil
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".raffle-tokens.json"
	}
	return filepath.Join(dir, "raffle", "tokens.json")
}
