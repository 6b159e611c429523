// Package config загружает конфигурацию клиента и dev-сервера.
//
// Источники (по убыванию приоритета):
//  1. явный путь --config;
//  2. CONFIG_PATH;
//  3. ./local.yaml;
//  4. только ENV (cleanenv).
//
// Перед разбором переменные из необязательного файла .env добавляются в окружение.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/maynagashev/glutenfree/internal/location"
)

const localConfigFile = "local.yaml"

type Config struct {
	Env        string           `yaml:"env" env:"ENV" env-default:"local"`
	API        APIConfig        `yaml:"api"`
	TokenStore TokenStoreConfig `yaml:"token_store"`
	Log        LogConfig        `yaml:"log"`
	Location   LocationConfig   `yaml:"location"`
	DevServer  DevServerConfig  `yaml:"devserver"`
}

// APIConfig задает адрес бэкенда и ограничение времени на запрос.
type APIConfig struct {
	BaseURL string        `yaml:"base_url" env:"API_BASE_URL" env-default:"http://localhost:8000"`
	Timeout time.Duration `yaml:"timeout"  env:"API_TIMEOUT"  env-default:"30s"`
}

// TokenStoreConfig описывает зашифрованный файл для токена доступа.
// Без пароля токен хранится только в памяти.
type TokenStoreConfig struct {
	Path       string `yaml:"path"       env:"TOKEN_STORE_PATH"       env-default:"glutenfree.kdbx"`
	Passphrase string `yaml:"passphrase" env:"TOKEN_STORE_PASSPHRASE"`
}

// LogConfig задает уровень, формат и каталог логов.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
	Dir    string `yaml:"dir"    env:"LOG_DIR"    env-default:"logs"`
}

// LocationConfig хранит местоположение устройства в виде "широта,долгота".
type LocationConfig struct {
	Coordinate string `yaml:"coordinate" env:"DEVICE_LOCATION"`
}

// Parse возвращает координату, если она задана.
func (l LocationConfig) Parse() (location.Coordinate, bool, error) {
	if l.Coordinate == "" {
		return location.Coordinate{}, false, nil
	}
	c, err := location.ParseCoordinate(l.Coordinate)
	if err != nil {
		return location.Coordinate{}, false, err
	}
	return c, true, nil
}

// DevServerConfig настраивает локальный бэкенд для разработки и тестов.
type DevServerConfig struct {
	Addr      string        `yaml:"addr"       env:"DEVSERVER_ADDR"       env-default:"127.0.0.1:8000"`
	JWTSecret string        `yaml:"jwt_secret" env:"DEVSERVER_JWT_SECRET" env-default:"dev-secret-change-me"`
	TokenTTL  time.Duration `yaml:"token_ttl"  env:"DEVSERVER_TOKEN_TTL"  env-default:"24h"`
	NoSeed    bool          `yaml:"no_seed"    env:"DEVSERVER_NO_SEED"`
}

// MustLoad загружает конфигурацию и паникует при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load читает конфигурацию из первого найденного источника и накладывает ENV.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	var cfg Config

	tryRead := func(p string) (*Config, error) {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}
		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}
		return &cfg, nil
	}

	// 1) --config
	if path != "" {
		return tryRead(path)
	}

	// 2) CONFIG_PATH
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	// 3) ./local.yaml
	if _, err := os.Stat(localConfigFile); err == nil {
		return tryRead(localConfigFile)
	}

	// 4) только ENV
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}
	return &cfg, nil
}

// loadDotEnv добавляет переменные из файла в окружение, не перезаписывая уже заданные.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", path, err)
}
