package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	AppEnv   string `yaml:"app_env"`
	LogLevel string `yaml:"log_level"`

	GRPCPort int `yaml:"grpc_port"`
	HTTPPort int `yaml:"http_port"`

	Cart     CartConfig    `yaml:"cart"`
	Storage  StorageConfig `yaml:"storage"`
	Shop     ShopConfig    `yaml:"shop"`
	Notifier string        `yaml:"notifier"`
}

type CartConfig struct {
	Namespace   string        `yaml:"namespace"`
	IdleWindow  time.Duration `yaml:"idle_window"`
	MaxQuantity int           `yaml:"max_quantity"`
}

type StorageConfig struct {
	Backend    string        `yaml:"backend"`
	SQLitePath string        `yaml:"sqlite_path"`
	RedisURL   string        `yaml:"redis_url"`
	RedisTTL   time.Duration `yaml:"redis_ttl"`
}

type ShopConfig struct {
	Name           string `yaml:"name"`
	WhatsAppNumber string `yaml:"whatsapp_number"`
}

func Default() Config {
	return Config{
		AppEnv:   "dev",
		LogLevel: "info",
		HTTPPort: 8080,
		GRPCPort: 8081,
		Cart: CartConfig{
			Namespace:   "kue-tampah",
			IdleWindow:  15 * time.Minute,
			MaxQuantity: 99,
		},
		Storage: StorageConfig{
			Backend:    "sqlite",
			SQLitePath: "data/storefront.db",
		},
		Shop: ShopConfig{
			Name: "Kue Tampah",
		},
		Notifier: "log",
	}
}

// Load starts from Default, overlays the YAML file named by CONFIG_FILE
// and finally the environment.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := overlayFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	cfg.AppEnv = getEnv("APP_ENV", cfg.AppEnv)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.HTTPPort = getEnvInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = getEnvInt("GRPC_PORT", cfg.GRPCPort)

	cfg.Cart.Namespace = getEnv("CART_NAMESPACE", cfg.Cart.Namespace)
	cfg.Cart.IdleWindow = getEnvDuration("CART_IDLE_WINDOW", cfg.Cart.IdleWindow)
	cfg.Cart.MaxQuantity = getEnvInt("CART_MAX_QUANTITY", cfg.Cart.MaxQuantity)

	cfg.Storage.Backend = getEnv("STORAGE_BACKEND", cfg.Storage.Backend)
	cfg.Storage.SQLitePath = getEnv("SQLITE_PATH", cfg.Storage.SQLitePath)
	cfg.Storage.RedisURL = getEnv("REDIS_URL", cfg.Storage.RedisURL)
	cfg.Storage.RedisTTL = getEnvDuration("REDIS_TTL", cfg.Storage.RedisTTL)

	cfg.Shop.Name = getEnv("SHOP_NAME", cfg.Shop.Name)
	cfg.Shop.WhatsAppNumber = getEnv("SHOP_WHATSAPP_NUMBER", cfg.Shop.WhatsAppNumber)
	cfg.Notifier = getEnv("NOTIFIER", cfg.Notifier)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Cart.IdleWindow <= 0 {
		errs = append(errs, fmt.Errorf("cart idle window must be positive, got %s", c.Cart.IdleWindow))
	}
	if c.Cart.MaxQuantity < 1 {
		errs = append(errs, fmt.Errorf("cart max quantity must be at least 1, got %d", c.Cart.MaxQuantity))
	}
	switch c.Storage.Backend {
	case "none", "memory", "sqlite", "redis":
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.Storage.Backend))
	}
	switch c.Notifier {
	case "none", "log", "redis":
	default:
		errs = append(errs, fmt.Errorf("unknown notifier %q", c.Notifier))
	}
	return errors.Join(errs...)
}

func overlayFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)

	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
