package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads config.yaml (or the explicit file when configFile is set), then the
// legacy .env file, then BRINA_* environment variables.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/brina/")
	}

	v.SetEnvPrefix("BRINA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("media.cloudinary.cloud_name", "BRINA_MEDIA_CLOUDINARY_CLOUD_NAME", "CLOUDINARY_CLOUD_NAME"); err != nil {
		return nil, fmt.Errorf("bind env media.cloudinary.cloud_name: %w", err)
	}
	if err := v.BindEnv("media.cloudinary.upload_preset", "BRINA_MEDIA_CLOUDINARY_UPLOAD_PRESET", "CLOUDINARY_UPLOAD_PRESET"); err != nil {
		return nil, fmt.Errorf("bind env media.cloudinary.upload_preset: %w", err)
	}
	if err := v.BindEnv("cache.redis.addr", "BRINA_CACHE_REDIS_ADDR", "REDIS_ADDR"); err != nil {
		return nil, fmt.Errorf("bind env cache.redis.addr: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if configFile == "" {
		if err := loadDotEnv(v); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", "0.0.0.0:8080")
	v.SetDefault("http.shutdown_timeout", "15s")
	v.SetDefault("http.allowed_origins", []string{})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.environment", "production")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "data/brina.db")

	v.SetDefault("auth.signing_key", "")
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("auth.issuer", "brina")
	v.SetDefault("auth.audience", "brina-web")
	v.SetDefault("auth.leeway", "30s")
	v.SetDefault("auth.bcrypt_cost", 12)
	v.SetDefault("auth.login_log_retention", "720h")

	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.default_ttl", "10m")
	v.SetDefault("cache.redis.addr", "127.0.0.1:6379")
	v.SetDefault("cache.redis.db", 0)

	v.SetDefault("cart.ttl", "72h")

	v.SetDefault("media.driver", "local")
	v.SetDefault("media.max_bytes", 5<<20)
	v.SetDefault("media.timeout", "30s")
	v.SetDefault("media.local.dir", "data/uploads")
	v.SetDefault("media.local.base_url", "/uploads")
	v.SetDefault("media.cloudinary.api_base", "https://api.cloudinary.com/v1_1")

	v.SetDefault("notify.timeout", "10s")

	v.SetDefault("orders.stale_after", "15m")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.namespace", "brina")
	v.SetDefault("metrics.subsystem", "http")

	v.SetDefault("restaurant.name", "Brina'Régal")
	v.SetDefault("restaurant.timezone", "Africa/Porto-Novo")
	v.SetDefault("restaurant.first_slot", "13:00")
	v.SetDefault("restaurant.last_slot", "23:30")
	v.SetDefault("restaurant.slot_minutes", 30)
	v.SetDefault("restaurant.max_party_size", 10)
	v.SetDefault("restaurant.zones", []map[string]any{
		{"code": "restaurant", "label": "Sur place (restaurant)", "requires_proof": false},
		{"code": "dekounge", "label": "Dékoungbé", "requires_proof": false},
		{"code": "abomey", "label": "Abomey-Calavi", "requires_proof": false},
		{"code": "hors_zone", "label": "Hors zone", "requires_proof": true},
	})
}

func loadDotEnv(v *viper.Viper) error {
	candidates := []string{".", ".."}
	for _, path := range candidates {
		file := filepath.Clean(filepath.Join(path, ".env"))
		if _, err := os.Stat(file); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("stat .env: %w", err)
		}

		// separate instance so dotenv string values do not clash with typed yaml keys
		envViper := viper.New()
		envViper.SetConfigFile(file)
		envViper.SetConfigType("env")
		if err := envViper.ReadInConfig(); err != nil {
			return fmt.Errorf("read .env: %w", err)
		}
		bindLegacyEnv(v, envViper)
	}
	return nil
}

// bindLegacyEnv maps flat .env keys onto the nested configuration.
func bindLegacyEnv(target *viper.Viper, source *viper.Viper) {
	mappings := map[string]string{
		"HTTP_ADDR":                "http.addr",
		"PORT":                     "http.addr",
		"LOG_LEVEL":                "log.level",
		"LOG_FORMAT":               "log.format",
		"APP_ENV":                  "log.environment",
		"DB_PATH":                  "database.path",
		"AUTH_SIGNING_KEY":         "auth.signing_key",
		"JWT_SECRET":               "auth.signing_key",
		"REDIS_ADDR":               "cache.redis.addr",
		"REDIS_PASSWORD":           "cache.redis.password",
		"CLOUDINARY_CLOUD_NAME":    "media.cloudinary.cloud_name",
		"CLOUDINARY_UPLOAD_PRESET": "media.cloudinary.upload_preset",
		"CLOUDINARY_API_KEY":       "media.cloudinary.api_key",
		"CLOUDINARY_API_SECRET":    "media.cloudinary.api_secret",
		"WEBHOOK_URL":              "notify.webhook_url",
		"CORS_ORIGINS":             "http.allowed_origins",
	}

	for oldKey, newKey := range mappings {
		val := source.GetString(oldKey)
		if val == "" {
			continue
		}
		if oldKey == "PORT" && !strings.Contains(val, ":") {
			val = "0.0.0.0:" + val
		}
		target.Set(newKey, val)
	}
}
