package config

import (
	"log/slog"
	"time"
)

// Config 汇总应用的全部配置。
type Config struct {
	HTTP       HTTPConfig       `mapstructure:"http"`
	Log        LogConfig        `mapstructure:"log"`
	DB         DBConfig         `mapstructure:"database"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Cart       CartConfig       `mapstructure:"cart"`
	Media      MediaConfig      `mapstructure:"media"`
	Notify     NotifyConfig     `mapstructure:"notify"`
	Orders     OrdersConfig     `mapstructure:"orders"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Restaurant RestaurantConfig `mapstructure:"restaurant"`
}

// MetricsConfig 定义 Prometheus 指标配置。
type MetricsConfig struct {
	Enabled   bool      `mapstructure:"enabled"`
	Namespace string    `mapstructure:"namespace"`
	Subsystem string    `mapstructure:"subsystem"`
	Token     string    `mapstructure:"token"`
	Buckets   []float64 `mapstructure:"buckets"`
}

// HTTPConfig 定义 HTTP 服务配置。
type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// AllowedOrigins 为空时允许任意来源跨域。
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig 定义日志配置。
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Format      string `mapstructure:"format"`
	AddSource   bool   `mapstructure:"add_source"`
	Environment string `mapstructure:"environment"`
}

// DBConfig 定义数据库配置。
type DBConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

// AuthConfig 定义认证配置。
type AuthConfig struct {
	SigningKey string        `mapstructure:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	Issuer     string        `mapstructure:"issuer"`
	Audience   string        `mapstructure:"audience"`
	Leeway     time.Duration `mapstructure:"leeway"`
	BcryptCost int           `mapstructure:"bcrypt_cost"`

	// LoginLogRetention bounds how long login attempts are kept.
	LoginLogRetention time.Duration `mapstructure:"login_log_retention"`
}

// CacheConfig selects the cache backend shared by carts, rate limits and login counters.
type CacheConfig struct {
	Driver     string        `mapstructure:"driver"`
	DefaultTTL time.Duration `mapstructure:"default_ttl"`
	Redis      RedisConfig   `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CartConfig 定义购物车保存时长。
type CartConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// MediaConfig 定义图片上传配置。
type MediaConfig struct {
	Driver     string           `mapstructure:"driver"`
	MaxBytes   int64            `mapstructure:"max_bytes"`
	Timeout    time.Duration    `mapstructure:"timeout"`
	Local      LocalMediaConfig `mapstructure:"local"`
	Cloudinary CloudinaryConfig `mapstructure:"cloudinary"`
}

type LocalMediaConfig struct {
	Dir     string `mapstructure:"dir"`
	BaseURL string `mapstructure:"base_url"`
}

type CloudinaryConfig struct {
	CloudName    string `mapstructure:"cloud_name"`
	UploadPreset string `mapstructure:"upload_preset"`
	APIBase      string `mapstructure:"api_base"`
	APIKey       string `mapstructure:"api_key"`
	APISecret    string `mapstructure:"api_secret"`
}

// NotifyConfig 定义订单通知投递配置。
type NotifyConfig struct {
	WebhookURL string        `mapstructure:"webhook_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// OrdersConfig 定义订单处理参数。
type OrdersConfig struct {
	StaleAfter time.Duration `mapstructure:"stale_after"`
}

// RestaurantConfig 描述餐厅营业信息与配送区域。
type RestaurantConfig struct {
	Name         string       `mapstructure:"name"`
	Phone        string       `mapstructure:"phone"`
	Timezone     string       `mapstructure:"timezone"`
	FirstSlot    string       `mapstructure:"first_slot"`
	LastSlot     string       `mapstructure:"last_slot"`
	SlotMinutes  int          `mapstructure:"slot_minutes"`
	MaxPartySize int          `mapstructure:"max_party_size"`
	Zones        []ZoneConfig `mapstructure:"zones"`
}

// ZoneConfig is one delivery place offered at checkout.
type ZoneConfig struct {
	Code          string `mapstructure:"code"`
	Label         string `mapstructure:"label"`
	RequiresProof bool   `mapstructure:"requires_proof"`
}

func (c LogConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
