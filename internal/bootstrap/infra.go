// 文件路径: internal/bootstrap/infra.go
// 模块说明: 组装缓存、令牌、哈希、通知、上传等共享基础设施。
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/brinaregal/brina/internal/async"
	"github.com/brinaregal/brina/internal/auth/token"
	"github.com/brinaregal/brina/internal/cache"
	"github.com/brinaregal/brina/internal/config"
	"github.com/brinaregal/brina/internal/media"
	"github.com/brinaregal/brina/internal/notifier"
	"github.com/brinaregal/brina/internal/security"
	"github.com/brinaregal/brina/internal/support/hash"
)

// fallbackLocation is Benin time (UTC+1, no DST) for hosts without tzdata.
var fallbackLocation = time.FixedZone("WAT", 3600)

const liveFeedBuffer = 32

// Infrastructure bundles shared helpers required by the services.
type Infrastructure struct {
	Cache       cache.Store
	Token       *token.Manager
	Hasher      hash.Hasher
	RateLimiter *security.RateLimiter
	Audit       security.Recorder

	// Delivery is the real channel (webhook or log); Outbox only queues.
	Delivery notifier.Service
	Outbox   notifier.Service
	Queue    *async.NotificationQueue
	Hub      *async.EventHub

	Uploader media.Uploader
	Location *time.Location
}

// BuildInfrastructure wires default implementations from configuration.
func BuildInfrastructure(cfg *config.Config, logger *slog.Logger) (*Infrastructure, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required / 配置不能为空")
	}
	if logger == nil {
		logger = slog.Default()
	}

	infra := &Infrastructure{}
	cacheOpts := cache.Options{
		Prefix:          "brina",
		DefaultTTL:      cfg.Cache.DefaultTTL,
		CleanupInterval: time.Minute,
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Cache.Driver)) {
	case "", "memory":
		infra.Cache = cache.NewMemoryStore(cacheOpts)
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := client.Ping(ctx).Err()
		cancel()
		if err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis ping %s: %w", cfg.Cache.Redis.Addr, err)
		}
		infra.Cache = cache.NewRedisStore(client, cacheOpts)
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Cache.Driver)
	}

	if strings.TrimSpace(cfg.Auth.SigningKey) == "" || cfg.Auth.SigningKey == defaultJWTSigningKey {
		return nil, fmt.Errorf("auth.signing_key must be resolved before building infrastructure")
	}
	tokenManager, err := token.NewManager(token.Options{
		SigningKey: []byte(cfg.Auth.SigningKey),
		Issuer:     cfg.Auth.Issuer,
		Audience:   cfg.Auth.Audience,
		TTL:        cfg.Auth.TokenTTL,
		Leeway:     cfg.Auth.Leeway,
	})
	if err != nil {
		return nil, fmt.Errorf("token manager: %w", err)
	}
	infra.Token = tokenManager

	hasher, err := hash.NewBcryptHasher(cfg.Auth.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("bcrypt hasher: %w", err)
	}
	infra.Hasher = hasher

	rateLimiter, err := security.NewRateLimiter(infra.Cache)
	if err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	infra.RateLimiter = rateLimiter
	infra.Audit = security.NewLoggerRecorder(logger)

	delivery, err := buildNotifier(cfg.Notify, logger)
	if err != nil {
		return nil, err
	}
	infra.Delivery = delivery
	infra.Queue = async.NewNotificationQueue()
	infra.Outbox = async.NewQueueNotifier(infra.Queue)
	infra.Hub = async.NewEventHub(liveFeedBuffer)

	uploader, err := BuildUploader(cfg.Media, logger)
	if err != nil {
		return nil, err
	}
	infra.Uploader = uploader
	infra.Location = LoadLocation(cfg.Restaurant.Timezone, logger)

	return infra, nil
}

// Close releases network clients held by the infrastructure.
func (i *Infrastructure) Close() error {
	if i == nil {
		return nil
	}
	if i.Cache != nil {
		// the redis store owns its client
		return i.Cache.Close()
	}
	return nil
}

func buildNotifier(cfg config.NotifyConfig, logger *slog.Logger) (notifier.Service, error) {
	if strings.TrimSpace(cfg.WebhookURL) == "" {
		return notifier.NewLoggerService(logger), nil
	}
	webhook, err := notifier.NewWebhookService(cfg.WebhookURL, cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("notify webhook: %w", err)
	}
	return webhook, nil
}

// BuildUploader selects the media driver.
func BuildUploader(cfg config.MediaConfig, logger *slog.Logger) (media.Uploader, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", media.DriverLocal:
		uploader, err := media.NewLocalUploader(cfg.Local.Dir, cfg.Local.BaseURL)
		if err != nil {
			return nil, err
		}
		return uploader, nil
	case media.DriverCloudinary:
		uploader, err := media.NewCloudinaryUploader(media.CloudinaryOptions{
			CloudName:    cfg.Cloudinary.CloudName,
			UploadPreset: cfg.Cloudinary.UploadPreset,
			APIBase:      cfg.Cloudinary.APIBase,
			APIKey:       cfg.Cloudinary.APIKey,
			APISecret:    cfg.Cloudinary.APISecret,
			Timeout:      cfg.Timeout,
			Logger:       logger,
		})
		if err != nil {
			return nil, err
		}
		return uploader, nil
	default:
		return nil, fmt.Errorf("unknown media driver %q", cfg.Driver)
	}
}

// LoadLocation resolves the restaurant time zone, falling back to UTC+1.
func LoadLocation(name string, logger *slog.Logger) *time.Location {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallbackLocation
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		if logger != nil {
			logger.Warn("time zone unavailable, using WAT", "timezone", name, "error", err)
		}
		return fallbackLocation
	}
	return loc
}
