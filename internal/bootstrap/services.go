// 文件路径: internal/bootstrap/services.go
// 模块说明: 由配置、存储与基础设施组装全部业务服务，serve 与 CLI 子命令共用。
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/brinaregal/brina/internal/api"
	"github.com/brinaregal/brina/internal/config"
	"github.com/brinaregal/brina/internal/migrations"
	"github.com/brinaregal/brina/internal/monitor"
	"github.com/brinaregal/brina/internal/repository/sqlite"
	"github.com/brinaregal/brina/internal/service"
	"github.com/brinaregal/brina/internal/support/i18n"
)

// Services is the fully wired application.
type Services struct {
	API          api.Services
	Housekeeping service.HousekeepingService
}

// ServiceOptions carries the runtime facts that are not in configuration.
type ServiceOptions struct {
	Version   string
	StartedAt time.Time
}

// BuildServices wires every service against the shared store and infrastructure.
func BuildServices(cfg *config.Config, store *sqlite.Store, infra *Infrastructure, logger *slog.Logger, opts ServiceOptions) (*Services, error) {
	if cfg == nil || store == nil || infra == nil {
		return nil, fmt.Errorf("config, store and infrastructure are required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.StartedAt.IsZero() {
		opts.StartedAt = time.Now().UTC()
	}

	i18nManager, err := i18n.NewManager(
		i18n.WithLogger(logger),
		i18n.WithDefaultLang(i18n.DefaultLang),
	)
	if err != nil {
		return nil, err
	}

	zones := make([]service.Zone, 0, len(cfg.Restaurant.Zones))
	for _, z := range cfg.Restaurant.Zones {
		zones = append(zones, service.Zone{Code: z.Code, Label: z.Label, RequiresProof: z.RequiresProof})
	}
	restaurant, err := service.NewRestaurantService(service.RestaurantOptions{
		Name:         cfg.Restaurant.Name,
		Phone:        cfg.Restaurant.Phone,
		FirstSlot:    cfg.Restaurant.FirstSlot,
		LastSlot:     cfg.Restaurant.LastSlot,
		SlotMinutes:  cfg.Restaurant.SlotMinutes,
		MaxPartySize: cfg.Restaurant.MaxPartySize,
		Zones:        zones,
		Location:     infra.Location,
	})
	if err != nil {
		return nil, fmt.Errorf("restaurant: %w", err)
	}

	authService := service.NewAuthService(service.AuthDeps{
		Users:     store.Users(),
		Settings:  store.Settings(),
		LoginLogs: store.LoginLogs(),
		Hasher:    infra.Hasher,
		Tokens:    infra.Token,
		Rate:      infra.RateLimiter,
		Audit:     infra.Audit,
		Cache:     infra.Cache,
	})
	orderLogger := logger.With("component", "orders")

	cartService := service.NewCartService(infra.Cache, store.Products(), cfg.Cart.TTL)
	// the monitor reports the disk holding the database
	diskPath := filepath.Dir(cfg.DB.Path)

	svc := &Services{
		API: api.Services{
			Catalog:    service.NewCatalogService(store.Products()),
			Cart:       cartService,
			Restaurant: restaurant,
			Checkout: service.NewCheckoutService(service.CheckoutDeps{
				Orders:     store.Orders(),
				Products:   store.Products(),
				Users:      store.Users(),
				Carts:      cartService,
				Restaurant: restaurant,
				Notifier:   infra.Outbox,
				Events:     infra.Hub,
				Rate:       infra.RateLimiter,
				Logger:     orderLogger,
			}),
			Reservation: service.NewReservationService(store.Orders(), restaurant, infra.Outbox, infra.Hub, orderLogger),
			Review:      service.NewReviewService(store.Reviews(), store.Users()),
			Auth:        authService,
			Register:    service.NewRegisterService(store.Users(), infra.Hasher, authService, infra.RateLimiter, infra.Audit),
			Account:     service.NewAccountService(store.Users(), store.Orders(), infra.Hasher),
			Install:     service.NewInstallService(store.Users(), infra.Hasher, infra.Audit),
			Upload:      service.NewUploadService(infra.Uploader, store.MediaAssets(), cfg.Media.MaxBytes, logger),

			AdminOrder:   service.NewAdminOrderService(store.Orders(), infra.Outbox, infra.Hub, infra.Audit, orderLogger),
			AdminProduct: service.NewAdminProductService(store.Products(), logger),
			AdminReview:  service.NewAdminReviewService(store.Reviews(), logger),
			AdminStat:    service.NewAdminStatService(store, restaurant),
			AdminUser:    service.NewAdminUserService(store.Users(), infra.Audit),
			AdminSettings: service.NewAdminSettingsService(service.AdminSettingsOptions{
				Settings: store.Settings(),
				Audit:    infra.Audit,
			}),
			AdminSystem: service.NewAdminSystemService(service.AdminSystemOptions{
				Version:     opts.Version,
				Environment: cfg.Log.Environment,
				StartedAt:   opts.StartedAt,
				Queue:       infra.Queue,
				Feed:        infra.Hub,
				Host:        monitor.New(diskPath),
				SchemaVersion: func(context.Context) (int64, error) {
					return migrations.Version(store.DB())
				},
				HostnameResolver: os.Hostname,
			}),
			Feed: infra.Hub,
			I18n: i18nManager,
		},
		Housekeeping: service.NewHousekeepingService(service.HousekeepingOptions{
			Orders:            store.Orders(),
			LoginLogs:         store.LoginLogs(),
			Notifier:          infra.Outbox,
			Events:            infra.Hub,
			StaleAfter:        cfg.Orders.StaleAfter,
			LoginLogRetention: cfg.Auth.LoginLogRetention,
			Logger:            logger,
		}),
	}
	return svc, nil
}
