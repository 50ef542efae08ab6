// 文件路径: internal/api/router.go
// 模块说明: 组装 chi 路由与中间件链，/api/v1 下分公开、顾客、管理员三组。
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brinaregal/brina/internal/api/handler"
	"github.com/brinaregal/brina/internal/api/middleware"
	"github.com/brinaregal/brina/internal/async"
	"github.com/brinaregal/brina/internal/config"
	"github.com/brinaregal/brina/internal/service"
	"github.com/brinaregal/brina/internal/support/i18n"
)

// Services holds everything the HTTP surface calls into.
type Services struct {
	Catalog     service.CatalogService
	Cart        service.CartService
	Checkout    service.CheckoutService
	Reservation service.ReservationService
	Review      service.ReviewService
	Restaurant  service.RestaurantService
	Auth        service.AuthService
	Register    service.RegisterService
	Account     service.AccountService
	Install     service.InstallService
	Upload      service.UploadService

	AdminOrder    service.AdminOrderService
	AdminProduct  service.AdminProductService
	AdminReview   service.AdminReviewService
	AdminStat     service.AdminStatService
	AdminSystem   service.AdminSystemService
	AdminUser     service.AdminUserService
	AdminSettings service.AdminSettingsService

	Feed *async.EventHub
	I18n *i18n.Manager
}

// NewRouter wires middleware and every route.
func NewRouter(logger *slog.Logger, services Services, metricsCfg config.MetricsConfig, opts ...RouterOption) http.Handler {
	var options routerOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if options.uploadMaxBytes <= 0 {
		options.uploadMaxBytes = 5 << 20
	}
	mustHave(services)

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)

	if metricsCfg.Enabled {
		mCfg := middleware.DefaultMetricsConfig()
		if metricsCfg.Namespace != "" {
			mCfg.Namespace = metricsCfg.Namespace
		}
		if metricsCfg.Subsystem != "" {
			mCfg.Subsystem = metricsCfg.Subsystem
		}
		if len(metricsCfg.Buckets) > 0 {
			mCfg.Buckets = metricsCfg.Buckets
		}
		mCfg.Registerer = options.registerer
		r.Use(middleware.NewMetrics(mCfg).Middleware())
	}

	middlewares := []func(http.Handler) http.Handler{
		middleware.CORS(options.origins),
		middleware.BodyLimit(middleware.BodyLimitConfig{
			MaxBytes:       1 << 20,
			UploadMaxBytes: options.uploadMaxBytes + 1<<20, // multipart overhead
		}),
		// language first so access logs and rate-limit errors know it
		middleware.I18n(services.I18n),
	}
	if options.limiter != nil {
		rl := middleware.DefaultRateLimitConfig()
		rl.Limiter = options.limiter
		rl.Logger = logger
		rl.I18n = services.I18n
		if options.rateLimit > 0 {
			rl.Limit = options.rateLimit
		}
		middlewares = append(middlewares, middleware.RateLimit(rl))
	}
	middlewares = append(middlewares,
		middleware.StructuredLogger(middleware.LoggingConfig{
			Logger:        logger,
			SlowThreshold: 500 * time.Millisecond,
			SkipPaths:     []string{"/health", "/metrics"},
		}),
		chiMiddleware.Recoverer,
		chiMiddleware.Compress(5),
		middleware.CartID,
		middleware.InstallGuard(logger, services.Install),
	)
	r.Use(middlewares...)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"ts":     time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	if metricsCfg.Enabled {
		metricsHandler := promhttp.Handler()
		if options.gatherer != nil {
			metricsHandler = promhttp.HandlerFor(options.gatherer, promhttp.HandlerOpts{})
		}
		if metricsCfg.Token != "" {
			r.With(middleware.MetricsGuard(metricsCfg.Token)).Handle("/metrics", metricsHandler)
		} else {
			r.Handle("/metrics", metricsHandler)
		}
	}

	if options.uploadsDir != "" {
		mountUploads(r, options.uploadsDir, options.uploadsURL)
	}

	r.Route("/api/v1", func(v1 chi.Router) {
		registerPublicRoutes(v1, services)
		registerCustomerRoutes(v1, services)
		registerAdminRoutes(v1, services, logger)
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		logger.Warn("unmapped route hit", "method", req.Method, "path", req.URL.Path)
		handler.RespondErrorI18n(req.Context(), w, http.StatusNotFound, "error.not_found", services.I18n)
	})

	return r
}

func registerPublicRoutes(v1 chi.Router, services Services) {
	installHandler := handler.NewInstallHandler(services.Install, services.I18n)
	menuHandler := handler.NewMenuHandler(services.Catalog, services.Restaurant, services.I18n)
	cartHandler := handler.NewCartHandler(services.Cart, services.I18n)
	checkoutHandler := handler.NewCheckoutHandler(services.Checkout, services.I18n)
	reservationHandler := handler.NewReservationHandler(services.Reservation, services.I18n)
	reviewHandler := handler.NewReviewHandler(services.Review, services.I18n)
	uploadHandler := handler.NewUploadHandler(services.Upload, services.I18n)
	passportHandler := handler.NewPassportHandler(services.Auth, services.Register, services.I18n)

	v1.Get("/install/status", installHandler.Status)
	v1.Post("/install", installHandler.Create)

	v1.Get("/restaurant", menuHandler.Restaurant)
	v1.Route("/menu", func(menu chi.Router) {
		menu.Get("/", menuHandler.List)
		menu.Get("/categories", menuHandler.Categories)
		menu.Get("/{id:[0-9]+}", menuHandler.Get)
	})

	v1.Route("/cart", func(cart chi.Router) {
		cart.Get("/", cartHandler.Get)
		cart.Delete("/", cartHandler.Clear)
		cart.Post("/items", cartHandler.AddItem)
		cart.Put("/items/{productID}", cartHandler.UpdateItem)
		cart.Delete("/items/{productID}", cartHandler.RemoveItem)
	})

	// guests may order; a valid token links the order to the account
	v1.Group(func(guest chi.Router) {
		guest.Use(middleware.OptionalUser(services.Auth))
		guest.Post("/checkout", checkoutHandler.Checkout)
		guest.Post("/reservations", reservationHandler.Create)
	})
	v1.Post("/uploads/payment-proof", uploadHandler.PaymentProof)
	v1.Get("/orders/{ref}", checkoutHandler.Track)
	v1.Get("/reservations/slots", reservationHandler.Slots)
	v1.Get("/reviews", reviewHandler.List)

	v1.Route("/auth", func(auth chi.Router) {
		auth.Post("/register", passportHandler.Register)
		auth.Post("/login", passportHandler.Login)
	})
}

func registerCustomerRoutes(v1 chi.Router, services Services) {
	userHandler := handler.NewUserHandler(services.Account, services.I18n)
	reviewHandler := handler.NewReviewHandler(services.Review, services.I18n)

	v1.Group(func(customer chi.Router) {
		customer.Use(middleware.UserGuard(services.Auth, services.I18n))
		customer.Get("/account", userHandler.Profile)
		customer.Put("/account", userHandler.UpdateProfile)
		customer.Put("/account/password", userHandler.ChangePassword)
		customer.Get("/account/orders", userHandler.Orders)
		customer.Post("/reviews", reviewHandler.Create)
	})
}

func registerAdminRoutes(v1 chi.Router, services Services, logger *slog.Logger) {
	orderHandler := handler.NewAdminOrderHandler(services.AdminOrder, services.I18n)
	productHandler := handler.NewAdminProductHandler(services.AdminProduct, services.Upload, services.I18n)
	reviewHandler := handler.NewAdminReviewHandler(services.AdminReview, services.I18n)
	statHandler := handler.NewAdminStatHandler(services.AdminStat, services.I18n)
	systemHandler := handler.NewAdminSystemHandler(services.AdminSystem, services.AdminSettings, services.I18n)
	userHandler := handler.NewAdminUserHandler(services.AdminUser, services.I18n)

	v1.Route("/admin", func(admin chi.Router) {
		// the stream authenticates itself so it can also take ?token=
		if services.Feed != nil {
			streamHandler := handler.NewOrderStreamHandler(services.Auth, services.Feed, services.I18n, logger)
			admin.Get("/orders/stream", streamHandler.Stream)
		}

		admin.Group(func(guarded chi.Router) {
			guarded.Use(middleware.AdminGuard(services.Auth, services.I18n))

			guarded.Get("/orders", orderHandler.List)
			guarded.Get("/orders/{id}", orderHandler.Get)
			guarded.Post("/orders/{id}/confirm", orderHandler.Confirm)
			guarded.Post("/orders/{id}/reject", orderHandler.Reject)

			guarded.Get("/products", productHandler.List)
			guarded.Post("/products", productHandler.Create)
			guarded.Post("/products/import", productHandler.Import)
			guarded.Get("/products/{id}", productHandler.Get)
			guarded.Put("/products/{id}", productHandler.Update)
			guarded.Delete("/products/{id}", productHandler.Delete)
			guarded.Post("/products/{id}/toggle", productHandler.Toggle)
			guarded.Post("/products/{id}/image", productHandler.UploadImage)

			guarded.Get("/reviews", reviewHandler.List)
			guarded.Post("/reviews/{id}/approve", reviewHandler.Approve)
			guarded.Post("/reviews/{id}/reject", reviewHandler.Reject)
			guarded.Delete("/reviews/{id}", reviewHandler.Delete)

			guarded.Get("/users", userHandler.List)
			guarded.Get("/users/export", userHandler.Export)
			guarded.Get("/users/{id}", userHandler.Get)
			guarded.Put("/users/{id}/status", userHandler.SetStatus)

			guarded.Get("/stats", statHandler.Dashboard)
			guarded.Get("/system/status", systemHandler.Status)
			guarded.Get("/system/settings", systemHandler.Settings)
			guarded.Put("/system/settings", systemHandler.SaveSettings)
		})
	})
}

// mountUploads serves locally stored images under the public base URL.
func mountUploads(r chi.Router, dir, baseURL string) {
	prefix := "/" + strings.Trim(baseURL, "/")
	if prefix == "/" || strings.Contains(baseURL, "://") {
		prefix = "/uploads"
	}
	fs := http.StripPrefix(prefix, http.FileServer(noListingFS{http.Dir(dir)}))
	r.Handle(prefix+"/*", fs)
}

// noListingFS hides directory indexes.
type noListingFS struct {
	fs http.FileSystem
}

func (n noListingFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if stat.IsDir() {
		f.Close()
		return nil, &fsNotFound{name: name}
	}
	return f, nil
}

type fsNotFound struct{ name string }

func (e *fsNotFound) Error() string { return "open " + e.name + ": no such file" }

func mustHave(services Services) {
	required := map[string]any{
		"CatalogService":     services.Catalog,
		"CartService":        services.Cart,
		"CheckoutService":    services.Checkout,
		"ReservationService": services.Reservation,
		"ReviewService":      services.Review,
		"RestaurantService":  services.Restaurant,
		"AuthService":        services.Auth,
		"RegisterService":    services.Register,
		"AccountService":     services.Account,
		"InstallService":     services.Install,
		"UploadService":      services.Upload,
		"AdminOrder":         services.AdminOrder,
		"AdminProduct":       services.AdminProduct,
		"AdminReview":        services.AdminReview,
		"AdminStat":          services.AdminStat,
		"AdminSystem":        services.AdminSystem,
		"AdminUser":          services.AdminUser,
		"AdminSettings":      services.AdminSettings,
	}
	for name, svc := range required {
		if svc == nil {
			panic("router requires " + name)
		}
	}
	if services.I18n == nil {
		panic("router requires I18n Manager")
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
