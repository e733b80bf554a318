package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/frozenfood/server/internal/module/admin"
	"github.com/frozenfood/server/internal/module/cart"
	"github.com/frozenfood/server/internal/module/catalog"
	"github.com/frozenfood/server/internal/module/checkout"
	"github.com/frozenfood/server/internal/module/notification"
	"github.com/frozenfood/server/internal/module/order"
	"github.com/frozenfood/server/internal/module/payment"
	paymentprovider "github.com/frozenfood/server/internal/module/payment/provider"
	"github.com/frozenfood/server/internal/shared/cache"
	"github.com/frozenfood/server/internal/shared/config"
	"github.com/frozenfood/server/internal/shared/database"
	"github.com/frozenfood/server/internal/shared/events"
	"github.com/frozenfood/server/internal/shared/logger"
	"github.com/frozenfood/server/internal/telegram"
	"github.com/frozenfood/server/internal/utils/metrics"
	"github.com/frozenfood/server/internal/utils/middleware"
)

// App wires the storefront together: database, cache, bot transport,
// domain modules and the HTTP router.
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
	redis  redis.UniversalClient
	router *gin.Engine

	bus      *events.Bus
	bot      *telegram.Bot
	sessions *checkout.Manager
	orders   *order.Service

	wg sync.WaitGroup
}

// overdueCheckInterval is how often confirmed orders are checked against
// their preparation deadline.
const overdueCheckInterval = 30 * time.Minute

// New builds the application. The Telegram bot is optional: without a
// token the storefront still serves the catalog and offline payment
// methods, with notifications dropped.
func New(cfg *config.Config) (*App, error) {
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}

	m := metrics.New("frozenfood")
	bus := events.NewBus(log.Named("events"))

	app := &App{
		cfg:    cfg,
		logger: log,
		db:     db,
		redis:  redisClient,
		bus:    bus,
	}

	// Bot transport. A missing token or unreachable API degrades to the
	// no-op UI instead of failing startup.
	var tgClient *telegram.Client
	if cfg.Telegram.BotToken != "" {
		tgClient, err = telegram.NewClient(&cfg.Telegram, m, log.Named("telegram"))
		if err != nil {
			log.Warn("telegram client unavailable", zap.Error(err))
			tgClient = nil
		}
	}
	setupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ui := telegram.Setup(setupCtx, tgClient, log.Named("telegram"))

	// Modules.
	catalogService := catalog.NewService(catalog.NewRepository(db), redisClient, m, log.Named("catalog"))
	catalogHandler := catalog.NewHandler(catalogService)

	cartService := cart.NewService(cart.NewRepository(redisClient), catalogService, log.Named("cart"))
	cartHandler := cart.NewHandler(cartService)

	orderService := order.NewService(order.NewRepository(db), bus, m, log.Named("order"), cfg.Payment.MinOrderAmount)
	orderHandler := order.NewHandler(orderService)
	app.orders = orderService

	registry := payment.NewProviderRegistry()
	registry.Register(paymentprovider.NewCashProvider())
	if cfg.Payment.CardInfo != "" {
		registry.Register(paymentprovider.NewCardProvider(cfg.Payment.CardInfo))
	}
	if tgClient != nil && cfg.Payment.ProviderToken != "" {
		registry.Register(paymentprovider.NewTelegramProvider(tgClient, cfg.Payment.ProviderToken, cfg.Payment.Currency))
	}

	paymentService := payment.NewService(payment.NewRepository(db), orderService, registry, bus, m, log.Named("payment"))
	paymentHandler := payment.NewHandler(paymentService)

	app.sessions = checkout.NewManager(paymentService, bus, log.Named("checkout"))
	checkoutHandler := checkout.NewHandler(app.sessions, cartService, catalogService, cfg.Payment.MinOrderAmount, log.Named("checkout"))

	bus.Register(notification.NewService(orderService, ui, cfg.Telegram.AdminChatID, log.Named("notification")))

	adminHandler := admin.NewHandler(admin.NewService(&cfg.Auth, log.Named("admin")))

	if tgClient != nil {
		app.bot = telegram.NewBot(tgClient, paymentService, &cfg.Telegram, m, log)
	}

	// Router.
	gin.SetMode(gin.ReleaseMode)
	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.Server.CORSOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.Server.CORSOrigins
	}

	router := gin.New()
	router.Use(
		middleware.Recovery(log),
		middleware.RequestID(),
		middleware.Logging(log),
		middleware.CORS(corsCfg),
		middleware.RateLimitByIP(middleware.NewRedisRateLimiter(redisClient), 120, time.Minute),
		middleware.Metrics(m),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")

	// Catalog browsing is public; everything user-specific requires a
	// validated Telegram WebApp identity.
	catalogHandler.RegisterRoutes(api)

	authed := api.Group("", telegram.Auth(cfg.Telegram.BotToken))
	cartHandler.RegisterRoutes(authed)
	orderHandler.RegisterRoutes(authed)
	paymentHandler.RegisterRoutes(authed)
	checkoutHandler.RegisterRoutes(authed)

	adminGroup := api.Group("/admin")
	adminHandler.RegisterRoutes(adminGroup)
	adminProtected := api.Group("/admin", middleware.AdminAuth(cfg.Auth.JWTSecret))
	catalogHandler.RegisterAdminRoutes(adminProtected)
	orderHandler.RegisterAdminRoutes(adminProtected)
	paymentHandler.RegisterAdminRoutes(adminProtected)

	// The payment-status side channel stays up even without a bot client;
	// only pre-checkout answering needs one.
	var answerer payment.PreCheckoutAnswerer
	if tgClient != nil {
		answerer = tgClient
	}
	webhooks := api.Group("/webhooks")
	payment.NewWebhookHandler(paymentService, answerer, cfg.Payment.WebhookSecret, log.Named("webhook")).RegisterRoutes(webhooks)

	app.router = router
	return app, nil
}

// Router returns the HTTP handler.
func (a *App) Router() *gin.Engine {
	return a.router
}

// Start launches background components: the bot update loop and the
// overdue order monitor.
func (a *App) Start(ctx context.Context) {
	if a.bot != nil {
		a.bot.Start(ctx)
	}

	a.wg.Add(1)
	go a.runOverdueMonitor(ctx)
}

func (a *App) runOverdueMonitor(ctx context.Context) {
	defer a.wg.Done()

	ticker := time.NewTicker(overdueCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := a.orders.ProcessOverdueOrders(ctx, time.Now())
			if err != nil {
				a.logger.Error("overdue order check failed", zap.Error(err))
				continue
			}
			if count > 0 {
				a.logger.Info("overdue orders reported", zap.Int("count", count))
			}
		}
	}
}

// Stop shuts background components and connections down.
func (a *App) Stop() {
	if a.bot != nil {
		a.bot.Stop()
	}
	a.wg.Wait()
	a.sessions.Close()
	if err := cache.Close(a.redis); err != nil {
		a.logger.Error("close redis", zap.Error(err))
	}
	if err := database.Close(a.db); err != nil {
		a.logger.Error("close database", zap.Error(err))
	}
	_ = a.logger.Sync()
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&catalog.Category{},
		&catalog.Product{},
		&order.Order{},
		&order.OrderItem{},
		&order.StatusHistory{},
		&payment.Payment{},
		&payment.WebhookEvent{},
	)
}
