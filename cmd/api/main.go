package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/keranjangku/keranjangku-backend/api/routes"
	"github.com/keranjangku/keranjangku-backend/internal/attachments"
	"github.com/keranjangku/keranjangku-backend/internal/auth"
	"github.com/keranjangku/keranjangku-backend/internal/baskets"
	"github.com/keranjangku/keranjangku-backend/internal/circles"
	"github.com/keranjangku/keranjangku-backend/internal/notifications"
	"github.com/keranjangku/keranjangku-backend/internal/orders"
	"github.com/keranjangku/keranjangku-backend/internal/products"
	"github.com/keranjangku/keranjangku-backend/internal/purchases"
	"github.com/keranjangku/keranjangku-backend/internal/shares"
	"github.com/keranjangku/keranjangku-backend/internal/stuff"
	"github.com/keranjangku/keranjangku-backend/internal/users"
	"github.com/keranjangku/keranjangku-backend/internal/verifycode"
	"github.com/keranjangku/keranjangku-backend/internal/ws"
	"github.com/keranjangku/keranjangku-backend/pkg/auth/session"
	"github.com/keranjangku/keranjangku-backend/pkg/config"
	"github.com/keranjangku/keranjangku-backend/pkg/db"
	"github.com/keranjangku/keranjangku-backend/pkg/logger"
	"github.com/keranjangku/keranjangku-backend/pkg/migrate"
	"github.com/keranjangku/keranjangku-backend/pkg/outbox"
	"github.com/keranjangku/keranjangku-backend/pkg/outbox/idempotency"
	"github.com/keranjangku/keranjangku-backend/pkg/pubsub"
	"github.com/keranjangku/keranjangku-backend/pkg/redis"
	"github.com/keranjangku/keranjangku-backend/pkg/storage"
)

const (
	consumerIdempotencyTTL = 7 * 24 * time.Hour
	shutdownTimeout        = 15 * time.Second
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub client", err)
		}
	}()

	storageClient, err := storage.NewClient(context.Background(), cfg.Storage, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap storage", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gdb := dbClient.DB()
	outboxSvc := outbox.NewService(outbox.NewRepository(gdb), logg)

	authSvc, err := auth.NewService(users.NewRepository(gdb), sessionManager, cfg.JWT, cfg.Password, logg)
	exitOn(logg, "auth service", err)

	verifyCodesSvc, err := verifycode.NewService(verifycode.NewRepository(gdb), dbClient, cfg.VerifyCode, logg)
	exitOn(logg, "verify code service", err)

	basketsSvc, err := baskets.NewService(baskets.NewRepository(gdb), dbClient, outboxSvc)
	exitOn(logg, "baskets service", err)

	circlesSvc, err := circles.NewService(circles.NewRepository(gdb), dbClient)
	exitOn(logg, "circles service", err)

	sharesSvc, err := shares.NewService(shares.NewRepository(gdb), dbClient, outboxSvc)
	exitOn(logg, "shares service", err)

	stuffSvc, err := stuff.NewService(stuff.NewRepository(gdb), dbClient, outboxSvc, logg)
	exitOn(logg, "stuff service", err)

	purchasesSvc, err := purchases.NewService(purchases.NewRepository(gdb), dbClient, outboxSvc, logg)
	exitOn(logg, "purchases service", err)

	ordersSvc, err := orders.NewService(orders.NewRepository(gdb), dbClient, outboxSvc)
	exitOn(logg, "orders service", err)

	productsSvc, err := products.NewService(products.NewRepository(gdb))
	exitOn(logg, "products service", err)

	notificationsRepo := notifications.NewRepository(gdb)
	notificationsSvc, err := notifications.NewService(notificationsRepo)
	exitOn(logg, "notifications service", err)

	attachmentsSvc, err := attachments.NewService(attachments.NewRepository(gdb), dbClient, storageClient, logg)
	exitOn(logg, "attachments service", err)

	hub := ws.NewHub(logg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if sub := pubsubClient.DomainSubscription(); sub != nil {
		manager, err := idempotency.NewManager(redisClient, consumerIdempotencyTTL)
		exitOn(logg, "idempotency manager", err)
		consumer, err := notifications.NewConsumer(notificationsRepo, sub, manager, logg)
		exitOn(logg, "notifications consumer", err)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logg.Error(ctx, "notifications consumer stopped unexpectedly", err)
			}
		}()
	} else {
		logg.Warn(ctx, "domain subscription not configured; notifications consumer disabled")
	}

	if sub := pubsubClient.BroadcastSubscription(); sub != nil {
		broadcaster, err := ws.NewBroadcaster(hub, sub, logg)
		exitOn(logg, "ws broadcaster", err)
		go func() {
			if err := broadcaster.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logg.Error(ctx, "ws broadcaster stopped unexpectedly", err)
			}
		}()
	} else {
		logg.Warn(ctx, "broadcast subscription not configured; websocket fan-out disabled")
	}

	handler := routes.NewRouter(routes.Deps{
		Config:   cfg,
		Logger:   logg,
		DB:       dbClient,
		Redis:    redisClient,
		PubSub:   pubsubClient,
		Sessions: sessionManager,

		Auth:          authSvc,
		VerifyCodes:   verifyCodesSvc,
		Baskets:       basketsSvc,
		Circles:       circlesSvc,
		Shares:        sharesSvc,
		Stuff:         stuffSvc,
		Purchases:     purchasesSvc,
		Orders:        ordersSvc,
		Products:      productsSvc,
		Notifications: notificationsSvc,
		Attachments:   attachmentsSvc,
		Hub:           hub,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
			os.Exit(1)
		}
		logg.Info(ctx, "api server shut down gracefully")
	}
}

func exitOn(logg *logger.Logger, what string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+what, err)
	os.Exit(1)
}
