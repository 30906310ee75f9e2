package bootstrap

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/peshal-hash/activepieces/api/config"
	"github.com/peshal-hash/activepieces/api/database"
	"github.com/peshal-hash/activepieces/api/logger"
	"github.com/peshal-hash/activepieces/api/services/billing/app"
	"github.com/peshal-hash/activepieces/api/services/billing/catalog"
	billingdb "github.com/peshal-hash/activepieces/api/services/billing/db"
	stripegw "github.com/peshal-hash/activepieces/api/services/billing/gateway/stripe"
	"github.com/peshal-hash/activepieces/api/services/billing/giftstore"
)

const initTimeout = 15 * time.Second

var (
	billingService app.Service
	metrics        *app.Metrics
	log            *logger.Logger
	db             *sqlx.DB
	redisClient    *redis.Client

	initOnce sync.Once
	initErr  error
)

// Init initializes config, logger, database, Redis and the Stripe client, and wires services.
func Init() error {
	// If a service has already been injected (e.g., tests), do not override or init heavy deps.
	if billingService != nil {
		return nil
	}
	var err error
	if config.AppConfig == nil {
		config.AppConfig, err = config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}
	cfg := config.AppConfig

	if log == nil {
		log, err = logger.NewLogger()
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
	}

	file, err := config.LoadCatalog(cfg.PriceCatalogFile)
	if err != nil {
		return err
	}
	prices, err := catalog.FromFile(file)
	if err != nil {
		return fmt.Errorf("invalid price catalog: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	db, err = database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	redisClient, err = giftstore.Connect(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	stripeClient := stripegw.New(cfg.StripeSecretKey, cfg.StripeWebhookSecret, stripegw.Options{
		RequestsPerSecond: cfg.StripeRateLimitRP,
	}, log.With("component", "stripe"))

	metrics = app.NewMetrics()
	billingService = app.NewService(app.Deps{
		Gateway:  stripeClient,
		Verifier: stripeClient,
		Catalog:  prices,
		Accounts: billingdb.NewAccountStore(db),
		Gifts:    giftstore.New(redisClient, cfg.GiftTrialTTL),
		Log:      log.With("component", "billing"),
		Metrics:  metrics,
	})
	log.Infow("billing service initialized",
		"plans", prices.Plans(),
		"gift_trial_ttl", cfg.GiftTrialTTL,
		"stripe_rate_limit_rps", cfg.StripeRateLimitRP,
	)
	return nil
}

func GetBillingService() app.Service { return billingService }

// SetBillingService allows tests to inject a stub implementation.
func SetBillingService(s app.Service) { billingService = s }

// GetMetrics returns the metrics the service counts into. Tests that inject a
// service get a fresh, empty set.
func GetMetrics() *app.Metrics {
	if metrics == nil {
		metrics = app.NewMetrics()
	}
	return metrics
}

// GetLogger returns the process logger, or a no-op logger before Init.
func GetLogger() *logger.Logger {
	if log == nil {
		return logger.NewNop()
	}
	return log
}

// SetLogger replaces the process logger; it must be called before Init.
func SetLogger(l *logger.Logger) { log = l }

// Ensure runs Init() once per process and returns any initialization error.
func Ensure() error {
	initOnce.Do(func() {
		initErr = Init()
	})
	return initErr
}

// Close releases the database and Redis connections and flushes the logger.
func Close() {
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if db != nil {
		_ = db.Close()
	}
	if log != nil {
		_ = log.Sync()
	}
}
