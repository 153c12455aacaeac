package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	s3blob "github.com/alanyoungcy/stocklens/internal/blob/s3"
	"github.com/alanyoungcy/stocklens/internal/cache/redis"
	"github.com/alanyoungcy/stocklens/internal/config"
	"github.com/alanyoungcy/stocklens/internal/domain"
	"github.com/alanyoungcy/stocklens/internal/marketdata"
	"github.com/alanyoungcy/stocklens/internal/notify"
	"github.com/alanyoungcy/stocklens/internal/platform/finnhub"
	"github.com/alanyoungcy/stocklens/internal/platform/stooq"
	"github.com/alanyoungcy/stocklens/internal/store/postgres"
)

// Dependencies bundles every domain-level dependency that the application modes
// need to operate. It is constructed by Wire and torn down by the returned
// cleanup function.
type Dependencies struct {
	// Providers
	Candles domain.CandleProvider
	Quotes  domain.QuoteProvider
	News    domain.NewsProvider

	// Stores (nil unless Postgres is enabled)
	RunStore       domain.BacktestRunStore
	WatchlistStore domain.WatchlistStore

	// Caches
	CandleCache domain.CandleCache
	QuoteCache  domain.QuoteCache
	RateLimiter domain.RateLimiter
	LockManager domain.LockManager
	SignalBus   domain.SignalBus

	// Blob storage (nil unless S3 is enabled)
	BlobWriter domain.BlobWriter
	BlobReader domain.BlobReader
	Archiver   domain.Archiver

	// Notifications
	Notifier *notify.Notifier
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Market data providers ---
	var fh *finnhub.Client
	var chainProviders []domain.CandleProvider
	for _, name := range cfg.Providers.Order {
		switch strings.ToLower(name) {
		case "stooq":
			chainProviders = append(chainProviders, stooq.New(cfg.Providers.StooqBaseURL))
		case "finnhub":
			fh = finnhub.New(cfg.Providers.FinnhubBaseURL, cfg.Providers.FinnhubAPIKey)
			chainProviders = append(chainProviders, fh)
		default:
			cleanup()
			return nil, nil, fmt.Errorf("wire: unknown provider %q", name)
		}
	}
	deps.Candles = marketdata.NewChain(logger, chainProviders...)

	// Finnhub carries realtime quotes and headlines. Without it quotes are
	// derived from the latest daily close and news endpoints return empty.
	if fh == nil && cfg.Providers.FinnhubAPIKey != "" {
		fh = finnhub.New(cfg.Providers.FinnhubBaseURL, cfg.Providers.FinnhubAPIKey)
	}
	if fh != nil {
		deps.Quotes = fh
		deps.News = fh
	} else {
		deps.Quotes = marketdata.NewCloseQuotes(deps.Candles)
	}

	// --- PostgreSQL (optional persistence) ---
	if cfg.Postgres.Enabled {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		pool := pgClient.Pool()
		deps.RunStore = postgres.NewBacktestRunStore(pool)
		deps.WatchlistStore = postgres.NewWatchlistStore(pool)
	}

	// --- Redis ---
	redisClient, err := redis.New(ctx, redis.ClientConfig{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		PoolSize:   cfg.Redis.PoolSize,
		MaxRetries: cfg.Redis.MaxRetries,
		TLSEnabled: cfg.Redis.TLSEnabled,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: redis: %w", err)
	}
	closers = append(closers, func() { _ = redisClient.Close() })

	deps.CandleCache = redis.NewCandleCache(redisClient)
	deps.QuoteCache = redis.NewQuoteCache(redisClient)
	deps.RateLimiter = redis.NewRateLimiter(redisClient)
	deps.LockManager = redis.NewLockManager(redisClient)
	deps.SignalBus = redis.NewSignalBus(redisClient)

	// --- S3 blob storage (optional run archival) ---
	if cfg.S3.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		closers = append(closers, func() { _ = s3Client.Close() })

		deps.BlobWriter = s3blob.NewWriter(s3Client)
		deps.BlobReader = s3blob.NewReader(s3Client)
		deps.Archiver = s3blob.NewRunArchiver(deps.BlobWriter)
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	return deps, cleanup, nil
}
