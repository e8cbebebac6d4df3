/**
 * @description
 * This is the main entry point for the remit-service. It is responsible for
 * initializing all components of the service: configuration, storage (PostgreSQL when
 * configured, in-memory otherwise), the payment provider client, the exchange-rate
 * source, the message broker producer, the Redis rate limiter, the cron schedule
 * runner, and the HTTP server. Optional dependencies degrade with a warning instead
 * of preventing startup.
 *
 * @dependencies
 * - log, log/slog, net/http: Standard Go libraries for logging and HTTP server functionality.
 * - github.com/jackc/pgx/v5: PostgreSQL driver.
 * - github.com/redis/go-redis/v9: Redis client for rate limiting.
 * - internal/api, internal/app, internal/config, internal/corridor, internal/store: Internal packages.
 * - pkg/rabbitmq, pkg/rateclient, pkg/wiseclient: External service clients.
 */

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/remitflow/remit-service/internal/api"
	"github.com/remitflow/remit-service/internal/app"
	"github.com/remitflow/remit-service/internal/config"
	"github.com/remitflow/remit-service/internal/corridor"
	"github.com/remitflow/remit-service/internal/store"
	rmrabbit "github.com/remitflow/remit-service/pkg/rabbitmq"
	"github.com/remitflow/remit-service/pkg/rateclient"
	"github.com/remitflow/remit-service/pkg/wiseclient"
)

func main() {
	// Load application configuration from environment variables.
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"config load failed\" err=%v", err)
	}

	log.Printf("level=info component=bootstrap msg=\"starting remit-service\" port=%s environment=%s real_transfers=%t", cfg.ServerPort, cfg.Environment, cfg.UseRealTransfers)

	// Storage: PostgreSQL when DATABASE_URL is set, otherwise the in-memory store.
	var repository store.Repository
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("level=fatal component=bootstrap msg=\"database url parse failed\" err=%v", err)
		}

		poolConfig.MaxConns = 20
		poolConfig.MinConns = 2
		poolConfig.MaxConnLifetime = 30 * time.Minute
		poolConfig.MaxConnIdleTime = 5 * time.Minute

		// Disable prepared statement caching to prevent conflicts behind poolers.
		poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

		dbpool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
		if err != nil {
			log.Fatalf("level=fatal component=bootstrap msg=\"database connection failed\" err=%v", err)
		}
		defer dbpool.Close()

		pgRepo := store.NewPostgresRepository(dbpool)
		migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancelMigrate()
		if err := pgRepo.Migrate(migrateCtx); err != nil {
			log.Fatalf("level=fatal component=bootstrap msg=\"database migration failed\" err=%v", err)
		}
		repository = pgRepo
		log.Println("level=info component=bootstrap msg=\"database connected\"")
	} else {
		log.Println("level=warn component=bootstrap msg=\"no database url configured; using in-memory store\" env=DATABASE_URL")
		repository = store.NewMemoryRepository()
	}

	// Initialize the RabbitMQ producer to publish lifecycle events. The broker is
	// optional: without it events are dropped with a warning.
	var events rmrabbit.Publisher
	if strings.TrimSpace(cfg.RabbitMQURL) != "" {
		producer, err := rmrabbit.NewEventProducer(cfg.RabbitMQURL)
		if err != nil {
			log.Printf("level=warn component=bootstrap msg=\"rabbitmq producer unavailable; using fallback\" err=%v", err)
			events = &rmrabbit.NoopPublisher{}
		} else {
			defer producer.Close()
			events = producer
			log.Println("level=info component=bootstrap msg=\"rabbitmq producer connected\"")
		}
	} else {
		log.Println("level=warn component=bootstrap msg=\"no rabbitmq url configured; events disabled\" env=RABBITMQ_URL")
		events = &rmrabbit.NoopPublisher{}
	}

	// Initialize the payment provider client when real-transfer mode is on. Config
	// loading already forces simulated mode when credentials are missing.
	var provider app.ProviderClient
	if cfg.UseRealTransfers {
		provider = wiseclient.NewClient(cfg.WiseAPIBaseURL, cfg.WiseAPIToken, cfg.WiseProfileID)
		log.Printf("level=info component=bootstrap msg=\"provider client configured\" base_url=%s", cfg.WiseAPIBaseURL)
	}

	// Optional Redis-backed submission rate limiting.
	var limiter *app.RedisSubmitRateLimiter
	if cfg.SubmitRateLimitPerMinute > 0 {
		if cfg.RedisURL == "" {
			log.Println("level=warn component=bootstrap msg=\"redis url missing; submission rate limiting disabled\" env=REDIS_URL")
		} else if redisOptions, parseErr := redis.ParseURL(cfg.RedisURL); parseErr != nil {
			log.Printf("level=warn component=bootstrap msg=\"redis url parse failed; submission rate limiting disabled\" err=%v", parseErr)
		} else {
			redisClient := redis.NewClient(redisOptions)
			pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancelPing()
			if pingErr := redisClient.Ping(pingCtx).Err(); pingErr != nil {
				log.Printf("level=warn component=bootstrap msg=\"redis ping failed; submission rate limiting disabled\" err=%v", pingErr)
				redisClient.Close()
			} else {
				defer redisClient.Close()
				limiter = app.NewRedisSubmitRateLimiter(redisClient, cfg.RedisRateLimitPrefix)
				log.Println("level=info component=bootstrap msg=\"redis connected\"")
			}
		}
	}

	// Exchange rates: the public source behind a TTL cache.
	rates := app.NewRateProvider(
		rateclient.NewClient(cfg.RateAPIBaseURL),
		cfg.RateBaseCurrency,
		time.Duration(cfg.RateCacheTTLMinutes)*time.Minute,
	)

	// Initialize the core orchestration service with its dependencies.
	service := app.NewService(
		repository,
		corridor.NewRegistry(),
		rates,
		app.NewRecipientFieldMapper(!cfg.IsProduction()),
		provider,
		events,
		app.Options{
			SourceCurrency:      cfg.RateBaseCurrency,
			Fees:                app.FeeConfig{Percent: cfg.FeePercent, Min: cfg.MinFee, Max: cfg.MaxFee},
			PerTransactionLimit: cfg.PerTransactionLimit,
			UseRealTransfers:    cfg.UseRealTransfers,
			EventExchange:       cfg.EventExchange,
		},
	)

	// Start the cron runner that executes due recurring schedules.
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	jobs := app.NewJobs(repository, service, logger)
	scheduler := app.NewScheduler(jobs, logger, cfg.ScheduleRunnerSpec)
	scheduler.Start()
	defer func() {
		<-scheduler.Stop().Done()
	}()

	// Set up the HTTP router and start the server.
	handlers := api.NewHandlers(service, limiter, cfg.SubmitRateLimitPerMinute)
	router := api.Routes(handlers, cfg.InternalAPIKey)

	serverAddr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("level=info component=http msg=\"server listening\" addr=%s", serverAddr)

	server := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("level=fatal component=http msg=\"server stopped unexpectedly\" err=%v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("level=info component=http msg=\"shutdown started\"")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("level=error component=http msg=\"shutdown failed\" err=%v", err)
	}

	log.Println("level=info component=http msg=\"shutdown complete\"")
}
