package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jaysurani18/smart-society/common/database"
	"github.com/jaysurani18/smart-society/common/logger"
	"github.com/jaysurani18/smart-society/common/mqtt"
	commonredis "github.com/jaysurani18/smart-society/common/redis"
	"github.com/jaysurani18/smart-society/internal/auth"
	"github.com/jaysurani18/smart-society/internal/config"
	httpapi "github.com/jaysurani18/smart-society/internal/http"
	"github.com/jaysurani18/smart-society/internal/repository"
	"github.com/jaysurani18/smart-society/internal/service"
	"github.com/jaysurani18/smart-society/internal/store"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const defaultDevAdmin = "admin@society.local"

type repositories struct {
	accounts   repository.AccountsRepository
	bills      repository.BillsRepository
	complaints repository.ComplaintsRepository
	notices    repository.NoticesRepository
	stats      repository.StatsRepository
}

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Service: "society-data"})
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error("society-data exited", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	checks := map[string]httpapi.Pinger{}

	var db *sql.DB
	var repos repositories
	if cfg.DBEnabled {
		d, err := database.NewPostgresDB(&cfg.Database)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		db = d
		defer database.Close(db)

		if cfg.DBMigrate {
			if err := database.Migrate(db, repository.Migrations, repository.MigrationsDir, log); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
		}
		repos = repositories{
			accounts:   repository.NewPostgresAccountsRepository(db),
			bills:      repository.NewPostgresBillsRepository(db),
			complaints: repository.NewPostgresComplaintsRepository(db),
			notices:    repository.NewPostgresNoticesRepository(db),
			stats:      repository.NewPostgresStatsRepository(db),
		}
		checks["postgres"] = db.PingContext
		log.Info("DB enabled for society-data", zap.String("database", cfg.Database.Redacted()))
	} else {
		mem := repository.NewMemoryStore()
		repos = repositories{accounts: mem, bills: mem, complaints: mem, notices: mem, stats: mem}
		if cfg.Seed.AdminEmail == "" {
			cfg.Seed.AdminEmail = defaultDevAdmin
		}
		log.Warn("DB disabled, using in-memory repository; data is lost on restart")
	}

	// Redis backs the session registry, rate limiter and stream delivery. All optional.
	var redisClient *redis.Client
	var kv store.KV
	if cfg.RedisEnabled {
		c := commonredis.NewRedisClient(&cfg.Redis)
		pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
		err := commonredis.Ping(pingCtx, c)
		pingCancel()
		if err != nil {
			log.Warn("redis unreachable, session registry and rate limiting disabled", zap.Error(err))
			_ = c.Close()
		} else {
			redisClient = c
			defer redisClient.Close()
			kv = store.NewRedisKV(redisClient)
			checks["redis"] = kv.Ping
		}
	}

	var revoker service.SessionRevoker
	var revocations httpapi.RevocationChecker
	if kv != nil && cfg.Auth.SessionRegistry {
		registry := store.NewSessionRegistry(kv, cfg.Auth.TokenTTL)
		revoker = registry
		revocations = registry
	}

	notifier, err := newInviteNotifier(cfg, redisClient, log)
	if err != nil {
		return err
	}

	var publisher service.NoticePublisher
	if cfg.MQTT.Enabled {
		client, err := mqtt.NewClient(&cfg.MQTT.Conn, log)
		if err != nil {
			log.Warn("mqtt unavailable, notices will not be broadcast", zap.Error(err))
		} else {
			defer client.Disconnect()
			checks["mqtt"] = func(context.Context) error {
				if !client.IsConnected() {
					return errors.New("disconnected")
				}
				return nil
			}
			publisher = service.NewMQTTNoticePublisher(client, cfg.MQTT.NoticeTopic)
		}
	}

	images, err := store.NewDiskImageStore(cfg.Upload.Dir, cfg.Upload.BaseURL, cfg.Upload.MaxBytes)
	if err != nil {
		return fmt.Errorf("upload dir: %w", err)
	}

	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	policy := service.DefaultPolicy()

	if err := service.SeedAdmin(ctx, repos.accounts, hasher, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword, log); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	authSvc := service.NewAuthService(repos.accounts, hasher, issuer, notifier, revoker, policy, service.AuthSettings{
		InviteTTL:     cfg.Invite.TTL,
		InviteBaseURL: cfg.Invite.BaseURL,
	}, log)
	accountSvc := service.NewAccountService(repos.accounts, revoker, policy, log)
	billSvc := service.NewBillService(repos.bills, repos.accounts, policy, log)
	complaintSvc := service.NewComplaintService(repos.complaints, images, policy, log)
	noticeSvc := service.NewNoticeService(repos.notices, publisher, policy, log)
	statsSvc := service.NewStatsService(repos.stats, policy, log)

	gate := httpapi.AuthGate(issuer, revocations, log)
	limiter := httpapi.RateLimiter(kv, cfg.RateLimit.Limit, cfg.RateLimit.Window, "auth", log)
	maxBody := cfg.HTTP.MaxBodyBytes

	proxies, err := config.ParseTrustedProxies(cfg.HTTP.TrustedProxies)
	if err != nil {
		return err
	}
	router := httpapi.NewRouter(httpapi.RouterConfig{
		CORSOrigins:    cfg.HTTP.CORSOrigins,
		TrustedProxies: proxies,
		Policy:         policy,
	}, log)
	router.RegisterHealthRoutes(httpapi.NewHealthHandler(checks))
	router.RegisterUploadRoutes(images.Dir())
	router.RegisterAuthRoutes(httpapi.NewAuthHandler(authSvc, maxBody, log), limiter, gate)
	router.RegisterUserRoutes(httpapi.NewUserHandler(authSvc, accountSvc, maxBody, log), gate)
	router.RegisterBillRoutes(httpapi.NewBillHandler(billSvc, accountSvc, maxBody, log), gate)
	router.RegisterComplaintRoutes(httpapi.NewComplaintHandler(complaintSvc, maxBody, cfg.Upload.MaxBytes, log), gate)
	router.RegisterNoticeRoutes(httpapi.NewNoticeHandler(noticeSvc, maxBody, log), gate)
	router.RegisterStatsRoutes(httpapi.NewStatsHandler(statsSvc, log), gate)

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var serveErr error
	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case serveErr = <-errCh:
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	if serveErr != nil {
		return serveErr
	}
	return nil
}

func newInviteNotifier(cfg *config.Config, redisClient *redis.Client, log *zap.Logger) (service.InviteNotifier, error) {
	switch cfg.Invite.Delivery {
	case "webhook":
		return service.NewWebhookInviteNotifier(cfg.Invite.WebhookURL, 5*time.Second), nil
	case "stream":
		if redisClient == nil {
			return nil, errors.New("INVITE_DELIVERY=stream needs a reachable redis")
		}
		return service.NewStreamInviteNotifier(redisClient, cfg.Invite.Stream), nil
	default:
		return service.NewLogInviteNotifier(log), nil
	}
}
