package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ogurasousui/recruitment-api/internal/adapters/http/middleware"
	"github.com/ogurasousui/recruitment-api/internal/adapters/messaging"
	"github.com/ogurasousui/recruitment-api/internal/adapters/repository/postgres"
	"github.com/ogurasousui/recruitment-api/internal/core/auth"
	"github.com/ogurasousui/recruitment-api/internal/core/client"
	"github.com/ogurasousui/recruitment-api/internal/core/identity"
	"github.com/ogurasousui/recruitment-api/internal/core/posting"
	"github.com/ogurasousui/recruitment-api/internal/platform/config"
	pg "github.com/ogurasousui/recruitment-api/internal/platform/db/postgres"
	"github.com/ogurasousui/recruitment-api/internal/platform/logger"
	"github.com/ogurasousui/recruitment-api/internal/platform/server"
	"github.com/ogurasousui/recruitment-api/internal/platform/telemetry"
	"github.com/redis/go-redis/v9"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	lg, err := logger.New(cfg.Log.Mode)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer lg.Sync()

	shutdownTracer, err := telemetry.InitTracer(ctx, cfg.Telemetry)
	if err != nil {
		lg.Fatal("failed to initialize tracer", "error", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			lg.Warn("failed to shutdown tracer", "error", err)
		}
	}()

	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		lg.Fatal("failed to initialize database pool", "error", err)
	}
	defer dbPool.Close()
	txManager := pg.NewTransactionManager(dbPool, pg.WithCommitErrorTranslator(postgres.TranslateDeferredConstraintError))

	identityRepo := postgres.NewIdentityRepository(dbPool)
	userSvc := identity.NewService(identityRepo, nil, identity.BcryptHasher{})

	issuer := auth.NewJWTIssuer(auth.IssuerConfig{
		Secret:     cfg.Auth.JWTSecret,
		Issuer:     cfg.Auth.Issuer,
		AccessTTL:  cfg.Auth.AccessTTL,
		RefreshTTL: cfg.Auth.RefreshTTL,
	}, nil)
	authSvc := auth.NewService(identityRepo, identity.BcryptHasher{}, issuer, cfg.Auth.MaxLoginAttempts)

	clientSvc := client.NewService(postgres.NewClientRepository(dbPool), nil, txManager)

	postingOpts := []posting.Option{posting.WithLogger(lg)}
	if cfg.NATS.URL != "" {
		publisher, err := messaging.Connect(cfg.NATS, lg)
		if err != nil {
			lg.Fatal("failed to connect to nats", "error", err)
		}
		defer publisher.Close()
		postingOpts = append(postingOpts, posting.WithEventPublisher(publisher))
	}
	postingSvc := posting.NewService(
		postgres.NewPostingRepository(dbPool),
		nil,
		txManager,
		posting.NewPolicy(cfg.Posting.RequiredApprovals),
		postingOpts...,
	)

	var limiter middleware.Limiter
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			lg.Warn("redis is unreachable, login rate limiting fails open", "addr", cfg.Redis.Addr, "error", err)
		}
		limiter = middleware.NewRedisLimiter(rdb, "ratelimit:login")
	}

	router := server.NewRouter(server.RouterDeps{
		Config:   cfg,
		Log:      lg,
		Auth:     authSvc,
		Users:    userSvc,
		Clients:  clientSvc,
		Postings: postingSvc,
		Limiter:  limiter,
	})
	srv := server.New(cfg.Server.ListenAddr, cfg.Server.HealthListenAddr, router)

	lg.Info("http server listening", "addr", cfg.Server.ListenAddr, "health_addr", cfg.Server.HealthListenAddr)

	if err := srv.Run(ctx); err != nil {
		lg.Error("server stopped with error", "error", err)
		return
	}
	lg.Info("server stopped")
}
