package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/John-Sie/YangBeiKTV/internal/classifier"
	"github.com/John-Sie/YangBeiKTV/internal/cron"
	"github.com/John-Sie/YangBeiKTV/internal/handler"
	"github.com/John-Sie/YangBeiKTV/internal/live"
	"github.com/John-Sie/YangBeiKTV/internal/middleware"
	"github.com/John-Sie/YangBeiKTV/internal/migrations"
	"github.com/John-Sie/YangBeiKTV/internal/notify"
	"github.com/John-Sie/YangBeiKTV/internal/queue"
	"github.com/John-Sie/YangBeiKTV/internal/repository"
	"github.com/John-Sie/YangBeiKTV/internal/service"
	"github.com/John-Sie/YangBeiKTV/internal/ws"
	"github.com/John-Sie/YangBeiKTV/pkg/config"
	"github.com/John-Sie/YangBeiKTV/pkg/crypto"
	"github.com/John-Sie/YangBeiKTV/pkg/db"
	"github.com/John-Sie/YangBeiKTV/pkg/jwt"
	"github.com/John-Sie/YangBeiKTV/pkg/logger"
	"github.com/John-Sie/YangBeiKTV/pkg/redis"
)

const (
	maxWSConnections = 2000
	startupTimeout   = 30 * time.Second
)

func main() {
	configPath := flag.String("config", os.Getenv("KTV_CONFIG_FILE"), "path to config.yaml")
	flag.Parse()

	if err := run(*configPath); err != nil {
		logger.Fatal("ktv-svc exited", logger.Error(err))
	}
}

// stores 按驱动组装的仓储
type stores struct {
	songs     repository.SongRepository
	requests  repository.RequestRepository
	users     repository.UserRepository
	feedbacks repository.FeedbackRepository
	pool      *pgxpool.Pool
}

func run(configPath string) error {
	cfg, err := config.NewFileLoader(configPath).Load()
	if err != nil {
		return err
	}

	log := logger.New(&logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: os.Stdout,
		Caller: cfg.Log.Caller,
	})
	logger.SetGlobalLogger(log)
	log.Info("starting ktv-svc",
		logger.String("storage", cfg.Storage.Driver),
		logger.String("notify", cfg.Notify.Driver),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startCtx, cancelStart := context.WithTimeout(ctx, startupTimeout)
	defer cancelStart()

	st, err := openStores(startCtx, cfg, log)
	if err != nil {
		return err
	}
	if st.pool != nil {
		defer st.pool.Close()
	}

	checks := map[string]handler.HealthCheck{}
	if st.pool != nil {
		checks["postgres"] = func(ctx context.Context) error {
			if s := db.Check(ctx, st.pool); !s.Healthy {
				return errors.New(s.Error)
			}
			return nil
		}
	}

	// 变更通知
	var channel notify.Channel
	switch cfg.Notify.Driver {
	case "redis":
		rdb, err := redis.Open(startCtx, cfg.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()
		checks["redis"] = func(ctx context.Context) error { return redis.Ping(ctx, rdb) }

		rc := notify.NewRedisChannel(rdb, cfg.Notify.ChannelPrefix, log)
		rc.Start(ctx)
		defer rc.Stop()
		channel = rc
	default:
		channel = notify.NewMemoryChannel()
	}

	// 看板：先全量载入，再订阅变更
	board := live.NewBoard(st.songs, st.requests, st.users, log)
	if err := board.Refresh(startCtx); err != nil {
		return fmt.Errorf("initial snapshot: %w", err)
	}
	if err := board.Watch(ctx, channel); err != nil {
		return fmt.Errorf("watch changes: %w", err)
	}
	defer board.Close()

	hub := ws.NewHub(maxWSConnections, log)
	go hub.Run(ctx)
	board.OnChange(hub.NotifyChanged)

	// 服务
	tokens := jwt.NewManager(&jwt.Config{
		Secret:      cfg.JWT.Secret,
		Issuer:      cfg.JWT.Issuer,
		TokenExpiry: cfg.JWT.Expiry,
	})
	hasher := crypto.NewPasswordHasher()
	engine := queue.NewEngine(st.requests, channel, log)

	accounts := service.NewAccountService(st.users, st.requests, hasher, tokens, channel, log)
	if err := accounts.SeedAdmin(startCtx, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.Name); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	deps := handler.Deps{
		Board:          board,
		Requests:       service.NewRequestService(board, st.songs, st.requests, st.users, engine, channel, log),
		Catalog:        service.NewCatalogService(board, st.songs, channel, classifier.NewHeuristic(), log),
		Accounts:       accounts,
		Feedbacks:      service.NewFeedbackService(st.feedbacks, channel, log),
		Stats:          service.NewStatsService(board),
		Hub:            hub,
		Tokens:         tokens,
		Log:            log,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		HealthChecks:   checks,
	}
	if rl := cfg.RateLimit; rl.Enabled {
		deps.RateLimiter = middleware.NewRateLimiter(rl.IPRate, rl.IPBurst, rl.UserRate, rl.UserBurst)
	}

	jobs := cron.NewManager(cfg.Cron, accounts, board, log)
	if err := jobs.Start(); err != nil {
		return fmt.Errorf("start cron: %w", err)
	}
	defer jobs.Stop()

	gin.SetMode(cfg.Server.Mode)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      handler.New(deps).Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", logger.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down ktv-svc")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", logger.Error(err))
	}
	log.Info("ktv-svc stopped")
	return nil
}

func openStores(ctx context.Context, cfg *config.Config, log logger.Logger) (*stores, error) {
	if cfg.Storage.Driver == "memory" {
		log.Warn("using in-memory storage, data is lost on restart")
		return &stores{
			songs:     repository.NewMemorySongRepository(),
			requests:  repository.NewMemoryRequestRepository(),
			users:     repository.NewMemoryUserRepository(),
			feedbacks: repository.NewMemoryFeedbackRepository(),
		}, nil
	}

	if cfg.Postgres.AutoMigrate {
		m, err := db.NewMigrator(cfg.Postgres.DSN(), migrations.FS)
		if err != nil {
			return nil, err
		}
		from, to, err := m.Apply()
		if cerr := m.Close(); cerr != nil {
			log.Warn("close migrator failed", logger.Error(cerr))
		}
		if err != nil {
			return nil, err
		}
		log.Info("database schema is up to date", logger.Int("from", int(from)), logger.Int("to", int(to)))
	}

	pool, err := db.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &stores{
		songs:     repository.NewSongRepository(pool),
		requests:  repository.NewRequestRepository(pool),
		users:     repository.NewUserRepository(pool),
		feedbacks: repository.NewFeedbackRepository(pool),
		pool:      pool,
	}, nil
}
