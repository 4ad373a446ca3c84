package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/staffhub/internal/api"
	"github.com/lalith-99/staffhub/internal/config"
	"github.com/lalith-99/staffhub/internal/db"
	"github.com/lalith-99/staffhub/internal/observ"
	"github.com/lalith-99/staffhub/internal/realtime"
	"github.com/lalith-99/staffhub/internal/repository"
	"github.com/lalith-99/staffhub/internal/repository/memory"
	"github.com/lalith-99/staffhub/internal/repository/postgres"
	"github.com/lalith-99/staffhub/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// repos is the storage backend picked by STORAGE_DRIVER.
type repos struct {
	employees repository.EmployeeRepository
	rooms     repository.RoomRepository
	messages  repository.MessageRepository
	comments  repository.CommentRepository
}

// openMemory builds the in-process backend. The employee directory comes
// from seedPath; without it every room member and direct recipient is
// unknown.
func openMemory(seedPath string, logger *zap.Logger) (repos, error) {
	logger.Warn("using in-memory storage, data is lost on restart")
	store := memory.New()

	if seedPath == "" {
		logger.Warn("MEMORY_SEED not set, employee directory is empty")
	} else {
		n, err := store.LoadSeed(seedPath)
		if err != nil {
			return repos{}, fmt.Errorf("load memory seed: %w", err)
		}
		logger.Info("employee directory seeded", zap.String("path", seedPath), zap.Int("employees", n))
	}

	return repos{store.Employees(), store.Rooms(), store.Messages(), store.Comments()}, nil
}

func run() error {
	// ---------------------------------------------------------------
	// 1. Load config and create logger
	// ---------------------------------------------------------------
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// SIGINT/SIGTERM cancel ctx and start the shutdown below.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := observ.NewMetrics()
	var checks []api.Checker

	// ---------------------------------------------------------------
	// 2. Storage
	// ---------------------------------------------------------------
	var r repos
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		r, err = openMemory(cfg.MemorySeed, logger)
		if err != nil {
			return err
		}

	default:
		database, err := db.New(ctx, cfg.DatabaseURL, db.PoolOptions{
			MaxConns: cfg.DBMaxConns,
			MinConns: cfg.DBMinConns,
		}, logger)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer database.Close()

		if cfg.RunMigrations {
			if err := database.RunMigrations(ctx, cfg.MigrationsDir); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
		}

		pool := database.Pool()
		r = repos{
			employees: postgres.NewEmployeeStore(pool),
			rooms:     postgres.NewRoomStore(pool),
			messages:  postgres.NewMessageStore(pool),
			comments:  postgres.NewCommentStore(pool),
		}
		checks = append(checks, api.Checker{Name: "database", Check: database.Health})
	}

	// ---------------------------------------------------------------
	// 3. Realtime fan-out
	//
	// Without REDIS_URL each instance only reaches its own sockets,
	// which is fine for a single replica.
	// ---------------------------------------------------------------
	hub := realtime.NewHub(metrics)
	var broker realtime.Broker = realtime.NewLocalBroker(hub)
	if cfg.RedisURL != "" {
		rdb, err := db.NewRedis(ctx, cfg.RedisURL, logger)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer rdb.Close()

		rb, err := realtime.NewRedisBroker(ctx, rdb, hub, logger)
		if err != nil {
			return fmt.Errorf("start redis broker: %w", err)
		}
		broker = rb
		checks = append(checks, api.Checker{
			Name:  "redis",
			Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	}
	defer broker.Close()

	// ---------------------------------------------------------------
	// 4. Services and handlers
	// ---------------------------------------------------------------
	roomSvc := service.NewRoomService(r.rooms, r.employees)
	messageSvc := service.NewMessageService(service.MessageDependencies{
		MessageRepo:  r.messages,
		RoomRepo:     r.rooms,
		EmployeeRepo: r.employees,
		Metrics:      metrics,
	})
	commentSvc := service.NewCommentService(r.comments, r.employees)

	ws := realtime.NewServer(realtime.Dependencies{
		Hub:      hub,
		Broker:   broker,
		Messages: messageSvc,
		Rooms:    roomSvc,
		Options: realtime.Options{
			AllowedOrigins: cfg.WS.AllowedOrigins,
			SendRate:       cfg.WS.SendRate,
			SendBurst:      cfg.WS.SendBurst,
			SendBuffer:     cfg.WS.SendBuffer,
		},
		Logger:  logger,
		Metrics: metrics,
	})

	router := api.NewRouter(api.RouterDeps{
		JWTSecret: cfg.JWTSecret,
		Logger:    logger,
		Health:    api.NewHealthHandler(logger, checks...),
		Employees: api.NewEmployeeHandler(r.employees, logger),
		Rooms:     api.NewRoomHandler(roomSvc, logger),
		Messages:  api.NewMessageHandler(messageSvc, ws, logger),
		Comments:  api.NewCommentHandler(commentSvc, logger),
		Realtime:  ws.Handle,
		Metrics:   promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}),
	})

	// ---------------------------------------------------------------
	// 5. Serve until signalled
	// ---------------------------------------------------------------
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Shutdown does not wait for hijacked websocket connections, so
	// close them explicitly.
	srv.RegisterOnShutdown(hub.CloseAll)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting staffhub",
			zap.String("port", cfg.Port),
			zap.String("env", cfg.Env),
			zap.String("storage", cfg.StorageDriver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
