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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/notes-app/backend/internal/auth"
	"github.com/ayush/notes-app/backend/internal/config"
	"github.com/ayush/notes-app/backend/internal/logging"
	"github.com/ayush/notes-app/backend/internal/middleware"
	"github.com/ayush/notes-app/backend/internal/notes"
	"github.com/ayush/notes-app/backend/internal/server"
	"github.com/ayush/notes-app/backend/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg, log); err != nil {
		log.Error(context.Background(), "server exited", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logging.SlogLogger) error {
	ctx := context.Background()

	var (
		users    auth.UserStore
		noteRepo notes.NoteStore
		ping     func(context.Context) error
	)

	// ── Document store ───────────────────────────────────────
	switch cfg.StoreDriver {
	case config.DriverMemory:
		mem := store.NewMemoryStore()
		users, noteRepo, ping = mem, mem, mem.Ping
		log.Warn(ctx, "using in-memory store; data is lost on restart")
	default:
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return fmt.Errorf("mongo connect: %w", err)
		}
		defer mongoClient.Disconnect(context.Background())

		mongoStore := store.NewMongoStore(mongoClient.Database(cfg.MongoDB))
		if err := mongoStore.EnsureIndexes(ctx); err != nil {
			return err
		}
		users, noteRepo, ping = mongoStore, mongoStore, mongoStore.Ping
		log.Info(ctx, "connected to mongodb", "db", cfg.MongoDB)
	}

	// ── PostgreSQL (optional user records) ──────────────────
	if cfg.PostgresDSN != "" {
		pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("postgres connect: %w", err)
		}
		defer pgPool.Close()
		pgStore := store.NewPostgresStore(pgPool)
		if err := pgStore.Migrate(ctx); err != nil {
			return fmt.Errorf("postgres migrate: %w", err)
		}
		users = pgStore
		log.Info(ctx, "user records stored in postgres")
	}

	// ── Redis (optional identity cache) ─────────────────────
	var identity middleware.IdentityStore = users
	if cfg.CacheEnabled() {
		rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return fmt.Errorf("redis connect: %w", err)
		}
		defer rdb.Close()
		identity = store.NewCachedUsers(users, rdb, cfg.UserCacheTTL)
		log.Info(ctx, "identity cache enabled", "ttl", cfg.UserCacheTTL)
	}

	// ── MinIO (optional note exports) ───────────────────────
	var files notes.FileStore
	if cfg.ExportEnabled() {
		minioStore, err := store.NewMinioStore(ctx, store.MinioOptions{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			return fmt.Errorf("minio connect: %w", err)
		}
		files = minioStore
		log.Info(ctx, "note exports enabled", "bucket", cfg.MinioBucket)
	}

	// ── Metrics ──────────────────────────────────────────────
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// ── Router ───────────────────────────────────────────────
	handler := server.NewRouter(server.Deps{
		Users:       users,
		Identity:    identity,
		Notes:       noteRepo,
		Files:       files,
		Tokens:      auth.NewTokenService(cfg.AccessTokenSecret, cfg.AccessTokenTTL),
		Log:         log,
		Registry:    reg,
		CORSOrigins: cfg.CORSOrigins,
		Ping:        ping,
	})

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-quit:
	}

	log.Info(ctx, "shutting down")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}
