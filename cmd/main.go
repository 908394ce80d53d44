package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/andressep95/auth-portal/internal/config"
	"github.com/andressep95/auth-portal/internal/database"
	"github.com/andressep95/auth-portal/internal/handler"
	"github.com/andressep95/auth-portal/internal/handler/middleware"
	"github.com/andressep95/auth-portal/internal/logger"
	"github.com/andressep95/auth-portal/internal/metrics"
	"github.com/andressep95/auth-portal/internal/repository"
	"github.com/andressep95/auth-portal/internal/repository/memory"
	"github.com/andressep95/auth-portal/internal/repository/postgres"
	"github.com/andressep95/auth-portal/internal/service"
	"github.com/andressep95/auth-portal/pkg/blacklist"
	"github.com/andressep95/auth-portal/pkg/hash"
	"github.com/andressep95/auth-portal/pkg/jwt"
	"github.com/andressep95/auth-portal/pkg/validator"
)

const usage = `usage: auth-portal [command]

commands:
  serve            run the HTTP server (default)
  migrate          apply database migrations
  purge-sessions   delete expired session rows
  keygen           write a new RSA key pair to the configured key paths
`

func main() {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	command := flag.Arg(0)
	if command == "" {
		command = "serve"
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Server.IsDevelopment())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "serve":
		err = serve(ctx, cfg, log)
	case "migrate":
		err = migrateUp(cfg, log)
	case "purge-sessions":
		err = purgeSessions(ctx, cfg, log)
	case "keygen":
		err = keygen(cfg, log)
	default:
		flag.Usage()
		os.Exit(2)
	}

	if err != nil {
		log.Error("command failed", zap.String("command", command), zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

// stores bundles the selected persistence adapters.
type stores struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	db       *sqlx.DB
}

func (s *stores) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func openStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (*stores, error) {
	if cfg.Database.Driver == config.DriverMemory {
		log.Warn("using in-memory store; data is lost on restart")
		mem := memory.NewStore()
		return &stores{users: mem.Users(), sessions: mem.Sessions()}, nil
	}

	db, err := database.Connect(ctx, &cfg.Database, log)
	if err != nil {
		return nil, err
	}
	log.Info("database connection established")

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(cfg.Database.URL()); err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Info("database migrations applied")
	}

	return &stores{
		users:    postgres.NewUserRepository(db),
		sessions: postgres.NewSessionRepository(db),
		db:       db,
	}, nil
}

// initRedis initializes Redis client and verifies connection
func initRedis(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}

// loadRSAKeys loads RSA private and public keys from files
func loadRSAKeys(cfg *config.JWTConfig) ([]byte, []byte, error) {
	privateKey, err := os.ReadFile(cfg.PrivateKeyPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read private key file: %w", err)
	}

	publicKey, err := os.ReadFile(cfg.PublicKeyPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read public key file: %w", err)
	}

	if len(privateKey) == 0 {
		return nil, nil, errors.New("private key file is empty")
	}
	if len(publicKey) == 0 {
		return nil, nil, errors.New("public key file is empty")
	}

	return privateKey, publicKey, nil
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Warn("error closing database connection", zap.Error(err))
		}
	}()

	privateKey, publicKey, err := loadRSAKeys(&cfg.JWT)
	if err != nil {
		return err
	}
	tokenService, err := jwt.NewTokenService(privateKey, publicKey, cfg.JWT.Expiry, cfg.JWT.Issuer)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}
	log.Info("RSA keys loaded")

	checks := map[string]handler.HealthCheck{}
	if st.db != nil {
		checks["database"] = st.db.PingContext
	}

	var (
		verifier middleware.TokenVerifier = tokenService
		revoker  service.TokenRevoker
	)
	if cfg.Redis.Enabled {
		redisClient, err := initRedis(ctx, &cfg.Redis)
		if err != nil {
			return err
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Warn("error closing Redis connection", zap.Error(err))
			}
		}()
		log.Info("redis connection established")

		tokenBlacklist := blacklist.NewTokenBlacklist(redisClient)
		verifier = blacklist.NewCheckedVerifier(tokenService, tokenBlacklist)
		revoker = tokenBlacklist
		checks["cache"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	} else {
		log.Warn("redis disabled; logout will not revoke tokens")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewCollector(registry)

	hasher := hash.NewHasher(cfg.Auth.BcryptCost)
	validate := validator.NewValidator()

	userService := service.NewUserService(st.users, hasher, validate, log)
	authService := service.NewAuthService(st.users, hasher, validate, tokenService, revoker, log)
	sessionService := service.NewSessionService(st.users, st.sessions, cfg.Auth.SessionTTL, log)

	app := fiber.New(fiber.Config{
		AppName:               "Auth Portal",
		DisableStartupMessage: true,
		ErrorHandler:          handler.ErrorHandler(log),
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
	})

	app.Use(middleware.RecoveryMiddleware(log))
	app.Use(middleware.LoggerMiddleware(log.Named("http")))
	app.Use(middleware.MetricsMiddleware(recorder))
	app.Use(middleware.CORSMiddleware(cfg.Server.AllowOrigins))

	handler.SetupRoutes(app, handler.Handlers{
		Auth:    handler.NewAuthHandler(userService, authService, cfg.Auth, recorder, log),
		Session: handler.NewSessionHandler(sessionService, recorder, log),
		User:    handler.NewUserHandler(userService, log),
		Health:  handler.NewHealthHandler(checks),
		JWKS:    handler.NewJWKSHandler(tokenService.GetPublicKey(), cfg.JWT.KeyID),
		Page:    handler.NewPageHandler(),
		Metrics: adaptor.HTTPHandler(metrics.Handler(registry)),
	},
		middleware.Authenticate(verifier, cfg.Auth.CookieName, log.Named("auth")),
		middleware.RequireAuth(),
		middleware.NewRouteGuard(cfg.Guard, recorder).Handler(),
	)

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Server.Port
		log.Info("server starting",
			zap.String("addr", addr),
			zap.String("environment", cfg.Server.Environment),
			zap.String("store", cfg.Database.Driver),
		)
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}

func migrateUp(cfg *config.Config, log *zap.Logger) error {
	if cfg.Database.Driver != config.DriverPostgres {
		return fmt.Errorf("migrate requires STORE_DRIVER=%s", config.DriverPostgres)
	}
	if err := database.RunMigrations(cfg.Database.URL()); err != nil {
		return err
	}
	log.Info("database migrations applied")
	return nil
}

// purgeSessions runs against the persistent store only; an in-memory store
// starts empty in this process.
func purgeSessions(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	if cfg.Database.Driver != config.DriverPostgres {
		return fmt.Errorf("purge-sessions requires STORE_DRIVER=%s", config.DriverPostgres)
	}

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	sessionService := service.NewSessionService(st.users, st.sessions, cfg.Auth.SessionTTL, log)
	_, err = sessionService.PurgeExpired(ctx)
	return err
}

func keygen(cfg *config.Config, log *zap.Logger) error {
	for _, p := range []string{cfg.JWT.PrivateKeyPath, cfg.JWT.PublicKeyPath} {
		if _, err := os.Stat(p); err == nil {
			return fmt.Errorf("refusing to overwrite existing key file %s", p)
		}
	}

	privatePEM, publicPEM, err := jwt.GenerateKeyPairPEM(2048)
	if err != nil {
		return err
	}

	if err := writeKeyFile(cfg.JWT.PrivateKeyPath, privatePEM, 0o600); err != nil {
		return err
	}
	if err := writeKeyFile(cfg.JWT.PublicKeyPath, publicPEM, 0o644); err != nil {
		return err
	}

	log.Info("RSA key pair written",
		zap.String("private", cfg.JWT.PrivateKeyPath),
		zap.String("public", cfg.JWT.PublicKeyPath),
	)
	return nil
}

func writeKeyFile(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create key directory: %w", err)
	}
	if err := os.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("failed to write key file: %w", err)
	}
	return nil
}
