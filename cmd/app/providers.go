package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/usergate/internal/domain/auth"
	"github.com/yanqian/usergate/internal/domain/user"
	"github.com/yanqian/usergate/internal/infra/config"
	"github.com/yanqian/usergate/internal/infra/userrepo"
)

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		Signing: auth.SigningConfig{
			Secret:   cfg.Auth.Secret,
			Issuer:   cfg.Auth.Issuer,
			Audience: cfg.Auth.Audience,
			TokenTTL: cfg.Auth.TokenTTL,
		},
		Admin: auth.AdminCredentials{
			Username: cfg.Auth.AdminUsername,
			Password: cfg.Auth.AdminPassword,
		},
	}
}

func provideUserConfig(cfg *config.Config) user.Config {
	return user.Config{RejectDuplicateNames: cfg.Users.RejectDuplicateNames}
}

// provideUserRepository opens the configured backend and seeds it when empty.
// Postgres and Valkey fall back to memory when unreachable.
func provideUserRepository(cfg *config.Config, logger *slog.Logger) (user.Repository, error) {
	repo, err := openUserRepository(cfg, logger)
	if err != nil {
		return nil, err
	}
	if !cfg.Users.Seed {
		return repo, nil
	}
	if err := seedUserRepository(repo, logger); err != nil {
		return nil, err
	}
	return repo, nil
}

// seedUserRepository fills an empty store. The store is closed when seeding fails.
func seedUserRepository(repo user.Repository, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	seeded, err := user.Seed(ctx, repo)
	if err != nil {
		if closer, ok := repo.(io.Closer); ok {
			if closeErr := closer.Close(); closeErr != nil {
				logger.Error("failed to close user repository", "error", closeErr)
			}
		}
		return fmt.Errorf("seed users: %w", err)
	}
	if seeded > 0 {
		logger.Info("user repository seeded", "count", seeded)
	}
	return nil
}

func openUserRepository(cfg *config.Config, logger *slog.Logger) (user.Repository, error) {
	switch cfg.Users.Backend {
	case config.BackendPostgres:
		return providePostgresUserRepository(cfg, logger), nil
	case config.BackendValkey:
		return provideValkeyUserRepository(cfg, logger), nil
	case config.BackendSQLite:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		repo, err := userrepo.OpenSQLiteRepository(ctx, cfg.Users.SQLite.Path)
		if err != nil {
			return nil, err
		}
		logger.Info("sqlite user repository enabled", "path", cfg.Users.SQLite.Path)
		return repo, nil
	default:
		logger.Info("using memory user repository")
		return userrepo.NewMemoryRepository(), nil
	}
}

func providePostgresUserRepository(cfg *config.Config, logger *slog.Logger) user.Repository {
	fallback := userrepo.NewMemoryRepository()
	poolConfig, err := pgxpool.ParseConfig(strings.TrimSpace(cfg.Users.Postgres.DSN))
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repository", "error", err)
		return fallback
	}
	if cfg.Users.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Users.Postgres.MaxConns
	}
	if cfg.Users.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Users.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repository", "error", err)
		return fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repository", "error", err)
		pool.Close()
		return fallback
	}
	repo := userrepo.NewPostgresRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Error("failed to create users table, using memory repository", "error", err)
		pool.Close()
		return fallback
	}
	logger.Info("postgres user repository enabled")
	return repo
}

func provideValkeyUserRepository(cfg *config.Config, logger *slog.Logger) user.Repository {
	opt, err := buildValkeyOptions(cfg.Users.Valkey.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, using memory repository", "error", err)
		return userrepo.NewMemoryRepository()
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, using memory repository", "error", err)
		return userrepo.NewMemoryRepository()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, using memory repository", "error", err)
		client.Close()
		return userrepo.NewMemoryRepository()
	}
	logger.Info("valkey user repository enabled", "addr", cfg.Users.Valkey.Addr)
	return userrepo.NewValkeyRepository(client, cfg.Users.Valkey.Prefix)
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}
