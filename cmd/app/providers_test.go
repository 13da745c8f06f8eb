package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/usergate/internal/domain/user"
	"github.com/yanqian/usergate/internal/infra/config"
	"github.com/yanqian/usergate/internal/infra/userrepo"
)

type failingRepo struct {
	*userrepo.MemoryRepository
	closed bool
}

func (r *failingRepo) List(context.Context) ([]user.User, error) {
	return nil, errors.New("disk I/O error")
}

func (r *failingRepo) Close() error {
	r.closed = true
	return nil
}

func TestSeedUserRepository_ClosesStoreOnFailure(t *testing.T) {
	repo := &failingRepo{MemoryRepository: userrepo.NewMemoryRepository()}

	err := seedUserRepository(repo, discardLogger())
	require.ErrorContains(t, err, "disk I/O error")
	require.True(t, repo.closed)
}

func TestProvideUserRepository_SeedsSQLite(t *testing.T) {
	cfg := &config.Config{Users: config.UsersConfig{
		Backend: config.BackendSQLite,
		Seed:    true,
		SQLite:  config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "users.db")},
	}}

	repo, err := provideUserRepository(cfg, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.(io.Closer).Close() })

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 3)
}

func TestProvideUserRepository_DefaultsToMemory(t *testing.T) {
	repo, err := provideUserRepository(&config.Config{}, discardLogger())
	require.NoError(t, err)
	require.IsType(t, &userrepo.MemoryRepository{}, repo)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
