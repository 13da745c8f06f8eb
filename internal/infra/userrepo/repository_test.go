package userrepo

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/usergate/internal/domain/user"
)

// repositoriesUnderTest returns one empty store per adapter. Postgres and Valkey
// join when USERS_POSTGRES_DSN or USERS_VALKEY_ADDR point at disposable servers.
func repositoriesUnderTest(t *testing.T) map[string]user.Repository {
	t.Helper()
	sqliteRepo, err := OpenSQLiteRepository(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqliteRepo.Close() })
	repos := map[string]user.Repository{
		"memory": NewMemoryRepository(),
		"sqlite": sqliteRepo,
	}
	if repo := newPostgresRepositoryForTest(t); repo != nil {
		repos["postgres"] = repo
	}
	if repo := newValkeyRepositoryForTest(t); repo != nil {
		repos["valkey"] = repo
	}
	return repos
}

func newPostgresRepositoryForTest(t *testing.T) *PostgresRepository {
	t.Helper()
	dsn := os.Getenv("USERS_POSTGRES_DSN")
	if dsn == "" {
		t.Log("USERS_POSTGRES_DSN not set, skipping postgres adapter")
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	repo := NewPostgresRepository(pool)
	require.NoError(t, repo.EnsureSchema(ctx))
	_, err = pool.Exec(ctx, `TRUNCATE users RESTART IDENTITY`)
	require.NoError(t, err)
	return repo
}

func newValkeyRepositoryForTest(t *testing.T) *ValkeyRepository {
	t.Helper()
	addr := os.Getenv("USERS_VALKEY_ADDR")
	if addr == "" {
		t.Log("USERS_VALKEY_ADDR not set, skipping valkey adapter")
		return nil
	}
	client, err := valkey.NewClient(valkey.ClientOption{InitAddress: []string{addr}})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	repo := NewValkeyRepository(client, "usergate-test-"+uuid.NewString())
	t.Cleanup(func() {
		ctx := context.Background()
		ids, err := client.Do(ctx, client.B().Zrange().Key(repo.indexKey()).Min("0").Max("-1").Build()).AsStrSlice()
		if err != nil {
			return
		}
		keys := []string{repo.indexKey(), repo.seqKey()}
		for _, id := range ids {
			keys = append(keys, repo.userKey(id))
		}
		_ = client.Do(ctx, client.B().Del().Key(keys...).Build()).Error()
	})
	return repo
}

func TestValkeyRepository_ScriptsRespectMissingKeys(t *testing.T) {
	repo := newValkeyRepositoryForTest(t)
	if repo == nil {
		t.Skip("USERS_VALKEY_ADDR not set")
	}
	ctx := context.Background()

	created, err := repo.Add(ctx, sampleUser(0))
	require.NoError(t, err)

	removed, found, err := repo.Remove(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, created.ID, removed.ID)

	_, found, err = repo.Replace(ctx, created.ID, user.Payload{Name: "Ghost", Email: "g@x", Department: "Ops"})
	require.NoError(t, err)
	require.False(t, found)

	_, found, err = repo.Get(ctx, created.ID)
	require.NoError(t, err)
	require.False(t, found, "replace must not resurrect a removed user")

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Empty(t, users)
}

func TestRepository_IDsAreNeverReused(t *testing.T) {
	for name, repo := range repositoriesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i, want := range []int64{1, 2, 3} {
				created, err := repo.Add(ctx, sampleUser(i))
				require.NoError(t, err)
				require.Equal(t, want, created.ID)
			}

			_, found, err := repo.Remove(ctx, 2)
			require.NoError(t, err)
			require.True(t, found)

			created, err := repo.Add(ctx, sampleUser(4))
			require.NoError(t, err)
			require.Equal(t, int64(4), created.ID)

			_, found, err = repo.Remove(ctx, 4)
			require.NoError(t, err)
			require.True(t, found)

			created, err = repo.Add(ctx, sampleUser(5))
			require.NoError(t, err)
			require.Equal(t, int64(5), created.ID)

			users, err := repo.List(ctx)
			require.NoError(t, err)
			ids := make([]int64, 0, len(users))
			for _, u := range users {
				ids = append(ids, u.ID)
			}
			require.Equal(t, []int64{1, 3, 5}, ids)
		})
	}
}

func TestRepository_CRUD(t *testing.T) {
	for name, repo := range repositoriesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			created, err := repo.Add(ctx, sampleUser(0))
			require.NoError(t, err)

			got, found, err := repo.Get(ctx, created.ID)
			require.NoError(t, err)
			require.True(t, found)
			require.Equal(t, "Wes", got.Name)
			require.True(t, created.CreatedAt.Equal(got.CreatedAt))

			byName, found, err := repo.FindByName(ctx, "Wes")
			require.NoError(t, err)
			require.True(t, found)
			require.Equal(t, created.ID, byName.ID)

			updated, found, err := repo.Replace(ctx, created.ID, user.Payload{Name: "Wesley", Email: "wesley@example.com", Department: "Ops"})
			require.NoError(t, err)
			require.True(t, found)
			require.Equal(t, "Wesley", updated.Name)
			require.Equal(t, "Ops", updated.Department)
			require.True(t, created.CreatedAt.Equal(updated.CreatedAt))

			_, found, err = repo.Replace(ctx, 99, user.Payload{Name: "Nobody"})
			require.NoError(t, err)
			require.False(t, found)

			removed, found, err := repo.Remove(ctx, created.ID)
			require.NoError(t, err)
			require.True(t, found)
			require.Equal(t, "Wesley", removed.Name)

			_, found, err = repo.Get(ctx, created.ID)
			require.NoError(t, err)
			require.False(t, found)

			_, found, err = repo.Remove(ctx, created.ID)
			require.NoError(t, err)
			require.False(t, found)

			_, found, err = repo.FindByName(ctx, "Wes")
			require.NoError(t, err)
			require.False(t, found)

			users, err := repo.List(ctx)
			require.NoError(t, err)
			require.Empty(t, users)
		})
	}
}

func TestRepository_ConcurrentAddsGetDistinctIDs(t *testing.T) {
	for name, repo := range repositoriesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			const writers = 25
			ids := make(chan int64, writers)
			var wg sync.WaitGroup
			for i := 0; i < writers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					created, err := repo.Add(ctx, sampleUser(i))
					if assert.NoError(t, err) {
						ids <- created.ID
					}
				}(i)
			}
			wg.Wait()
			close(ids)

			seen := make(map[int64]struct{}, writers)
			for id := range ids {
				seen[id] = struct{}{}
			}
			require.Len(t, seen, writers)

			users, err := repo.List(ctx)
			require.NoError(t, err)
			require.Len(t, users, writers)
		})
	}
}

func TestSeedFillsRepository(t *testing.T) {
	for name, repo := range repositoriesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			added, err := user.Seed(context.Background(), repo)
			require.NoError(t, err)
			require.Equal(t, 3, added)

			jane, found, err := repo.Get(context.Background(), 3)
			require.NoError(t, err)
			require.True(t, found)
			require.Equal(t, "Jane", jane.Name)
			require.Equal(t, "HR", jane.Department)
			require.Equal(t, 2024, jane.CreatedAt.Year())
		})
	}
}

func sampleUser(i int) user.User {
	names := []string{"Wes", "John", "Jane", "Ada", "Grace", "Linus"}
	name := names[i%len(names)]
	return user.User{
		Name:       name,
		Email:      name + "@example.com",
		Department: "Engineering",
		CreatedAt:  time.Date(2025, 6, 1, 9, 30, 0, 123456789, time.UTC),
	}
}
