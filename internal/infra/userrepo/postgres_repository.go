package userrepo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/usergate/internal/domain/user"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
	id         BIGSERIAL PRIMARY KEY,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL,
	department TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const userColumns = `id, name, email, department, created_at`

// PostgresRepository persists users in Postgres. Ids come from the BIGSERIAL sequence.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Close releases the connection pool.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// EnsureSchema creates the users table when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, postgresSchema)
	return err
}

// List returns every user ordered by id.
func (r *PostgresRepository) List(ctx context.Context) ([]user.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]user.User, 0)
	for rows.Next() {
		u, err := scanPostgresUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Get fetches by primary key.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (user.User, bool, error) {
	return r.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// FindByName fetches the lowest-id user with name.
func (r *PostgresRepository) FindByName(ctx context.Context, name string) (user.User, bool, error) {
	return r.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE name = $1 ORDER BY id LIMIT 1`, name)
}

// Add inserts a new user row.
func (r *PostgresRepository) Add(ctx context.Context, u user.User) (user.User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, department, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns, u.Name, u.Email, u.Department, u.CreatedAt)
	return scanPostgresUser(row)
}

// Replace updates the mutable columns.
func (r *PostgresRepository) Replace(ctx context.Context, id int64, fields user.Payload) (user.User, bool, error) {
	return r.queryOne(ctx, `
		UPDATE users SET name = $2, email = $3, department = $4
		WHERE id = $1
		RETURNING `+userColumns, id, fields.Name, fields.Email, fields.Department)
}

// Remove deletes the row and returns it.
func (r *PostgresRepository) Remove(ctx context.Context, id int64) (user.User, bool, error) {
	return r.queryOne(ctx, `DELETE FROM users WHERE id = $1 RETURNING `+userColumns, id)
}

func (r *PostgresRepository) queryOne(ctx context.Context, sql string, args ...any) (user.User, bool, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return user.User{}, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return user.User{}, false, rows.Err()
	}
	u, err := scanPostgresUser(rows)
	if err != nil {
		return user.User{}, false, err
	}
	return u, true, rows.Err()
}

func scanPostgresUser(row pgx.Row) (user.User, error) {
	var u user.User
	var created time.Time
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Department, &created); err != nil {
		return user.User{}, err
	}
	u.CreatedAt = created.UTC()
	return u, nil
}

var _ user.Repository = (*PostgresRepository)(nil)
