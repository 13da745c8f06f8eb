package userrepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/yanqian/usergate/internal/domain/user"
)

// AUTOINCREMENT keeps SQLite from handing out the id of a deleted row again.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL,
	department TEXT NOT NULL,
	created_at TEXT NOT NULL
)`

// SQLiteRepository persists users in an embedded SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

// OpenSQLiteRepository opens the database at path (":memory:" allowed) and creates the schema.
func OpenSQLiteRepository(ctx context.Context, path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection serializes writers and keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

// Close releases the database handle.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// List returns every user ordered by id.
func (r *SQLiteRepository) List(ctx context.Context) ([]user.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]user.User, 0)
	for rows.Next() {
		u, err := scanSQLiteUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Get fetches by primary key.
func (r *SQLiteRepository) Get(ctx context.Context, id int64) (user.User, bool, error) {
	return r.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// FindByName fetches the lowest-id user with name.
func (r *SQLiteRepository) FindByName(ctx context.Context, name string) (user.User, bool, error) {
	return r.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE name = ? ORDER BY id LIMIT 1`, name)
}

// Add inserts a new row.
func (r *SQLiteRepository) Add(ctx context.Context, u user.User) (user.User, error) {
	created, found, err := r.queryOne(ctx, `
		INSERT INTO users (name, email, department, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING `+userColumns, u.Name, u.Email, u.Department, u.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return user.User{}, err
	}
	if !found {
		return user.User{}, fmt.Errorf("insert returned no row")
	}
	return created, nil
}

// Replace updates the mutable columns.
func (r *SQLiteRepository) Replace(ctx context.Context, id int64, fields user.Payload) (user.User, bool, error) {
	return r.queryOne(ctx, `
		UPDATE users SET name = ?, email = ?, department = ?
		WHERE id = ?
		RETURNING `+userColumns, fields.Name, fields.Email, fields.Department, id)
}

// Remove deletes the row and returns it.
func (r *SQLiteRepository) Remove(ctx context.Context, id int64) (user.User, bool, error) {
	return r.queryOne(ctx, `DELETE FROM users WHERE id = ? RETURNING `+userColumns, id)
}

func (r *SQLiteRepository) queryOne(ctx context.Context, query string, args ...any) (user.User, bool, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return user.User{}, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return user.User{}, false, rows.Err()
	}
	u, err := scanSQLiteUser(rows)
	if err != nil {
		return user.User{}, false, err
	}
	return u, true, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteUser(row rowScanner) (user.User, error) {
	var u user.User
	var created string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Department, &created); err != nil {
		return user.User{}, err
	}
	ts, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return user.User{}, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	u.CreatedAt = ts.UTC()
	return u, nil
}

var _ user.Repository = (*SQLiteRepository)(nil)
