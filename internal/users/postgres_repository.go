package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the repository needs.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores users in the relational database.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository initializes a repo backed by a pgx pool.
func NewPostgresRepository(db DB) *PostgresRepository {
	if db == nil {
		panic("users: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

// Create inserts a new user row.
func (r *PostgresRepository) Create(ctx context.Context, email, fullName, passwordHash string) (*User, error) {
	u := &User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(email),
		FullName:     fullName,
		PasswordHash: passwordHash,
	}
	query := `
		INSERT INTO users (id, email, full_name, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, u.ID, u.Email, u.FullName, u.PasswordHash).
		Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailRegistered
		}
		return nil, fmt.Errorf("users: insert failed: %w", err)
	}
	return u, nil
}

// GetByEmail fetches a user by email.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.get(ctx, `SELECT id, email, full_name, password_hash, created_at, updated_at
		FROM users WHERE email = $1`, strings.ToLower(email))
}

// GetByID fetches a user by ID.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrUserNotFound
	}
	return r.get(ctx, `SELECT id, email, full_name, password_hash, created_at, updated_at
		FROM users WHERE id = $1`, id)
}

func (r *PostgresRepository) get(ctx context.Context, query string, arg any) (*User, error) {
	var u User
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("users: select failed: %w", err)
	}
	return &u, nil
}
