// Package repository provides persistence for applicant and provider
// accounts.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the account does not exist.
var ErrNotFound = errors.New("account not found")

// ErrEmailTaken indicates another account already uses the email.
var ErrEmailTaken = errors.New("email already registered")

// Account is an authenticated identity in the system.
type Account struct {
	ID           uuid.UUID
	Email        string
	Name         string
	Role         string
	PasswordHash string
	CreatedAt    time.Time
}

// Repository persists accounts in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates an account repository over the given pool.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByEmail fetches an account by its (case-normalized) email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (Account, error) {
	var a Account
	err := r.pool.QueryRow(ctx, `
		SELECT id, email, name, role, password_hash, created_at
		FROM accounts WHERE email = lower($1)`,
		email).Scan(&a.ID, &a.Email, &a.Name, &a.Role, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	if err != nil {
		return Account{}, fmt.Errorf("get account by email: %w", err)
	}
	return a, nil
}

// GetByID fetches an account by id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Account, error) {
	var a Account
	err := r.pool.QueryRow(ctx, `
		SELECT id, email, name, role, password_hash, created_at
		FROM accounts WHERE id = $1`,
		id).Scan(&a.ID, &a.Email, &a.Name, &a.Role, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	if err != nil {
		return Account{}, fmt.Errorf("get account by id: %w", err)
	}
	return a, nil
}

// Create inserts a new account. Emails are stored lowercased.
func (r *Repository) Create(ctx context.Context, email, name, role, passwordHash string) (Account, error) {
	a := Account{Name: name, Role: role, PasswordHash: passwordHash}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (email, name, role, password_hash)
		VALUES (lower($1), $2, $3, $4)
		RETURNING id, email, created_at`,
		email, name, role, passwordHash).Scan(&a.ID, &a.Email, &a.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Account{}, ErrEmailTaken
		}
		return Account{}, fmt.Errorf("create account: %w", err)
	}
	return a, nil
}
