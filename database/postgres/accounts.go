package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/amww/loja"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type accountRepo struct {
	pool      *pgxpool.Pool
	tableName string
}

func scanAccount(row pgx.Row) (loja.Account, error) {
	var a loja.Account
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt)
	return a, err
}

func (r *accountRepo) Create(ctx context.Context, email, passwordHash string) (loja.Account, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (email, password_hash)
		VALUES ($1, $2)
		RETURNING id, email, password_hash, created_at
	`, r.tableName)

	a, err := scanAccount(r.pool.QueryRow(ctx, query, email, passwordHash))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return loja.Account{}, fmt.Errorf("create account: %w", loja.ErrAlreadyExists)
		}
		return loja.Account{}, fmt.Errorf("create account: %w", err)
	}

	return a, nil
}

func (r *accountRepo) Get(ctx context.Context, id uuid.UUID) (loja.Account, error) {
	query := fmt.Sprintf(`SELECT id, email, password_hash, created_at FROM %s WHERE id = $1`, r.tableName)
	return r.getOne(ctx, query, id)
}

func (r *accountRepo) GetByEmail(ctx context.Context, email string) (loja.Account, error) {
	query := fmt.Sprintf(`SELECT id, email, password_hash, created_at FROM %s WHERE email = $1`, r.tableName)
	return r.getOne(ctx, query, email)
}

func (r *accountRepo) getOne(ctx context.Context, query string, arg any) (loja.Account, error) {
	a, err := scanAccount(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return loja.Account{}, loja.ErrNotFound
		}
		return loja.Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}
