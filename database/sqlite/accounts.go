package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/amww/loja"
	"github.com/google/uuid"
	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type accountRepo struct {
	db        *sql.DB
	tableName string
}

func scanAccount(row rowScanner) (loja.Account, error) {
	var a loja.Account
	var idStr, createdAt string

	if err := row.Scan(&idStr, &a.Email, &a.PasswordHash, &createdAt); err != nil {
		return loja.Account{}, err
	}

	var err error
	a.ID, err = uuid.Parse(idStr)
	if err != nil {
		return loja.Account{}, fmt.Errorf("parse uuid: %w", err)
	}

	a.CreatedAt, err = time.Parse(timeFormat, createdAt)
	if err != nil {
		return loja.Account{}, fmt.Errorf("parse created_at: %w", err)
	}

	return a, nil
}

func (r *accountRepo) Create(ctx context.Context, email, passwordHash string) (loja.Account, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (id, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id, email, password_hash, created_at`, r.tableName)

	a, err := scanAccount(r.db.QueryRowContext(ctx, query,
		uuid.New().String(), email, passwordHash, formatTime(time.Now()),
	))
	if err != nil {
		if isUniqueViolation(err) {
			return loja.Account{}, fmt.Errorf("create account: %w", loja.ErrAlreadyExists)
		}
		return loja.Account{}, fmt.Errorf("create account: %w", err)
	}

	return a, nil
}

func (r *accountRepo) Get(ctx context.Context, id uuid.UUID) (loja.Account, error) {
	return r.getBy(ctx, "id", id.String())
}

func (r *accountRepo) GetByEmail(ctx context.Context, email string) (loja.Account, error) {
	return r.getBy(ctx, "email", email)
}

func (r *accountRepo) getBy(ctx context.Context, column string, value string) (loja.Account, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table and column names are fixed
		`SELECT id, email, password_hash, created_at FROM %s WHERE %s = ?`, r.tableName, column)

	a, err := scanAccount(r.db.QueryRowContext(ctx, query, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return loja.Account{}, loja.ErrNotFound
		}
		return loja.Account{}, fmt.Errorf("get account: %w", err)
	}

	return a, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *moderncsqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT
}
