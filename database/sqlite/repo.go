// Package sqlite implements the product and account stores using SQLite
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/amww/loja"
	"github.com/google/uuid"
)

// timeFormat is fixed width so that timestamps sort as text.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

type rowScanner interface {
	Scan(dest ...any) error
}

type productRepo struct {
	db        *sql.DB
	tableName string
}

const productColumns = `id, name, description, price, image_url, created_at, updated_at`

func scanProduct(row rowScanner) (loja.Product, error) {
	var p loja.Product
	var idStr, createdAt, updatedAt string

	if err := row.Scan(&idStr, &p.Name, &p.Description, &p.Price, &p.ImageURL, &createdAt, &updatedAt); err != nil {
		return loja.Product{}, err
	}

	var err error
	p.ID, err = uuid.Parse(idStr)
	if err != nil {
		return loja.Product{}, fmt.Errorf("parse uuid: %w", err)
	}

	p.CreatedAt, err = time.Parse(timeFormat, createdAt)
	if err != nil {
		return loja.Product{}, fmt.Errorf("parse created_at: %w", err)
	}

	p.UpdatedAt, err = time.Parse(timeFormat, updatedAt)
	if err != nil {
		return loja.Product{}, fmt.Errorf("parse updated_at: %w", err)
	}

	return p, nil
}

func (r *productRepo) Create(ctx context.Context, fields loja.ProductFields) (loja.Product, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (id, name, description, price, image_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, '', ?, ?)
		RETURNING %s`, r.tableName, productColumns)

	now := formatTime(time.Now())
	p, err := scanProduct(r.db.QueryRowContext(ctx, query,
		uuid.New().String(), fields.Name, fields.Description, fields.Price, now, now,
	))
	if err != nil {
		return loja.Product{}, fmt.Errorf("create: %w", err)
	}

	return p, nil
}

func (r *productRepo) Get(ctx context.Context, id uuid.UUID) (loja.Product, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT %s FROM %s WHERE id = ?`, productColumns, r.tableName)

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return loja.Product{}, loja.ErrNotFound
		}
		return loja.Product{}, fmt.Errorf("get: %w", err)
	}

	return p, nil
}

func (r *productRepo) List(ctx context.Context) ([]loja.Product, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT %s FROM %s ORDER BY created_at, id`, productColumns, r.tableName)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	products := make([]loja.Product, 0)
	for rows.Next() {
		p, scanErr := scanProduct(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("list: scan: %w", scanErr)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list: rows: %w", err)
	}

	return products, nil
}

func (r *productRepo) Update(ctx context.Context, id uuid.UUID, fields loja.ProductFields) (loja.Product, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`UPDATE %s
		SET name = ?, description = ?, price = ?, updated_at = ?
		WHERE id = ?
		RETURNING %s`, r.tableName, productColumns)

	p, err := scanProduct(r.db.QueryRowContext(ctx, query,
		fields.Name, fields.Description, fields.Price, formatTime(time.Now()), id.String(),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return loja.Product{}, fmt.Errorf("update: %w", loja.ErrNotFound)
		}
		return loja.Product{}, fmt.Errorf("update: %w", err)
	}

	return p, nil
}

func (r *productRepo) SetImageURL(ctx context.Context, id uuid.UUID, url string) (loja.Product, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`UPDATE %s
		SET image_url = ?, updated_at = ?
		WHERE id = ?
		RETURNING %s`, r.tableName, productColumns)

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, url, formatTime(time.Now()), id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return loja.Product{}, fmt.Errorf("set image url: %w", loja.ErrNotFound)
		}
		return loja.Product{}, fmt.Errorf("set image url: %w", err)
	}

	return p, nil
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, r.tableName) //nolint:gosec // table name is validated

	result, err := r.db.ExecContext(ctx, query, id.String())
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete: rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("delete: %w", loja.ErrNotFound)
	}

	return nil
}
