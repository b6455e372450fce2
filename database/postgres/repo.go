// Package postgres implements the product and account stores using PostgreSQL
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/amww/loja"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type productRepo struct {
	pool      *pgxpool.Pool
	tableName string
}

const productColumns = `id, name, description, price, image_url, created_at, updated_at`

func scanProduct(row pgx.Row) (loja.Product, error) {
	var p loja.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *productRepo) Create(ctx context.Context, fields loja.ProductFields) (loja.Product, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, description, price)
		VALUES ($1, $2, $3)
		RETURNING %s
	`, r.tableName, productColumns)

	p, err := scanProduct(r.pool.QueryRow(ctx, query, fields.Name, fields.Description, fields.Price))
	if err != nil {
		return loja.Product{}, fmt.Errorf("create: %w", err)
	}

	return p, nil
}

func (r *productRepo) Get(ctx context.Context, id uuid.UUID) (loja.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, productColumns, r.tableName)

	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return loja.Product{}, loja.ErrNotFound
		}
		return loja.Product{}, fmt.Errorf("get: %w", err)
	}

	return p, nil
}

func (r *productRepo) List(ctx context.Context) ([]loja.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at, id`, productColumns, r.tableName)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

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
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, description = $2, price = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING %s
	`, r.tableName, productColumns)

	p, err := scanProduct(r.pool.QueryRow(ctx, query, fields.Name, fields.Description, fields.Price, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return loja.Product{}, fmt.Errorf("update: %w", loja.ErrNotFound)
		}
		return loja.Product{}, fmt.Errorf("update: %w", err)
	}

	return p, nil
}

func (r *productRepo) SetImageURL(ctx context.Context, id uuid.UUID, url string) (loja.Product, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET image_url = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING %s
	`, r.tableName, productColumns)

	p, err := scanProduct(r.pool.QueryRow(ctx, query, url, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return loja.Product{}, fmt.Errorf("set image url: %w", loja.ErrNotFound)
		}
		return loja.Product{}, fmt.Errorf("set image url: %w", err)
	}

	return p, nil
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tableName)

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("delete: %w", loja.ErrNotFound)
	}

	return nil
}
