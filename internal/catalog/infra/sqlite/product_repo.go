package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dwikikusuma/storefront-cart/internal/catalog/app"
	"github.com/dwikikusuma/storefront-cart/internal/catalog/domain"
	"github.com/google/uuid"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
	seq          INTEGER PRIMARY KEY AUTOINCREMENT,
	id           TEXT NOT NULL UNIQUE,
	handle       TEXT NOT NULL UNIQUE,
	name         TEXT NOT NULL,
	category     TEXT NOT NULL DEFAULT '',
	description  TEXT NOT NULL DEFAULT '',
	currency     TEXT NOT NULL,
	price_amount INTEGER NOT NULL,
	sizes        TEXT NOT NULL DEFAULT '[]',
	colors       TEXT NOT NULL DEFAULT '[]',
	created_at   INTEGER NOT NULL,
	updated_at   INTEGER NOT NULL
);`

const productColumns = `id, handle, name, category, description, currency, price_amount, sizes, colors, created_at, updated_at`

type ProductRepo struct {
	db *sql.DB
}

func NewProductRepo(ctx context.Context, db *sql.DB) (*ProductRepo, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("migrate products: %w", err)
	}
	return &ProductRepo{db: db}, nil
}

// Seed inserts products whose ID is not stored yet.
func (r *ProductRepo) Seed(ctx context.Context, products ...domain.Product) error {
	for _, p := range products {
		if err := r.insert(ctx, p, `ON CONFLICT DO NOTHING`); err != nil {
			return fmt.Errorf("seed %s: %w", p.ID, err)
		}
	}
	return nil
}

func (r *ProductRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	p.CreatedAt, p.UpdatedAt = now, now

	if err := r.insert(ctx, p, ""); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return domain.Product{}, app.ErrInvalidInput
		}
		return domain.Product{}, err
	}
	return p, nil
}

func (r *ProductRepo) insert(ctx context.Context, p domain.Product, onConflict string) error {
	sizes, err := json.Marshal(nonNil(p.Sizes))
	if err != nil {
		return err
	}
	colors, err := json.Marshal(nonNil(p.Colors))
	if err != nil {
		return err
	}
	created := p.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	updated := p.UpdatedAt
	if updated.IsZero() {
		updated = created
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) `+onConflict,
		p.ID, p.Handle, p.Name, p.Category, p.Description,
		p.Price.Currency, p.Price.Amount, string(sizes), string(colors),
		created.UnixMilli(), updated.UnixMilli())
	return err
}

func (r *ProductRepo) Get(ctx context.Context, idOrHandle string) (domain.Product, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ? OR handle = ? LIMIT 1`,
		idOrHandle, idOrHandle)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func (r *ProductRepo) List(ctx context.Context, query string, limit int, cursor string) ([]domain.Product, string, error) {
	var after int64
	if c := strings.TrimSpace(cursor); c != "" {
		err := r.db.QueryRowContext(ctx, `SELECT seq FROM products WHERE id = ?`, c).Scan(&after)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", app.ErrInvalidInput
		}
		if err != nil {
			return nil, "", err
		}
	}

	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(query))) + "%"
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE seq > ?
		  AND (lower(name) LIKE ? ESCAPE '\' OR lower(category) LIKE ? ESCAPE '\')
		ORDER BY seq
		LIMIT ?`,
		after, pattern, pattern, limit)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	out := make([]domain.Product, 0, limit)
	var nextCursor string
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, "", err
		}
		out = append(out, p)
		nextCursor = p.ID
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	if len(out) < limit {
		nextCursor = ""
	}
	return out, nextCursor, nil
}

func (r *ProductRepo) HandleExists(ctx context.Context, handle string) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM products WHERE handle = ?`, handle).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(s scanner) (domain.Product, error) {
	var (
		p                domain.Product
		sizes, colors    string
		created, updated int64
	)
	err := s.Scan(&p.ID, &p.Handle, &p.Name, &p.Category, &p.Description,
		&p.Price.Currency, &p.Price.Amount, &sizes, &colors, &created, &updated)
	if err != nil {
		return domain.Product{}, err
	}
	if err := json.Unmarshal([]byte(sizes), &p.Sizes); err != nil {
		return domain.Product{}, fmt.Errorf("product %s sizes: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(colors), &p.Colors); err != nil {
		return domain.Product{}, fmt.Errorf("product %s colors: %w", p.ID, err)
	}
	if len(p.Sizes) == 0 {
		p.Sizes = nil
	}
	if len(p.Colors) == 0 {
		p.Colors = nil
	}
	p.CreatedAt = time.UnixMilli(created).UTC()
	p.UpdatedAt = time.UnixMilli(updated).UTC()
	return p, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
