package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"storefront/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// selectColumns is shared by every read path so scanProduct stays in sync.
const selectColumns = `
SELECT p.id::text, p.name, p.slug, COALESCE(p.description, ''), p.price_cents,
       COALESCE(p.category_id::text, ''), p.quantity, p.shipping, COALESCE(p.photo_url, ''), p.created_at,
       c.id::text, c.name, c.slug, c.created_at
FROM products p
LEFT JOIN categories c ON c.id = p.category_id
`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (name, slug, description, price_cents, category_id, quantity, shipping, photo_url)
VALUES ($1, $2, $3, $4, NULLIF($5, '')::uuid, $6, $7, $8)
RETURNING id::text
`
	var id string
	err := r.pool.QueryRow(ctx, q,
		p.Name, p.Slug, p.Description, p.PriceCents, p.CategoryID, p.Quantity, p.Shipping, p.PhotoURL,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("product repo: create slug=%s error=%v", p.Slug, err)
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
UPDATE products
SET name = $2,
    slug = $3,
    description = $4,
    price_cents = $5,
    category_id = NULLIF($6, '')::uuid,
    quantity = $7,
    shipping = $8,
    photo_url = CASE WHEN $9 = '' THEN photo_url ELSE $9 END
WHERE id = $1
RETURNING id::text
`
	var id string
	err := r.pool.QueryRow(ctx, q,
		p.ID, p.Name, p.Slug, p.Description, p.PriceCents, p.CategoryID, p.Quantity, p.Shipping, p.PhotoURL,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("product repo: update id=%s error=%v", p.ID, err)
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Printf("product repo: delete id=%s error=%v", id, err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Product, error) {
	return r.queryProducts(ctx, selectColumns+`ORDER BY p.created_at DESC`)
}

func (r *postgresRepo) ListPage(ctx context.Context, offset, limit int) ([]domain.Product, error) {
	return r.queryProducts(ctx, selectColumns+`ORDER BY p.created_at DESC OFFSET $1 LIMIT $2`, offset, limit)
}

func (r *postgresRepo) ListFiltered(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	var conds []string
	var args []interface{}
	if len(filter.CategoryIDs) > 0 {
		args = append(args, filter.CategoryIDs)
		conds = append(conds, fmt.Sprintf("p.category_id = ANY($%d::uuid[])", len(args)))
	}
	if filter.MinPriceCents != nil {
		args = append(args, *filter.MinPriceCents)
		conds = append(conds, fmt.Sprintf("p.price_cents >= $%d", len(args)))
	}
	if filter.MaxPriceCents != nil {
		args = append(args, *filter.MaxPriceCents)
		conds = append(conds, fmt.Sprintf("p.price_cents <= $%d", len(args)))
	}
	q := selectColumns
	if len(conds) > 0 {
		q += "WHERE " + strings.Join(conds, " AND ") + "\n"
	}
	q += `ORDER BY p.created_at DESC`
	return r.queryProducts(ctx, q, args...)
}

func (r *postgresRepo) ListByCategory(ctx context.Context, categoryID string) ([]domain.Product, error) {
	return r.queryProducts(ctx, selectColumns+`WHERE p.category_id = $1 ORDER BY p.created_at DESC`, categoryID)
}

func (r *postgresRepo) ListRelated(ctx context.Context, productID, categoryID string, limit int) ([]domain.Product, error) {
	const q = selectColumns + `
WHERE p.category_id = $1 AND p.id <> $2
ORDER BY p.created_at DESC
LIMIT $3
`
	return r.queryProducts(ctx, q, categoryID, productID, limit)
}

func (r *postgresRepo) Search(ctx context.Context, keyword string) ([]domain.Product, error) {
	const q = selectColumns + `
WHERE p.name ILIKE '%' || $1 || '%' OR p.description ILIKE '%' || $1 || '%'
ORDER BY p.created_at DESC
`
	return r.queryProducts(ctx, q, keyword)
}

func (r *postgresRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM products`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *postgresRepo) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return r.scanProduct(r.pool.QueryRow(ctx, selectColumns+`WHERE p.slug = $1 LIMIT 1`, slug))
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return r.scanProduct(r.pool.QueryRow(ctx, selectColumns+`WHERE p.id = $1 LIMIT 1`, id))
}

func (r *postgresRepo) queryProducts(ctx context.Context, q string, args ...interface{}) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("product repo: query error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := r.scanProductRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("product repo: rows error=%v", err)
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) scanProduct(row pgx.Row) (*domain.Product, error) {
	p, err := r.scanProductRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) scanProductRow(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	var catID, catName, catSlug *string
	var catCreated *time.Time
	err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.PriceCents,
		&p.CategoryID, &p.Quantity, &p.Shipping, &p.PhotoURL, &p.CreatedAt,
		&catID, &catName, &catSlug, &catCreated,
	)
	if err != nil {
		return nil, err
	}
	if catID != nil {
		p.Category = &domain.Category{ID: *catID, Name: *catName, Slug: *catSlug}
		if catCreated != nil {
			p.Category.CreatedAt = *catCreated
		}
	}
	return &p, nil
}
