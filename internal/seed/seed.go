package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

type productSeed struct {
	Name        string
	Slug        string
	Description string
	PriceCents  int64
	Category    string
	Quantity    int
	Shipping    bool
}

// Apply inserts basic seed data for manual testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	if err := ensureAdmin(ctx, pool, "admin@storefront.local", "ChangeMe123"); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}

	categories := map[string]string{
		"apparel":     "Apparel",
		"drinkware":   "Drinkware",
		"electronics": "Electronics",
	}
	categoryIDs := make(map[string]string, len(categories))
	for slug, name := range categories {
		id, err := ensureCategory(ctx, pool, name, slug)
		if err != nil {
			return fmt.Errorf("ensure category %s: %w", slug, err)
		}
		categoryIDs[slug] = id
	}

	products := []productSeed{
		{
			Name:        "Demo T-Shirt",
			Slug:        "demo-t-shirt",
			Description: "Soft cotton tee for demo purposes",
			PriceCents:  1999,
			Category:    "apparel",
			Quantity:    40,
			Shipping:    true,
		},
		{
			Name:        "Demo Mug",
			Slug:        "demo-mug",
			Description: "Ceramic mug with demo logo",
			PriceCents:  1299,
			Category:    "drinkware",
			Quantity:    25,
		},
		{
			Name:        "Demo Headphones",
			Slug:        "demo-headphones",
			Description: "Wired on-ear headphones",
			PriceCents:  4999,
			Category:    "electronics",
			Quantity:    10,
			Shipping:    true,
		},
	}

	for _, p := range products {
		if err := upsertProduct(ctx, pool, categoryIDs[p.Category], p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Slug, err)
		}
	}
	return nil
}

func ensureAdmin(ctx context.Context, pool *pgxpool.Pool, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	answerHash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO users (name, email, password_hash, answer_hash, role)
VALUES ('Admin', $1, $2, $3, 1)
ON CONFLICT (email) DO NOTHING
`
	_, err = pool.Exec(ctx, q, email, string(hash), string(answerHash))
	return err
}

func ensureCategory(ctx context.Context, pool *pgxpool.Pool, name, slug string) (string, error) {
	const q = `
INSERT INTO categories (name, slug)
VALUES ($1, $2)
ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name
RETURNING id::text
`
	var id string
	if err := pool.QueryRow(ctx, q, name, slug).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, categoryID string, p productSeed) error {
	const q = `
INSERT INTO products (name, slug, description, price_cents, category_id, quantity, shipping)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (slug) DO UPDATE
SET name = EXCLUDED.name,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    category_id = EXCLUDED.category_id,
    quantity = EXCLUDED.quantity,
    shipping = EXCLUDED.shipping
`
	_, err := pool.Exec(ctx, q, p.Name, p.Slug, p.Description, p.PriceCents, categoryID, p.Quantity, p.Shipping)
	return err
}
