package order

import (
	"context"
	"errors"
	"io"
	"log"

	"storefront/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const orderColumns = `
SELECT id::text, buyer_id::text, status, charge_ref, tx_id, tx_status, tx_amount_cents, tx_settled_at, created_at
FROM orders
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

func (r *postgresRepo) Create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const insertOrder = `
INSERT INTO orders (buyer_id, status, charge_ref, tx_id, tx_status, tx_amount_cents, tx_settled_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id::text, created_at
`
	status := o.Status
	if status == "" {
		status = domain.OrderNotProcessed
	}
	out := o
	out.Status = status
	err = tx.QueryRow(ctx, insertOrder,
		o.BuyerID,
		string(status),
		o.ChargeRef,
		o.Payment.ID,
		o.Payment.Status,
		o.Payment.AmountCents,
		o.Payment.SettledAt,
	).Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("order repo: insert buyer=%s charge_ref=%s error=%v", o.BuyerID, o.ChargeRef, err)
		return nil, err
	}

	const insertLine = `
INSERT INTO order_lines (order_id, product_id, name, unit_price_cents, quantity)
VALUES ($1, NULLIF($2, '')::uuid, $3, $4, $5)
RETURNING id::text
`
	out.Lines = make([]domain.OrderLine, 0, len(o.Lines))
	for _, line := range o.Lines {
		l := line
		l.OrderID = out.ID
		if err := tx.QueryRow(ctx, insertLine, out.ID, line.ProductID, line.Name, line.UnitPriceCents, line.Quantity).Scan(&l.ID); err != nil {
			r.logger.Printf("order repo: insert line order=%s error=%v", out.ID, err)
			return nil, err
		}
		out.Lines = append(out.Lines, l)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.fetchOrder(ctx, orderColumns+`WHERE id = $1`, id)
}

func (r *postgresRepo) GetByChargeRef(ctx context.Context, chargeRef string) (*domain.Order, error) {
	return r.fetchOrder(ctx, orderColumns+`WHERE charge_ref = $1`, chargeRef)
}

func (r *postgresRepo) ListByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error) {
	return r.fetchOrders(ctx, orderColumns+`WHERE buyer_id = $1 ORDER BY created_at DESC`, buyerID)
}

func (r *postgresRepo) ListAll(ctx context.Context) ([]domain.Order, error) {
	return r.fetchOrders(ctx, orderColumns+`ORDER BY created_at DESC`)
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	cmd, err := r.pool.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		r.logger.Printf("order repo: update status id=%s error=%v", id, err)
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) fetchOrder(ctx context.Context, q string, args ...interface{}) (*domain.Order, error) {
	var o domain.Order
	if err := r.scanOrder(r.pool.QueryRow(ctx, q, args...), &o); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	lines, err := r.loadLines(ctx, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.Lines = lines[o.ID]
	return &o, nil
}

func (r *postgresRepo) fetchOrders(ctx context.Context, q string, args ...interface{}) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Order
	var ids []string
	for rows.Next() {
		var o domain.Order
		if err := r.scanOrder(rows, &o); err != nil {
			return nil, err
		}
		result = append(result, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return result, nil
	}

	lines, err := r.loadLines(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range result {
		result[i].Lines = lines[result[i].ID]
	}
	return result, nil
}

func (r *postgresRepo) scanOrder(row pgx.Row, o *domain.Order) error {
	var status string
	if err := row.Scan(
		&o.ID,
		&o.BuyerID,
		&status,
		&o.ChargeRef,
		&o.Payment.ID,
		&o.Payment.Status,
		&o.Payment.AmountCents,
		&o.Payment.SettledAt,
		&o.CreatedAt,
	); err != nil {
		return err
	}
	o.Status = domain.OrderStatus(status)
	return nil
}

func (r *postgresRepo) loadLines(ctx context.Context, orderIDs []string) (map[string][]domain.OrderLine, error) {
	const q = `
SELECT id::text, order_id::text, COALESCE(product_id::text, ''), name, unit_price_cents, quantity
FROM order_lines
WHERE order_id = ANY($1::uuid[])
ORDER BY id
`
	rows, err := r.pool.Query(ctx, q, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]domain.OrderLine, len(orderIDs))
	for rows.Next() {
		var l domain.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Name, &l.UnitPriceCents, &l.Quantity); err != nil {
			return nil, err
		}
		out[l.OrderID] = append(out[l.OrderID], l)
	}
	return out, rows.Err()
}
