package order

import (
	"context"

	"storefront/internal/domain"
)

// Repository persists orders. Create writes the order and its lines in one
// transaction so a committed order is never missing lines.
type Repository interface {
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByChargeRef(ctx context.Context, chargeRef string) (*domain.Order, error)
	ListByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
}
