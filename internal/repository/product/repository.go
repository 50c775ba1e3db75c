package product

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Product, error)
	ListPage(ctx context.Context, offset, limit int) ([]domain.Product, error)
	ListFiltered(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	ListByCategory(ctx context.Context, categoryID string) ([]domain.Product, error)
	ListRelated(ctx context.Context, productID, categoryID string, limit int) ([]domain.Product, error)
	Search(ctx context.Context, keyword string) ([]domain.Product, error)
	Count(ctx context.Context) (int64, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}
