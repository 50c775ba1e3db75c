package httpserver

import (
	"context"

	"storefront/internal/domain"
	authsvc "storefront/internal/service/auth"
	checkoutsvc "storefront/internal/service/checkout"
	productsvc "storefront/internal/service/product"
)

// AuthService is the slice of the auth service the handlers need.
type AuthService interface {
	Register(ctx context.Context, in authsvc.RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	ResetPassword(ctx context.Context, email, answer, newPassword string) error
	UpdateProfile(ctx context.Context, userID string, in authsvc.ProfileInput) (*domain.User, error)
	LookupByToken(ctx context.Context, token string) (*domain.User, error)
	AccessTTLSeconds() int
}

// CategoryService drives the category CRUD endpoints.
type CategoryService interface {
	Create(ctx context.Context, name string) (*domain.Category, error)
	Update(ctx context.Context, id, name string) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)
	Delete(ctx context.Context, id string) error
}

// ProductService drives the catalog endpoints.
type ProductService interface {
	Create(ctx context.Context, in productsvc.Input) (*domain.Product, error)
	Update(ctx context.Context, id string, in productsvc.Input) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Product, error)
	ListPage(ctx context.Context, page int) ([]domain.Product, error)
	Filter(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	Search(ctx context.Context, keyword string) ([]domain.Product, error)
	Related(ctx context.Context, productID, categoryID string) ([]domain.Product, error)
	ByCategory(ctx context.Context, slug string) (*domain.Category, []domain.Product, error)
	Count(ctx context.Context) (int64, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
}

// CheckoutService runs the payment flow.
type CheckoutService interface {
	ClientToken(ctx context.Context) (string, error)
	Checkout(ctx context.Context, buyer domain.User, in checkoutsvc.Input) (*domain.Order, error)
}

// OrderStore covers the order listing and status administration endpoints.
type OrderStore interface {
	ListByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
}

// Deps bundles everything the router needs.
type Deps struct {
	AuthSvc     AuthService
	CategorySvc CategoryService
	ProductSvc  ProductService
	CheckoutSvc CheckoutService
	Orders      OrderStore
}
