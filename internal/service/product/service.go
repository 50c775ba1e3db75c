package product

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain"
	categoryrepo "storefront/internal/repository/category"
	productrepo "storefront/internal/repository/product"
	"storefront/internal/slug"
)

// PageSize is the fixed page length for the paginated listing endpoint.
const PageSize = 6

// RelatedLimit caps the related-products listing.
const RelatedLimit = 3

type Service struct {
	repo       productrepo.Repository
	categories categoryrepo.Repository
}

func New(repo productrepo.Repository, categories categoryrepo.Repository) *Service {
	return &Service{repo: repo, categories: categories}
}

// Input carries the product fields accepted on create and update.
type Input struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"priceCents"`
	CategoryID  string `json:"category"`
	Quantity    int    `json:"quantity"`
	Shipping    bool   `json:"shipping"`
	PhotoURL    string `json:"photoUrl"`
}

func (in Input) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return errors.New("name required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return errors.New("description required")
	}
	if in.PriceCents <= 0 {
		return errors.New("price must be positive")
	}
	if strings.TrimSpace(in.CategoryID) == "" {
		return errors.New("category required")
	}
	if in.Quantity < 0 {
		return errors.New("quantity must not be negative")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, in Input) (*domain.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, domain.Product{
		Name:        strings.TrimSpace(in.Name),
		Slug:        slug.Make(in.Name),
		Description: in.Description,
		PriceCents:  in.PriceCents,
		CategoryID:  in.CategoryID,
		Quantity:    in.Quantity,
		Shipping:    in.Shipping,
		PhotoURL:    in.PhotoURL,
	})
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*domain.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, domain.Product{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Slug:        slug.Make(in.Name),
		Description: in.Description,
		PriceCents:  in.PriceCents,
		CategoryID:  in.CategoryID,
		Quantity:    in.Quantity,
		Shipping:    in.Shipping,
		PhotoURL:    in.PhotoURL,
	})
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx)
}

// ListPage returns the page-th page (1-based) of the catalog.
func (s *Service) ListPage(ctx context.Context, page int) ([]domain.Product, error) {
	if page < 1 {
		page = 1
	}
	return s.repo.ListPage(ctx, (page-1)*PageSize, PageSize)
}

func (s *Service) Filter(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	return s.repo.ListFiltered(ctx, filter)
}

func (s *Service) Search(ctx context.Context, keyword string) ([]domain.Product, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, errors.New("keyword required")
	}
	return s.repo.Search(ctx, keyword)
}

func (s *Service) Related(ctx context.Context, productID, categoryID string) ([]domain.Product, error) {
	return s.repo.ListRelated(ctx, productID, categoryID, RelatedLimit)
}

// ByCategory resolves a category slug and lists its products.
func (s *Service) ByCategory(ctx context.Context, categorySlug string) (*domain.Category, []domain.Product, error) {
	cat, err := s.categories.GetBySlug(ctx, categorySlug)
	if err != nil {
		return nil, nil, err
	}
	products, err := s.repo.ListByCategory(ctx, cat.ID)
	if err != nil {
		return nil, nil, err
	}
	return cat, products, nil
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *Service) GetBySlug(ctx context.Context, productSlug string) (*domain.Product, error) {
	return s.repo.GetBySlug(ctx, productSlug)
}
