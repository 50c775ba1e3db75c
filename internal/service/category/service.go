package category

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain"
	categoryrepo "storefront/internal/repository/category"
	"storefront/internal/slug"
)

type Service struct {
	repo categoryrepo.Repository
}

func New(repo categoryrepo.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("name required")
	}
	return s.repo.Create(ctx, domain.Category{Name: name, Slug: slug.Make(name)})
}

func (s *Service) Update(ctx context.Context, id, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("name required")
	}
	return s.repo.Update(ctx, domain.Category{ID: id, Name: name, Slug: slug.Make(name)})
}

func (s *Service) List(ctx context.Context) ([]domain.Category, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetBySlug(ctx context.Context, categorySlug string) (*domain.Category, error) {
	return s.repo.GetBySlug(ctx, categorySlug)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
