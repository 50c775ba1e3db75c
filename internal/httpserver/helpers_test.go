package httpserver

import (
	"context"
	"io"
	"log"
	"testing"

	"storefront/internal/domain"
	authsvc "storefront/internal/service/auth"
	checkoutsvc "storefront/internal/service/checkout"
	productsvc "storefront/internal/service/product"
	"github.com/gin-gonic/gin"
)

func logDiscard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// stubAuth resolves tokens from a fixed map and fails everything else
// unless a test overrides the function fields.
type stubAuth struct {
	users       map[string]*domain.User
	registerFn  func(authsvc.RegisterInput) (*domain.User, error)
	loginFn     func(email, password string) (*domain.User, string, error)
	resetFn     func(email, answer, newPassword string) error
	updateFn    func(userID string, in authsvc.ProfileInput) (*domain.User, error)
	lookupCalls int
}

func (s *stubAuth) Register(_ context.Context, in authsvc.RegisterInput) (*domain.User, error) {
	if s.registerFn != nil {
		return s.registerFn(in)
	}
	return nil, authsvc.ErrInvalidCredentials
}

func (s *stubAuth) Login(_ context.Context, email, password string) (*domain.User, string, error) {
	if s.loginFn != nil {
		return s.loginFn(email, password)
	}
	return nil, "", authsvc.ErrInvalidCredentials
}

func (s *stubAuth) ResetPassword(_ context.Context, email, answer, newPassword string) error {
	if s.resetFn != nil {
		return s.resetFn(email, answer, newPassword)
	}
	return authsvc.ErrInvalidAnswer
}

func (s *stubAuth) UpdateProfile(_ context.Context, userID string, in authsvc.ProfileInput) (*domain.User, error) {
	if s.updateFn != nil {
		return s.updateFn(userID, in)
	}
	return nil, authsvc.ErrInvalidCredentials
}

func (s *stubAuth) LookupByToken(_ context.Context, token string) (*domain.User, error) {
	s.lookupCalls++
	if u, ok := s.users[token]; ok {
		return u, nil
	}
	return nil, authsvc.ErrInvalidToken
}

func (s *stubAuth) AccessTTLSeconds() int { return 3600 }

type stubCategory struct {
	createFn func(name string) (*domain.Category, error)
	updateFn func(id, name string) (*domain.Category, error)
	listFn   func() ([]domain.Category, error)
	getFn    func(slug string) (*domain.Category, error)
	deleteFn func(id string) error
}

func (s *stubCategory) Create(_ context.Context, name string) (*domain.Category, error) {
	return s.createFn(name)
}

func (s *stubCategory) Update(_ context.Context, id, name string) (*domain.Category, error) {
	return s.updateFn(id, name)
}

func (s *stubCategory) List(_ context.Context) ([]domain.Category, error) { return s.listFn() }

func (s *stubCategory) GetBySlug(_ context.Context, slug string) (*domain.Category, error) {
	return s.getFn(slug)
}

func (s *stubCategory) Delete(_ context.Context, id string) error { return s.deleteFn(id) }

type stubProduct struct {
	createFn  func(in productsvc.Input) (*domain.Product, error)
	updateFn  func(id string, in productsvc.Input) (*domain.Product, error)
	deleteFn  func(id string) error
	listFn    func() ([]domain.Product, error)
	pageFn    func(page int) ([]domain.Product, error)
	filterFn  func(filter domain.ProductFilter) ([]domain.Product, error)
	searchFn  func(keyword string) ([]domain.Product, error)
	relatedFn func(productID, categoryID string) ([]domain.Product, error)
	byCatFn   func(slug string) (*domain.Category, []domain.Product, error)
	countFn   func() (int64, error)
	getFn     func(slug string) (*domain.Product, error)
}

func (s *stubProduct) Create(_ context.Context, in productsvc.Input) (*domain.Product, error) {
	return s.createFn(in)
}

func (s *stubProduct) Update(_ context.Context, id string, in productsvc.Input) (*domain.Product, error) {
	return s.updateFn(id, in)
}

func (s *stubProduct) Delete(_ context.Context, id string) error { return s.deleteFn(id) }

func (s *stubProduct) List(_ context.Context) ([]domain.Product, error) { return s.listFn() }

func (s *stubProduct) ListPage(_ context.Context, page int) ([]domain.Product, error) {
	return s.pageFn(page)
}

func (s *stubProduct) Filter(_ context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	return s.filterFn(filter)
}

func (s *stubProduct) Search(_ context.Context, keyword string) ([]domain.Product, error) {
	return s.searchFn(keyword)
}

func (s *stubProduct) Related(_ context.Context, productID, categoryID string) ([]domain.Product, error) {
	return s.relatedFn(productID, categoryID)
}

func (s *stubProduct) ByCategory(_ context.Context, slug string) (*domain.Category, []domain.Product, error) {
	return s.byCatFn(slug)
}

func (s *stubProduct) Count(_ context.Context) (int64, error) { return s.countFn() }

func (s *stubProduct) GetBySlug(_ context.Context, slug string) (*domain.Product, error) {
	return s.getFn(slug)
}

type stubCheckout struct {
	tokenFn    func() (string, error)
	checkoutFn func(buyer domain.User, in checkoutsvc.Input) (*domain.Order, error)
	calls      int
}

func (s *stubCheckout) ClientToken(_ context.Context) (string, error) { return s.tokenFn() }

func (s *stubCheckout) Checkout(_ context.Context, buyer domain.User, in checkoutsvc.Input) (*domain.Order, error) {
	s.calls++
	return s.checkoutFn(buyer, in)
}

type stubOrders struct {
	byBuyerFn func(buyerID string) ([]domain.Order, error)
	allFn     func() ([]domain.Order, error)
	statusFn  func(id string, status domain.OrderStatus) (*domain.Order, error)
}

func (s *stubOrders) ListByBuyer(_ context.Context, buyerID string) ([]domain.Order, error) {
	return s.byBuyerFn(buyerID)
}

func (s *stubOrders) ListAll(_ context.Context) ([]domain.Order, error) { return s.allFn() }

func (s *stubOrders) UpdateStatus(_ context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	return s.statusFn(id, status)
}

var (
	testShopper = &domain.User{ID: "u-1", Email: "shopper@example.com", Name: "Shopper"}
	testAdmin   = &domain.User{ID: "a-1", Email: "admin@example.com", Name: "Admin", Role: 1}
)

// newTestRouter builds the full router around stubs. Pass nil fields in
// deps to use empty defaults; tokens "user-token" and "admin-token"
// authenticate the fixture users.
func newTestRouter(t *testing.T, deps Deps) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if deps.AuthSvc == nil {
		deps.AuthSvc = &stubAuth{users: map[string]*domain.User{
			"user-token":  testShopper,
			"admin-token": testAdmin,
		}}
	}
	if deps.CategorySvc == nil {
		deps.CategorySvc = &stubCategory{}
	}
	if deps.ProductSvc == nil {
		deps.ProductSvc = &stubProduct{}
	}
	if deps.CheckoutSvc == nil {
		deps.CheckoutSvc = &stubCheckout{}
	}
	if deps.Orders == nil {
		deps.Orders = &stubOrders{}
	}

	router, err := buildRouter(logDiscard(), nil, deps, []string{"http://localhost:3000"})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return router
}
