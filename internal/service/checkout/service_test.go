package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/gateway/braintree"
)

type stubGateway struct {
	saleCalls  int
	tokenCalls int
	saleErr    error
	lastSale   braintree.SaleInput
	token      string
	tokenErr   error
}

func (g *stubGateway) ClientToken(_ context.Context) (string, error) {
	g.tokenCalls++
	return g.token, g.tokenErr
}

func (g *stubGateway) Sale(_ context.Context, in braintree.SaleInput) (*domain.Transaction, error) {
	g.saleCalls++
	g.lastSale = in
	if g.saleErr != nil {
		return nil, g.saleErr
	}
	return &domain.Transaction{ID: "tx-1", Status: "submitted_for_settlement", AmountCents: in.AmountCents}, nil
}

type memOrderRepo struct {
	orders    []domain.Order
	createErr error
	// committed becomes visible only after Create fails, modelling a
	// concurrent winner on the charge_ref unique index.
	committed *domain.Order
}

func (r *memOrderRepo) Create(_ context.Context, o domain.Order) (*domain.Order, error) {
	if r.createErr != nil {
		if r.committed != nil {
			r.orders = append(r.orders, *r.committed)
			r.committed = nil
		}
		return nil, r.createErr
	}
	o.ID = "order-1"
	r.orders = append(r.orders, o)
	return &o, nil
}

func (r *memOrderRepo) GetByChargeRef(_ context.Context, chargeRef string) (*domain.Order, error) {
	for _, o := range r.orders {
		if o.ChargeRef == chargeRef {
			return &o, nil
		}
	}
	return nil, domain.ErrNotFound
}

type stubProductRepo struct {
	products map[string]*domain.Product
}

func (r *stubProductRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	if p, ok := r.products[id]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

var buyer = domain.User{ID: "buyer-1", Email: "buyer@example.com"}

func TestCheckout_ValidCartCreatesOneOrder(t *testing.T) {
	gw := &stubGateway{}
	repo := &memOrderRepo{}
	svc := New(gw, repo, nil, nil)

	order, err := svc.Checkout(context.Background(), buyer, Input{
		Cart:  json.RawMessage(`[{"price": 10}, {"price": 25}]`),
		Nonce: "fake-valid-nonce",
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if gw.saleCalls != 1 {
		t.Fatalf("expected 1 sale call, got %d", gw.saleCalls)
	}
	if gw.lastSale.AmountCents != 3500 {
		t.Fatalf("expected 3500 cents charged, got %d", gw.lastSale.AmountCents)
	}
	if len(repo.orders) != 1 {
		t.Fatalf("expected exactly one order, got %d", len(repo.orders))
	}
	if len(order.Lines) != 2 {
		t.Fatalf("expected 2 lines on order, got %d", len(order.Lines))
	}
	if order.BuyerID != buyer.ID {
		t.Fatalf("order buyer = %q, want %q", order.BuyerID, buyer.ID)
	}
	if order.Payment.ID != "tx-1" {
		t.Fatalf("order payment = %+v", order.Payment)
	}
	if order.Status != domain.OrderNotProcessed {
		t.Fatalf("order status = %q", order.Status)
	}
}

func TestCheckout_DeclinedNonceCreatesNoOrder(t *testing.T) {
	gw := &stubGateway{saleErr: &braintree.DeclinedError{Status: "processor_declined", Message: "Do Not Honor"}}
	repo := &memOrderRepo{}
	svc := New(gw, repo, nil, nil)

	_, err := svc.Checkout(context.Background(), buyer, Input{
		Cart:  json.RawMessage(`[{"price": 10}]`),
		Nonce: "fake-processor-declined-nonce",
	})
	var declined *braintree.DeclinedError
	if !errors.As(err, &declined) {
		t.Fatalf("expected DeclinedError, got %v", err)
	}
	if len(repo.orders) != 0 {
		t.Fatalf("expected no orders after decline, got %d", len(repo.orders))
	}
}

func TestCheckout_GatewayUnavailableCreatesNoOrder(t *testing.T) {
	gw := &stubGateway{saleErr: braintree.ErrUnavailable}
	repo := &memOrderRepo{}
	svc := New(gw, repo, nil, nil)

	_, err := svc.Checkout(context.Background(), buyer, Input{
		Cart:  json.RawMessage(`[{"price": 10}]`),
		Nonce: "fake-valid-nonce",
	})
	if !errors.Is(err, braintree.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if len(repo.orders) != 0 {
		t.Fatalf("expected no orders, got %d", len(repo.orders))
	}
}

func TestCheckout_NonArrayCartRejectedBeforeGateway(t *testing.T) {
	cases := []string{
		`"not-an-array"`,
		`{"price": 10}`,
		`42`,
	}
	for _, raw := range cases {
		gw := &stubGateway{}
		repo := &memOrderRepo{}
		svc := New(gw, repo, nil, nil)

		_, err := svc.Checkout(context.Background(), buyer, Input{
			Cart:  json.RawMessage(raw),
			Nonce: "fake-valid-nonce",
		})
		var invalid *InvalidCartError
		if !errors.As(err, &invalid) {
			t.Fatalf("cart %s: expected InvalidCartError, got %v", raw, err)
		}
		if gw.saleCalls != 0 {
			t.Fatalf("cart %s: gateway called %d times, want 0", raw, gw.saleCalls)
		}
		if len(repo.orders) != 0 {
			t.Fatalf("cart %s: orders persisted", raw)
		}
	}
}

func TestCheckout_NonPositivePriceRejected(t *testing.T) {
	for _, raw := range []string{
		`[{"price": 0}]`,
		`[{"price": -5}]`,
		`[{"name": "no price"}]`,
		`[{"price": 10}, {"price": -1}]`,
	} {
		gw := &stubGateway{}
		svc := New(gw, &memOrderRepo{}, nil, nil)
		_, err := svc.Checkout(context.Background(), buyer, Input{Cart: json.RawMessage(raw), Nonce: "n"})
		var invalid *InvalidCartError
		if !errors.As(err, &invalid) {
			t.Fatalf("cart %s: expected InvalidCartError, got %v", raw, err)
		}
		if gw.saleCalls != 0 {
			t.Fatalf("cart %s: gateway was called", raw)
		}
	}
}

func TestCheckout_QuantityMultipliesTotal(t *testing.T) {
	gw := &stubGateway{}
	svc := New(gw, &memOrderRepo{}, nil, nil)

	_, err := svc.Checkout(context.Background(), buyer, Input{
		Cart:  json.RawMessage(`[{"price": 10, "quantity": 3}, {"price": 5}]`),
		Nonce: "fake-valid-nonce",
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if gw.lastSale.AmountCents != 3500 {
		t.Fatalf("expected 3500 cents (3x10 + 5), got %d", gw.lastSale.AmountCents)
	}
}

func TestCheckout_RepricesAgainstCatalog(t *testing.T) {
	gw := &stubGateway{}
	products := &stubProductRepo{products: map[string]*domain.Product{
		"prod-1": {ID: "prod-1", Name: "Demo Mug", PriceCents: 1299},
	}}
	svc := New(gw, &memOrderRepo{}, products, nil)

	order, err := svc.Checkout(context.Background(), buyer, Input{
		Cart:  json.RawMessage(`[{"_id": "prod-1", "price": 0.01}, {"price": 5}]`),
		Nonce: "fake-valid-nonce",
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if gw.lastSale.AmountCents != 1299+500 {
		t.Fatalf("expected catalog price to win, charged %d", gw.lastSale.AmountCents)
	}
	if order.Lines[0].UnitPriceCents != 1299 {
		t.Fatalf("line not repriced: %+v", order.Lines[0])
	}
	if order.Lines[0].Name != "Demo Mug" {
		t.Fatalf("line name not filled from catalog: %+v", order.Lines[0])
	}
}

func TestCheckout_UnknownProductKeepsClientPrice(t *testing.T) {
	gw := &stubGateway{}
	svc := New(gw, &memOrderRepo{}, &stubProductRepo{}, nil)

	_, err := svc.Checkout(context.Background(), buyer, Input{
		Cart:  json.RawMessage(`[{"_id": "missing", "price": 7}]`),
		Nonce: "fake-valid-nonce",
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if gw.lastSale.AmountCents != 700 {
		t.Fatalf("expected 700 cents, got %d", gw.lastSale.AmountCents)
	}
}

func TestCheckout_IdempotencyKeyReplayReturnsExistingOrder(t *testing.T) {
	gw := &stubGateway{}
	repo := &memOrderRepo{}
	svc := New(gw, repo, nil, nil)

	in := Input{
		Cart:           json.RawMessage(`[{"price": 10}]`),
		Nonce:          "fake-valid-nonce",
		IdempotencyKey: "key-1",
	}
	first, err := svc.Checkout(context.Background(), buyer, in)
	if err != nil {
		t.Fatalf("first checkout: %v", err)
	}
	second, err := svc.Checkout(context.Background(), buyer, in)
	if err != nil {
		t.Fatalf("second checkout: %v", err)
	}
	if gw.saleCalls != 1 {
		t.Fatalf("expected exactly one charge, got %d", gw.saleCalls)
	}
	if len(repo.orders) != 1 {
		t.Fatalf("expected one order, got %d", len(repo.orders))
	}
	if first.ID != second.ID {
		t.Fatalf("replay returned a different order: %q vs %q", first.ID, second.ID)
	}
}

func TestCheckout_ReplayWithAnotherBuyersKeyRejected(t *testing.T) {
	gw := &stubGateway{}
	repo := &memOrderRepo{orders: []domain.Order{{
		ID:        "order-victim",
		BuyerID:   "victim-1",
		ChargeRef: "key-1",
	}}}
	svc := New(gw, repo, nil, nil)

	order, err := svc.Checkout(context.Background(), buyer, Input{
		Cart:           json.RawMessage(`[{"price": 10}]`),
		Nonce:          "fake-valid-nonce",
		IdempotencyKey: "key-1",
	})
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if order != nil {
		t.Fatalf("foreign buyer's order handed back: %+v", order)
	}
	if gw.saleCalls != 0 {
		t.Fatalf("gateway called %d times, want 0", gw.saleCalls)
	}
	if len(repo.orders) != 1 {
		t.Fatalf("expected only the original order, got %d", len(repo.orders))
	}
}

func TestCheckout_RacedKeyReturnsCommittedOrder(t *testing.T) {
	gw := &stubGateway{}
	repo := &memOrderRepo{
		createErr: domain.ErrAlreadyExists,
		committed: &domain.Order{ID: "order-winner", BuyerID: buyer.ID, ChargeRef: "key-1"},
	}
	svc := New(gw, repo, nil, nil)

	order, err := svc.Checkout(context.Background(), buyer, Input{
		Cart:           json.RawMessage(`[{"price": 10}]`),
		Nonce:          "fake-valid-nonce",
		IdempotencyKey: "key-1",
	})
	if err != nil {
		t.Fatalf("expected committed order on raced key, got %v", err)
	}
	if order.ID != "order-winner" {
		t.Fatalf("order = %+v, want the winner's", order)
	}
	if gw.saleCalls != 1 {
		t.Fatalf("sale calls = %d", gw.saleCalls)
	}
}

func TestCheckout_RacedKeyOfAnotherBuyerIsPersistenceError(t *testing.T) {
	gw := &stubGateway{}
	repo := &memOrderRepo{
		createErr: domain.ErrAlreadyExists,
		committed: &domain.Order{ID: "order-victim", BuyerID: "victim-1", ChargeRef: "key-1"},
	}
	svc := New(gw, repo, nil, nil)

	_, err := svc.Checkout(context.Background(), buyer, Input{
		Cart:           json.RawMessage(`[{"price": 10}]`),
		Nonce:          "fake-valid-nonce",
		IdempotencyKey: "key-1",
	})
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
}

func TestCheckout_ConflictWithoutKeyIsPersistenceError(t *testing.T) {
	gw := &stubGateway{}
	repo := &memOrderRepo{createErr: domain.ErrAlreadyExists}
	svc := New(gw, repo, nil, nil)

	_, err := svc.Checkout(context.Background(), buyer, Input{
		Cart:  json.RawMessage(`[{"price": 10}]`),
		Nonce: "fake-valid-nonce",
	})
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
}

func TestCheckout_OversizedTotalsRejected(t *testing.T) {
	for _, raw := range []string{
		`[{"price": 1e300}]`,
		`[{"price": 2000000}]`,
		`[{"price": 20000, "quantity": 100}]`,
		`[{"price": 600000}, {"price": 600000}]`,
		`[{"price": 0.001}]`,
	} {
		gw := &stubGateway{}
		svc := New(gw, &memOrderRepo{}, nil, nil)
		_, err := svc.Checkout(context.Background(), buyer, Input{Cart: json.RawMessage(raw), Nonce: "n"})
		var invalid *InvalidCartError
		if !errors.As(err, &invalid) {
			t.Fatalf("cart %s: expected InvalidCartError, got %v", raw, err)
		}
		if gw.saleCalls != 0 {
			t.Fatalf("cart %s: gateway was called", raw)
		}
	}
}

func TestCheckout_LargeValidTotalAccepted(t *testing.T) {
	gw := &stubGateway{}
	svc := New(gw, &memOrderRepo{}, nil, nil)

	_, err := svc.Checkout(context.Background(), buyer, Input{
		Cart:  json.RawMessage(`[{"price": 500000, "quantity": 2}]`),
		Nonce: "fake-valid-nonce",
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if gw.lastSale.AmountCents != 100_000_000 {
		t.Fatalf("amount = %d", gw.lastSale.AmountCents)
	}
}

func TestCheckout_OrderWriteFailureIsPersistenceError(t *testing.T) {
	gw := &stubGateway{}
	repo := &memOrderRepo{createErr: errors.New("connection reset")}
	svc := New(gw, repo, nil, nil)

	_, err := svc.Checkout(context.Background(), buyer, Input{
		Cart:  json.RawMessage(`[{"price": 10}]`),
		Nonce: "fake-valid-nonce",
	})
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	if perr.TransactionID != "tx-1" {
		t.Fatalf("persistence error missing transaction id: %+v", perr)
	}
	if gw.saleCalls != 1 {
		t.Fatalf("expected one sale call, got %d", gw.saleCalls)
	}
}

func TestCheckout_MissingNonceRejected(t *testing.T) {
	gw := &stubGateway{}
	svc := New(gw, &memOrderRepo{}, nil, nil)
	_, err := svc.Checkout(context.Background(), buyer, Input{Cart: json.RawMessage(`[{"price": 10}]`)})
	var invalid *InvalidCartError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidCartError, got %v", err)
	}
	if gw.saleCalls != 0 {
		t.Fatalf("gateway called without nonce")
	}
}

func TestClientToken_PropagatesGatewayFailure(t *testing.T) {
	gw := &stubGateway{tokenErr: braintree.ErrUnavailable}
	svc := New(gw, &memOrderRepo{}, nil, nil)
	if _, err := svc.ClientToken(context.Background()); !errors.Is(err, braintree.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}

	gw = &stubGateway{token: "ct-123"}
	svc = New(gw, &memOrderRepo{}, nil, nil)
	token, err := svc.ClientToken(context.Background())
	if err != nil || token != "ct-123" {
		t.Fatalf("token = %q err = %v", token, err)
	}
}
