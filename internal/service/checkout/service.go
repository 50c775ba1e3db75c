// Package checkout implements the payment-commit flow: validate the cart,
// charge the buyer through the payment gateway, and record the order only
// after the charge succeeds. The gateway decides whether money moved; this
// package guarantees an order row exists exactly when it did.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/gateway/braintree"
	"github.com/google/uuid"
)

// InvalidCartError reports a malformed cart before any gateway call is made.
type InvalidCartError struct {
	Reason string
}

func (e *InvalidCartError) Error() string {
	return "invalid cart: " + e.Reason
}

// PersistenceError is the post-charge failure: the gateway confirmed the
// sale but the order write failed. The transaction id is kept so the charge
// can be reconciled by hand.
type PersistenceError struct {
	TransactionID string
	ChargeRef     string
	Err           error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("order write failed after successful charge (tx=%s ref=%s): %v", e.TransactionID, e.ChargeRef, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// CartLine is one client-submitted cart entry. Price is in dollars as sent
// by the storefront; Quantity defaults to 1 when omitted.
type CartLine struct {
	ProductID string  `json:"_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  *int    `json:"quantity"`
}

type orderRepo interface {
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	GetByChargeRef(ctx context.Context, chargeRef string) (*domain.Order, error)
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

// Service runs the checkout flow. The gateway client is injected so tests
// can substitute a double.
type Service struct {
	gateway  braintree.Client
	orders   orderRepo
	products productRepo
	logger   *log.Logger
}

// New builds a checkout Service. products may be nil; re-pricing against
// the catalog is then skipped entirely.
func New(gateway braintree.Client, orders orderRepo, products productRepo, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{gateway: gateway, orders: orders, products: products, logger: logger}
}

// ClientToken obtains a short-lived token for the client-side payment SDK.
func (s *Service) ClientToken(ctx context.Context) (string, error) {
	return s.gateway.ClientToken(ctx)
}

// Input is one checkout attempt. Cart stays raw JSON so a non-array payload
// is rejected here rather than at binding time. IdempotencyKey is optional;
// when present a replayed key returns the already-committed order without a
// second charge.
type Input struct {
	Cart           json.RawMessage
	Nonce          string
	IdempotencyKey string
}

// Checkout validates the cart, submits the sale, and commits the order.
// The order write happens strictly after a successful transaction result;
// on any validation or gateway failure nothing is persisted.
func (s *Service) Checkout(ctx context.Context, buyer domain.User, in Input) (*domain.Order, error) {
	lines, total, err := validateCart(in.Cart)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Nonce) == "" {
		return nil, &InvalidCartError{Reason: "payment nonce required"}
	}

	lines, total = s.repriceLines(ctx, lines, total)

	chargeRef := strings.TrimSpace(in.IdempotencyKey)
	if chargeRef != "" {
		if existing, err := s.orders.GetByChargeRef(ctx, chargeRef); err == nil {
			if existing.BuyerID != buyer.ID {
				return nil, fmt.Errorf("idempotency key bound to another buyer: %w", domain.ErrAlreadyExists)
			}
			s.logger.Printf("checkout: replayed idempotency key ref=%s order=%s", chargeRef, existing.ID)
			return existing, nil
		} else if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	} else {
		// Correlation only: without a client key, a retried request is a
		// second charge, matching the gateway's nonce single-use contract.
		chargeRef = uuid.NewString()
	}

	tx, err := s.gateway.Sale(ctx, braintree.SaleInput{
		AmountCents: total,
		Nonce:       in.Nonce,
		Reference:   chargeRef,
	})
	if err != nil {
		return nil, err
	}

	order, err := s.orders.Create(ctx, domain.Order{
		BuyerID:   buyer.ID,
		Lines:     lines,
		Payment:   *tx,
		Status:    domain.OrderNotProcessed,
		ChargeRef: chargeRef,
	})
	if err != nil {
		// Two requests with the same key can both pass the replay check and
		// both charge; the unique charge_ref index picks the winner. Hand the
		// loser the committed order, and flag its duplicate charge.
		if errors.Is(err, domain.ErrAlreadyExists) && strings.TrimSpace(in.IdempotencyKey) != "" {
			if existing, fetchErr := s.orders.GetByChargeRef(ctx, chargeRef); fetchErr == nil && existing.BuyerID == buyer.ID {
				s.logger.Printf("checkout: RECONCILE REQUIRED: duplicate charge tx=%s on raced ref=%s, returning order=%s", tx.ID, chargeRef, existing.ID)
				return existing, nil
			}
		}
		perr := &PersistenceError{TransactionID: tx.ID, ChargeRef: chargeRef, Err: err}
		s.logger.Printf("checkout: RECONCILE REQUIRED: %v", perr)
		return nil, perr
	}
	return order, nil
}

// maxTotalCents bounds a single checkout so line arithmetic cannot
// overflow int64 on the way to the gateway.
const maxTotalCents int64 = 100_000_000 // $1,000,000

// validateCart parses the raw cart and computes the total in cents.
// Each line must carry a positive price; quantity defaults to 1.
func validateCart(raw json.RawMessage) ([]domain.OrderLine, int64, error) {
	if len(raw) == 0 {
		return nil, 0, &InvalidCartError{Reason: "cart required"}
	}
	var cart []CartLine
	if err := json.Unmarshal(raw, &cart); err != nil {
		return nil, 0, &InvalidCartError{Reason: "cart must be an array"}
	}
	if len(cart) == 0 {
		return nil, 0, &InvalidCartError{Reason: "cart is empty"}
	}

	lines := make([]domain.OrderLine, 0, len(cart))
	var total int64
	for i, item := range cart {
		if item.Price <= 0 || math.IsNaN(item.Price) || math.IsInf(item.Price, 0) {
			return nil, 0, &InvalidCartError{Reason: fmt.Sprintf("line %d: price must be a positive number", i)}
		}
		if item.Price*100 > float64(maxTotalCents) {
			return nil, 0, &InvalidCartError{Reason: fmt.Sprintf("line %d: price exceeds the supported maximum", i)}
		}
		qty := 1
		if item.Quantity != nil {
			if *item.Quantity <= 0 {
				return nil, 0, &InvalidCartError{Reason: fmt.Sprintf("line %d: quantity must be positive", i)}
			}
			qty = *item.Quantity
		}
		unitCents := int64(math.Round(item.Price * 100))
		if unitCents == 0 {
			return nil, 0, &InvalidCartError{Reason: fmt.Sprintf("line %d: price must be at least one cent", i)}
		}
		if int64(qty) > maxTotalCents/unitCents {
			return nil, 0, &InvalidCartError{Reason: fmt.Sprintf("line %d: cart total exceeds the supported maximum", i)}
		}
		lines = append(lines, domain.OrderLine{
			ProductID:      strings.TrimSpace(item.ProductID),
			Name:           item.Name,
			UnitPriceCents: unitCents,
			Quantity:       qty,
		})
		total += unitCents * int64(qty)
		if total > maxTotalCents {
			return nil, 0, &InvalidCartError{Reason: "cart total exceeds the supported maximum"}
		}
	}
	return lines, total, nil
}

// repriceLines overrides client-sent prices with the catalog price for
// lines whose product reference resolves. Unresolved references keep the
// submitted price.
func (s *Service) repriceLines(ctx context.Context, lines []domain.OrderLine, total int64) ([]domain.OrderLine, int64) {
	if s.products == nil {
		return lines, total
	}
	for i, line := range lines {
		if line.ProductID == "" {
			continue
		}
		p, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			continue
		}
		if p.PriceCents != line.UnitPriceCents {
			s.logger.Printf("checkout: repriced product=%s submitted=%d catalog=%d", line.ProductID, line.UnitPriceCents, p.PriceCents)
			total += (p.PriceCents - line.UnitPriceCents) * int64(line.Quantity)
			lines[i].UnitPriceCents = p.PriceCents
		}
		if lines[i].Name == "" {
			lines[i].Name = p.Name
		}
	}
	return lines, total
}
