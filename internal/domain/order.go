package domain

import "time"

// OrderStatus is the administrative workflow state of a placed order.
type OrderStatus string

const (
	OrderNotProcessed OrderStatus = "not_processed"
	OrderProcessing   OrderStatus = "processing"
	OrderShipped      OrderStatus = "shipped"
	OrderDelivered    OrderStatus = "delivered"
	OrderCancelled    OrderStatus = "cancelled"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderNotProcessed, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// OrderLine is a purchased cart line frozen at checkout time.
type OrderLine struct {
	ID             string `json:"id"`
	OrderID        string `json:"-"`
	ProductID      string `json:"productId,omitempty"`
	Name           string `json:"name,omitempty"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Quantity       int    `json:"quantity"`
}

// Transaction is the gateway's immutable record of a successful sale.
type Transaction struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	AmountCents int64      `json:"amountCents"`
	SettledAt   *time.Time `json:"settledAt,omitempty"`
}

// Order is the durable record of a completed, paid purchase. It is written
// only after the gateway reports a successful transaction.
type Order struct {
	ID        string      `json:"id"`
	BuyerID   string      `json:"buyerId"`
	Lines     []OrderLine `json:"products"`
	Payment   Transaction `json:"payment"`
	Status    OrderStatus `json:"status"`
	ChargeRef string      `json:"-"`
	CreatedAt time.Time   `json:"createdAt"`
}

// TotalCents sums the order lines.
func (o Order) TotalCents() int64 {
	var total int64
	for _, l := range o.Lines {
		total += l.UnitPriceCents * int64(l.Quantity)
	}
	return total
}
