package domain

import "time"

type Product struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description,omitempty"`
	PriceCents   int64     `json:"priceCents"`
	CategoryID   string    `json:"categoryId,omitempty"`
	Category     *Category `json:"category,omitempty"`
	Quantity     int       `json:"quantity"`
	Shipping     bool      `json:"shipping"`
	PhotoURL     string    `json:"photoUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ProductFilter narrows catalog listings; zero values mean "no constraint".
type ProductFilter struct {
	CategoryIDs   []string
	MinPriceCents *int64
	MaxPriceCents *int64
}
