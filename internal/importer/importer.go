package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/slug"
)

type ProductWriter interface {
	Create(ctx context.Context, product domain.Product) (*domain.Product, error)
}

type CategoryStore interface {
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)
	Create(ctx context.Context, c domain.Category) (*domain.Category, error)
}

// CSVImporter loads a product catalog from CSV. Expected headers:
// name, description, price_cents, category, quantity, shipping, photo_url.
// Categories are created on first sight.
type CSVImporter struct {
	reader     *csv.Reader
	products   ProductWriter
	categories CategoryStore
}

func NewCSVImporter(r io.Reader, products ProductWriter, categories CategoryStore) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:     csvr,
		products:   products,
		categories: categories,
	}
}

// Run parses CSV rows and inserts products, skipping slugs that already exist.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["name"]; !ok {
		return 0, errors.New("missing required header: name")
	}
	if _, ok := index["price_cents"]; !ok {
		return 0, errors.New("missing required header: price_cents")
	}

	categoryIDs := make(map[string]string)
	imported := 0
	line := 1
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row %d: %w", line+1, err)
		}
		line++

		p, categoryName, err := parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("row %d: %w", line, err)
		}
		if p == nil {
			continue
		}

		if categoryName != "" {
			id, err := i.ensureCategory(ctx, categoryIDs, categoryName)
			if err != nil {
				return imported, fmt.Errorf("row %d: category %q: %w", line, categoryName, err)
			}
			p.CategoryID = id
		}

		if _, err := i.products.Create(ctx, *p); err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				continue
			}
			return imported, fmt.Errorf("row %d: insert %q: %w", line, p.Slug, err)
		}
		imported++
	}
	return imported, nil
}

func (i *CSVImporter) ensureCategory(ctx context.Context, cache map[string]string, name string) (string, error) {
	s := slug.Make(name)
	if id, ok := cache[s]; ok {
		return id, nil
	}
	cat, err := i.categories.GetBySlug(ctx, s)
	if errors.Is(err, domain.ErrNotFound) {
		cat, err = i.categories.Create(ctx, domain.Category{Name: name, Slug: s})
	}
	if err != nil {
		return "", err
	}
	cache[s] = cat.ID
	return cat.ID, nil
}

func headerIndex(headers []string) map[string]int {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return index
}

func parseRow(record []string, index map[string]int) (*domain.Product, string, error) {
	get := func(key string) string {
		i, ok := index[key]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	name := get("name")
	if name == "" {
		return nil, "", nil
	}

	cents, err := strconv.ParseInt(get("price_cents"), 10, 64)
	if err != nil {
		return nil, "", fmt.Errorf("parse price_cents: %w", err)
	}
	if cents <= 0 {
		return nil, "", errors.New("price_cents must be positive")
	}

	quantity := 0
	if raw := get("quantity"); raw != "" {
		quantity, err = strconv.Atoi(raw)
		if err != nil {
			return nil, "", fmt.Errorf("parse quantity: %w", err)
		}
	}

	shipping := false
	if raw := get("shipping"); raw != "" {
		shipping, err = strconv.ParseBool(raw)
		if err != nil {
			return nil, "", fmt.Errorf("parse shipping: %w", err)
		}
	}

	return &domain.Product{
		Name:        name,
		Slug:        slug.Make(name),
		Description: get("description"),
		PriceCents:  cents,
		Quantity:    quantity,
		Shipping:    shipping,
		PhotoURL:    get("photo_url"),
	}, get("category"), nil
}
