package aliexpress

import (
	"context"
	"fmt"

	"github.com/wonny/dropscout/internal/contracts"
	"github.com/wonny/dropscout/internal/external"
)

// Simulated returns repeatable marketplace metrics derived from the product name.
// Used when no affiliate credentials are configured.
type Simulated struct{}

// NewSimulated creates a simulated marketplace
func NewSimulated() *Simulated {
	return &Simulated{}
}

// FetchProduct implements contracts.MarketDataFetcher
func (s *Simulated) FetchProduct(ctx context.Context, ref contracts.ProductRef) (contracts.RawPayload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Payload(simulatedProduct(ref.ID, ref.Name), ref.Category), nil
}

// SearchProducts returns a page of simulated listings for keyword
func (s *Simulated) SearchProducts(ctx context.Context, keyword string, page, pageSize int) (*SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	total := external.Seeded(Source, "total", keyword).Intn(pageSize, 500)
	out := &SearchResult{Total: total, Page: page, PageSize: pageSize, Products: make([]Product, 0, pageSize)}

	start := (page - 1) * pageSize
	for i := start; i < start+pageSize && i < total; i++ {
		id := fmt.Sprintf("sim-%d", 100000+i)
		p := simulatedProduct(id, keyword)
		p.Title = fmt.Sprintf("%s #%d", keyword, i+1)
		out.Products = append(out.Products, p)
	}
	return out, nil
}

func simulatedProduct(id, name string) Product {
	g := external.Seeded(Source, name, id)
	return Product{
		ID:      id,
		Title:   name,
		Reviews: g.Intn(1000, 13000),
		Rating:  g.Float(3.5, 5.0, 1),
		Sales:   g.Intn(2000, 17000),
		Price:   g.Float(10, 60, 2),
	}
}
