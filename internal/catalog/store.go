package catalog

import "context"

type Product struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Code        string   `json:"code"`
	Price       float64  `json:"price"`
	Status      bool     `json:"status"`
	Stock       float64  `json:"stock"`
	Category    string   `json:"category"`
	Thumbnails  []string `json:"thumbnails"`
}

// NewProduct carries the fields of a product that does not have an id yet.
// A nil Status means true; nil Thumbnails means none.
type NewProduct struct {
	Title       string
	Description string
	Code        string
	Price       float64
	Status      *bool
	Stock       float64
	Category    string
	Thumbnails  []string
}

// ProductPatch lists the fields an update replaces. Nil fields keep their
// current value.
type ProductPatch struct {
	Title       *string
	Description *string
	Code        *string
	Price       *float64
	Status      *bool
	Stock       *float64
	Category    *string
	Thumbnails  *[]string
}

func (p ProductPatch) Apply(cur Product) Product {
	if p.Title != nil {
		cur.Title = *p.Title
	}
	if p.Description != nil {
		cur.Description = *p.Description
	}
	if p.Code != nil {
		cur.Code = *p.Code
	}
	if p.Price != nil {
		cur.Price = *p.Price
	}
	if p.Status != nil {
		cur.Status = *p.Status
	}
	if p.Stock != nil {
		cur.Stock = *p.Stock
	}
	if p.Category != nil {
		cur.Category = *p.Category
	}
	if p.Thumbnails != nil {
		cur.Thumbnails = append([]string{}, (*p.Thumbnails)...)
	}
	return cur
}

type Store interface {
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id int) (Product, bool, error)
	Create(ctx context.Context, np NewProduct) (Product, error)
	Update(ctx context.Context, id int, patch ProductPatch) (Product, bool, error)
	Delete(ctx context.Context, id int) (bool, error)
	Ping(ctx context.Context) error
}
