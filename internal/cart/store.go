package cart

import (
	"context"
	"errors"
)

var ErrCartNotFound = errors.New("cart not found")

// Item is one line of a cart. A cart holds at most one Item per product.
type Item struct {
	Product  int `json:"product"`
	Quantity int `json:"quantity"`
}

type Cart struct {
	ID       int    `json:"id"`
	Products []Item `json:"products"`
}

type Store interface {
	List(ctx context.Context) ([]Cart, error)
	Get(ctx context.Context, id int) (Cart, bool, error)
	Create(ctx context.Context) (Cart, error)
	// AddProduct bumps the quantity of productID in the cart, adding a line
	// with quantity 1 if the product is not there yet. Returns
	// ErrCartNotFound when no cart has cartID.
	AddProduct(ctx context.Context, cartID, productID int) (Cart, error)
	Ping(ctx context.Context) error
}
