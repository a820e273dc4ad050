package cart

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"MiniCatalog/internal/filestore"
)

// idSpace bounds cart ids to [0, idSpace).
const idSpace = 1_000_000

type FileStore struct {
	mu   sync.RWMutex
	file *filestore.Collection[Cart]

	// intN draws from [0, n). Replaced in tests.
	intN func(n int) int
}

func NewFileStore(path string, opts filestore.Options) (*FileStore, error) {
	if opts.Name == "" {
		opts.Name = "carts"
	}
	c, err := filestore.New[Cart](path, opts)
	if err != nil {
		return nil, err
	}
	return &FileStore{file: c, intN: rand.IntN}, nil
}

func (s *FileStore) Ping(ctx context.Context) error {
	return s.file.Ping(ctx)
}

func (s *FileStore) List(ctx context.Context) ([]Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.load(), nil
}

func (s *FileStore) Get(ctx context.Context, id int) (Cart, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	carts := s.load()
	if i := indexOf(carts, id); i >= 0 {
		return carts[i], true, nil
	}
	return Cart{}, false, nil
}

func (s *FileStore) Create(ctx context.Context) (Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	carts := s.load()
	c := Cart{
		ID:       s.uniqueID(carts),
		Products: []Item{},
	}

	if err := s.file.SaveAll(append(carts, c)); err != nil {
		return Cart{}, fmt.Errorf("create cart: %w", err)
	}
	return c, nil
}

func (s *FileStore) AddProduct(ctx context.Context, cartID, productID int) (Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	carts := s.load()

	i := indexOf(carts, cartID)
	if i < 0 {
		return Cart{}, ErrCartNotFound
	}
	carts[i].Products = addItem(carts[i].Products, productID)

	if err := s.file.SaveAll(carts); err != nil {
		return Cart{}, fmt.Errorf("add product %d to cart %d: %w", productID, cartID, err)
	}
	return carts[i], nil
}

// load reads the file; a cart stored without products comes back with an
// empty list.
func (s *FileStore) load() []Cart {
	carts := s.file.LoadAll()
	for i := range carts {
		if carts[i].Products == nil {
			carts[i].Products = []Item{}
		}
	}
	return carts
}

// addItem matches on product id, never on position.
func addItem(items []Item, productID int) []Item {
	for i := range items {
		if items[i].Product == productID {
			items[i].Quantity++
			return items
		}
	}
	return append(items, Item{Product: productID, Quantity: 1})
}

// uniqueID draws until it misses every existing id. There is no retry cap:
// the loop only degrades once the id space is mostly used up.
func (s *FileStore) uniqueID(carts []Cart) int {
	taken := make(map[int]struct{}, len(carts))
	for _, c := range carts {
		taken[c.ID] = struct{}{}
	}

	for {
		id := s.intN(idSpace)
		if _, dup := taken[id]; !dup {
			return id
		}
	}
}

func indexOf(carts []Cart, id int) int {
	for i, c := range carts {
		if c.ID == id {
			return i
		}
	}
	return -1
}
