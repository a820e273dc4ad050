package catalog

import (
	"context"
	"fmt"
	"sync"

	"MiniCatalog/internal/filestore"
)

// FileStore keeps products in a JSON array file. Every call reloads the
// file; mutations rewrite it whole.
type FileStore struct {
	mu   sync.RWMutex
	file *filestore.Collection[Product]
}

func NewFileStore(path string, opts filestore.Options) (*FileStore, error) {
	if opts.Name == "" {
		opts.Name = "products"
	}
	c, err := filestore.New[Product](path, opts)
	if err != nil {
		return nil, err
	}
	return &FileStore{file: c}, nil
}

func (s *FileStore) Ping(ctx context.Context) error {
	return s.file.Ping(ctx)
}

func (s *FileStore) List(ctx context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.load(), nil
}

func (s *FileStore) Get(ctx context.Context, id int) (Product, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.load() {
		if p.ID == id {
			return p, true, nil
		}
	}
	return Product{}, false, nil
}

func (s *FileStore) Create(ctx context.Context, np NewProduct) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := s.load()

	p := Product{
		ID:          nextID(products),
		Title:       np.Title,
		Description: np.Description,
		Code:        np.Code,
		Price:       np.Price,
		Status:      true,
		Stock:       np.Stock,
		Category:    np.Category,
		Thumbnails:  append([]string{}, np.Thumbnails...),
	}
	if np.Status != nil {
		p.Status = *np.Status
	}

	if err := s.file.SaveAll(append(products, p)); err != nil {
		return Product{}, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

func (s *FileStore) Update(ctx context.Context, id int, patch ProductPatch) (Product, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := s.load()

	idx := indexOf(products, id)
	if idx < 0 {
		return Product{}, false, nil
	}

	products[idx] = patch.Apply(products[idx])

	if err := s.file.SaveAll(products); err != nil {
		return Product{}, false, fmt.Errorf("update product %d: %w", id, err)
	}
	return products[idx], true, nil
}

func (s *FileStore) Delete(ctx context.Context, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := s.load()

	kept := make([]Product, 0, len(products))
	for _, p := range products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(products) {
		return false, nil
	}

	if err := s.file.SaveAll(kept); err != nil {
		return false, fmt.Errorf("delete product %d: %w", id, err)
	}
	return true, nil
}

// load reads the file and fills in thumbnails missing from hand-edited or
// older records, so they serialize as [] rather than null.
func (s *FileStore) load() []Product {
	products := s.file.LoadAll()
	for i := range products {
		if products[i].Thumbnails == nil {
			products[i].Thumbnails = []string{}
		}
	}
	return products
}

// nextID is one past the largest id in use, so ids freed by deletes are
// never handed out while a larger id exists. Counting records instead
// collides after any delete.
func nextID(products []Product) int {
	top := 0
	for _, p := range products {
		if p.ID > top {
			top = p.ID
		}
	}
	return top + 1
}

func indexOf(products []Product, id int) int {
	for i, p := range products {
		if p.ID == id {
			return i
		}
	}
	return -1
}
