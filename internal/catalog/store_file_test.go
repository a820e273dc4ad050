package catalog

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"MiniCatalog/internal/filestore"
)

func newTestStore(t *testing.T) (*FileStore, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "products.json")
	s, err := NewFileStore(path, filestore.Options{Log: zap.NewNop()})
	require.NoError(t, err)
	return s, path
}

func sample(code string) NewProduct {
	return NewProduct{
		Title:       "A",
		Description: "d",
		Code:        code,
		Price:       1000,
		Stock:       10,
		Category:    "c",
	}
}

func ptr[T any](v T) *T { return &v }

func TestFileStore_Create_Scenario(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	first, err := s.Create(ctx, sample("ABC"))
	require.NoError(t, err)
	assert.Equal(t, 1, first.ID)
	assert.True(t, first.Status)
	assert.NotNil(t, first.Thumbnails)
	assert.Empty(t, first.Thumbnails)

	second, err := s.Create(ctx, sample("XYZ"))
	require.NoError(t, err)
	assert.Equal(t, 2, second.ID)

	deleted, err := s.Delete(ctx, 1)
	require.NoError(t, err)
	require.True(t, deleted)

	third, err := s.Create(ctx, sample("QRS"))
	require.NoError(t, err)
	assert.Equal(t, 3, third.ID, "ids follow the largest id, not the record count")
}

func TestFileStore_Create_NoReuseAfterDeletingMiddle(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	for _, code := range []string{"a", "b", "c"} {
		_, err := s.Create(ctx, sample(code))
		require.NoError(t, err)
	}
	_, err := s.Delete(ctx, 2)
	require.NoError(t, err)

	p, err := s.Create(ctx, sample("d"))
	require.NoError(t, err)
	assert.Equal(t, 4, p.ID)
}

func TestFileStore_Create_KeepsExplicitFields(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	np := sample("ABC")
	np.Status = ptr(false)
	np.Thumbnails = []string{"img/1.png", "img/2.png"}

	p, err := s.Create(ctx, np)
	require.NoError(t, err)
	assert.False(t, p.Status)
	assert.Equal(t, []string{"img/1.png", "img/2.png"}, p.Thumbnails)

	got, found, err := s.Get(ctx, p.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, p, got)
}

func TestFileStore_IDsStayUnique(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	rng := rand.New(rand.NewPCG(1, 2))

	var live []int
	for step := 0; step < 300; step++ {
		if len(live) > 0 && rng.IntN(3) == 0 {
			i := rng.IntN(len(live))
			deleted, err := s.Delete(ctx, live[i])
			require.NoError(t, err)
			require.True(t, deleted)
			live = append(live[:i], live[i+1:]...)
		} else {
			p, err := s.Create(ctx, sample("x"))
			require.NoError(t, err)
			live = append(live, p.ID)
		}

		products, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, products, len(live))

		seen := make(map[int]struct{}, len(products))
		for _, p := range products {
			_, dup := seen[p.ID]
			require.False(t, dup, "duplicate id %d at step %d", p.ID, step)
			seen[p.ID] = struct{}{}
		}
	}
}

func TestFileStore_Update_MergesOnlyGivenFields(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	orig, err := s.Create(ctx, sample("ABC"))
	require.NoError(t, err)

	updated, found, err := s.Update(ctx, orig.ID, ProductPatch{
		Price: ptr(9000.0),
		Stock: ptr(1.0),
	})
	require.NoError(t, err)
	require.True(t, found)

	want := orig
	want.Price = 9000
	want.Stock = 1
	assert.Equal(t, want, updated)

	got, found, err := s.Get(ctx, orig.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, want, got)
}

func TestFileStore_Update_AllFields(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	orig, err := s.Create(ctx, sample("ABC"))
	require.NoError(t, err)

	patch := ProductPatch{
		Title:       ptr("B"),
		Description: ptr("e"),
		Code:        ptr("DEF"),
		Price:       ptr(5.5),
		Status:      ptr(false),
		Stock:       ptr(0.0),
		Category:    ptr("k"),
		Thumbnails:  ptr([]string{"t"}),
	}
	got, found, err := s.Update(ctx, orig.ID, patch)
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, Product{
		ID:          orig.ID,
		Title:       "B",
		Description: "e",
		Code:        "DEF",
		Price:       5.5,
		Status:      false,
		Stock:       0,
		Category:    "k",
		Thumbnails:  []string{"t"},
	}, got)
}

func TestFileStore_Update_NotFoundDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	s, path := newTestStore(t)

	_, err := s.Create(ctx, sample("ABC"))
	require.NoError(t, err)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	_, found, err := s.Update(ctx, 42, ProductPatch{Title: ptr("nope")})
	require.NoError(t, err)
	assert.False(t, found)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestFileStore_Delete(t *testing.T) {
	ctx := context.Background()
	s, path := newTestStore(t)

	for _, code := range []string{"a", "b"} {
		_, err := s.Create(ctx, sample(code))
		require.NoError(t, err)
	}

	deleted, err := s.Delete(ctx, 1)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, found, err := s.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, found)

	products, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1)

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	deleted, err = s.Delete(ctx, 1)
	require.NoError(t, err)
	assert.False(t, deleted)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after), "no write when nothing was removed")
}

func TestFileStore_List_KeepsFileOrder(t *testing.T) {
	ctx := context.Background()
	s, path := newTestStore(t)

	require.NoError(t, os.WriteFile(path, []byte(`[
  {"id": 5, "title": "five", "thumbnails": []},
  {"id": 2, "title": "two", "thumbnails": []}
]`), 0o644))

	products, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, 5, products[0].ID)
	assert.Equal(t, 2, products[1].ID)

	p, err := s.Create(ctx, sample("n"))
	require.NoError(t, err)
	assert.Equal(t, 6, p.ID)
}

func TestFileStore_MissingFileIsEmptyStore(t *testing.T) {
	ctx := context.Background()
	s, path := newTestStore(t)
	require.NoError(t, os.Remove(path))

	products, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)

	p, err := s.Create(ctx, sample("ABC"))
	require.NoError(t, err)
	assert.Equal(t, 1, p.ID)
}

func TestNextID(t *testing.T) {
	testCases := []struct {
		name string
		ids  []int
		want int
	}{
		{name: "empty", ids: nil, want: 1},
		{name: "dense", ids: []int{1, 2, 3}, want: 4},
		{name: "gap", ids: []int{1, 3}, want: 4},
		{name: "unordered", ids: []int{7, 2, 5}, want: 8},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			products := make([]Product, 0, len(tc.ids))
			for _, id := range tc.ids {
				products = append(products, Product{ID: id})
			}
			assert.Equal(t, tc.want, nextID(products))
		})
	}
}

func TestFileStore_FractionalStockSurvivesWrites(t *testing.T) {
	ctx := context.Background()
	s, path := newTestStore(t)

	require.NoError(t, os.WriteFile(path, []byte(`[
  {"id": 1, "title": "A", "description": "d", "code": "A1", "price": 10, "status": true, "stock": 10, "category": "c", "thumbnails": []},
  {"id": 2, "title": "B", "description": "d", "code": "B1", "price": 3.5, "status": true, "stock": 2.5, "category": "c", "thumbnails": []}
]`), 0o644))

	products, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, 2.5, products[1].Stock)

	p, err := s.Create(ctx, sample("n"))
	require.NoError(t, err)
	assert.Equal(t, 3, p.ID)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk []Product
	require.NoError(t, json.Unmarshal(raw, &onDisk))
	require.Len(t, onDisk, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{onDisk[0].ID, onDisk[1].ID, onDisk[2].ID})
	assert.Equal(t, 2.5, onDisk[1].Stock)
}

func TestFileStore_MissingThumbnailsReadAsEmpty(t *testing.T) {
	ctx := context.Background()
	s, path := newTestStore(t)

	require.NoError(t, os.WriteFile(path, []byte(`[{"id": 1, "title": "A"}, {"id": 2, "title": "B", "thumbnails": null}]`), 0o644))

	products, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	for _, p := range products {
		assert.NotNil(t, p.Thumbnails, "product %d", p.ID)
	}

	got, found, err := s.Get(ctx, 2)
	require.NoError(t, err)
	require.True(t, found)

	out, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"thumbnails":[]`)
}

func TestFileStore_ConcurrentCreatesGetUniqueIDs(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	const n = 20
	ids := make([]int, n)

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := s.Create(ctx, sample("C"))
			assert.NoError(t, err)
			ids[i] = p.ID
		}()
	}
	wg.Wait()

	seen := make(map[int]struct{}, n)
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, n)

	products, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, products, n)
}
