package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/frozenfood/server/internal/module/catalog"
)

type fakeCartRepo struct {
	items map[int64]map[uuid.UUID]int
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{items: make(map[int64]map[uuid.UUID]int)}
}

func (f *fakeCartRepo) user(userID int64) map[uuid.UUID]int {
	if f.items[userID] == nil {
		f.items[userID] = make(map[uuid.UUID]int)
	}
	return f.items[userID]
}

func (f *fakeCartRepo) GetItems(_ context.Context, userID int64) ([]Item, error) {
	var out []Item
	for id, qty := range f.user(userID) {
		out = append(out, Item{ProductID: id, Quantity: qty})
	}
	return out, nil
}

func (f *fakeCartRepo) SetQuantity(_ context.Context, userID int64, productID uuid.UUID, quantity int) error {
	f.user(userID)[productID] = quantity
	return nil
}

func (f *fakeCartRepo) AddQuantity(_ context.Context, userID int64, productID uuid.UUID, delta int) (int, error) {
	u := f.user(userID)
	u[productID] += delta
	if u[productID] <= 0 {
		delete(u, productID)
		return 0, nil
	}
	return u[productID], nil
}

func (f *fakeCartRepo) RemoveItem(_ context.Context, userID int64, productID uuid.UUID) error {
	u := f.user(userID)
	if _, ok := u[productID]; !ok {
		return ErrItemNotFound
	}
	delete(u, productID)
	return nil
}

func (f *fakeCartRepo) Clear(_ context.Context, userID int64) error {
	delete(f.items, userID)
	return nil
}

type fakeCatalogRepo struct {
	products map[uuid.UUID]*catalog.Product
}

func (f *fakeCatalogRepo) CreateCategory(context.Context, *catalog.Category) error { return nil }
func (f *fakeCatalogRepo) GetCategory(context.Context, uuid.UUID) (*catalog.Category, error) {
	return nil, catalog.ErrCategoryNotFound
}
func (f *fakeCatalogRepo) ListCategories(context.Context, bool) ([]*catalog.Category, error) {
	return nil, nil
}
func (f *fakeCatalogRepo) UpdateCategory(context.Context, *catalog.Category) error { return nil }
func (f *fakeCatalogRepo) DeleteCategory(context.Context, uuid.UUID) error         { return nil }
func (f *fakeCatalogRepo) CreateProduct(context.Context, *catalog.Product) error   { return nil }

func (f *fakeCatalogRepo) GetProduct(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeCatalogRepo) GetProducts(_ context.Context, ids []uuid.UUID) ([]*catalog.Product, error) {
	var out []*catalog.Product
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeCatalogRepo) ListProductsByCategory(context.Context, uuid.UUID, bool) ([]*catalog.Product, error) {
	return nil, nil
}
func (f *fakeCatalogRepo) UpdateProduct(context.Context, *catalog.Product) error { return nil }
func (f *fakeCatalogRepo) DeleteProduct(context.Context, uuid.UUID) error        { return nil }

func newTestService(products ...*catalog.Product) (*Service, *fakeCartRepo) {
	catRepo := &fakeCatalogRepo{products: make(map[uuid.UUID]*catalog.Product)}
	for _, p := range products {
		catRepo.products[p.ID] = p
	}
	catalogSvc := catalog.NewService(catRepo, nil, nil, zap.NewNop())
	repo := newFakeCartRepo()
	return NewService(repo, catalogSvc, zap.NewNop()), repo
}

func TestAddItem_RejectsUnavailableProduct(t *testing.T) {
	product := &catalog.Product{ID: uuid.New(), Name: "Classic", Price: 450, IsActive: true, InStock: false}
	svc, _ := newTestService(product)

	err := svc.AddItem(context.Background(), 42, product.ID, 1)
	assert.ErrorIs(t, err, ErrProductUnavailable)
}

func TestAddItem_RejectsNonPositiveQuantity(t *testing.T) {
	svc, _ := newTestService()
	err := svc.AddItem(context.Background(), 42, uuid.New(), 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestGetCart_ComputesTotals(t *testing.T) {
	discount := int64(400)
	pelmeni := &catalog.Product{ID: uuid.New(), Name: "Pelmeni", Price: 450, IsActive: true, InStock: true}
	vareniki := &catalog.Product{ID: uuid.New(), Name: "Vareniki", Price: 500, Discount: &discount, IsActive: true, InStock: true}
	svc, _ := newTestService(pelmeni, vareniki)
	ctx := context.Background()

	require.NoError(t, svc.AddItem(ctx, 42, pelmeni.ID, 2))
	require.NoError(t, svc.AddItem(ctx, 42, vareniki.ID, 1))

	cart, err := svc.GetCart(ctx, 42)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 2)
	// 2*450 + 1*400 (discounted)
	assert.Equal(t, int64(1300), cart.Total)
}

func TestGetCart_DropsUnavailableLines(t *testing.T) {
	product := &catalog.Product{ID: uuid.New(), Name: "Classic", Price: 450, IsActive: true, InStock: true}
	svc, repo := newTestService(product)
	ctx := context.Background()

	require.NoError(t, svc.AddItem(ctx, 42, product.ID, 1))

	// Product goes out of stock after it was added
	product.InStock = false

	cart, err := svc.GetCart(ctx, 42)
	require.NoError(t, err)
	assert.True(t, cart.Empty())
	assert.Zero(t, cart.Total)

	// The raw item is still stored; only resolution filters it
	items, err := repo.GetItems(ctx, 42)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestSetQuantity_ZeroRemoves(t *testing.T) {
	product := &catalog.Product{ID: uuid.New(), Name: "Classic", Price: 450, IsActive: true, InStock: true}
	svc, repo := newTestService(product)
	ctx := context.Background()

	require.NoError(t, svc.AddItem(ctx, 42, product.ID, 3))
	require.NoError(t, svc.SetQuantity(ctx, 42, product.ID, 0))

	items, err := repo.GetItems(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, items)
}
