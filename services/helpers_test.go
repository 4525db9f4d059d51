package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"emarket/entities"
	"emarket/models"
)

// stubCatalog serves canned pages and counts calls. gateOn blocks the fetch
// for that page until gate is closed, to stage in-flight requests.
type stubCatalog struct {
	mu        sync.Mutex
	pages     map[int][]entities.Product
	all       []entities.Product
	pageErr   error
	allErr    error
	pageCalls int
	allCalls  int
	gateOn    int
	gate      chan struct{}
	gateAll   chan struct{}
}

func (c *stubCatalog) FetchPage(_ context.Context, page int, _ int) ([]entities.Product, error) {
	c.mu.Lock()
	c.pageCalls++
	gate := c.gate
	gateOn := c.gateOn
	err := c.pageErr
	products := c.pages[page]
	c.mu.Unlock()
	if gate != nil && page == gateOn {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (c *stubCatalog) FetchAll(_ context.Context) ([]entities.Product, error) {
	c.mu.Lock()
	c.allCalls++
	gate := c.gateAll
	err := c.allErr
	all := c.all
	c.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return all, nil
}

func (c *stubCatalog) calls() (pageCalls int, allCalls int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pageCalls, c.allCalls
}

// fakeCartRepo is an in-memory CartRepository with a switchable failure mode.
type fakeCartRepo struct {
	mu    sync.Mutex
	lines map[string]entities.CartLine
	fail  bool
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{lines: map[string]entities.CartLine{}}
}

func (f *fakeCartRepo) AddOrIncrement(line entities.CartLine) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return models.ErrPersistenceFailure
	}
	if line.Quantity < 1 {
		line.Quantity = 1
	}
	if existing, ok := f.lines[line.ProductId]; ok {
		existing.Quantity += line.Quantity
		f.lines[line.ProductId] = existing
	} else {
		f.lines[line.ProductId] = line
	}
	return nil
}

func (f *fakeCartRepo) SetQuantity(productId string, quantity int) error {
	if quantity < 1 {
		return f.Remove(productId)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return models.ErrPersistenceFailure
	}
	if existing, ok := f.lines[productId]; ok {
		existing.Quantity = quantity
		f.lines[productId] = existing
	}
	return nil
}

func (f *fakeCartRepo) Remove(productId string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return models.ErrPersistenceFailure
	}
	delete(f.lines, productId)
	return nil
}

func (f *fakeCartRepo) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return models.ErrPersistenceFailure
	}
	f.lines = map[string]entities.CartLine{}
	return nil
}

func (f *fakeCartRepo) LoadAll() ([]entities.CartLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, models.ErrPersistenceFailure
	}
	lines := make([]entities.CartLine, 0, len(f.lines))
	for _, line := range f.lines {
		lines = append(lines, line)
	}
	return lines, nil
}

type fakeFavoriteRepo struct {
	mu   sync.Mutex
	ids  map[string]struct{}
	fail bool
}

func newFakeFavoriteRepo() *fakeFavoriteRepo {
	return &fakeFavoriteRepo{ids: map[string]struct{}{}}
}

func (f *fakeFavoriteRepo) Add(productId string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return models.ErrPersistenceFailure
	}
	f.ids[productId] = struct{}{}
	return nil
}

func (f *fakeFavoriteRepo) Remove(productId string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return models.ErrPersistenceFailure
	}
	delete(f.ids, productId)
	return nil
}

func (f *fakeFavoriteRepo) LoadAll() (map[string]struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, models.ErrPersistenceFailure
	}
	ids := make(map[string]struct{}, len(f.ids))
	for id := range f.ids {
		ids[id] = struct{}{}
	}
	return ids, nil
}

// snapshotRecorder collects OnChange emissions so tests can await transitions.
type snapshotRecorder struct {
	ch chan entities.ListSnapshot
}

func newSnapshotRecorder(list *ProductListService) *snapshotRecorder {
	r := &snapshotRecorder{ch: make(chan entities.ListSnapshot, 64)}
	list.OnChange(func(snap entities.ListSnapshot) {
		r.ch <- snap
	})
	return r
}

func (r *snapshotRecorder) waitFor(t *testing.T, pred func(entities.ListSnapshot) bool) entities.ListSnapshot {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case snap := <-r.ch:
			if pred(snap) {
				return snap
			}
		case <-deadline:
			t.Fatal("timed out waiting for snapshot")
			return entities.ListSnapshot{}
		}
	}
}

func catalogPage(first, count int) []entities.Product {
	products := make([]entities.Product, 0, count)
	for i := 0; i < count; i++ {
		id := first + i
		products = append(products, entities.Product{
			Id:        fmt.Sprintf("%d", id),
			CreatedAt: fmt.Sprintf("2023-07-%02dT00:00:00.000Z", id),
			Name:      fmt.Sprintf("Product %d", id),
			Price:     fmt.Sprintf("%d.00 ₺", id*10),
			Brand:     "Generic",
			Model:     fmt.Sprintf("M%d", id),
		})
	}
	return products
}

func newListService(catalog CatalogClient) (*ProductListService, *NotificationService) {
	notifier := NewNotificationService()
	carts := NewCartService(newFakeCartRepo(), notifier)
	favorites := NewFavoriteService(newFakeFavoriteRepo(), notifier)
	return NewProductListService(catalog, carts, favorites, notifier, 4), notifier
}
