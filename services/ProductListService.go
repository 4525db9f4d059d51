package services

import (
	"context"
	"sync"
	"time"

	"emarket/entities"
	"emarket/models"
)

const DefaultPageLimit = 4

const searchDebounce = 500 * time.Millisecond

// ProductListService is the orchestrating state machine over the paginator,
// the full-catalog cache, the filter engine and the local stores. All state
// lives behind one mutex; fetches run off it and deliver results back through
// it. Every outstanding fetch carries the generation current when it was
// issued, and results from a stale generation are discarded, so a late page
// response cannot corrupt a reset session.
type ProductListService struct {
	catalog   CatalogClient
	cache     *AllProductsCache
	carts     CartService
	favorites *FavoriteService
	ns        Notifier

	mu          sync.Mutex
	pageLimit   int
	currentPage int
	isLastPage  bool
	isFetching  bool
	generation  uint64
	paged       []entities.Product
	display     []entities.Product
	criteria    entities.FilterCriteria
	cartTotal   int
	lastErr     error
	state       entities.ListState
	onChange    func(entities.ListSnapshot)
	debounce    time.Duration
	searchTimer *time.Timer
	subToken    Token
}

func NewProductListService(
	catalog CatalogClient,
	carts CartService,
	favorites *FavoriteService,
	notifier Notifier,
	pageLimit int,
) *ProductListService {
	if pageLimit < 1 {
		pageLimit = DefaultPageLimit
	}
	s := &ProductListService{
		catalog:   catalog,
		cache:     NewAllProductsCache(catalog),
		carts:     carts,
		favorites: favorites,
		ns:        notifier,
		pageLimit: pageLimit,
		criteria:  entities.NewFilterCriteria(),
		state:     entities.StateIdle,
		debounce:  searchDebounce,
	}
	if total, err := carts.TotalQuantity(); err == nil {
		s.cartTotal = total
	}
	s.subToken = notifier.Subscribe(TopicCatalogMutated, func(string) {
		s.refreshLocalState()
	})
	return s
}

// OnChange registers the single observer receiving state snapshots.
func (s *ProductListService) OnChange(handler func(entities.ListSnapshot)) {
	s.mu.Lock()
	s.onChange = handler
	s.mu.Unlock()
}

func (s *ProductListService) Close() {
	s.ns.Unsubscribe(s.subToken)
	s.mu.Lock()
	if s.searchTimer != nil {
		s.searchTimer.Stop()
	}
	s.mu.Unlock()
}

// ResetAndFetchFirstPage clears the paged session, invalidates the
// full-catalog cache and issues a fetch for page 1. Also the retry and
// pull-to-refresh path.
func (s *ProductListService) ResetAndFetchFirstPage() {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.paged = nil
	s.currentPage = 1
	s.isLastPage = false
	s.isFetching = true
	s.lastErr = nil
	s.state = entities.StateLoading
	s.cache.Invalidate()
	s.display = nil
	s.emitAndUnlock()
	go s.fetchPage(gen, 1)
}

// FetchNextPage advances the cursor. Silently ignored while a fetch is in
// flight or after the last page.
func (s *ProductListService) FetchNextPage() {
	s.mu.Lock()
	if s.isFetching || s.isLastPage {
		s.mu.Unlock()
		return
	}
	s.currentPage++
	page := s.currentPage
	gen := s.generation
	s.isFetching = true
	s.state = entities.StateLoading
	s.emitAndUnlock()
	go s.fetchPage(gen, page)
}

func (s *ProductListService) fetchPage(gen uint64, page int) {
	products, err := s.catalog.FetchPage(context.Background(), page, s.pageLimit)
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return
	}
	s.isFetching = false
	if err != nil {
		s.lastErr = models.ClassifyError(err)
		s.state = entities.StateFailed
		s.emitAndUnlock()
		return
	}
	s.lastErr = nil
	if len(products) == 0 {
		s.isLastPage = true
	} else {
		s.paged = append(s.paged, products...)
	}
	s.recomputeLocked()
	s.emitAndUnlock()
}

// SetSearchText updates the search term and debounces the recompute: each
// call cancels the pending timer, only the last one within the window runs.
func (s *ProductListService) SetSearchText(text string) {
	s.mu.Lock()
	s.criteria.SearchText = text
	if s.searchTimer != nil {
		s.searchTimer.Stop()
	}
	s.searchTimer = time.AfterFunc(s.debounce, s.applyCriteria)
	s.mu.Unlock()
}

// ApplyFilter replaces sort order and brand/model selections. The search text
// is owned by SetSearchText and survives filter changes.
func (s *ProductListService) ApplyFilter(criteria entities.FilterCriteria) {
	if criteria.SelectedBrands == nil {
		criteria.SelectedBrands = map[string]struct{}{}
	}
	if criteria.SelectedModels == nil {
		criteria.SelectedModels = map[string]struct{}{}
	}
	s.mu.Lock()
	criteria.SearchText = s.criteria.SearchText
	s.criteria = criteria
	s.ensureCacheLocked()
	s.recomputeLocked()
	s.emitAndUnlock()
}

// ClearAllFilters resets the criteria. The full-catalog cache stays warm;
// only an explicit refresh clears it.
func (s *ProductListService) ClearAllFilters() {
	s.mu.Lock()
	if s.searchTimer != nil {
		s.searchTimer.Stop()
	}
	s.criteria = entities.NewFilterCriteria()
	s.recomputeLocked()
	s.emitAndUnlock()
}

// Retry re-issues the first-page fetch for retryable error kinds.
func (s *ProductListService) Retry() {
	s.mu.Lock()
	lastErr := s.lastErr
	s.mu.Unlock()
	if lastErr == nil || !models.IsRetryable(lastErr) {
		return
	}
	s.ResetAndFetchFirstPage()
}

func (s *ProductListService) AddToCart(product entities.Product) (err error) {
	return s.carts.AddToCart(product, 1)
}

func (s *ProductListService) ToggleFavorite(productId string) (favorite bool, err error) {
	return s.favorites.Toggle(productId)
}

func (s *ProductListService) IsFavorite(productId string) bool {
	return s.favorites.IsFavorite(productId)
}

func (s *ProductListService) Snapshot() entities.ListSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *ProductListService) applyCriteria() {
	s.mu.Lock()
	s.ensureCacheLocked()
	s.recomputeLocked()
	s.emitAndUnlock()
}

// ensureCacheLocked starts the full-catalog fetch when a filter or search is
// active and the cache is cold. Completion hops onto a fresh goroutine before
// re-entering the lock.
func (s *ProductListService) ensureCacheLocked() {
	if !s.criteria.HasActiveFilter() {
		return
	}
	if _, isCached := s.cache.Snapshot(); isCached {
		return
	}
	gen := s.generation
	s.cache.EnsureCached(func(products []entities.Product, ok bool) {
		if !ok {
			// cache failed, keep filtering over the paged list
			return
		}
		go s.onCacheReady(gen)
	})
}

func (s *ProductListService) onCacheReady(gen uint64) {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return
	}
	s.recomputeLocked()
	s.emitAndUnlock()
}

func (s *ProductListService) refreshLocalState() {
	_ = s.favorites.Reload()
	total, err := s.carts.TotalQuantity()
	s.mu.Lock()
	if err == nil {
		s.cartTotal = total
	}
	s.emitAndUnlock()
}

func (s *ProductListService) recomputeLocked() {
	cached, isCached := s.cache.Snapshot()
	s.display = ComputeDisplayList(s.criteria, s.paged, cached, isCached)
	if s.isFetching {
		s.state = entities.StateLoading
	} else if len(s.display) == 0 {
		s.state = entities.StateEmpty
	} else {
		s.state = entities.StateLoaded
	}
}

func (s *ProductListService) snapshotLocked() entities.ListSnapshot {
	products := make([]entities.Product, len(s.display))
	copy(products, s.display)
	return entities.ListSnapshot{
		State:             s.state,
		Products:          products,
		IsFetching:        s.isFetching,
		IsLastPage:        s.isLastPage,
		IsFiltering:       s.criteria.HasActiveFilter(),
		CartTotalQuantity: s.cartTotal,
		FavoriteIds:       s.favorites.Snapshot(),
		LastError:         s.lastErr,
	}
}

// emitAndUnlock snapshots under the lock, releases it, then notifies the
// observer so a handler can call back into the service.
func (s *ProductListService) emitAndUnlock() {
	snapshot := s.snapshotLocked()
	handler := s.onChange
	s.mu.Unlock()
	if handler != nil {
		handler(snapshot)
	}
}
