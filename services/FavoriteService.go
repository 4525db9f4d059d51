package services

import (
	"context"
	"sync"

	"emarket/entities"
	"emarket/repository"
)

// FavoriteService keeps an in-memory membership set that mirrors the
// persistent favorite store. Toggles flip the set optimistically after a
// successful store call; on failure the set is untouched and nothing is
// published.
type FavoriteService struct {
	fr repository.FavoriteRepository
	ns Notifier

	mu  sync.Mutex
	ids map[string]struct{}
}

func NewFavoriteService(favoriteRepo repository.FavoriteRepository, notifier Notifier) *FavoriteService {
	fs := &FavoriteService{
		fr:  favoriteRepo,
		ns:  notifier,
		ids: map[string]struct{}{},
	}
	if ids, err := favoriteRepo.LoadAll(); err == nil {
		fs.ids = ids
	}
	return fs
}

func (fs *FavoriteService) IsFavorite(productId string) bool {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	_, ok := fs.ids[productId]
	return ok
}

// Toggle adds or removes membership and reports the resulting state.
func (fs *FavoriteService) Toggle(productId string) (favorite bool, err error) {
	if fs.IsFavorite(productId) {
		err = fs.fr.Remove(productId)
		if err != nil {
			favorite = true
			return
		}
		fs.mu.Lock()
		delete(fs.ids, productId)
		fs.mu.Unlock()
	} else {
		err = fs.fr.Add(productId)
		if err != nil {
			return
		}
		fs.mu.Lock()
		fs.ids[productId] = struct{}{}
		fs.mu.Unlock()
		favorite = true
	}
	fs.ns.Publish(TopicCatalogMutated)
	return
}

// Reload replaces the in-memory set from the store.
func (fs *FavoriteService) Reload() (err error) {
	ids, e := fs.fr.LoadAll()
	if e != nil {
		err = e
		return
	}
	fs.mu.Lock()
	fs.ids = ids
	fs.mu.Unlock()
	return
}

// Snapshot returns a copy of the current membership set.
func (fs *FavoriteService) Snapshot() map[string]struct{} {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	ids := make(map[string]struct{}, len(fs.ids))
	for id := range fs.ids {
		ids[id] = struct{}{}
	}
	return ids
}

// LoadFavoriteProducts joins the persisted ids with the full catalog. An
// empty membership set short-circuits without a network call.
func (fs *FavoriteService) LoadFavoriteProducts(ctx context.Context, catalog CatalogClient) (products []entities.Product, err error) {
	err = fs.Reload()
	if err != nil {
		return
	}
	ids := fs.Snapshot()
	if len(ids) == 0 {
		return
	}
	all, e := catalog.FetchAll(ctx)
	if e != nil {
		err = e
		return
	}
	for _, p := range all {
		if _, ok := ids[p.Id]; ok {
			products = append(products, p)
		}
	}
	return
}
