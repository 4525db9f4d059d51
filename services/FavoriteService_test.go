package services

import (
	"context"
	"testing"

	"emarket/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFavoriteService_ToggleTwiceRestoresOriginalState(t *testing.T) {
	repo := newFakeFavoriteRepo()
	fs := NewFavoriteService(repo, NewNotificationService())

	favorite, err := fs.Toggle("p1")
	require.NoError(t, err)
	assert.True(t, favorite)
	assert.True(t, fs.IsFavorite("p1"))

	favorite, err = fs.Toggle("p1")
	require.NoError(t, err)
	assert.False(t, favorite)
	assert.False(t, fs.IsFavorite("p1"))

	ids, err := repo.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFavoriteService_OptimisticSetMatchesStore(t *testing.T) {
	repo := newFakeFavoriteRepo()
	fs := NewFavoriteService(repo, NewNotificationService())

	_, err := fs.Toggle("a")
	require.NoError(t, err)
	_, err = fs.Toggle("b")
	require.NoError(t, err)
	_, err = fs.Toggle("a")
	require.NoError(t, err)

	stored, err := repo.LoadAll()
	require.NoError(t, err)
	assert.Equal(t, stored, fs.Snapshot())
}

func TestFavoriteService_FailedToggleLeavesSetUntouched(t *testing.T) {
	repo := newFakeFavoriteRepo()
	ns := NewNotificationService()
	published := 0
	ns.Subscribe(TopicCatalogMutated, func(string) { published++ })
	fs := NewFavoriteService(repo, ns)

	repo.fail = true
	_, err := fs.Toggle("p1")
	require.Error(t, err)
	assert.False(t, fs.IsFavorite("p1"))
	assert.Equal(t, 0, published)
}

func TestFavoriteService_LoadsPersistedMembershipOnConstruction(t *testing.T) {
	repo := newFakeFavoriteRepo()
	require.NoError(t, repo.Add("seeded"))

	fs := NewFavoriteService(repo, NewNotificationService())

	assert.True(t, fs.IsFavorite("seeded"))
}

func TestFavoriteService_LoadFavoriteProducts(t *testing.T) {
	repo := newFakeFavoriteRepo()
	fs := NewFavoriteService(repo, NewNotificationService())
	catalog := &stubCatalog{all: []entities.Product{
		{Id: "1", Name: "iPhone 15 Pro"},
		{Id: "2", Name: "Samsung Galaxy S24"},
	}}

	// empty membership short-circuits without a network call
	products, err := fs.LoadFavoriteProducts(context.Background(), catalog)
	require.NoError(t, err)
	assert.Empty(t, products)
	_, allCalls := catalog.calls()
	assert.Equal(t, 0, allCalls)

	_, err = fs.Toggle("2")
	require.NoError(t, err)

	products, err = fs.LoadFavoriteProducts(context.Background(), catalog)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Samsung Galaxy S24", products[0].Name)
}
